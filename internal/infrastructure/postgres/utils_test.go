package postgres

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgErrorClassification(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, isUniqueViolation(dup))
	assert.False(t, isUniqueViolation(fk))
	assert.True(t, isForeignKeyViolation(fk))
	assert.False(t, isForeignKeyViolation(errors.New("boom")))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	up, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	down, err := fs.Glob(migrationsFS, "migrations/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, up)
	assert.Len(t, down, len(up))
}

func TestPgx5URL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/erp?sslmode=disable", pgx5URL("postgres://u:p@db:5432/erp?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/erp", pgx5URL("postgresql://u@db/erp"))
	assert.Equal(t, "pgx5://x", pgx5URL("pgx5://x"))
}
