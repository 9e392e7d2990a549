package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/negocio-erp/internal/application/sales"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/pkg/config"
)

var _ sales.AccountLocker = (*AccountLocker)(nil)

const (
	lockPrefix   = "sale-commit:"
	retryBackoff = 100 * time.Millisecond
	retryLimit   = 20
)

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 50,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// AccountLocker bloqueo distribuido por cuenta para confirmar ventas desde varias instancias.
type AccountLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewAccountLocker construye el locker sobre un cliente go-redis.
func NewAccountLocker(rdb goredis.UniversalClient, ttl time.Duration, log zerolog.Logger) *AccountLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AccountLocker{locker: redislock.New(rdb), ttl: ttl, log: log}
}

// Lock espera hasta ~2s por el bloqueo de la cuenta. Si otra venta lo retiene
// más tiempo devuelve domain.ErrLockNotObtained.
func (l *AccountLocker) Lock(ctx context.Context, companyID string) (func(), error) {
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(retryBackoff), retryLimit),
	}
	lock, err := l.locker.Obtain(ctx, lockPrefix+companyID, l.ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtener lock de cuenta: %w", err)
	}
	return func() {
		// el ctx de la petición puede estar cancelado; liberar con uno propio
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(rctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("company_id", companyID).Msg("no se pudo liberar el lock de venta")
		}
	}, nil
}
