// migrate aplica o revierte el esquema embebido en internal/infrastructure/postgres/migrations.
//
// Uso:
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down [pasos]
//	go run ./cmd/migrate version
package main

import (
	"os"
	"strconv"

	"github.com/jhoicas/negocio-erp/internal/infrastructure/postgres"
	"github.com/jhoicas/negocio-erp/pkg/config"
	"github.com/jhoicas/negocio-erp/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	dsn := cfg.DB.ConnectionString()

	switch cmd {
	case "up":
		if err := postgres.MigrateUp(dsn); err != nil {
			log.Fatal().Err(err).Msg("migrate up")
		}
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			if steps, err = strconv.Atoi(os.Args[2]); err != nil {
				log.Fatal().Str("steps", os.Args[2]).Msg("pasos inválidos")
			}
		}
		if err := postgres.MigrateDown(dsn, steps); err != nil {
			log.Fatal().Err(err).Msg("migrate down")
		}
	case "version":
	default:
		log.Fatal().Str("cmd", cmd).Msg("comando desconocido: use up, down o version")
	}

	v, dirty, err := postgres.MigrationVersion(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("leer versión")
	}
	log.Info().Uint("version", v).Bool("dirty", dirty).Str("cmd", cmd).Msg("esquema")
}
