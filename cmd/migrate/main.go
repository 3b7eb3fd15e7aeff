package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/pkg/config"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/pkg/logger"
)

// Aplica las migraciones goose del esquema de almacén.
// Uso: migrate -cmd up|down|status [-dir migrations]
func main() {
	cmd := flag.String("cmd", "up", "comando goose: up|down|status")
	dir := flag.String("dir", "migrations", "directorio de migraciones")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})

	db, err := sql.Open("pgx", cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("abrir conexión a PostgreSQL")
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("dialecto goose")
	}

	ctx := context.Background()
	switch *cmd {
	case "up", "down", "status":
		if err := goose.RunContext(ctx, *cmd, db, *dir); err != nil {
			log.Fatal().Err(err).Str("cmd", *cmd).Msg("migración fallida")
		}
	default:
		fmt.Fprintln(os.Stderr, "comando desconocido:", *cmd)
		os.Exit(1)
	}

	log.Info().Str("cmd", *cmd).Msg("migraciones aplicadas")
}
