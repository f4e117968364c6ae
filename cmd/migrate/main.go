// migrate aplica o revierte las migraciones de db/migrations.
//
// Uso: go run ./cmd/migrate [up|down|steps N|version|force V]
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/jhoicas/Impuestos-api/pkg/config"
	"github.com/jhoicas/Impuestos-api/pkg/logger"
)

const usage = "Uso: migrate [up|down|steps N|version|force V]"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	m, err := migrate.New("file://db/migrations", cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("crear instancia de migrate")
	}
	defer m.Close()

	switch cmd := os.Args[1]; cmd {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("migración up")
		}
		log.Info().Msg("migraciones aplicadas")

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("migración down")
		}
		log.Info().Msg("migraciones revertidas")

	case "steps":
		n := intArg(log)
		if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("migración steps")
		}
		log.Info().Int("steps", n).Msg("pasos de migración aplicados")

	case "force":
		v := intArg(log)
		if err := m.Force(v); err != nil {
			log.Fatal().Err(err).Msg("forzar versión")
		}
		log.Info().Int("version", v).Msg("versión forzada")

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal().Err(err).Msg("obtener versión")
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)

	default:
		fmt.Printf("comando desconocido: %s\n", cmd)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func intArg(log *logger.Logger) int {
	if len(os.Args) < 3 {
		log.Fatal().Msg(os.Args[1] + " requiere un argumento numérico")
	}
	n, err := strconv.Atoi(os.Args[2])
	if err != nil {
		log.Fatal().Err(err).Msg("argumento inválido")
	}
	return n
}
