// Command migrate применяет SQL-миграции вне API-сервера.
//
//	migrate up            применить все новые миграции
//	migrate down N        откатить N миграций
//	migrate force V       пометить версию V как чистую (после упавшей миграции)
//	migrate version       вывести текущую версию
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/yourusername/quiz-engine/internal/config"
	"github.com/yourusername/quiz-engine/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate up | down N | force V | version")
		os.Exit(2)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.InitLogger(cfg.Server, cfg.Log)
	defer logger.Sync()
	log := logger.Component("migrate")

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("failed to ping database", zap.Error(err))
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal("failed to create migrate driver", zap.Error(err))
	}
	m, err := migrate.NewWithDatabaseInstance(cfg.Database.MigrationsPath, "postgres", driver)
	if err != nil {
		log.Fatal("failed to create migrator", zap.Error(err))
	}

	if err := run(m, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal("migration command failed", zap.String("command", os.Args[1]), zap.Error(err))
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info("no migrations applied")
	case err != nil:
		log.Warn("failed to read migration version", zap.Error(err))
	default:
		log.Info("migration state", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
}

func run(m *migrate.Migrate, command string, args []string) error {
	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "down":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		if n <= 0 {
			return fmt.Errorf("down: step count must be positive, got %d", n)
		}
		if err := m.Steps(-n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "force":
		v, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Force(v)
	case "version":
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func intArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, errors.New("missing numeric argument")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", args[0], err)
	}
	return n, nil
}
