package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/opsboard/backend/internal/infrastructure/config"
	"github.com/opsboard/backend/internal/infrastructure/logger"
	"github.com/opsboard/backend/internal/infrastructure/migration"
	"github.com/opsboard/backend/internal/infrastructure/persistence"
	"github.com/opsboard/backend/internal/infrastructure/seed"
	"github.com/opsboard/backend/migrations"
)

func main() {
	var (
		migrationsDir string
		logLevel      string
		seedFile      string
		overwrite     bool
	)

	flag.StringVar(&migrationsDir, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&seedFile, "file", "", "Seed file for the seed command (default: seed.file from config)")
	flag.BoolVar(&overwrite, "overwrite", false, "Seed: reset existing balances and users to the seed values")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	var source fs.FS = migrations.FS
	if migrationsDir != "" {
		source = os.DirFS(migrationsDir)
	}

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("driver", cfg.Database.Driver))

	// Commands that don't need a database connection
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name>")
		}
		dir := migrationsDir
		if dir == "" {
			dir = "migrations"
		}
		up, err := migration.Create(dir, args[1])
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created successfully", zap.String("up_file", up))
		return

	case "list":
		list, err := migration.List(source)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		if len(list) == 0 {
			log.Info("No migrations found")
			return
		}
		log.Info("Available migrations", zap.Int("count", len(list)))
		for _, m := range list {
			down := ""
			if !m.HasDown {
				down = " (no down)"
			}
			fmt.Printf("  - %06d %s%s\n", m.Version, m.Name, down)
		}
		return

	case "seed":
		if seedFile == "" {
			seedFile = cfg.Seed.File
		}
		if err := runSeed(cfg, seedFile, overwrite, log); err != nil {
			log.Fatal("Seed failed", zap.Error(err))
		}
		return
	}

	if cfg.Database.Driver == "sqlite" {
		if command != "up" {
			log.Fatal("SQLite databases only support 'up' (schema is created from the models)")
		}
		db, err := persistence.NewDatabase(&cfg.Database, nil)
		if err != nil {
			log.Fatal("Failed to open database", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
		if err := db.AutoMigrate(context.Background()); err != nil {
			log.Fatal("Auto-migrate failed", zap.Error(err))
		}
		log.Info("SQLite schema up to date", zap.String("path", cfg.Database.Path))
		return
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, source, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}

	case "down":
		if err := m.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}

	case "step":
		if len(args) < 2 {
			log.Fatal("Step count required. Usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		if err := m.Steps(n); err != nil {
			log.Fatal("Migration step failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to get version", zap.Error(err))
		}
		if version == 0 {
			log.Info("No migrations applied")
		} else {
			log.Info("Current migration version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}

	case "force":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		log.Warn("Forcing migration version - use with caution!")
		if err := m.Force(version); err != nil {
			log.Fatal("Force version failed", zap.Error(err))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// runSeed validates the seed file and writes it through the repositories
func runSeed(cfg *config.Config, path string, overwrite bool, log *zap.Logger) error {
	file, err := seed.LoadFile(path)
	if err != nil {
		return err
	}
	bundle, err := file.Build(cfg.Location.DefaultRootID, time.Now())
	if err != nil {
		return fmt.Errorf("invalid seed file %s: %w", path, err)
	}

	db, err := persistence.NewDatabase(&cfg.Database, nil)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	if db.Driver() == "sqlite" {
		if err := db.AutoMigrate(ctx); err != nil {
			return err
		}
	}

	return seed.Apply(ctx, bundle, seed.Repositories{
		Locations: persistence.NewGormLocationRepository(db.DB),
		Items:     persistence.NewGormItemRepository(db.DB),
		Inventory: persistence.NewGormInventoryRepository(db.DB),
		Users:     persistence.NewGormUserRepository(db.DB),
	}, seed.Options{Overwrite: overwrite}, log)
}

func printUsage() {
	fmt.Println(`opsboard database tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  version               Show current migration version
  force <version>       Force set migration version (use with caution)
  create <name>         Create a new migration file pair
  list                  List available migrations
  seed                  Load locations, items, stock and users from the seed file

Flags:
  -path string          Read migrations from a directory instead of the embedded set
  -log-level string     Log level: debug, info, warn, error (default: info)
  -file string          Seed file (default: seed.file from config)
  -overwrite            Seed: reset existing balances and users

Environment Variables:
  OPS_DATABASE_HOST, OPS_DATABASE_PORT, OPS_DATABASE_USER, OPS_DATABASE_PASSWORD, OPS_DATABASE_DBNAME

Examples:
  # Apply all pending migrations
  migrate up

  # Roll back the last migration
  migrate step -1

  # Seed a fresh database
  migrate seed`)
}
