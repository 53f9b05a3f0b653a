package main

import (
	"flag"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/Skotchmaster/shopdb/internal/config"
)

func main() {
	var (
		path  string
		down  bool
		steps int
	)
	flag.StringVar(&path, "path", "", "directory with migration files (defaults to MIGRATIONS_PATH)")
	flag.BoolVar(&down, "down", false, "roll migrations back instead of applying them")
	flag.IntVar(&steps, "steps", 0, "number of migrations to apply or roll back; 0 means all")
	flag.Parse()

	if err := run(path, down, steps); err != nil {
		log.Fatalf("migrator: %v", err)
	}
}

func run(path string, down bool, steps int) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	if path == "" {
		path = cfg.MigrationsPath
	}

	m, err := migrate.New("file://"+path, cfg.Database.DSN())
	if err != nil {
		return errors.Wrap(err, "create migrate instance")
	}
	defer m.Close()

	switch {
	case steps != 0 && down:
		err = m.Steps(-steps)
	case steps != 0:
		err = m.Steps(steps)
	case down:
		err = m.Down()
	default:
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("no migrations to apply")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "migrate")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return errors.Wrap(err, "read version")
	}
	log.Printf("migrations applied, version=%d dirty=%t", version, dirty)
	return nil
}
