// Package db opens the backing database and applies embedded migrations.
// Two drivers are supported: postgres (pgx) for a shared deployment and
// sqlite3 for the single-user local mode.
package db

import (
	"context"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

type Config struct {
	Driver string `yaml:"driver" envconfig:"DB_DRIVER" default:"sqlite3"`
	DSN    string `yaml:"dsn" envconfig:"DB_DSN" default:"library.db"`
}

func driverName(driver string) string {
	if driver == "postgres" {
		return "pgx"
	}
	return driver
}

func gooseDialect(driver string) string {
	if driver == "pgx" {
		return "postgres"
	}
	return driver
}

// NewDB connects, pings and migrates.
func NewDB(ctx context.Context, cfg Config, migrations fs.FS) (*sqlx.DB, error) {
	database, err := sqlx.ConnectContext(ctx, driverName(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "connect %s", cfg.Driver)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(gooseDialect(database.DriverName())); err != nil {
		return nil, err
	}
	if err := goose.Up(database.DB, "."); err != nil {
		return nil, errors.Wrap(err, "migrate")
	}
	return database, nil
}
