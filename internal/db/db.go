package db

import (
	"context"
	"time"

	"colabora/internal/config"
	"colabora/internal/models"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured database, retrying while it comes up,
// and runs the schema migration.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	var conn *gorm.DB
	op := func() error {
		var err error
		conn, err = dial(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("database not reachable, retrying")
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 8), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, errors.Wrap(err, "failed opening a DB connection")
	}
	log.Info().Bool("sqlite", cfg.UsesSQLite()).Msg("database connection established")

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	log.Info().Msg("database migration completed")

	if cfg.SeedProposals {
		n, err := SeedProposals(conn)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			log.Info().Int("count", n).Msg("initial proposals created")
		}
	}
	return conn, nil
}

func dial(cfg *config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}

	if cfg.UsesSQLite() {
		conn, err := gorm.Open(sqlite.Open(cfg.SQLitePath()), gcfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		// SQLite allows a single writer; serialize through one connection.
		sqlDB.SetMaxOpenConns(1)
		return conn, nil
	}

	conn, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gcfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate creates or updates the tables.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Proposal{},
		&models.Vote{},
		&models.Comment{},
	)
	return errors.Wrap(err, "failed to migrate database")
}
