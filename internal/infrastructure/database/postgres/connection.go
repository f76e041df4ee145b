// Package postgres persists generated variants in PostgreSQL through a pgx
// connection pool.  The schema is embedded and applied with golang-migrate.
package postgres

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/minorchanges/internal/config"
	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
)

// NewConnectionPool opens a pool for cfg and verifies it with a ping.
func NewConnectionPool(ctx context.Context, cfg config.DatabaseConfig, log logging.Logger) (*pgxpool.Pool, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	poolCfg, err := pgxpool.ParseConfig(ConnString(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBConnectionError, "invalid postgres configuration")
	}
	configurePool(poolCfg, cfg)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDBConnectionError, "failed to create connection pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.CodeDBConnectionError, "database connection failed").
			WithDetailf("%s:%d", cfg.Host, cfg.Port)
	}

	log.Info("Connected to PostgreSQL database",
		logging.String("host", cfg.Host),
		logging.Int("port", cfg.Port),
		logging.String("database", cfg.DBName),
	)
	return pool, nil
}

// ConnString renders cfg as a postgres:// URL, the form RunMigrations
// accepts.
func ConnString(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   cfg.DBName,
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u.RawQuery = "sslmode=" + url.QueryEscape(sslMode)
	return u.String()
}

// configurePool copies the non-zero pool settings of cfg onto poolCfg.
func configurePool(poolCfg *pgxpool.Config, cfg config.DatabaseConfig) {
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}
}

// TxBeginner is satisfied by *pgxpool.Pool and pgx.Tx.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTransaction runs fn inside a transaction.  The transaction is rolled
// back when fn returns an error or panics; a panic is re-raised after the
// rollback.
func WithTransaction(ctx context.Context, db TxBeginner, fn func(tx pgx.Tx, ctx context.Context) error) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CodeDBQueryError, "failed to begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err = fn(tx, ctx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Wrap(err, errors.CodeUnknown, "transaction failed").WithDetail("rollback: " + rbErr.Error())
		}
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.CodeDBQueryError, "failed to commit transaction")
	}
	return nil
}

// Close closes pool if it is non-nil.
func Close(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}

//Personal.AI order the ending
