package db

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/config"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

// Client owns the pooled GORM connection shared by every repository.
type Client struct {
	conn *gorm.DB
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// New opens the Postgres pool described by cfg and verifies it with a ping.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	// Extended protocol keeps CALL ... INOUT parameters and to_date() bindings typed.
	conn, err := gorm.Open(postgres.New(postgres.Config{DSN: cfg.DSN}), &gorm.Config{
		Logger:                 newQueryLogger(logg, cfg.SlowQuery),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	configurePool(sqlDB, cfg)

	client := &Client{conn: conn}
	if err := client.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "max_open_conns", cfg.MaxOpenConns), "db.connected")
	}
	return client, nil
}

// Wrap adapts a connection opened elsewhere, e.g. an in-memory sqlite
// database in tests.
func Wrap(conn *gorm.DB) *Client {
	return &Client{conn: conn}
}

func configurePool(sqlDB *sql.DB, cfg config.DBConfig) {
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

func (c *Client) DB() *gorm.DB {
	return c.conn
}

func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Stats reports pool usage for the readiness check.
func (c *Client) Stats() (sql.DBStats, error) {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return sql.DBStats{}, err
	}
	return sqlDB.Stats(), nil
}

// WithTx runs fn in a transaction that commits only when fn returns nil.
// A panic inside fn rolls back and is re-raised.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	tx := c.conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin tx: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
