package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type MysqlConfig struct {
	Username     string
	Password     string
	Host         string
	Port         string
	DBName       string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN builds a go-sql-driver DSN. With withDB false it connects to the server
// without selecting a schema, which is needed before the schema exists.
func (c MysqlConfig) DSN(withDB bool) string {
	cfg := mysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, c.Port)
	if withDB {
		cfg.DBName = c.DBName
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	// session time zone for CURRENT_TIMESTAMP defaults
	cfg.Params = map[string]string{"charset": "utf8mb4", "time_zone": "'+00:00'"}
	return cfg.FormatDSN()
}

const feedbackTableDDL = `CREATE TABLE IF NOT EXISTS feedbacks (
  id INT AUTO_INCREMENT PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  email VARCHAR(255),
  message TEXT NOT NULL,
  rating INT,
  createdAt DATETIME DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB`

// Provision makes sure the database and the feedbacks table exist and returns a
// pooled handle on the database. Callers must not serve traffic if it fails.
func Provision(ctx context.Context, cfg MysqlConfig) (*gorm.DB, error) {
	if err := EnsureDatabase(ctx, cfg); err != nil {
		return nil, err
	}
	gdb, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, gdb); err != nil {
		if sqlDB, e := gdb.DB(); e == nil {
			sqlDB.Close()
		}
		return nil, err
	}
	return gdb, nil
}

// EnsureDatabase creates cfg.DBName on the server if it is missing.
func EnsureDatabase(ctx context.Context, cfg MysqlConfig) error {
	conn, err := sql.Open("mysql", cfg.DSN(false))
	if err != nil {
		return fmt.Errorf("open server connection failed: %w", err)
	}
	defer conn.Close()
	return createDatabase(ctx, conn, cfg.DBName)
}

func createDatabase(ctx context.Context, conn *sql.DB, name string) error {
	if _, err := conn.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+quoteIdent(name)); err != nil {
		return fmt.Errorf("create database %q failed: %w", name, err)
	}
	slog.Info("database ready", "name", name)
	return nil
}

// Open opens the gorm pool on cfg.DBName and applies pool limits.
func Open(cfg MysqlConfig) (*gorm.DB, error) {
	gdb, err := gorm.Open(gormmysql.Open(cfg.DSN(true)), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect database failed: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB failed: %w", err)
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	return gdb, nil
}

// EnsureSchema creates the feedbacks table if it is missing.
func EnsureSchema(ctx context.Context, gdb *gorm.DB) error {
	if err := gdb.WithContext(ctx).Exec(feedbackTableDDL).Error; err != nil {
		return fmt.Errorf("create feedbacks table failed: %w", err)
	}
	slog.Info("feedbacks table ready")
	return nil
}

// WatchHealth pings the pool every interval until ctx is done.
func WatchHealth(ctx context.Context, gdb *gorm.DB, interval time.Duration) {
	sqlDB, err := gdb.DB()
	if err != nil {
		slog.Error("health watch disabled", "error", err)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sqlDB.PingContext(ctx); err != nil && ctx.Err() == nil {
				slog.Warn("database connection health check failed", "error", err)
			}
		}
	}
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
