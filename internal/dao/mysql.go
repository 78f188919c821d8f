package dao

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// MysqlRepository MySQL backed Repository
type MysqlRepository struct {
	db *gorm.DB
}

// NewMysqlRepository wraps an open gorm handle.
func NewMysqlRepository(db *gorm.DB) *MysqlRepository {
	return &MysqlRepository{db: db}
}

// Ping checks that a pooled connection is usable.
func (d *MysqlRepository) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB failed: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

var _ Repository = (*MysqlRepository)(nil)
