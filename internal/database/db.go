package database

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cmms-ng/models/maintenance"
)

// InitDB 初始化数据库连接
func InitDB(dbPath string) (*gorm.DB, error) {
	if dbPath == "" {
		dbPath = "cmms.db"
	}

	// 配置 GORM 日志
	gormLogger := logger.Default.LogMode(logger.Warn)

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %v", err)
	}

	// 获取底层 SQL DB 并设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %v", err)
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移数据库表
	if err := db.AutoMigrate(
		&maintenance.Asset{},
		&maintenance.WorkOrder{},
		&maintenance.PMRunHistory{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	return db, nil
}
