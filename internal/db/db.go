package db

import (
	"fmt"
	"strings"
	"time"

	"blogicum/internal/config"
	"blogicum/internal/logger"
	"blogicum/internal/models"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open 按配置建立数据库连接
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres", "postgresql":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	logMode := gormlogger.Warn
	if cfg.Debug {
		logMode = gormlogger.Info
	}
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormlogger.Default.LogMode(logMode),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect database failed: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	}
	if cfg.Pool.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	}
	if cfg.Pool.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.Pool.ConnMaxLifetimeSeconds) * time.Second)
	}

	logger.Infow("database_connected", "driver", cfg.Driver)
	return conn, nil
}

// Migrate 自动迁移所有表
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Location{},
		&models.Post{},
		&models.Comment{},
	)
	if err != nil {
		return fmt.Errorf("migrate database failed: %w", err)
	}
	logger.Infow("database_migrated")
	return nil
}

// SeedCategories 首次启动时写入预设分类与地点
func SeedCategories(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Debugw("categories_already_seeded", "count", count)
		return nil
	}

	categories := []models.Category{
		{Slug: "travel", Title: "旅行", Description: "旅途见闻与路线记录", IsPublished: true},
		{Slug: "tech", Title: "技术", Description: "开发、硬件与工具", IsPublished: true},
		{Slug: "life", Title: "生活", Description: "日常随笔", IsPublished: true},
	}
	locations := []models.Location{
		{Name: "北京", IsPublished: true},
		{Name: "上海", IsPublished: true},
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&categories).Error; err != nil {
			return fmt.Errorf("seed categories failed: %w", err)
		}
		if err := tx.Create(&locations).Error; err != nil {
			return fmt.Errorf("seed locations failed: %w", err)
		}
		logger.Infow("categories_seeded", "categories", len(categories), "locations", len(locations))
		return nil
	})
}

// OpenMemory 打开独立的内存 SQLite 并完成迁移，供测试使用
func OpenMemory(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", sanitizeName(name))
	conn, err := Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    dsn,
		Pool:   config.DatabasePoolConfig{MaxOpenConns: 1, MaxIdleConns: 1},
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "blogicum"
	}
	return b.String()
}
