package db

import (
	"fmt"
	"log"

	"planbench/internal/config"
	"planbench/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 按配置打开实验台账库并自动迁移；未启用时返回 nil, nil
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		path := cfg.DSN
		if path == "" {
			path = cfg.Path
		}
		dialector = sqlite.Open(path)
	default:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
				cfg.User,
				cfg.Password,
				cfg.Host,
				cfg.Port,
				cfg.DBName,
				cfg.Charset,
			)
		}
		dialector = mysql.Open(dsn)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 自动迁移
	if err := conn.AutoMigrate(
		&model.ExperimentRun{},
		&model.Attempt{},
	); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	log.Printf("数据库初始化成功 (driver=%s)", cfg.Driver)
	return conn, nil
}
