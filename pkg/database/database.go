package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sublimes-drive/drive-core/config"
	"github.com/sublimes-drive/drive-core/internal/model"
)

// InitDB 按配置打开数据库连接
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
	return gorm.Open(dialector, &gorm.Config{})
}

// Migrate 建表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.ItemLike{},
		&model.ItemSave{},
		&model.ItemShare{},
		&model.ItemComment{},
		&model.DispatchEvent{},
		&model.FreyaPostState{},
		&model.FreyaRun{},
		&model.FreyaImageAsset{},
		&model.BillingCustomer{},
		&model.Wallet{},
		&model.Order{},
	)
}
