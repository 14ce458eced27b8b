package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/amora-app/amora/internal/config"
)

// Models lists every table in migration order. Shared with tests so an
// in-memory sqlite database migrates the same schema.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Decision{},
		&Friendship{},
		&ProfileVisit{},
		&Post{},
		&PostCategory{},
		&PostTag{},
		&PostMedia{},
		&Comment{},
		&PostReaction{},
		&PostView{},
		&Follower{},
		&ContentPreference{},
		&Message{},
		&BroadcastMessage{},
		&BroadcastRecipient{},
	}
}

// NewDB initializes the database connection using DSN from config.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DB.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	// AutoMigrate ensures schema is in sync with models.
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}
