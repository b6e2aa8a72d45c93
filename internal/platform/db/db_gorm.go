package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"shop_backend/internal/config"
	auditentity "shop_backend/internal/feature/audit/domain/entity"
	authadapters "shop_backend/internal/feature/auth/adapters"
	"shop_backend/internal/feature/auth/domain/entity"
)

// OpenDB connects to Postgres with a retry loop and optionally runs the
// schema migrations. It fails fast (log.Fatalf) because the process cannot
// serve anything without a database.
func OpenDB(cfg *config.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port)

	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if cfg.RunMigrations {
		// マイグレーション（User, Session, AuditLog）
		if err := db.AutoMigrate(
			&entity.User{},
			&authadapters.SessionModel{},
			&auditentity.AuditLog{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
