package postgres

import (
	"log"

	"github.com/LavaJover/shvark-ticket-service/internal/config"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MustInitDB opens the ticket database and brings its schema up to date,
// from SQL migrations when a path is configured and by AutoMigrate otherwise.
func MustInitDB(cfg *config.TicketConfig) *gorm.DB {
	dsn := cfg.TicketDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	if cfg.TicketDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.TicketDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v\n", err)
		}
		return db
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("failed to migrate db: %v\n", err)
	}

	return db
}
