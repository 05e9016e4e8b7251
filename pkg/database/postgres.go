package database

import (
	"log"

	"github.com/packed-go/ticketing-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Event{},
		&models.Pass{},
		&models.Ticket{},
		&models.TicketConsumption{},
		&models.TicketConsumptionDetail{},
		&models.Consumption{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// The counters can never drift negative even if application code regresses.
	db.Exec(`ALTER TABLE events DROP CONSTRAINT IF EXISTS chk_available_passes`)
	db.Exec(`ALTER TABLE events ADD CONSTRAINT chk_available_passes CHECK (available_passes >= 0)`)
	db.Exec(`ALTER TABLE ticket_consumption_details DROP CONSTRAINT IF EXISTS chk_detail_quantity`)
	db.Exec(`ALTER TABLE ticket_consumption_details ADD CONSTRAINT chk_detail_quantity CHECK (quantity >= 0)`)

	// Allocation scans for the oldest available pass per event.
	db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_passes_event_available
		ON passes (event_id, id)
		WHERE available = true
	`)

	return db
}
