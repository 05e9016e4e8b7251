//go:build integration

package integration

import (
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/packed-go/ticketing-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5434"),
		getEnv("TEST_DB_USER", "postgres"),
		getEnv("TEST_DB_PASSWORD", "postgres"),
		getEnv("TEST_DB_NAME", "ticketing_test_db"),
	)

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to test database: %v", err)
	}

	// Drop and recreate tables for clean state
	dropTables()

	if err := testDB.AutoMigrate(
		&models.Event{},
		&models.Pass{},
		&models.Ticket{},
		&models.TicketConsumption{},
		&models.TicketConsumptionDetail{},
		&models.Consumption{},
	); err != nil {
		log.Fatalf("failed to auto-migrate test database: %v", err)
	}

	testDB.Exec(`
		CREATE INDEX IF NOT EXISTS idx_passes_event_available
		ON passes (event_id, id)
		WHERE available = true
	`)

	code := m.Run()

	dropTables()
	os.Exit(code)
}

func dropTables() {
	testDB.Exec("DROP TABLE IF EXISTS ticket_consumption_details")
	testDB.Exec("DROP TABLE IF EXISTS tickets")
	testDB.Exec("DROP TABLE IF EXISTS ticket_consumptions")
	testDB.Exec("DROP TABLE IF EXISTS passes")
	testDB.Exec("DROP TABLE IF EXISTS consumptions")
	testDB.Exec("DROP TABLE IF EXISTS events")
}

func cleanTables() {
	testDB.Exec("DELETE FROM ticket_consumption_details")
	testDB.Exec("DELETE FROM tickets")
	testDB.Exec("DELETE FROM ticket_consumptions")
	testDB.Exec("DELETE FROM passes")
	testDB.Exec("DELETE FROM consumptions")
	testDB.Exec("DELETE FROM events")
	testDB.Exec("ALTER SEQUENCE IF EXISTS events_id_seq RESTART WITH 1")
	testDB.Exec("ALTER SEQUENCE IF EXISTS passes_id_seq RESTART WITH 1")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
