package repository

import (
	"context"

	"github.com/packed-go/ticketing-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConsumptionRepository reads the local catalog read model and applies upserts
// coming in from the catalog sync consumer.
type ConsumptionRepository interface {
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Consumption, error)
	Upsert(ctx context.Context, consumption *models.Consumption) error
}

type consumptionRepository struct {
	db *gorm.DB
}

func NewConsumptionRepository(db *gorm.DB) ConsumptionRepository {
	return &consumptionRepository{db: db}
}

func (r *consumptionRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Consumption, error) {
	if tx == nil {
		tx = r.db
	}
	var consumption models.Consumption
	if err := tx.WithContext(ctx).First(&consumption, id).Error; err != nil {
		return nil, err
	}
	return &consumption, nil
}

func (r *consumptionRepository) Upsert(ctx context.Context, consumption *models.Consumption) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "price", "active", "updated_at"}),
	}).Create(consumption).Error
}
