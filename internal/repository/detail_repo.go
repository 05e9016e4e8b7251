package repository

import (
	"context"

	"github.com/packed-go/ticketing-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DetailRepository interface {
	CreateBundle(ctx context.Context, tx *gorm.DB, bundle *models.TicketConsumption) error
	FindBundleByID(ctx context.Context, id uint) (*models.TicketConsumption, error)
	FindByID(ctx context.Context, id uint) (*models.TicketConsumptionDetail, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.TicketConsumptionDetail, error)
	Save(ctx context.Context, tx *gorm.DB, detail *models.TicketConsumptionDetail) error
	GetDB() *gorm.DB
}

type detailRepository struct {
	db *gorm.DB
}

func NewDetailRepository(db *gorm.DB) DetailRepository {
	return &detailRepository{db: db}
}

func (r *detailRepository) GetDB() *gorm.DB {
	return r.db
}

// CreateBundle inserts the TicketConsumption together with all its details in
// one statement chain; gorm cascades the association.
func (r *detailRepository) CreateBundle(ctx context.Context, tx *gorm.DB, bundle *models.TicketConsumption) error {
	return tx.WithContext(ctx).Create(bundle).Error
}

func (r *detailRepository) FindBundleByID(ctx context.Context, id uint) (*models.TicketConsumption, error) {
	var bundle models.TicketConsumption
	if err := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&bundle, id).Error; err != nil {
		return nil, err
	}
	return &bundle, nil
}

func (r *detailRepository) FindByID(ctx context.Context, id uint) (*models.TicketConsumptionDetail, error) {
	var detail models.TicketConsumptionDetail
	if err := r.db.WithContext(ctx).First(&detail, id).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *detailRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.TicketConsumptionDetail, error) {
	var detail models.TicketConsumptionDetail
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&detail, id).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *detailRepository) Save(ctx context.Context, tx *gorm.DB, detail *models.TicketConsumptionDetail) error {
	prev := detail.Version
	detail.Version++
	res := tx.WithContext(ctx).
		Model(&models.TicketConsumptionDetail{}).
		Where("id = ? AND version = ?", detail.ID, prev).
		Select("quantity", "redeem", "active", "version").
		Updates(detail)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}
