package repository

import (
	"context"

	"github.com/packed-go/ticketing-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PassRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, passes []models.Pass) error
	FindByID(ctx context.Context, id uint) (*models.Pass, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Pass, error)
	FindByCode(ctx context.Context, code string) (*models.Pass, error)
	FindByCodeForUpdate(ctx context.Context, tx *gorm.DB, code string) (*models.Pass, error)
	FindFirstAvailableForUpdate(ctx context.Context, tx *gorm.DB, eventID uint) (*models.Pass, error)
	FindByEventID(ctx context.Context, eventID uint, availableOnly bool) ([]models.Pass, error)
	FindByUserID(ctx context.Context, userID uint) ([]models.Pass, error)
	CodeExists(ctx context.Context, tx *gorm.DB, code string) (bool, error)
	Save(ctx context.Context, tx *gorm.DB, pass *models.Pass) error
	GetDB() *gorm.DB
}

type passRepository struct {
	db *gorm.DB
}

func NewPassRepository(db *gorm.DB) PassRepository {
	return &passRepository{db: db}
}

func (r *passRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *passRepository) CreateBatch(ctx context.Context, tx *gorm.DB, passes []models.Pass) error {
	return tx.WithContext(ctx).Create(&passes).Error
}

func (r *passRepository) FindByID(ctx context.Context, id uint) (*models.Pass, error) {
	var pass models.Pass
	if err := r.db.WithContext(ctx).First(&pass, id).Error; err != nil {
		return nil, err
	}
	return &pass, nil
}

func (r *passRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Pass, error) {
	var pass models.Pass
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&pass, id).Error; err != nil {
		return nil, err
	}
	return &pass, nil
}

func (r *passRepository) FindByCode(ctx context.Context, code string) (*models.Pass, error) {
	var pass models.Pass
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&pass).Error; err != nil {
		return nil, err
	}
	return &pass, nil
}

func (r *passRepository) FindByCodeForUpdate(ctx context.Context, tx *gorm.DB, code string) (*models.Pass, error) {
	var pass models.Pass
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&pass).Error; err != nil {
		return nil, err
	}
	return &pass, nil
}

// FindFirstAvailableForUpdate locks the oldest still-available pass of the
// event. SKIP LOCKED keeps concurrent allocations from queueing up on the same
// candidate row.
func (r *passRepository) FindFirstAvailableForUpdate(ctx context.Context, tx *gorm.DB, eventID uint) (*models.Pass, error) {
	var pass models.Pass
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("event_id = ? AND available = ? AND active = ?", eventID, true, true).
		Order("id ASC").
		First(&pass).Error; err != nil {
		return nil, err
	}
	return &pass, nil
}

func (r *passRepository) FindByEventID(ctx context.Context, eventID uint, availableOnly bool) ([]models.Pass, error) {
	q := r.db.WithContext(ctx).Where("event_id = ?", eventID)
	if availableOnly {
		q = q.Where("available = ?", true)
	}
	var passes []models.Pass
	if err := q.Order("id ASC").Find(&passes).Error; err != nil {
		return nil, err
	}
	return passes, nil
}

func (r *passRepository) FindByUserID(ctx context.Context, userID uint) ([]models.Pass, error) {
	var passes []models.Pass
	if err := r.db.WithContext(ctx).
		Where("sold_to_user_id = ?", userID).
		Order("sold_at DESC").
		Find(&passes).Error; err != nil {
		return nil, err
	}
	return passes, nil
}

func (r *passRepository) CodeExists(ctx context.Context, tx *gorm.DB, code string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Pass{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (r *passRepository) Save(ctx context.Context, tx *gorm.DB, pass *models.Pass) error {
	prev := pass.Version
	pass.Version++
	res := tx.WithContext(ctx).
		Model(&models.Pass{}).
		Where("id = ? AND version = ?", pass.ID, prev).
		Select("available", "sold", "sold_to_user_id", "sold_at", "active", "version").
		Updates(pass)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}
