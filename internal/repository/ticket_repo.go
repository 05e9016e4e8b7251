package repository

import (
	"context"

	"github.com/packed-go/ticketing-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TicketRepository interface {
	Create(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error
	FindByID(ctx context.Context, id uint) (*models.Ticket, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Ticket, error)
	FindByPassID(ctx context.Context, passID uint) (*models.Ticket, error)
	FindByUserID(ctx context.Context, userID uint) ([]models.Ticket, error)
	Save(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error
	CountByEventID(ctx context.Context, eventID uint, redeemedOnly bool) (int64, error)
	GetDB() *gorm.DB
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *ticketRepository) Create(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error {
	return tx.WithContext(ctx).Create(ticket).Error
}

func (r *ticketRepository) FindByID(ctx context.Context, id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := r.db.WithContext(ctx).First(&ticket, id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ticket, id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) FindByPassID(ctx context.Context, passID uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := r.db.WithContext(ctx).Where("pass_id = ?", passID).First(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) FindByUserID(ctx context.Context, userID uint) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketRepository) Save(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error {
	prev := ticket.Version
	ticket.Version++
	res := tx.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ? AND version = ?", ticket.ID, prev).
		Select("redeemed", "redeemed_at", "active", "version").
		Updates(ticket)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *ticketRepository) CountByEventID(ctx context.Context, eventID uint, redeemedOnly bool) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Joins("JOIN passes ON passes.id = tickets.pass_id").
		Where("passes.event_id = ?", eventID)
	if redeemedOnly {
		q = q.Where("tickets.redeemed = ?", true)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}
