package repository

import (
	"context"

	"scp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LinkRepository defines data access for consumer–supplier links and their
// status audit trail. Writes are Tx variants so services can commit a status
// flip and its history row together.
type LinkRepository interface {
	CreateTx(tx *gorm.DB, l *model.ConsumerSupplierLink) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ConsumerSupplierLink, error)
	// FindByPair returns the link for (consumer, supplier) regardless of
	// status, or gorm.ErrRecordNotFound.
	FindByPair(ctx context.Context, consumerID, supplierID uuid.UUID) (*model.ConsumerSupplierLink, error)
	// FindAcceptedPair resolves only accepted links — the gate used by
	// order and complaint creation.
	FindAcceptedPair(ctx context.Context, consumerID, supplierID uuid.UUID) (*model.ConsumerSupplierLink, error)
	UpdateTx(tx *gorm.DB, l *model.ConsumerSupplierLink) error

	// CountByAssignedRep feeds the assignment engine's primary load key.
	CountByAssignedRep(ctx context.Context, staffID uuid.UUID) (int64, error)

	CreateHistoryTx(tx *gorm.DB, h *model.LinkStatusHistory) error

	ListByConsumer(ctx context.Context, consumerID uuid.UUID) ([]model.ConsumerSupplierLink, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]model.ConsumerSupplierLink, error)
	ListAll(ctx context.Context) ([]model.ConsumerSupplierLink, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type linkRepo struct{ db *gorm.DB }

func NewLinkRepository(db *gorm.DB) LinkRepository { return &linkRepo{db: db} }

func (r *linkRepo) CreateTx(tx *gorm.DB, l *model.ConsumerSupplierLink) error {
	return tx.Create(l).Error
}

func (r *linkRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ConsumerSupplierLink, error) {
	var l model.ConsumerSupplierLink
	err := r.db.WithContext(ctx).
		Preload("Consumer").Preload("Supplier").
		First(&l, "id = ?", id).Error
	return &l, err
}

func (r *linkRepo) FindByPair(ctx context.Context, consumerID, supplierID uuid.UUID) (*model.ConsumerSupplierLink, error) {
	var l model.ConsumerSupplierLink
	err := r.db.WithContext(ctx).
		Where("consumer_id = ? AND supplier_id = ?", consumerID, supplierID).
		First(&l).Error
	return &l, err
}

func (r *linkRepo) FindAcceptedPair(ctx context.Context, consumerID, supplierID uuid.UUID) (*model.ConsumerSupplierLink, error) {
	var l model.ConsumerSupplierLink
	err := r.db.WithContext(ctx).
		Where("consumer_id = ? AND supplier_id = ? AND status = ?",
			consumerID, supplierID, model.LinkStatusAccepted).
		First(&l).Error
	return &l, err
}

func (r *linkRepo) UpdateTx(tx *gorm.DB, l *model.ConsumerSupplierLink) error {
	return tx.Save(l).Error
}

func (r *linkRepo) CountByAssignedRep(ctx context.Context, staffID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ConsumerSupplierLink{}).
		Where("assigned_sales_rep_id = ?", staffID).
		Count(&n).Error
	return n, err
}

func (r *linkRepo) CreateHistoryTx(tx *gorm.DB, h *model.LinkStatusHistory) error {
	return tx.Create(h).Error
}

func (r *linkRepo) ListByConsumer(ctx context.Context, consumerID uuid.UUID) ([]model.ConsumerSupplierLink, error) {
	var links []model.ConsumerSupplierLink
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Where("consumer_id = ?", consumerID).
		Order("requested_at DESC").
		Find(&links).Error
	return links, err
}

func (r *linkRepo) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]model.ConsumerSupplierLink, error) {
	var links []model.ConsumerSupplierLink
	err := r.db.WithContext(ctx).
		Preload("Consumer").
		Where("supplier_id = ?", supplierID).
		Order("requested_at DESC").
		Find(&links).Error
	return links, err
}

func (r *linkRepo) ListAll(ctx context.Context) ([]model.ConsumerSupplierLink, error) {
	var links []model.ConsumerSupplierLink
	err := r.db.WithContext(ctx).
		Preload("Consumer").Preload("Supplier").
		Order("requested_at DESC").
		Find(&links).Error
	return links, err
}

func (r *linkRepo) DB() *gorm.DB { return r.db }
