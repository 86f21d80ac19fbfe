package repository

import (
	"context"
	"errors"

	"scp/internal/dto"
	"scp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrStaleStatus is returned by guarded status updates when the row no longer
// holds the status the caller read. Services map it to a Conflict.
var ErrStaleStatus = errors.New("status changed concurrently")

// OrderRepository defines data access for orders, items and the status
// history. Tx variants run inside a caller-opened transaction.
type OrderRepository interface {
	CreateTx(tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// UpdateStatusTx flips from → to, guarded on the row still being in
	// `from`. Returns ErrStaleStatus when another request got there first.
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to string) error
	CreateHistoryTx(tx *gorm.DB, h *model.OrderStatusHistory) error

	ListByConsumer(ctx context.Context, consumerID uuid.UUID, filter dto.OrderFilter) ([]model.Order, int64, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID, filter dto.OrderFilter) ([]model.Order, int64, error)
	ListAll(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) CreateTx(tx *gorm.DB, o *model.Order) error {
	return tx.Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Items.Product").
		Preload("Consumer").Preload("Supplier").
		First(&o, "id = ?", id).Error
	return &o, err
}

func (r *orderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to string) error {
	res := tx.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (r *orderRepo) CreateHistoryTx(tx *gorm.DB, h *model.OrderStatusHistory) error {
	return tx.Create(h).Error
}

func (r *orderRepo) list(ctx context.Context, filter dto.OrderFilter, scope func(*gorm.DB) *gorm.DB) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	q := scope(r.db.WithContext(ctx).Model(&model.Order{}))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items").Preload("Items.Product").
		Order("created_at DESC").
		Limit(filter.Limit).Offset(offset).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) ListByConsumer(ctx context.Context, consumerID uuid.UUID, filter dto.OrderFilter) ([]model.Order, int64, error) {
	return r.list(ctx, filter, func(q *gorm.DB) *gorm.DB {
		return q.Where("consumer_id = ?", consumerID)
	})
}

func (r *orderRepo) ListBySupplier(ctx context.Context, supplierID uuid.UUID, filter dto.OrderFilter) ([]model.Order, int64, error) {
	return r.list(ctx, filter, func(q *gorm.DB) *gorm.DB {
		return q.Where("supplier_id = ?", supplierID)
	})
}

func (r *orderRepo) ListAll(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	return r.list(ctx, filter, func(q *gorm.DB) *gorm.DB { return q })
}

func (r *orderRepo) DB() *gorm.DB { return r.db }
