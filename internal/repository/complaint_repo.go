package repository

import (
	"context"

	"scp/internal/dto"
	"scp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplaintRepository defines data access for complaints and their
// append-only note trail. Transitions and their audit notes are written
// through the Tx variants inside one transaction.
type ComplaintRepository interface {
	CreateTx(tx *gorm.DB, c *model.Complaint) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Complaint, error)
	Update(ctx context.Context, c *model.Complaint) error
	UpdateTx(tx *gorm.DB, c *model.Complaint) error
	CreateNoteTx(tx *gorm.DB, n *model.ComplaintNote) error

	// ListNotes returns the trail in chronological order; internal notes
	// are filtered out unless includeInternal is set.
	ListNotes(ctx context.Context, complaintID uuid.UUID, includeInternal bool) ([]model.ComplaintNote, error)

	ListByConsumer(ctx context.Context, consumerID uuid.UUID, filter dto.ComplaintFilter) ([]model.Complaint, int64, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID, filter dto.ComplaintFilter) ([]model.Complaint, int64, error)
	ListAll(ctx context.Context, filter dto.ComplaintFilter) ([]model.Complaint, int64, error)

	DB() *gorm.DB
}

type complaintRepo struct{ db *gorm.DB }

func NewComplaintRepository(db *gorm.DB) ComplaintRepository { return &complaintRepo{db: db} }

func (r *complaintRepo) CreateTx(tx *gorm.DB, c *model.Complaint) error {
	return tx.Create(c).Error
}

func (r *complaintRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Complaint, error) {
	var c model.Complaint
	err := r.db.WithContext(ctx).
		Preload("Consumer").Preload("Supplier").Preload("AssignedTo").
		First(&c, "id = ?", id).Error
	return &c, err
}

func (r *complaintRepo) Update(ctx context.Context, c *model.Complaint) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *complaintRepo) UpdateTx(tx *gorm.DB, c *model.Complaint) error {
	return tx.Save(c).Error
}

func (r *complaintRepo) CreateNoteTx(tx *gorm.DB, n *model.ComplaintNote) error {
	return tx.Create(n).Error
}

func (r *complaintRepo) ListNotes(ctx context.Context, complaintID uuid.UUID, includeInternal bool) ([]model.ComplaintNote, error) {
	var notes []model.ComplaintNote
	q := r.db.WithContext(ctx).Preload("CreatedBy").Where("complaint_id = ?", complaintID)
	if !includeInternal {
		q = q.Where("is_internal = false")
	}
	err := q.Order("created_at ASC").Find(&notes).Error
	return notes, err
}

func (r *complaintRepo) list(ctx context.Context, filter dto.ComplaintFilter, scope func(*gorm.DB) *gorm.DB) ([]model.Complaint, int64, error) {
	var complaints []model.Complaint
	var total int64

	q := scope(r.db.WithContext(ctx).Model(&model.Complaint{}))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Level != "" {
		q = q.Where("escalation_level = ?", filter.Level)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&complaints).Error
	return complaints, total, err
}

func (r *complaintRepo) ListByConsumer(ctx context.Context, consumerID uuid.UUID, filter dto.ComplaintFilter) ([]model.Complaint, int64, error) {
	return r.list(ctx, filter, func(q *gorm.DB) *gorm.DB {
		return q.Where("consumer_id = ?", consumerID)
	})
}

func (r *complaintRepo) ListBySupplier(ctx context.Context, supplierID uuid.UUID, filter dto.ComplaintFilter) ([]model.Complaint, int64, error) {
	return r.list(ctx, filter, func(q *gorm.DB) *gorm.DB {
		return q.Where("supplier_id = ?", supplierID)
	})
}

func (r *complaintRepo) ListAll(ctx context.Context, filter dto.ComplaintFilter) ([]model.Complaint, int64, error) {
	return r.list(ctx, filter, func(q *gorm.DB) *gorm.DB { return q })
}

func (r *complaintRepo) DB() *gorm.DB { return r.db }
