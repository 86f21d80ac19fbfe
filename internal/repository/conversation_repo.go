package repository

import (
	"context"
	"time"

	"scp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationRepository defines data access for chat threads and messages.
type ConversationRepository interface {
	Create(ctx context.Context, c *model.Conversation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Conversation, error)

	// CountByAssignedStaff feeds the assignment engine's secondary load key.
	CountByAssignedStaff(ctx context.Context, staffID uuid.UUID) (int64, error)

	CreateMessage(ctx context.Context, m *model.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]model.Message, error)
	// Touch bumps updated_at; called on every message send.
	Touch(ctx context.Context, id uuid.UUID) error

	ListByConsumer(ctx context.Context, consumerID uuid.UUID) ([]model.Conversation, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]model.Conversation, error)
	ListByAssignedStaff(ctx context.Context, staffID uuid.UUID) ([]model.Conversation, error)
	ListAll(ctx context.Context) ([]model.Conversation, error)
}

type conversationRepo struct{ db *gorm.DB }

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) Create(ctx context.Context, c *model.Conversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *conversationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Conversation, error) {
	var c model.Conversation
	err := r.db.WithContext(ctx).
		Preload("AssignedStaff").
		First(&c, "id = ?", id).Error
	return &c, err
}

func (r *conversationRepo) CountByAssignedStaff(ctx context.Context, staffID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("assigned_staff_id = ?", staffID).
		Count(&n).Error
	return n, err
}

func (r *conversationRepo) CreateMessage(ctx context.Context, m *model.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *conversationRepo) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]model.Message, error) {
	var msgs []model.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sent_at ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *conversationRepo) Touch(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}

func (r *conversationRepo) ListByConsumer(ctx context.Context, consumerID uuid.UUID) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.db.WithContext(ctx).
		Where("consumer_id = ?", consumerID).
		Order("updated_at DESC").
		Find(&convs).Error
	return convs, err
}

func (r *conversationRepo) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("updated_at DESC").
		Find(&convs).Error
	return convs, err
}

func (r *conversationRepo) ListByAssignedStaff(ctx context.Context, staffID uuid.UUID) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.db.WithContext(ctx).
		Where("assigned_staff_id = ?", staffID).
		Order("updated_at DESC").
		Find(&convs).Error
	return convs, err
}

func (r *conversationRepo) ListAll(ctx context.Context) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&convs).Error
	return convs, err
}
