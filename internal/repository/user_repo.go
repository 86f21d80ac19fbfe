package repository

import (
	"context"

	"scp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines data access for accounts and consumer profiles.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, u *model.User) error

	CreateConsumer(ctx context.Context, p *model.ConsumerProfile) error
	FindConsumerByID(ctx context.Context, id uuid.UUID) (*model.ConsumerProfile, error)
	FindConsumerByUserID(ctx context.Context, userID uuid.UUID) (*model.ConsumerProfile, error)
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("lower(email) = lower(?)", email).First(&u).Error
	return &u, err
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("lower(username) = lower(?)", username).First(&u).Error
	return &u, err
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *userRepo) CreateConsumer(ctx context.Context, p *model.ConsumerProfile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *userRepo) FindConsumerByID(ctx context.Context, id uuid.UUID) (*model.ConsumerProfile, error) {
	var p model.ConsumerProfile
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *userRepo) FindConsumerByUserID(ctx context.Context, userID uuid.UUID) (*model.ConsumerProfile, error) {
	var p model.ConsumerProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	return &p, err
}
