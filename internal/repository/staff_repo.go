package repository

import (
	"context"

	"scp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StaffRepository defines data access for supplier staff and supplier
// profiles.
type StaffRepository interface {
	Create(ctx context.Context, s *model.SupplierStaff) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SupplierStaff, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.SupplierStaff, error)
	FindByUserAndSupplier(ctx context.Context, userID, supplierID uuid.UUID) (*model.SupplierStaff, error)
	ListBySupplierAndRole(ctx context.Context, supplierID uuid.UUID, role model.StaffRole) ([]model.SupplierStaff, error)

	CreateSupplier(ctx context.Context, p *model.SupplierProfile) error
	FindSupplierByID(ctx context.Context, id uuid.UUID) (*model.SupplierProfile, error)
	ListVerifiedSuppliers(ctx context.Context) ([]model.SupplierProfile, error)
}

type staffRepo struct{ db *gorm.DB }

func NewStaffRepository(db *gorm.DB) StaffRepository { return &staffRepo{db: db} }

func (r *staffRepo) Create(ctx context.Context, s *model.SupplierStaff) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *staffRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SupplierStaff, error) {
	var s model.SupplierStaff
	err := r.db.WithContext(ctx).Preload("User").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *staffRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.SupplierStaff, error) {
	var s model.SupplierStaff
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	return &s, err
}

func (r *staffRepo) FindByUserAndSupplier(ctx context.Context, userID, supplierID uuid.UUID) (*model.SupplierStaff, error) {
	var s model.SupplierStaff
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND supplier_id = ?", userID, supplierID).
		First(&s).Error
	return &s, err
}

func (r *staffRepo) ListBySupplierAndRole(ctx context.Context, supplierID uuid.UUID, role model.StaffRole) ([]model.SupplierStaff, error) {
	var staff []model.SupplierStaff
	err := r.db.WithContext(ctx).Preload("User").
		Where("supplier_id = ? AND role = ?", supplierID, role).
		Order("id ASC").
		Find(&staff).Error
	return staff, err
}

func (r *staffRepo) CreateSupplier(ctx context.Context, p *model.SupplierProfile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *staffRepo) FindSupplierByID(ctx context.Context, id uuid.UUID) (*model.SupplierProfile, error) {
	var p model.SupplierProfile
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *staffRepo) ListVerifiedSuppliers(ctx context.Context) ([]model.SupplierProfile, error) {
	var suppliers []model.SupplierProfile
	err := r.db.WithContext(ctx).
		Where("is_verified = true").
		Order("company_name ASC").
		Find(&suppliers).Error
	return suppliers, err
}
