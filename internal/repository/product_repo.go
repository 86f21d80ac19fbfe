package repository

import (
	"context"

	"scp/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the read/decrement access the order workflow has
// to the catalog. Catalog CRUD is owned elsewhere.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// FindByIDForUpdateTx loads a product with a row-level lock inside tx.
	// Confirmations use it so that concurrent check-then-decrement
	// sequences against the same product serialize.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)

	// DecrementStockTx subtracts qty from stock_quantity inside tx.
	// Callers must have validated availability under the same lock.
	DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty decimal.Decimal) error
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty decimal.Decimal) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty)).Error
}
