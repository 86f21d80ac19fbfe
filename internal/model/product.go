package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry orders reference. Catalog management lives
// elsewhere; the workflows here only read products and decrement stock on
// order confirmation.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SupplierID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"index;not null"`
	Description *string
	Unit        string          `gorm:"not null;default:'unit'"` // kg, piece, crate…
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// StockQuantity is mutated only by order confirmation, inside the
	// confirmation transaction.
	StockQuantity decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Active        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Supplier *SupplierProfile `gorm:"foreignKey:SupplierID"`
}

func (Product) TableName() string { return "products" }
