package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order status values. pending → {confirmed, rejected, cancelled};
// confirmed → in_delivery → completed. draft exists for saved carts and is
// not reachable through the fulfillment operations.
const (
	OrderStatusDraft      = "draft"
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusRejected   = "rejected"
	OrderStatusInDelivery = "in_delivery"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Order is a purchase from one consumer to one supplier.
// TotalAmount = Σ item.LineTotal, computed once at creation and never
// implicitly recomputed afterwards.
type Order struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConsumerID uuid.UUID `gorm:"type:uuid;not null;index"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status     string    `gorm:"type:varchar(20);not null;default:'pending'"`

	TotalAmount           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	RequestedDeliveryDate *time.Time
	DeliveryAddress       string
	Notes                 string

	CreatedAt time.Time
	UpdatedAt time.Time

	Consumer *ConsumerProfile `gorm:"foreignKey:ConsumerID"`
	Supplier *SupplierProfile `gorm:"foreignKey:SupplierID"`
	Items    []OrderItem      `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is one order line. Prices are captured at order time and the
// line is immutable after creation.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`

	Quantity  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"` // quantity × unit_price
	Remark    string

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (OrderItem) TableName() string { return "order_items" }

// OrderStatusHistory is the append-only transition log. One row per
// transition, including the creation event (old_status = "").
type OrderStatusHistory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	OldStatus   string    `gorm:"type:varchar(20)"`
	NewStatus   string    `gorm:"type:varchar(20);not null"`
	ChangedByID *uuid.UUID `gorm:"type:uuid"`
	Comment     string
	ChangedAt   time.Time `gorm:"autoCreateTime"`

	Order     *Order `gorm:"foreignKey:OrderID"`
	ChangedBy *User  `gorm:"foreignKey:ChangedByID"`
}

func (OrderStatusHistory) TableName() string { return "order_status_history" }
