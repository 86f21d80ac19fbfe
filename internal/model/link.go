package model

import (
	"time"

	"github.com/google/uuid"
)

// Link status values. pending is the only non-terminal state: accepted,
// rejected, blocked and cancelled have no outgoing transitions.
const (
	LinkStatusPending   = "pending"
	LinkStatusAccepted  = "accepted"
	LinkStatusRejected  = "rejected"
	LinkStatusBlocked   = "blocked"
	LinkStatusCancelled = "cancelled"
)

// ConsumerSupplierLink is the approval relationship between a consumer and a
// supplier. At most one link exists per (consumer, supplier) pair; a rejected
// link counts as history and does not block a fresh request.
type ConsumerSupplierLink struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConsumerID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_consumer_supplier"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_consumer_supplier"`
	Status     string    `gorm:"type:varchar(20);not null;default:'pending'"`

	RequestedAt  time.Time `gorm:"autoCreateTime"`
	ApprovedAt   *time.Time
	ApprovedByID *uuid.UUID `gorm:"type:uuid"`
	// AssignedSalesRepID is set best-effort on approval; nil when the
	// supplier has no sales staff. Only ever set while status = accepted.
	AssignedSalesRepID *uuid.UUID `gorm:"type:uuid;index"`
	Notes              *string

	Consumer         *ConsumerProfile `gorm:"foreignKey:ConsumerID"`
	Supplier         *SupplierProfile `gorm:"foreignKey:SupplierID"`
	ApprovedBy       *User            `gorm:"foreignKey:ApprovedByID"`
	AssignedSalesRep *SupplierStaff   `gorm:"foreignKey:AssignedSalesRepID"`
}

func (ConsumerSupplierLink) TableName() string { return "consumer_supplier_links" }

// Terminal reports whether the link can still transition.
func (l *ConsumerSupplierLink) Terminal() bool { return l.Status != LinkStatusPending }

// Reusable reports whether a fresh request may recycle this row. The
// (consumer, supplier) pair is unique, so re-requesting after a rejection or
// cancellation resets the existing row instead of inserting a duplicate.
func (l *ConsumerSupplierLink) Reusable() bool {
	return l.Status == LinkStatusRejected || l.Status == LinkStatusCancelled
}

// LinkStatusHistory is the append-only audit trail for link transitions.
// One row per transition, including creation (old_status = "").
type LinkStatusHistory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LinkID      uuid.UUID `gorm:"type:uuid;not null;index"`
	OldStatus   string    `gorm:"type:varchar(20)"`
	NewStatus   string    `gorm:"type:varchar(20);not null"`
	ChangedByID *uuid.UUID `gorm:"type:uuid"`
	ChangedAt   time.Time  `gorm:"autoCreateTime"`

	Link      *ConsumerSupplierLink `gorm:"foreignKey:LinkID"`
	ChangedBy *User                 `gorm:"foreignKey:ChangedByID"`
}

func (LinkStatusHistory) TableName() string { return "link_status_history" }
