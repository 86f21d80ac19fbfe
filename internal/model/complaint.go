package model

import (
	"time"

	"github.com/google/uuid"
)

// Complaint status values. Status and escalation level are orthogonal: a
// complaint can be in_progress at any level. closed is terminal; resolved
// may only move to closed.
const (
	ComplaintStatusOpen       = "open"
	ComplaintStatusInProgress = "in_progress"
	ComplaintStatusResolved   = "resolved"
	ComplaintStatusClosed     = "closed"
)

// Complaint severity and type vocabularies.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

const (
	ComplaintTypeProduct  = "product"
	ComplaintTypeDelivery = "delivery"
	ComplaintTypeBilling  = "billing"
	ComplaintTypeService  = "service"
	ComplaintTypeOther    = "other"
)

// Complaint is a consumer grievance against a supplier, optionally tied to an
// order. EscalationLevel only ever increases along sales → manager → owner.
type Complaint struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConsumerID uuid.UUID  `gorm:"type:uuid;not null;index"`
	SupplierID uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrderID    *uuid.UUID `gorm:"type:uuid;index"`

	Title       string `gorm:"not null"`
	Description string
	Type        string `gorm:"type:varchar(20);not null;default:'other'"`
	Severity    string `gorm:"type:varchar(10);not null;default:'medium'"`
	Status      string `gorm:"type:varchar(20);not null;default:'open';index"`

	EscalationLevel StaffRole `gorm:"type:varchar(20);not null;default:'sales';index"`

	CreatedByID  *uuid.UUID `gorm:"type:uuid"`
	AssignedToID *uuid.UUID `gorm:"type:uuid;index"` // staff member currently handling it
	EscalatedByID *uuid.UUID `gorm:"type:uuid"`
	EscalatedAt   *time.Time

	ResolvedByID    *uuid.UUID `gorm:"type:uuid"`
	ResolvedAt      *time.Time
	ResolutionNotes *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Consumer   *ConsumerProfile `gorm:"foreignKey:ConsumerID"`
	Supplier   *SupplierProfile `gorm:"foreignKey:SupplierID"`
	Order      *Order           `gorm:"foreignKey:OrderID"`
	AssignedTo *SupplierStaff   `gorm:"foreignKey:AssignedToID"`
	Notes      []ComplaintNote  `gorm:"foreignKey:ComplaintID"`
}

func (Complaint) TableName() string { return "complaints" }

// Closed reports whether the complaint accepts no further workflow actions.
func (c *Complaint) Closed() bool {
	return c.Status == ComplaintStatusResolved || c.Status == ComplaintStatusClosed
}

// Note types recorded on the audit trail.
const (
	NoteTypeComment      = "comment"
	NoteTypeStatusChange = "status_change"
	NoteTypeEscalation   = "escalation"
	NoteTypeResolution   = "resolution"
	NoteTypeAssignment   = "assignment"
)

// ComplaintNote is an append-only audit entry. Every escalation and status
// change writes one in the same transaction as the transition itself.
// Notes are never deleted.
type ComplaintNote struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComplaintID uuid.UUID `gorm:"type:uuid;not null;index"`
	NoteType    string    `gorm:"type:varchar(20);not null;default:'comment'"`
	Content     string    `gorm:"not null"`
	// PreviousValue/NewValue capture the from/to of the transition this
	// note records (level for escalations, status for status changes).
	PreviousValue string
	NewValue      string
	CreatedByID   *uuid.UUID `gorm:"type:uuid"`
	// IsInternal notes are hidden from consumer reads. Consumers can only
	// create non-internal comments.
	IsInternal bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`

	CreatedBy *User `gorm:"foreignKey:CreatedByID"`
}

func (ComplaintNote) TableName() string { return "complaint_notes" }
