package model

import (
	"time"

	"github.com/google/uuid"
)

// Conversation types.
const (
	ConversationSupplierConsumer = "supplier_consumer"
	ConversationSupplierInternal = "supplier_internal"
)

// Conversation is a message thread between a consumer and a supplier (or an
// internal supplier thread). AssignedStaffID is set once at creation — there
// is no reassignment operation — and UpdatedAt is bumped on every message.
type Conversation struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SupplierID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ConsumerID *uuid.UUID `gorm:"type:uuid;index"`
	OrderID    *uuid.UUID `gorm:"type:uuid;index"`

	Type            string     `gorm:"type:varchar(32);not null;default:'supplier_consumer'"`
	AssignedStaffID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedByID     *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Supplier      *SupplierProfile `gorm:"foreignKey:SupplierID"`
	Consumer      *ConsumerProfile `gorm:"foreignKey:ConsumerID"`
	AssignedStaff *SupplierStaff   `gorm:"foreignKey:AssignedStaffID"`
	Messages      []Message        `gorm:"foreignKey:ConversationID"`
}

func (Conversation) TableName() string { return "conversations" }

// Message is one chat entry. Delivery is polling-only; no push transport.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null"`
	Text           string
	SentAt         time.Time `gorm:"autoCreateTime"`
	IsRead         bool      `gorm:"not null;default:false"`

	Sender *User `gorm:"foreignKey:SenderID"`
}

func (Message) TableName() string { return "messages" }
