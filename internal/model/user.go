package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the shared account record behind every actor type. What a user can
// do is derived from the profile rows that reference it (ConsumerProfile,
// SupplierStaff) plus the IsSuperuser flag — never from duck-typed lookups.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Username     string    `gorm:"index;not null"`
	PasswordHash string    `gorm:"not null"`
	// UserType: "consumer" | "supplier_staff" | "platform_admin" — display only
	UserType    string `gorm:"type:varchar(20);not null"`
	Phone       *string
	IsVerified  bool `gorm:"not null;default:false"`
	IsSuperuser bool `gorm:"not null;default:false"`
	Active      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (User) TableName() string { return "users" }

// ConsumerProfile identifies a buying business (restaurant, hotel, café).
type ConsumerProfile struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	BusinessName string    `gorm:"not null"`
	// BusinessType: "restaurant" | "hotel" | "cafe" | "other"
	BusinessType       string `gorm:"type:varchar(20);not null"`
	Address            string
	City               string
	RegistrationNumber *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	User *User `gorm:"foreignKey:UserID"`
}

func (ConsumerProfile) TableName() string { return "consumer_profiles" }

// SupplierProfile is the selling company. Staff members reference it.
type SupplierProfile struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyName        string    `gorm:"not null"`
	RegistrationNumber string    `gorm:"not null"`
	Address            string
	City               string
	Description        *string
	IsVerified         bool `gorm:"not null;default:false"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Staff []SupplierStaff `gorm:"foreignKey:SupplierID"`
}

func (SupplierProfile) TableName() string { return "supplier_profiles" }
