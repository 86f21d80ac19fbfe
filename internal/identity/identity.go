// Package identity resolves the authenticated user into an Actor exactly once
// at the request boundary. Workflow services receive the Actor explicitly and
// never probe the database for "does this user have a profile of type X".
package identity

import (
	"context"
	"errors"

	"scp/internal/model"
	"scp/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Kind is the actor discriminant.
type Kind int

const (
	KindNone      Kind = iota // authenticated but neither consumer nor staff
	KindConsumer              // has a ConsumerProfile
	KindStaff                 // has a SupplierStaff record
	KindSuperuser             // platform admin, bypasses ownership checks
)

func (k Kind) String() string {
	switch k {
	case KindConsumer:
		return "consumer"
	case KindStaff:
		return "staff"
	case KindSuperuser:
		return "superuser"
	default:
		return "none"
	}
}

// Actor is the resolved caller. Exactly one of Consumer/Staff is non-nil for
// the corresponding kind; a superuser carries neither.
type Actor struct {
	UserID   uuid.UUID
	Email    string
	Kind     Kind
	Consumer *model.ConsumerProfile
	Staff    *model.SupplierStaff
}

func (a *Actor) IsSuperuser() bool { return a.Kind == KindSuperuser }

// IsStaffOf reports whether the actor is a staff member of the given
// supplier. Superusers pass every staff gate.
func (a *Actor) IsStaffOf(supplierID uuid.UUID) bool {
	if a.IsSuperuser() {
		return true
	}
	return a.Kind == KindStaff && a.Staff != nil && a.Staff.SupplierID == supplierID
}

// IsConsumer reports whether the actor owns the given consumer profile.
// Superusers pass consumer-ownership gates too.
func (a *Actor) IsConsumer(consumerID uuid.UUID) bool {
	if a.IsSuperuser() {
		return true
	}
	return a.Kind == KindConsumer && a.Consumer != nil && a.Consumer.ID == consumerID
}

// Resolver loads actors from the store.
type Resolver struct {
	users repository.UserRepository
	staff repository.StaffRepository
}

func NewResolver(users repository.UserRepository, staff repository.StaffRepository) *Resolver {
	return &Resolver{users: users, staff: staff}
}

// Resolve builds the Actor for a user id. Resolution order: superuser flag,
// then staff record, then consumer profile. A user with none of the three
// gets KindNone and fails every authorization gate downstream.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID) (*Actor, error) {
	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	actor := &Actor{UserID: user.ID, Email: user.Email}

	if user.IsSuperuser {
		actor.Kind = KindSuperuser
		return actor, nil
	}

	staff, err := r.staff.FindByUserID(ctx, userID)
	if err == nil {
		actor.Kind = KindStaff
		actor.Staff = staff
		return actor, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	consumer, err := r.users.FindConsumerByUserID(ctx, userID)
	if err == nil {
		actor.Kind = KindConsumer
		actor.Consumer = consumer
		return actor, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	actor.Kind = KindNone
	return actor, nil
}
