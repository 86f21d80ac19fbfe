package model

import (
	"time"

	"github.com/google/uuid"
)

// StaffRole is the ordered staff hierarchy. The same vocabulary doubles as a
// complaint escalation level: a complaint "at sales" is handled by sales reps,
// and escalation walks the order sales → manager → owner one step at a time.
type StaffRole string

const (
	RoleSales   StaffRole = "sales"
	RoleManager StaffRole = "manager"
	RoleOwner   StaffRole = "owner"
)

// roleRank is the single source of the sales < manager < owner total order.
var roleRank = map[StaffRole]int{
	RoleSales:   0,
	RoleManager: 1,
	RoleOwner:   2,
}

func (r StaffRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Rank returns the position in the total order. Unknown roles rank below
// sales so they can never satisfy a CanHandle check.
func (r StaffRole) Rank() int {
	if rank, ok := roleRank[r]; ok {
		return rank
	}
	return -1
}

// Next returns the following escalation level, or false at the top.
func (r StaffRole) Next() (StaffRole, bool) {
	switch r {
	case RoleSales:
		return RoleManager, true
	case RoleManager:
		return RoleOwner, true
	default:
		return "", false
	}
}

// CanHandle reports whether a staff member of role r may act on a complaint
// at the given escalation level: sales handles sales, manager handles sales
// and manager, owner handles everything.
func (r StaffRole) CanHandle(level StaffRole) bool {
	return r.Rank() >= level.Rank() && level.Rank() >= 0
}

// SupplierStaff links one user to one supplier with a role. A user has at
// most one staff record.
type SupplierStaff struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	SupplierID uuid.UUID `gorm:"type:uuid;index;not null"`
	Role       StaffRole `gorm:"type:varchar(20);not null"`
	Position   *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User     *User            `gorm:"foreignKey:UserID"`
	Supplier *SupplierProfile `gorm:"foreignKey:SupplierID"`
}

func (SupplierStaff) TableName() string { return "supplier_staff" }
