package service

import (
	"context"
	"sort"

	"scp/internal/model"
	"scp/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AssignmentService picks the least-loaded staff member of a given role for
// a supplier. Load is (assigned links, assigned conversations), compared
// lexicographically; ties break on staff id so the choice is deterministic.
type AssignmentService interface {
	// PickLeastLoaded returns nil, nil when the supplier has no staff with
	// the role. Callers treat a nil result as "leave unassigned".
	PickLeastLoaded(ctx context.Context, supplierID uuid.UUID, role model.StaffRole) (*model.SupplierStaff, error)
}

type assignmentService struct {
	staffRepo repository.StaffRepository
	linkRepo  repository.LinkRepository
	convRepo  repository.ConversationRepository
}

func NewAssignmentService(
	staffRepo repository.StaffRepository,
	linkRepo repository.LinkRepository,
	convRepo repository.ConversationRepository,
) AssignmentService {
	return &assignmentService{staffRepo: staffRepo, linkRepo: linkRepo, convRepo: convRepo}
}

type staffLoad struct {
	staff         model.SupplierStaff
	links         int64
	conversations int64
}

func (s *assignmentService) PickLeastLoaded(ctx context.Context, supplierID uuid.UUID, role model.StaffRole) (*model.SupplierStaff, error) {
	members, err := s.staffRepo.ListBySupplierAndRole(ctx, supplierID, role)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	loads := make([]staffLoad, 0, len(members))
	for _, m := range members {
		links, err := s.linkRepo.CountByAssignedRep(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		convs, err := s.convRepo.CountByAssignedStaff(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		loads = append(loads, staffLoad{staff: m, links: links, conversations: convs})
	}

	// Two-key ascending sort, staff id as the final tie-break. The count
	// reads are advisory: a concurrent assignment can skew them slightly,
	// which is acceptable for load balancing.
	sort.Slice(loads, func(i, j int) bool {
		if loads[i].links != loads[j].links {
			return loads[i].links < loads[j].links
		}
		if loads[i].conversations != loads[j].conversations {
			return loads[i].conversations < loads[j].conversations
		}
		return loads[i].staff.ID.String() < loads[j].staff.ID.String()
	})

	picked := loads[0]
	log.Debug().
		Str("supplier_id", supplierID.String()).
		Str("role", string(role)).
		Str("staff_id", picked.staff.ID.String()).
		Int64("links", picked.links).
		Int64("conversations", picked.conversations).
		Msg("assignment: picked least-loaded staff")

	return &picked.staff, nil
}
