package service

import (
	"context"
	"errors"
	"time"

	"scp/internal/apierror"
	"scp/internal/dto"
	"scp/internal/identity"
	"scp/internal/model"
	"scp/internal/repository"
	"scp/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// LinkService drives the consumer–supplier approval workflow. Only pending
// links transition; every transition writes one history row.
type LinkService interface {
	Request(ctx context.Context, actor *identity.Actor, req dto.RequestLinkRequest) (*dto.LinkResponse, error)
	Approve(ctx context.Context, actor *identity.Actor, linkID uuid.UUID) (*dto.LinkActionResponse, error)
	Reject(ctx context.Context, actor *identity.Actor, linkID uuid.UUID) (*dto.LinkActionResponse, error)
	Block(ctx context.Context, actor *identity.Actor, linkID uuid.UUID) (*dto.LinkActionResponse, error)
	Cancel(ctx context.Context, actor *identity.Actor, linkID uuid.UUID) (*dto.LinkActionResponse, error)
	Get(ctx context.Context, actor *identity.Actor, linkID uuid.UUID) (*dto.LinkResponse, error)
	List(ctx context.Context, actor *identity.Actor) ([]dto.LinkResponse, error)
	ListSuppliers(ctx context.Context) ([]dto.SupplierResponse, error)
}

type linkService struct {
	repo       repository.LinkRepository
	staffRepo  repository.StaffRepository
	assignment AssignmentService
	dispatcher *worker.Dispatcher
}

func NewLinkService(
	repo repository.LinkRepository,
	staffRepo repository.StaffRepository,
	assignment AssignmentService,
	dispatcher *worker.Dispatcher,
) LinkService {
	return &linkService{repo: repo, staffRepo: staffRepo, assignment: assignment, dispatcher: dispatcher}
}

func (s *linkService) Request(ctx context.Context, actor *identity.Actor, req dto.RequestLinkRequest) (*dto.LinkResponse, error) {
	if actor.Kind != identity.KindConsumer {
		return nil, apierror.Forbidden("only consumers can request supplier links")
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, apierror.Validation("supplier_id is not a valid uuid")
	}
	supplier, err := s.staffRepo.FindSupplierByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("supplier not found")
		}
		return nil, err
	}

	consumerID := actor.Consumer.ID

	existing, err := s.repo.FindByPair(ctx, consumerID, supplierID)
	switch {
	case err == nil:
		if !existing.Reusable() {
			return nil, apierror.Conflict("a link with this supplier already exists", existing.Status)
		}
		// The pair is unique, so a fresh request after a rejection or
		// cancellation recycles the existing row.
		old := existing.Status
		existing.Status = model.LinkStatusPending
		existing.RequestedAt = time.Now()
		existing.ApprovedAt = nil
		existing.ApprovedByID = nil
		existing.AssignedSalesRepID = nil
		existing.Notes = req.Notes
		if err := s.commitTransition(ctx, existing, old, actor.UserID); err != nil {
			return nil, err
		}
		existing.Supplier = supplier
		return linkToResponse(existing), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to create
	default:
		return nil, err
	}

	link := &model.ConsumerSupplierLink{
		ConsumerID: consumerID,
		SupplierID: supplierID,
		Status:     model.LinkStatusPending,
		Notes:      req.Notes,
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, link); err != nil {
			return err
		}
		return s.repo.CreateHistoryTx(tx, &model.LinkStatusHistory{
			LinkID:      link.ID,
			OldStatus:   "",
			NewStatus:   model.LinkStatusPending,
			ChangedByID: &actor.UserID,
		})
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, worker.NotificationPayload{
		Event:      "link.requested",
		SupplierID: supplierID.String(),
		EntityID:   link.ID.String(),
	})

	link.Supplier = supplier
	return linkToResponse(link), nil
}

// Approve transitions pending → accepted and assigns the least-loaded sales
// rep. Assignment is best effort: a supplier with no sales staff gets an
// accepted link with no rep.
func (s *linkService) Approve(ctx context.Context, actor *identity.Actor, linkID uuid.UUID) (*dto.LinkActionResponse, error) {
	link, err := s.loadForStaffAction(ctx, actor, linkID)
	if err != nil {
		return nil, err
	}
	if link.Terminal() {
		return nil, apierror.Conflict("link is not pending", link.Status)
	}

	// Assignment is best effort: a failing load read must not block the
	// approval itself, it only leaves the link unassigned.
	rep, err := s.assignment.PickLeastLoaded(ctx, link.SupplierID, model.RoleSales)
	if err != nil {
		log.Warn().Err(err).Str("link_id", link.ID.String()).Msg("sales rep assignment skipped")
		rep = nil
	}

	old := link.Status
	now := time.Now()
	link.Status = model.LinkStatusAccepted
	link.ApprovedAt = &now
	link.ApprovedByID = &actor.UserID
	if rep != nil {
		link.AssignedSalesRepID = &rep.ID
	}
	if err := s.commitTransition(ctx, link, old, actor.UserID); err != nil {
		return nil, err
	}
	s.notify(ctx, worker.NotificationPayload{
		Event:      "link.approved",
		ConsumerID: link.ConsumerID.String(),
		EntityID:   link.ID.String(),
	})

	resp := linkActionResponse(link, old)
	if rep != nil {
		id := rep.ID.String()
		resp.AssignedSalesRep = &id
	}
	return resp, nil
}

func (s *linkService) Reject(ctx context.Context, actor *identity.Actor, linkID uuid.UUID) (*dto.LinkActionResponse, error) {
	return s.staffTransition(ctx, actor, linkID, model.LinkStatusRejected, "link.rejected")
}

func (s *linkService) Block(ctx context.Context, actor *identity.Actor, linkID uuid.UUID) (*dto.LinkActionResponse, error) {
	return s.staffTransition(ctx, actor, linkID, model.LinkStatusBlocked, "link.blocked")
}

func (s *linkService) staffTransition(ctx context.Context, actor *identity.Actor, linkID uuid.UUID, target, event string) (*dto.LinkActionResponse, error) {
	link, err := s.loadForStaffAction(ctx, actor, linkID)
	if err != nil {
		return nil, err
	}
	if link.Terminal() {
		return nil, apierror.Conflict("link is not pending", link.Status)
	}

	old := link.Status
	link.Status = target
	if err := s.commitTransition(ctx, link, old, actor.UserID); err != nil {
		return nil, err
	}
	s.notify(ctx, worker.NotificationPayload{
		Event:      event,
		ConsumerID: link.ConsumerID.String(),
		EntityID:   link.ID.String(),
	})
	return linkActionResponse(link, old), nil
}

// Cancel lets the requesting consumer withdraw a pending request. Accepted
// links cannot be cancelled from the consumer side.
func (s *linkService) Cancel(ctx context.Context, actor *identity.Actor, linkID uuid.UUID) (*dto.LinkActionResponse, error) {
	link, err := s.repo.FindByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("link not found")
		}
		return nil, err
	}
	if !actor.IsConsumer(link.ConsumerID) {
		return nil, apierror.Forbidden("link belongs to another consumer")
	}
	if link.Terminal() {
		return nil, apierror.Conflict("only pending links can be cancelled", link.Status)
	}

	old := link.Status
	link.Status = model.LinkStatusCancelled
	if err := s.commitTransition(ctx, link, old, actor.UserID); err != nil {
		return nil, err
	}
	return linkActionResponse(link, old), nil
}

func (s *linkService) Get(ctx context.Context, actor *identity.Actor, linkID uuid.UUID) (*dto.LinkResponse, error) {
	link, err := s.repo.FindByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("link not found")
		}
		return nil, err
	}
	if !actor.IsConsumer(link.ConsumerID) && !actor.IsStaffOf(link.SupplierID) {
		return nil, apierror.Forbidden("no access to this link")
	}
	return linkToResponse(link), nil
}

func (s *linkService) List(ctx context.Context, actor *identity.Actor) ([]dto.LinkResponse, error) {
	var links []model.ConsumerSupplierLink
	var err error
	switch actor.Kind {
	case identity.KindConsumer:
		links, err = s.repo.ListByConsumer(ctx, actor.Consumer.ID)
	case identity.KindStaff:
		links, err = s.repo.ListBySupplier(ctx, actor.Staff.SupplierID)
	case identity.KindSuperuser:
		links, err = s.repo.ListAll(ctx)
	default:
		return nil, apierror.Forbidden("no profile associated with this account")
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.LinkResponse, 0, len(links))
	for i := range links {
		out = append(out, *linkToResponse(&links[i]))
	}
	return out, nil
}

func (s *linkService) ListSuppliers(ctx context.Context) ([]dto.SupplierResponse, error) {
	suppliers, err := s.staffRepo.ListVerifiedSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		p := &suppliers[i]
		out = append(out, dto.SupplierResponse{
			ID:          p.ID.String(),
			CompanyName: p.CompanyName,
			City:        p.City,
			Description: p.Description,
			IsVerified:  p.IsVerified,
		})
	}
	return out, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *linkService) loadForStaffAction(ctx context.Context, actor *identity.Actor, linkID uuid.UUID) (*model.ConsumerSupplierLink, error) {
	link, err := s.repo.FindByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("link not found")
		}
		return nil, err
	}
	if !actor.IsStaffOf(link.SupplierID) {
		return nil, apierror.Forbidden("link belongs to another supplier")
	}
	return link, nil
}

// commitTransition persists the status flip and its audit row in one
// transaction so the link can never change state without a history row.
func (s *linkService) commitTransition(ctx context.Context, link *model.ConsumerSupplierLink, old string, changedBy uuid.UUID) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, link); err != nil {
			return err
		}
		return s.repo.CreateHistoryTx(tx, &model.LinkStatusHistory{
			LinkID:      link.ID,
			OldStatus:   old,
			NewStatus:   link.Status,
			ChangedByID: &changedBy,
		})
	})
}

func (s *linkService) notify(ctx context.Context, payload worker.NotificationPayload) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueNotification(ctx, payload); err != nil {
		log.Warn().Err(err).Str("event", payload.Event).Msg("failed to enqueue notification")
	}
}

func linkToResponse(l *model.ConsumerSupplierLink) *dto.LinkResponse {
	resp := &dto.LinkResponse{
		ID:          l.ID.String(),
		ConsumerID:  l.ConsumerID.String(),
		SupplierID:  l.SupplierID.String(),
		Status:      l.Status,
		RequestedAt: l.RequestedAt.Format(time.RFC3339),
	}
	if l.Consumer != nil {
		resp.ConsumerName = l.Consumer.BusinessName
	}
	if l.Supplier != nil {
		resp.SupplierName = l.Supplier.CompanyName
	}
	if l.ApprovedAt != nil {
		t := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &t
	}
	if l.AssignedSalesRepID != nil {
		id := l.AssignedSalesRepID.String()
		resp.AssignedSalesRep = &id
	}
	return resp
}

func linkActionResponse(l *model.ConsumerSupplierLink, old string) *dto.LinkActionResponse {
	resp := &dto.LinkActionResponse{
		ID:         l.ID.String(),
		OldStatus:  old,
		NewStatus:  l.Status,
		ConsumerID: l.ConsumerID.String(),
		SupplierID: l.SupplierID.String(),
	}
	if l.AssignedSalesRepID != nil {
		id := l.AssignedSalesRepID.String()
		resp.AssignedSalesRep = &id
	}
	return resp
}
