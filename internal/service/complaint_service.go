package service

import (
	"context"
	"errors"
	"fmt"
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

// ComplaintService drives the complaint lifecycle. Escalation climbs the
// staff hierarchy one level at a time and every transition appends an audit
// note in the same transaction.
type ComplaintService interface {
	Create(ctx context.Context, actor *identity.Actor, req dto.CreateComplaintRequest) (*dto.ComplaintResponse, error)
	Escalate(ctx context.Context, actor *identity.Actor, complaintID uuid.UUID, req dto.EscalateComplaintRequest) (*dto.EscalateComplaintResponse, error)
	UpdateStatus(ctx context.Context, actor *identity.Actor, complaintID uuid.UUID, req dto.ComplaintStatusRequest) (*dto.ComplaintStatusResponse, error)
	AddNote(ctx context.Context, actor *identity.Actor, complaintID uuid.UUID, req dto.ComplaintNoteRequest) (*dto.ComplaintNoteResponse, error)
	ListNotes(ctx context.Context, actor *identity.Actor, complaintID uuid.UUID) ([]dto.ComplaintNoteResponse, error)
	Get(ctx context.Context, actor *identity.Actor, complaintID uuid.UUID) (*dto.ComplaintResponse, error)
	List(ctx context.Context, actor *identity.Actor, filter dto.ComplaintFilter) (*dto.ComplaintListResponse, error)
}

type complaintService struct {
	repo       repository.ComplaintRepository
	linkRepo   repository.LinkRepository
	orderRepo  repository.OrderRepository
	assignment AssignmentService
	dispatcher *worker.Dispatcher
}

func NewComplaintService(
	repo repository.ComplaintRepository,
	linkRepo repository.LinkRepository,
	orderRepo repository.OrderRepository,
	assignment AssignmentService,
	dispatcher *worker.Dispatcher,
) ComplaintService {
	return &complaintService{
		repo:       repo,
		linkRepo:   linkRepo,
		orderRepo:  orderRepo,
		assignment: assignment,
		dispatcher: dispatcher,
	}
}

// Create files a complaint at the sales level. The supplier is taken from
// the request or inferred from the referenced order; either way the consumer
// must hold an accepted link with it. The complaint is auto-assigned to the
// least-loaded sales rep when one exists.
func (s *complaintService) Create(ctx context.Context, actor *identity.Actor, req dto.CreateComplaintRequest) (*dto.ComplaintResponse, error) {
	if actor.Kind != identity.KindConsumer {
		return nil, apierror.Forbidden("only consumers can file complaints")
	}
	consumerID := actor.Consumer.ID

	var supplierID uuid.UUID
	var orderID *uuid.UUID

	switch {
	case req.OrderID != nil:
		oid, err := uuid.Parse(*req.OrderID)
		if err != nil {
			return nil, apierror.Validation("order_id is not a valid uuid")
		}
		order, err := s.orderRepo.FindByID(ctx, oid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NotFound("order not found")
			}
			return nil, err
		}
		if order.ConsumerID != consumerID {
			return nil, apierror.Forbidden("order belongs to another consumer")
		}
		if req.SupplierID != nil && *req.SupplierID != order.SupplierID.String() {
			return nil, apierror.Validation("supplier_id does not match the order's supplier")
		}
		supplierID = order.SupplierID
		orderID = &oid
	case req.SupplierID != nil:
		sid, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return nil, apierror.Validation("supplier_id is not a valid uuid")
		}
		supplierID = sid
	default:
		return nil, apierror.Validation("either supplier_id or order_id is required")
	}

	if _, err := s.linkRepo.FindAcceptedPair(ctx, consumerID, supplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Forbidden("no accepted link with this supplier")
		}
		return nil, err
	}

	// Best-effort assignment: a failing load read leaves the complaint
	// unassigned, it never blocks the filing.
	rep, err := s.assignment.PickLeastLoaded(ctx, supplierID, model.RoleSales)
	if err != nil {
		log.Warn().Err(err).Str("supplier_id", supplierID.String()).Msg("complaint assignment skipped")
		rep = nil
	}

	complaint := &model.Complaint{
		ConsumerID:      consumerID,
		SupplierID:      supplierID,
		OrderID:         orderID,
		Title:           req.Title,
		Description:     req.Description,
		Type:            valueOr(req.Type, model.ComplaintTypeOther),
		Severity:        valueOr(req.Severity, model.SeverityMedium),
		Status:          model.ComplaintStatusOpen,
		EscalationLevel: model.RoleSales,
		CreatedByID:     &actor.UserID,
	}
	if rep != nil {
		complaint.AssignedToID = &rep.ID
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, complaint); err != nil {
			return err
		}
		return s.repo.CreateNoteTx(tx, &model.ComplaintNote{
			ComplaintID: complaint.ID,
			NoteType:    model.NoteTypeStatusChange,
			Content:     "complaint filed",
			NewValue:    model.ComplaintStatusOpen,
			CreatedByID: &actor.UserID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, worker.NotificationPayload{
		Event:      "complaint.filed",
		SupplierID: supplierID.String(),
		EntityID:   complaint.ID.String(),
	})
	return complaintToResponse(complaint), nil
}

// Escalate raises the level exactly one step along sales → manager → owner.
// The acting staff member must be able to handle the complaint at its
// current level; escalating past owner is a Conflict. The level update and
// its audit note commit together.
func (s *complaintService) Escalate(ctx context.Context, actor *identity.Actor, complaintID uuid.UUID, req dto.EscalateComplaintRequest) (*dto.EscalateComplaintResponse, error) {
	complaint, staffRole, err := s.loadForStaffAction(ctx, actor, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.Closed() {
		return nil, apierror.Conflict("complaint is already resolved or closed", complaint.Status)
	}
	if !staffRole.CanHandle(complaint.EscalationLevel) {
		return nil, apierror.Forbidden(
			fmt.Sprintf("role %s cannot act on a complaint at level %s", staffRole, complaint.EscalationLevel))
	}
	next, ok := complaint.EscalationLevel.Next()
	if !ok {
		return nil, apierror.Conflict("complaint is already at the highest level", string(complaint.EscalationLevel))
	}

	// Reassign to the least-loaded member of the next tier; a tier with no
	// staff — or a failing load read — leaves the complaint unassigned
	// rather than blocking escalation.
	rep, err := s.assignment.PickLeastLoaded(ctx, complaint.SupplierID, next)
	if err != nil {
		log.Warn().Err(err).Str("complaint_id", complaint.ID.String()).Msg("escalation reassignment skipped")
		rep = nil
	}

	old := complaint.EscalationLevel
	now := time.Now()
	complaint.EscalationLevel = next
	complaint.EscalatedByID = &actor.UserID
	complaint.EscalatedAt = &now
	if complaint.Status == model.ComplaintStatusOpen {
		complaint.Status = model.ComplaintStatusInProgress
	}
	if rep != nil {
		complaint.AssignedToID = &rep.ID
	} else {
		complaint.AssignedToID = nil
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, complaint); err != nil {
			return err
		}
		return s.repo.CreateNoteTx(tx, &model.ComplaintNote{
			ComplaintID:   complaint.ID,
			NoteType:      model.NoteTypeEscalation,
			Content:       req.Reason,
			PreviousValue: string(old),
			NewValue:      string(next),
			CreatedByID:   &actor.UserID,
			IsInternal:    true,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, worker.NotificationPayload{
		Event:      "complaint.escalated",
		SupplierID: complaint.SupplierID.String(),
		EntityID:   complaint.ID.String(),
	})

	resp := &dto.EscalateComplaintResponse{
		ID:       complaint.ID.String(),
		OldLevel: string(old),
		NewLevel: string(next),
		Reason:   req.Reason,
	}
	if rep != nil {
		id := rep.ID.String()
		resp.AssignedTo = &id
	}
	return resp, nil
}

// UpdateStatus moves the complaint through open/in_progress/resolved/closed.
// closed is terminal; resolved accepts only the move to closed. Resolving
// stamps the resolver and writes a resolution note alongside the status note.
func (s *complaintService) UpdateStatus(ctx context.Context, actor *identity.Actor, complaintID uuid.UUID, req dto.ComplaintStatusRequest) (*dto.ComplaintStatusResponse, error) {
	complaint, staffRole, err := s.loadForStaffAction(ctx, actor, complaintID)
	if err != nil {
		return nil, err
	}
	if !staffRole.CanHandle(complaint.EscalationLevel) {
		return nil, apierror.Forbidden(
			fmt.Sprintf("role %s cannot act on a complaint at level %s", staffRole, complaint.EscalationLevel))
	}
	if complaint.Status == model.ComplaintStatusClosed {
		return nil, apierror.Conflict("complaint is closed", complaint.Status)
	}
	if complaint.Status == model.ComplaintStatusResolved && req.Status != model.ComplaintStatusClosed {
		return nil, apierror.Conflict("a resolved complaint can only be closed", complaint.Status)
	}
	if req.Status == complaint.Status {
		return nil, apierror.Conflict("complaint is already in this status", complaint.Status)
	}

	old := complaint.Status
	complaint.Status = req.Status
	if req.Status == model.ComplaintStatusResolved {
		now := time.Now()
		complaint.ResolvedAt = &now
		complaint.ResolvedByID = &actor.UserID
		if req.ResolutionNotes != "" {
			complaint.ResolutionNotes = &req.ResolutionNotes
		}
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, complaint); err != nil {
			return err
		}
		note := &model.ComplaintNote{
			ComplaintID:   complaint.ID,
			NoteType:      model.NoteTypeStatusChange,
			Content:       valueOr(req.Notes, "status changed"),
			PreviousValue: old,
			NewValue:      req.Status,
			CreatedByID:   &actor.UserID,
		}
		if err := s.repo.CreateNoteTx(tx, note); err != nil {
			return err
		}
		if req.Status == model.ComplaintStatusResolved && req.ResolutionNotes != "" {
			return s.repo.CreateNoteTx(tx, &model.ComplaintNote{
				ComplaintID: complaint.ID,
				NoteType:    model.NoteTypeResolution,
				Content:     req.ResolutionNotes,
				CreatedByID: &actor.UserID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, worker.NotificationPayload{
		Event:      "complaint.status_changed",
		ConsumerID: complaint.ConsumerID.String(),
		EntityID:   complaint.ID.String(),
	})

	resp := &dto.ComplaintStatusResponse{
		ID:        complaint.ID.String(),
		OldStatus: old,
		NewStatus: req.Status,
	}
	if complaint.ResolvedAt != nil {
		t := complaint.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &t
	}
	if complaint.ResolvedByID != nil {
		id := complaint.ResolvedByID.String()
		resp.ResolvedBy = &id
	}
	return resp, nil
}

// AddNote appends a comment. Consumers can only write non-internal notes on
// their own complaints; staff of the supplier can mark notes internal.
func (s *complaintService) AddNote(ctx context.Context, actor *identity.Actor, complaintID uuid.UUID, req dto.ComplaintNoteRequest) (*dto.ComplaintNoteResponse, error) {
	complaint, err := s.repo.FindByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("complaint not found")
		}
		return nil, err
	}

	isInternal := req.IsInternal
	switch {
	case actor.IsStaffOf(complaint.SupplierID):
		// staff may write internal or public notes
	case actor.IsConsumer(complaint.ConsumerID):
		if req.IsInternal {
			return nil, apierror.Forbidden("consumers cannot write internal notes")
		}
		isInternal = false
	default:
		return nil, apierror.Forbidden("no access to this complaint")
	}
	if complaint.Status == model.ComplaintStatusClosed {
		return nil, apierror.Conflict("complaint is closed", complaint.Status)
	}

	note := &model.ComplaintNote{
		ComplaintID: complaint.ID,
		NoteType:    model.NoteTypeComment,
		Content:     req.Content,
		CreatedByID: &actor.UserID,
		IsInternal:  isInternal,
	}
	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.CreateNoteTx(tx, note)
	}); err != nil {
		return nil, err
	}
	return noteToResponse(note), nil
}

// ListNotes returns the audit trail. Internal notes are visible to staff and
// superusers only.
func (s *complaintService) ListNotes(ctx context.Context, actor *identity.Actor, complaintID uuid.UUID) ([]dto.ComplaintNoteResponse, error) {
	complaint, err := s.repo.FindByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("complaint not found")
		}
		return nil, err
	}

	var includeInternal bool
	switch {
	case actor.IsStaffOf(complaint.SupplierID):
		includeInternal = true
	case actor.IsConsumer(complaint.ConsumerID):
		includeInternal = false
	default:
		return nil, apierror.Forbidden("no access to this complaint")
	}

	notes, err := s.repo.ListNotes(ctx, complaintID, includeInternal)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ComplaintNoteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, *noteToResponse(&notes[i]))
	}
	return out, nil
}

func (s *complaintService) Get(ctx context.Context, actor *identity.Actor, complaintID uuid.UUID) (*dto.ComplaintResponse, error) {
	complaint, err := s.repo.FindByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("complaint not found")
		}
		return nil, err
	}
	if !actor.IsConsumer(complaint.ConsumerID) && !actor.IsStaffOf(complaint.SupplierID) {
		return nil, apierror.Forbidden("no access to this complaint")
	}
	return complaintToResponse(complaint), nil
}

func (s *complaintService) List(ctx context.Context, actor *identity.Actor, filter dto.ComplaintFilter) (*dto.ComplaintListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}

	var complaints []model.Complaint
	var total int64
	var err error
	switch actor.Kind {
	case identity.KindConsumer:
		complaints, total, err = s.repo.ListByConsumer(ctx, actor.Consumer.ID, filter)
	case identity.KindStaff:
		complaints, total, err = s.repo.ListBySupplier(ctx, actor.Staff.SupplierID, filter)
	case identity.KindSuperuser:
		complaints, total, err = s.repo.ListAll(ctx, filter)
	default:
		return nil, apierror.Forbidden("no profile associated with this account")
	}
	if err != nil {
		return nil, err
	}

	out := make([]dto.ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		out = append(out, *complaintToResponse(&complaints[i]))
	}
	return &dto.ComplaintListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

// loadForStaffAction resolves the complaint and the acting staff role.
// Superusers act with owner authority.
func (s *complaintService) loadForStaffAction(ctx context.Context, actor *identity.Actor, complaintID uuid.UUID) (*model.Complaint, model.StaffRole, error) {
	complaint, err := s.repo.FindByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apierror.NotFound("complaint not found")
		}
		return nil, "", err
	}
	if actor.IsSuperuser() {
		return complaint, model.RoleOwner, nil
	}
	if !actor.IsStaffOf(complaint.SupplierID) {
		return nil, "", apierror.Forbidden("complaint belongs to another supplier")
	}
	return complaint, actor.Staff.Role, nil
}

func (s *complaintService) notify(ctx context.Context, payload worker.NotificationPayload) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueNotification(ctx, payload); err != nil {
		log.Warn().Err(err).Str("event", payload.Event).Msg("failed to enqueue notification")
	}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func complaintToResponse(c *model.Complaint) *dto.ComplaintResponse {
	resp := &dto.ComplaintResponse{
		ID:              c.ID.String(),
		ConsumerID:      c.ConsumerID.String(),
		SupplierID:      c.SupplierID.String(),
		Title:           c.Title,
		Description:     c.Description,
		Type:            c.Type,
		Severity:        c.Severity,
		Status:          c.Status,
		EscalationLevel: string(c.EscalationLevel),
		ResolutionNotes: c.ResolutionNotes,
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
	}
	if c.OrderID != nil {
		id := c.OrderID.String()
		resp.OrderID = &id
	}
	if c.AssignedToID != nil {
		id := c.AssignedToID.String()
		resp.AssignedTo = &id
	}
	if c.ResolvedAt != nil {
		t := c.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &t
	}
	return resp
}

func noteToResponse(n *model.ComplaintNote) *dto.ComplaintNoteResponse {
	resp := &dto.ComplaintNoteResponse{
		ID:            n.ID.String(),
		NoteType:      n.NoteType,
		Content:       n.Content,
		PreviousValue: n.PreviousValue,
		NewValue:      n.NewValue,
		IsInternal:    n.IsInternal,
		CreatedAt:     n.CreatedAt.Format(time.RFC3339),
	}
	if n.CreatedByID != nil {
		resp.CreatedBy = n.CreatedByID.String()
	}
	return resp
}
