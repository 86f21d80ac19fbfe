package service_test

import (
	"context"
	"errors"
	"testing"

	"scp/internal/apierror"
	"scp/internal/dto"
	"scp/internal/model"
	"scp/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type complaintFixture struct {
	repo      *stubComplaintRepo
	linkRepo  *stubLinkRepo
	orderRepo *stubOrderRepo
	staffRepo *stubStaffRepo
	svc       service.ComplaintService
	supplier  uuid.UUID
	consumer  *model.ConsumerProfile
}

func newComplaintFixture() *complaintFixture {
	repo := newStubComplaintRepo()
	linkRepo := newStubLinkRepo()
	orderRepo := newStubOrderRepo()
	staffRepo := newStubStaffRepo()
	convRepo := newStubConversationRepo()
	assignment := service.NewAssignmentService(staffRepo, linkRepo, convRepo)

	supplierID := uuid.New()
	consumer := &model.ConsumerProfile{ID: uuid.New(), UserID: uuid.New(), BusinessName: "Cafe One"}
	linkRepo.links[uuid.New()] = &model.ConsumerSupplierLink{
		ID: uuid.New(), ConsumerID: consumer.ID, SupplierID: supplierID,
		Status: model.LinkStatusAccepted,
	}

	return &complaintFixture{
		repo:      repo,
		linkRepo:  linkRepo,
		orderRepo: orderRepo,
		staffRepo: staffRepo,
		svc:       service.NewComplaintService(repo, linkRepo, orderRepo, assignment, nil),
		supplier:  supplierID,
		consumer:  consumer,
	}
}

func (f *complaintFixture) addStaff(role model.StaffRole) *model.SupplierStaff {
	s := &model.SupplierStaff{ID: uuid.New(), UserID: uuid.New(), SupplierID: f.supplier, Role: role}
	f.staffRepo.staff[s.ID] = s
	return s
}

func (f *complaintFixture) file(t *testing.T) *dto.ComplaintResponse {
	t.Helper()
	sid := f.supplier.String()
	resp, err := f.svc.Create(context.Background(), consumerActor(f.consumer), dto.CreateComplaintRequest{
		SupplierID:  &sid,
		Title:       "Late delivery",
		Description: "The Tuesday order arrived two days late.",
	})
	require.NoError(t, err)
	return resp
}

func TestCreateComplaintAutoAssignsSalesRep(t *testing.T) {
	f := newComplaintFixture()
	rep := f.addStaff(model.RoleSales)

	resp := f.file(t)
	assert.Equal(t, model.ComplaintStatusOpen, resp.Status)
	assert.Equal(t, string(model.RoleSales), resp.EscalationLevel)
	require.NotNil(t, resp.AssignedTo)
	assert.Equal(t, rep.ID.String(), *resp.AssignedTo)

	require.Len(t, f.repo.notes, 1)
	assert.Equal(t, model.NoteTypeStatusChange, f.repo.notes[0].NoteType)
	assert.Equal(t, model.ComplaintStatusOpen, f.repo.notes[0].NewValue)
}

func TestCreateComplaintWithoutSalesStaffUnassigned(t *testing.T) {
	f := newComplaintFixture()
	resp := f.file(t)
	assert.Nil(t, resp.AssignedTo)
}

func TestCreateComplaintInfersSupplierFromOrder(t *testing.T) {
	f := newComplaintFixture()
	order := &model.Order{ID: uuid.New(), ConsumerID: f.consumer.ID, SupplierID: f.supplier, Status: model.OrderStatusCompleted}
	f.orderRepo.orders[order.ID] = order

	oid := order.ID.String()
	resp, err := f.svc.Create(context.Background(), consumerActor(f.consumer), dto.CreateComplaintRequest{
		OrderID:     &oid,
		Title:       "Damaged goods",
		Description: "Half the crates arrived crushed.",
	})
	require.NoError(t, err)
	assert.Equal(t, f.supplier.String(), resp.SupplierID)
	require.NotNil(t, resp.OrderID)
	assert.Equal(t, oid, *resp.OrderID)
}

func TestCreateComplaintRequiresAcceptedLink(t *testing.T) {
	f := newComplaintFixture()
	stranger := &model.ConsumerProfile{ID: uuid.New(), UserID: uuid.New()}
	sid := f.supplier.String()

	_, err := f.svc.Create(context.Background(), consumerActor(stranger), dto.CreateComplaintRequest{
		SupplierID:  &sid,
		Title:       "x",
		Description: "y",
	})
	e, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindForbidden, e.Kind)
}

func TestEscalateOneStepWithAuditNote(t *testing.T) {
	f := newComplaintFixture()
	sales := f.addStaff(model.RoleSales)
	manager := f.addStaff(model.RoleManager)
	resp := f.file(t)
	id := uuid.MustParse(resp.ID)

	esc, err := f.svc.Escalate(context.Background(), staffActor(sales), id, dto.EscalateComplaintRequest{
		Reason: "customer threatening to churn",
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.RoleSales), esc.OldLevel)
	assert.Equal(t, string(model.RoleManager), esc.NewLevel)
	require.NotNil(t, esc.AssignedTo)
	assert.Equal(t, manager.ID.String(), *esc.AssignedTo)

	c, ferr := f.repo.FindByID(context.Background(), id)
	require.NoError(t, ferr)
	assert.Equal(t, model.ComplaintStatusInProgress, c.Status, "open complaints move to in_progress on escalation")

	// creation note + escalation note
	require.Len(t, f.repo.notes, 2)
	note := f.repo.notes[1]
	assert.Equal(t, model.NoteTypeEscalation, note.NoteType)
	assert.True(t, note.IsInternal)
	assert.Equal(t, string(model.RoleSales), note.PreviousValue)
	assert.Equal(t, string(model.RoleManager), note.NewValue)
	assert.Equal(t, "customer threatening to churn", note.Content)
}

func TestEscalateEmptyTierLeavesUnassigned(t *testing.T) {
	f := newComplaintFixture()
	sales := f.addStaff(model.RoleSales)
	resp := f.file(t)
	id := uuid.MustParse(resp.ID)

	esc, err := f.svc.Escalate(context.Background(), staffActor(sales), id, dto.EscalateComplaintRequest{Reason: "needs sign-off"})
	require.NoError(t, err)
	assert.Nil(t, esc.AssignedTo)

	c, _ := f.repo.FindByID(context.Background(), id)
	assert.Nil(t, c.AssignedToID)
}

func TestEscalatePastOwnerConflicts(t *testing.T) {
	f := newComplaintFixture()
	f.addStaff(model.RoleSales)
	f.addStaff(model.RoleManager)
	owner := f.addStaff(model.RoleOwner)
	resp := f.file(t)
	id := uuid.MustParse(resp.ID)
	ctx := context.Background()

	_, err := f.svc.Escalate(ctx, staffActor(owner), id, dto.EscalateComplaintRequest{Reason: "step one"})
	require.NoError(t, err)
	_, err = f.svc.Escalate(ctx, staffActor(owner), id, dto.EscalateComplaintRequest{Reason: "step two"})
	require.NoError(t, err)

	_, err = f.svc.Escalate(ctx, staffActor(owner), id, dto.EscalateComplaintRequest{Reason: "step three"})
	e, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindConflict, e.Kind)
	assert.Equal(t, string(model.RoleOwner), e.CurrentVal)
}

func TestEscalateBelowLevelForbidden(t *testing.T) {
	f := newComplaintFixture()
	sales := f.addStaff(model.RoleSales)
	f.addStaff(model.RoleManager)
	resp := f.file(t)
	id := uuid.MustParse(resp.ID)
	ctx := context.Background()

	_, err := f.svc.Escalate(ctx, staffActor(sales), id, dto.EscalateComplaintRequest{Reason: "over my head"})
	require.NoError(t, err)

	// Now at manager level; the sales rep can no longer act on it.
	_, err = f.svc.Escalate(ctx, staffActor(sales), id, dto.EscalateComplaintRequest{Reason: "again"})
	e, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindForbidden, e.Kind)
}

func TestSuperuserActsWithOwnerAuthority(t *testing.T) {
	f := newComplaintFixture()
	f.addStaff(model.RoleSales)
	resp := f.file(t)
	id := uuid.MustParse(resp.ID)

	esc, err := f.svc.Escalate(context.Background(), superuserActor(), id, dto.EscalateComplaintRequest{Reason: "platform review"})
	require.NoError(t, err)
	assert.Equal(t, string(model.RoleManager), esc.NewLevel)
}

func TestComplaintWorkflowSurvivesLoadReadFailures(t *testing.T) {
	f := newComplaintFixture()
	sales := f.addStaff(model.RoleSales)
	f.addStaff(model.RoleManager)
	ctx := context.Background()

	// Assignment reads fail throughout; filing and escalation still go
	// through, just unassigned.
	f.linkRepo.countErr = errors.New("replica down")

	resp := f.file(t)
	assert.Nil(t, resp.AssignedTo)

	esc, err := f.svc.Escalate(ctx, staffActor(sales), uuid.MustParse(resp.ID), dto.EscalateComplaintRequest{
		Reason: "needs a manager",
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.RoleManager), esc.NewLevel)
	assert.Nil(t, esc.AssignedTo)

	c, ferr := f.repo.FindByID(ctx, uuid.MustParse(resp.ID))
	require.NoError(t, ferr)
	assert.Equal(t, model.RoleManager, c.EscalationLevel)
	assert.Nil(t, c.AssignedToID)
}

func TestResolveStampsResolverAndNotes(t *testing.T) {
	f := newComplaintFixture()
	sales := f.addStaff(model.RoleSales)
	resp := f.file(t)
	id := uuid.MustParse(resp.ID)

	status, err := f.svc.UpdateStatus(context.Background(), staffActor(sales), id, dto.ComplaintStatusRequest{
		Status:          model.ComplaintStatusResolved,
		ResolutionNotes: "refunded the damaged crates",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ComplaintStatusOpen, status.OldStatus)
	assert.Equal(t, model.ComplaintStatusResolved, status.NewStatus)
	require.NotNil(t, status.ResolvedAt)
	require.NotNil(t, status.ResolvedBy)
	assert.Equal(t, sales.UserID.String(), *status.ResolvedBy)

	// creation + status change + resolution
	require.Len(t, f.repo.notes, 3)
	assert.Equal(t, model.NoteTypeResolution, f.repo.notes[2].NoteType)
	assert.Equal(t, "refunded the damaged crates", f.repo.notes[2].Content)
}

func TestResolvedOnlyMovesToClosed(t *testing.T) {
	f := newComplaintFixture()
	sales := f.addStaff(model.RoleSales)
	resp := f.file(t)
	id := uuid.MustParse(resp.ID)
	ctx := context.Background()
	actor := staffActor(sales)

	_, err := f.svc.UpdateStatus(ctx, actor, id, dto.ComplaintStatusRequest{Status: model.ComplaintStatusResolved})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, actor, id, dto.ComplaintStatusRequest{Status: model.ComplaintStatusInProgress})
	e, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindConflict, e.Kind)

	status, err := f.svc.UpdateStatus(ctx, actor, id, dto.ComplaintStatusRequest{Status: model.ComplaintStatusClosed})
	require.NoError(t, err)
	assert.Equal(t, model.ComplaintStatusClosed, status.NewStatus)

	// closed is terminal
	_, err = f.svc.UpdateStatus(ctx, actor, id, dto.ComplaintStatusRequest{Status: model.ComplaintStatusOpen})
	e, ok = apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindConflict, e.Kind)
}

func TestConsumerCannotWriteInternalNote(t *testing.T) {
	f := newComplaintFixture()
	resp := f.file(t)
	id := uuid.MustParse(resp.ID)

	_, err := f.svc.AddNote(context.Background(), consumerActor(f.consumer), id, dto.ComplaintNoteRequest{
		Content:    "any update?",
		IsInternal: true,
	})
	e, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindForbidden, e.Kind)
}

func TestListNotesHidesInternalFromConsumer(t *testing.T) {
	f := newComplaintFixture()
	sales := f.addStaff(model.RoleSales)
	f.addStaff(model.RoleManager)
	resp := f.file(t)
	id := uuid.MustParse(resp.ID)
	ctx := context.Background()

	// Escalation notes are internal.
	_, err := f.svc.Escalate(ctx, staffActor(sales), id, dto.EscalateComplaintRequest{Reason: "internal reasoning"})
	require.NoError(t, err)

	staffNotes, err := f.svc.ListNotes(ctx, staffActor(sales), id)
	require.NoError(t, err)
	require.Len(t, staffNotes, 2)

	consumerNotes, err := f.svc.ListNotes(ctx, consumerActor(f.consumer), id)
	require.NoError(t, err)
	require.Len(t, consumerNotes, 1)
	assert.False(t, consumerNotes[0].IsInternal)
}
