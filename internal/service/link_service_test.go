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

type linkFixture struct {
	linkRepo  *stubLinkRepo
	staffRepo *stubStaffRepo
	convRepo  *stubConversationRepo
	svc       service.LinkService
	supplier  *model.SupplierProfile
	consumer  *model.ConsumerProfile
}

func newLinkFixture() *linkFixture {
	linkRepo := newStubLinkRepo()
	staffRepo := newStubStaffRepo()
	convRepo := newStubConversationRepo()
	assignment := service.NewAssignmentService(staffRepo, linkRepo, convRepo)

	supplier := &model.SupplierProfile{ID: uuid.New(), CompanyName: "Acme Foods", IsVerified: true}
	staffRepo.suppliers[supplier.ID] = supplier
	consumer := &model.ConsumerProfile{ID: uuid.New(), UserID: uuid.New(), BusinessName: "Cafe One"}

	return &linkFixture{
		linkRepo:  linkRepo,
		staffRepo: staffRepo,
		convRepo:  convRepo,
		svc:       service.NewLinkService(linkRepo, staffRepo, assignment, nil),
		supplier:  supplier,
		consumer:  consumer,
	}
}

func (f *linkFixture) addStaff(role model.StaffRole) *model.SupplierStaff {
	s := &model.SupplierStaff{ID: uuid.New(), UserID: uuid.New(), SupplierID: f.supplier.ID, Role: role}
	f.staffRepo.staff[s.ID] = s
	return s
}

func (f *linkFixture) request(t *testing.T) *dto.LinkResponse {
	t.Helper()
	resp, err := f.svc.Request(context.Background(), consumerActor(f.consumer), dto.RequestLinkRequest{
		SupplierID: f.supplier.ID.String(),
	})
	require.NoError(t, err)
	return resp
}

func TestRequestLinkCreatesPending(t *testing.T) {
	f := newLinkFixture()
	resp := f.request(t)

	assert.Equal(t, model.LinkStatusPending, resp.Status)
	require.Len(t, f.linkRepo.history, 1)
	assert.Equal(t, "", f.linkRepo.history[0].OldStatus)
	assert.Equal(t, model.LinkStatusPending, f.linkRepo.history[0].NewStatus)
}

func TestRequestLinkDuplicateConflicts(t *testing.T) {
	f := newLinkFixture()
	f.request(t)

	_, err := f.svc.Request(context.Background(), consumerActor(f.consumer), dto.RequestLinkRequest{
		SupplierID: f.supplier.ID.String(),
	})
	e, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindConflict, e.Kind)
	assert.Equal(t, model.LinkStatusPending, e.CurrentVal)
}

func TestRequestLinkAfterRejectionRecyclesRow(t *testing.T) {
	f := newLinkFixture()
	staff := f.addStaff(model.RoleSales)
	first := f.request(t)

	linkID := uuid.MustParse(first.ID)
	_, err := f.svc.Reject(context.Background(), staffActor(staff), linkID)
	require.NoError(t, err)

	second := f.request(t)
	assert.Equal(t, first.ID, second.ID, "pair is unique, the row is reused")
	assert.Equal(t, model.LinkStatusPending, second.Status)
	assert.Nil(t, second.AssignedSalesRep)
}

func TestApproveAssignsLeastLoadedRep(t *testing.T) {
	f := newLinkFixture()
	busy := f.addStaff(model.RoleSales)
	idle := f.addStaff(model.RoleSales)
	approver := f.addStaff(model.RoleManager)

	// Load one rep so the other must win.
	busyID := busy.ID
	f.linkRepo.links[uuid.New()] = &model.ConsumerSupplierLink{
		ID: uuid.New(), ConsumerID: uuid.New(), SupplierID: f.supplier.ID,
		Status: model.LinkStatusAccepted, AssignedSalesRepID: &busyID,
	}

	resp := f.request(t)
	action, err := f.svc.Approve(context.Background(), staffActor(approver), uuid.MustParse(resp.ID))
	require.NoError(t, err)

	assert.Equal(t, model.LinkStatusPending, action.OldStatus)
	assert.Equal(t, model.LinkStatusAccepted, action.NewStatus)
	require.NotNil(t, action.AssignedSalesRep)
	assert.Equal(t, idle.ID.String(), *action.AssignedSalesRep)
}

func TestApproveWithoutSalesStaffLeavesUnassigned(t *testing.T) {
	f := newLinkFixture()
	approver := f.addStaff(model.RoleOwner)

	resp := f.request(t)
	action, err := f.svc.Approve(context.Background(), staffActor(approver), uuid.MustParse(resp.ID))
	require.NoError(t, err)

	// Owner is the only staff — no sales reps to assign.
	assert.Equal(t, model.LinkStatusAccepted, action.NewStatus)
	assert.Nil(t, action.AssignedSalesRep)
}

func TestApproveNonPendingConflicts(t *testing.T) {
	f := newLinkFixture()
	f.addStaff(model.RoleSales)
	approver := f.addStaff(model.RoleManager)

	resp := f.request(t)
	id := uuid.MustParse(resp.ID)
	_, err := f.svc.Approve(context.Background(), staffActor(approver), id)
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), staffActor(approver), id)
	e, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindConflict, e.Kind)
	assert.Equal(t, model.LinkStatusAccepted, e.CurrentVal)
}

func TestApproveForeignSupplierForbidden(t *testing.T) {
	f := newLinkFixture()
	resp := f.request(t)

	outsider := &model.SupplierStaff{ID: uuid.New(), UserID: uuid.New(), SupplierID: uuid.New(), Role: model.RoleOwner}
	_, err := f.svc.Approve(context.Background(), staffActor(outsider), uuid.MustParse(resp.ID))
	e, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindForbidden, e.Kind)
}

func TestBlockWritesHistory(t *testing.T) {
	f := newLinkFixture()
	staff := f.addStaff(model.RoleOwner)
	resp := f.request(t)

	action, err := f.svc.Block(context.Background(), staffActor(staff), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, model.LinkStatusBlocked, action.NewStatus)

	// creation + block
	require.Len(t, f.linkRepo.history, 2)
	assert.Equal(t, model.LinkStatusPending, f.linkRepo.history[1].OldStatus)
	assert.Equal(t, model.LinkStatusBlocked, f.linkRepo.history[1].NewStatus)
}

func TestCancelOnlyWhilePending(t *testing.T) {
	f := newLinkFixture()
	staff := f.addStaff(model.RoleManager)
	resp := f.request(t)
	id := uuid.MustParse(resp.ID)

	_, err := f.svc.Approve(context.Background(), staffActor(staff), id)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), consumerActor(f.consumer), id)
	e, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindConflict, e.Kind)
}

func TestCancelPendingSucceeds(t *testing.T) {
	f := newLinkFixture()
	resp := f.request(t)

	action, err := f.svc.Cancel(context.Background(), consumerActor(f.consumer), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, model.LinkStatusCancelled, action.NewStatus)

	// Cancelled rows are reusable like rejected ones.
	again := f.request(t)
	assert.Equal(t, resp.ID, again.ID)
}

func TestApproveSucceedsWhenLoadReadsFail(t *testing.T) {
	f := newLinkFixture()
	f.addStaff(model.RoleSales)
	approver := f.addStaff(model.RoleManager)
	resp := f.request(t)

	// Rep selection reads load counts; a failing read must not block the
	// approval, only leave the link unassigned.
	f.linkRepo.countErr = errors.New("replica down")
	action, err := f.svc.Approve(context.Background(), staffActor(approver), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, model.LinkStatusAccepted, action.NewStatus)
	assert.Nil(t, action.AssignedSalesRep)

	link, ferr := f.linkRepo.FindByID(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, ferr)
	assert.Equal(t, model.LinkStatusAccepted, link.Status)
}

func TestApproveSurfacesHistoryWriteFailure(t *testing.T) {
	f := newLinkFixture()
	approver := f.addStaff(model.RoleOwner)
	resp := f.request(t)

	// The status flip and its audit row commit together; a history write
	// failure fails the whole approval instead of losing the row.
	f.linkRepo.historyErr = errors.New("history insert failed")
	_, err := f.svc.Approve(context.Background(), staffActor(approver), uuid.MustParse(resp.ID))
	require.Error(t, err)
}

func TestRequestLinkRequiresConsumer(t *testing.T) {
	f := newLinkFixture()
	staff := f.addStaff(model.RoleSales)

	_, err := f.svc.Request(context.Background(), staffActor(staff), dto.RequestLinkRequest{
		SupplierID: f.supplier.ID.String(),
	})
	e, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindForbidden, e.Kind)
}

func TestRequestLinkUnknownSupplier(t *testing.T) {
	f := newLinkFixture()
	_, err := f.svc.Request(context.Background(), consumerActor(f.consumer), dto.RequestLinkRequest{
		SupplierID: uuid.NewString(),
	})
	e, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindNotFound, e.Kind)
}
