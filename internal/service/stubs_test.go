package service_test

import (
	"context"

	"scp/internal/dto"
	"scp/internal/identity"
	"scp/internal/model"
	"scp/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory stubs ───────────────────────────────────────────────────────────
// The repository interfaces return gorm.ErrRecordNotFound on misses because
// the services branch on it; the stubs must do the same.

type stubUserRepo struct {
	users     map[uuid.UUID]*model.User
	consumers map[uuid.UUID]*model.ConsumerProfile
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:     make(map[uuid.UUID]*model.User),
		consumers: make(map[uuid.UUID]*model.ConsumerProfile),
	}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) CreateConsumer(_ context.Context, p *model.ConsumerProfile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.consumers[p.ID] = p
	return nil
}

func (r *stubUserRepo) FindConsumerByID(_ context.Context, id uuid.UUID) (*model.ConsumerProfile, error) {
	p, ok := r.consumers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubUserRepo) FindConsumerByUserID(_ context.Context, userID uuid.UUID) (*model.ConsumerProfile, error) {
	for _, p := range r.consumers {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

type stubStaffRepo struct {
	staff     map[uuid.UUID]*model.SupplierStaff
	suppliers map[uuid.UUID]*model.SupplierProfile
}

func newStubStaffRepo() *stubStaffRepo {
	return &stubStaffRepo{
		staff:     make(map[uuid.UUID]*model.SupplierStaff),
		suppliers: make(map[uuid.UUID]*model.SupplierProfile),
	}
}

func (r *stubStaffRepo) Create(_ context.Context, s *model.SupplierStaff) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.staff[s.ID] = s
	return nil
}

func (r *stubStaffRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SupplierStaff, error) {
	s, ok := r.staff[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubStaffRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*model.SupplierStaff, error) {
	for _, s := range r.staff {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubStaffRepo) FindByUserAndSupplier(_ context.Context, userID, supplierID uuid.UUID) (*model.SupplierStaff, error) {
	for _, s := range r.staff {
		if s.UserID == userID && s.SupplierID == supplierID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubStaffRepo) ListBySupplierAndRole(_ context.Context, supplierID uuid.UUID, role model.StaffRole) ([]model.SupplierStaff, error) {
	var out []model.SupplierStaff
	for _, s := range r.staff {
		if s.SupplierID == supplierID && s.Role == role {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubStaffRepo) CreateSupplier(_ context.Context, p *model.SupplierProfile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.suppliers[p.ID] = p
	return nil
}

func (r *stubStaffRepo) FindSupplierByID(_ context.Context, id uuid.UUID) (*model.SupplierProfile, error) {
	p, ok := r.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubStaffRepo) ListVerifiedSuppliers(_ context.Context) ([]model.SupplierProfile, error) {
	var out []model.SupplierProfile
	for _, p := range r.suppliers {
		if p.IsVerified {
			out = append(out, *p)
		}
	}
	return out, nil
}

var _ repository.StaffRepository = (*stubStaffRepo)(nil)

type stubLinkRepo struct {
	links   map[uuid.UUID]*model.ConsumerSupplierLink
	history []model.LinkStatusHistory

	countErr   error // injected into CountByAssignedRep
	historyErr error // injected into CreateHistoryTx
}

func newStubLinkRepo() *stubLinkRepo {
	return &stubLinkRepo{links: make(map[uuid.UUID]*model.ConsumerSupplierLink)}
}

func (r *stubLinkRepo) CreateTx(_ *gorm.DB, l *model.ConsumerSupplierLink) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	r.links[l.ID] = l
	return nil
}

func (r *stubLinkRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ConsumerSupplierLink, error) {
	l, ok := r.links[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return l, nil
}

func (r *stubLinkRepo) FindByPair(_ context.Context, consumerID, supplierID uuid.UUID) (*model.ConsumerSupplierLink, error) {
	for _, l := range r.links {
		if l.ConsumerID == consumerID && l.SupplierID == supplierID {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubLinkRepo) FindAcceptedPair(_ context.Context, consumerID, supplierID uuid.UUID) (*model.ConsumerSupplierLink, error) {
	for _, l := range r.links {
		if l.ConsumerID == consumerID && l.SupplierID == supplierID && l.Status == model.LinkStatusAccepted {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubLinkRepo) UpdateTx(_ *gorm.DB, l *model.ConsumerSupplierLink) error {
	r.links[l.ID] = l
	return nil
}

func (r *stubLinkRepo) CountByAssignedRep(_ context.Context, staffID uuid.UUID) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	var n int64
	for _, l := range r.links {
		if l.AssignedSalesRepID != nil && *l.AssignedSalesRepID == staffID {
			n++
		}
	}
	return n, nil
}

func (r *stubLinkRepo) CreateHistoryTx(_ *gorm.DB, h *model.LinkStatusHistory) error {
	if r.historyErr != nil {
		return r.historyErr
	}
	r.history = append(r.history, *h)
	return nil
}

func (r *stubLinkRepo) ListByConsumer(_ context.Context, consumerID uuid.UUID) ([]model.ConsumerSupplierLink, error) {
	var out []model.ConsumerSupplierLink
	for _, l := range r.links {
		if l.ConsumerID == consumerID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *stubLinkRepo) ListBySupplier(_ context.Context, supplierID uuid.UUID) ([]model.ConsumerSupplierLink, error) {
	var out []model.ConsumerSupplierLink
	for _, l := range r.links {
		if l.SupplierID == supplierID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *stubLinkRepo) ListAll(_ context.Context) ([]model.ConsumerSupplierLink, error) {
	var out []model.ConsumerSupplierLink
	for _, l := range r.links {
		out = append(out, *l)
	}
	return out, nil
}

func (r *stubLinkRepo) DB() *gorm.DB { return nil }

var _ repository.LinkRepository = (*stubLinkRepo)(nil)

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty decimal.Decimal) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.StockQuantity = p.StockQuantity.Sub(qty)
	return nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

type stubOrderRepo struct {
	orders  map[uuid.UUID]*model.Order
	history []model.OrderStatusHistory
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, from, to string) error {
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if o.Status != from {
		return repository.ErrStaleStatus
	}
	o.Status = to
	return nil
}

func (r *stubOrderRepo) CreateHistoryTx(_ *gorm.DB, h *model.OrderStatusHistory) error {
	r.history = append(r.history, *h)
	return nil
}

func (r *stubOrderRepo) ListByConsumer(_ context.Context, consumerID uuid.UUID, _ dto.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.orders {
		if o.ConsumerID == consumerID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) ListBySupplier(_ context.Context, supplierID uuid.UUID, _ dto.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.orders {
		if o.SupplierID == supplierID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) ListAll(_ context.Context, _ dto.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

type stubComplaintRepo struct {
	complaints map[uuid.UUID]*model.Complaint
	notes      []model.ComplaintNote
}

func newStubComplaintRepo() *stubComplaintRepo {
	return &stubComplaintRepo{complaints: make(map[uuid.UUID]*model.Complaint)}
}

func (r *stubComplaintRepo) CreateTx(_ *gorm.DB, c *model.Complaint) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.complaints[c.ID] = c
	return nil
}

func (r *stubComplaintRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Complaint, error) {
	c, ok := r.complaints[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubComplaintRepo) Update(_ context.Context, c *model.Complaint) error {
	r.complaints[c.ID] = c
	return nil
}

func (r *stubComplaintRepo) UpdateTx(_ *gorm.DB, c *model.Complaint) error {
	r.complaints[c.ID] = c
	return nil
}

func (r *stubComplaintRepo) CreateNoteTx(_ *gorm.DB, n *model.ComplaintNote) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	r.notes = append(r.notes, *n)
	return nil
}

func (r *stubComplaintRepo) ListNotes(_ context.Context, complaintID uuid.UUID, includeInternal bool) ([]model.ComplaintNote, error) {
	var out []model.ComplaintNote
	for _, n := range r.notes {
		if n.ComplaintID != complaintID {
			continue
		}
		if n.IsInternal && !includeInternal {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *stubComplaintRepo) ListByConsumer(_ context.Context, consumerID uuid.UUID, _ dto.ComplaintFilter) ([]model.Complaint, int64, error) {
	var out []model.Complaint
	for _, c := range r.complaints {
		if c.ConsumerID == consumerID {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubComplaintRepo) ListBySupplier(_ context.Context, supplierID uuid.UUID, _ dto.ComplaintFilter) ([]model.Complaint, int64, error) {
	var out []model.Complaint
	for _, c := range r.complaints {
		if c.SupplierID == supplierID {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubComplaintRepo) ListAll(_ context.Context, _ dto.ComplaintFilter) ([]model.Complaint, int64, error) {
	var out []model.Complaint
	for _, c := range r.complaints {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubComplaintRepo) DB() *gorm.DB { return nil }

var _ repository.ComplaintRepository = (*stubComplaintRepo)(nil)

type stubConversationRepo struct {
	conversations map[uuid.UUID]*model.Conversation
	messages      []model.Message
}

func newStubConversationRepo() *stubConversationRepo {
	return &stubConversationRepo{conversations: make(map[uuid.UUID]*model.Conversation)}
}

func (r *stubConversationRepo) Create(_ context.Context, c *model.Conversation) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.conversations[c.ID] = c
	return nil
}

func (r *stubConversationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Conversation, error) {
	c, ok := r.conversations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubConversationRepo) CountByAssignedStaff(_ context.Context, staffID uuid.UUID) (int64, error) {
	var n int64
	for _, c := range r.conversations {
		if c.AssignedStaffID != nil && *c.AssignedStaffID == staffID {
			n++
		}
	}
	return n, nil
}

func (r *stubConversationRepo) CreateMessage(_ context.Context, m *model.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.messages = append(r.messages, *m)
	return nil
}

func (r *stubConversationRepo) ListMessages(_ context.Context, conversationID uuid.UUID) ([]model.Message, error) {
	var out []model.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubConversationRepo) Touch(_ context.Context, _ uuid.UUID) error { return nil }

func (r *stubConversationRepo) ListByConsumer(_ context.Context, consumerID uuid.UUID) ([]model.Conversation, error) {
	var out []model.Conversation
	for _, c := range r.conversations {
		if c.ConsumerID != nil && *c.ConsumerID == consumerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubConversationRepo) ListBySupplier(_ context.Context, supplierID uuid.UUID) ([]model.Conversation, error) {
	var out []model.Conversation
	for _, c := range r.conversations {
		if c.SupplierID == supplierID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubConversationRepo) ListByAssignedStaff(_ context.Context, staffID uuid.UUID) ([]model.Conversation, error) {
	var out []model.Conversation
	for _, c := range r.conversations {
		if c.AssignedStaffID != nil && *c.AssignedStaffID == staffID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubConversationRepo) ListAll(_ context.Context) ([]model.Conversation, error) {
	var out []model.Conversation
	for _, c := range r.conversations {
		out = append(out, *c)
	}
	return out, nil
}

var _ repository.ConversationRepository = (*stubConversationRepo)(nil)

// ── Actor builders ────────────────────────────────────────────────────────────

func consumerActor(profile *model.ConsumerProfile) *identity.Actor {
	return &identity.Actor{
		UserID:   profile.UserID,
		Kind:     identity.KindConsumer,
		Consumer: profile,
	}
}

func staffActor(staff *model.SupplierStaff) *identity.Actor {
	return &identity.Actor{
		UserID: staff.UserID,
		Kind:   identity.KindStaff,
		Staff:  staff,
	}
}

func superuserActor() *identity.Actor {
	return &identity.Actor{UserID: uuid.New(), Kind: identity.KindSuperuser}
}
