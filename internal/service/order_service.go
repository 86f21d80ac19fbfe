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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService drives order fulfillment. Confirmation is the only operation
// that touches stock, and it is all-or-nothing: either every line is covered
// and every decrement commits, or nothing changes.
type OrderService interface {
	Create(ctx context.Context, actor *identity.Actor, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Confirm(ctx context.Context, actor *identity.Actor, orderID uuid.UUID) (*dto.OrderStatusResponse, error)
	Reject(ctx context.Context, actor *identity.Actor, orderID uuid.UUID, comment string) (*dto.OrderStatusResponse, error)
	Cancel(ctx context.Context, actor *identity.Actor, orderID uuid.UUID) (*dto.OrderStatusResponse, error)
	Dispatch(ctx context.Context, actor *identity.Actor, orderID uuid.UUID) (*dto.OrderStatusResponse, error)
	Complete(ctx context.Context, actor *identity.Actor, orderID uuid.UUID) (*dto.OrderStatusResponse, error)
	Get(ctx context.Context, actor *identity.Actor, orderID uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, actor *identity.Actor, filter dto.OrderFilter) (*dto.OrderListResponse, error)
}

type orderService struct {
	repo        repository.OrderRepository
	productRepo repository.ProductRepository
	linkRepo    repository.LinkRepository
	dispatcher  *worker.Dispatcher
}

func NewOrderService(
	repo repository.OrderRepository,
	productRepo repository.ProductRepository,
	linkRepo repository.LinkRepository,
	dispatcher *worker.Dispatcher,
) OrderService {
	return &orderService{repo: repo, productRepo: productRepo, linkRepo: linkRepo, dispatcher: dispatcher}
}

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Create places a pending order. The consumer must hold an accepted link
// with the supplier; availability is NOT checked here — stock is only
// inspected and decremented at confirmation.
func (s *orderService) Create(ctx context.Context, actor *identity.Actor, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if actor.Kind != identity.KindConsumer {
		return nil, apierror.Forbidden("only consumers can place orders")
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, apierror.Validation("supplier_id is not a valid uuid")
	}
	consumerID := actor.Consumer.ID

	if _, err := s.linkRepo.FindAcceptedPair(ctx, consumerID, supplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Forbidden("no accepted link with this supplier")
		}
		return nil, err
	}

	// Resolve products and build lines before opening the transaction.
	items := make([]model.OrderItem, 0, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apierror.Validation("product_id is not a valid uuid")
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NotFound("product " + item.ProductID + " not found")
			}
			return nil, err
		}
		if p.SupplierID != supplierID {
			return nil, apierror.Validation("product " + p.Name + " belongs to another supplier")
		}
		if !p.Active {
			return nil, apierror.Validation("product " + p.Name + " is inactive")
		}
		// The caller's price is authoritative when present, zero included
		// (promotional free lines); the catalog price only fills absence.
		unitPrice := p.Price
		if item.UnitPrice != nil {
			if item.UnitPrice.IsNegative() {
				return nil, apierror.Validation("unit_price cannot be negative")
			}
			unitPrice = *item.UnitPrice
		}
		lineTotal := item.Quantity.Mul(unitPrice)
		total = total.Add(lineTotal)
		items = append(items, model.OrderItem{
			ProductID: pid,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
			LineTotal: lineTotal,
			Remark:    item.Remark,
		})
	}

	order := &model.Order{
		ConsumerID:      consumerID,
		SupplierID:      supplierID,
		Status:          model.OrderStatusPending,
		TotalAmount:     total,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		Items:           items,
	}
	if req.RequestedDeliveryDate != nil {
		d, err := time.Parse("2006-01-02", *req.RequestedDeliveryDate)
		if err != nil {
			return nil, apierror.Validation("requested_delivery_date must be YYYY-MM-DD")
		}
		order.RequestedDeliveryDate = &d
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, order); err != nil {
			return err
		}
		return s.repo.CreateHistoryTx(tx, &model.OrderStatusHistory{
			OrderID:     order.ID,
			OldStatus:   "",
			NewStatus:   model.OrderStatusPending,
			ChangedByID: &actor.UserID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, worker.NotificationPayload{
		Event:      "order.placed",
		SupplierID: supplierID.String(),
		EntityID:   order.ID.String(),
	})
	return orderToResponse(order), nil
}

// Confirm transitions pending → confirmed, decrementing stock for every line
// inside one transaction. Each product row is locked before its availability
// check so concurrent confirmations over the same product serialize. When any
// line is short the whole transaction rolls back and the error enumerates
// every shortfall, not just the first.
func (s *orderService) Confirm(ctx context.Context, actor *identity.Actor, orderID uuid.UUID) (*dto.OrderStatusResponse, error) {
	order, err := s.loadForSupplierAction(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPending {
		return nil, apierror.Conflict("only pending orders can be confirmed", order.Status)
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var shortfalls []apierror.StockShortfall
		for _, item := range order.Items {
			p, err := s.productRepo.FindByIDForUpdateTx(tx, item.ProductID)
			if err != nil {
				return err
			}
			if p.StockQuantity.LessThan(item.Quantity) {
				shortfalls = append(shortfalls, apierror.StockShortfall{
					ProductID: p.ID.String(),
					Name:      p.Name,
					Available: p.StockQuantity,
					Required:  item.Quantity,
				})
			}
		}
		if len(shortfalls) > 0 {
			// Returning an error aborts the transaction; no decrement
			// has been issued yet.
			return apierror.InsufficientStock(shortfalls)
		}
		// Flip the status before touching stock: the guard is what makes a
		// concurrent double-confirm lose, so the loser must bail out before
		// its first decrement.
		if err := s.repo.UpdateStatusTx(tx, order.ID, model.OrderStatusPending, model.OrderStatusConfirmed); err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := s.productRepo.DecrementStockTx(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return s.repo.CreateHistoryTx(tx, &model.OrderStatusHistory{
			OrderID:     order.ID,
			OldStatus:   model.OrderStatusPending,
			NewStatus:   model.OrderStatusConfirmed,
			ChangedByID: &actor.UserID,
		})
	})
	if err != nil {
		return nil, s.staleToConflict(ctx, order.ID, err)
	}

	s.notify(ctx, worker.NotificationPayload{
		Event:      "order.confirmed",
		ConsumerID: order.ConsumerID.String(),
		EntityID:   order.ID.String(),
	})
	return &dto.OrderStatusResponse{
		ID:        order.ID.String(),
		OldStatus: model.OrderStatusPending,
		NewStatus: model.OrderStatusConfirmed,
	}, nil
}

// Reject transitions pending → rejected. Stock is untouched.
func (s *orderService) Reject(ctx context.Context, actor *identity.Actor, orderID uuid.UUID, comment string) (*dto.OrderStatusResponse, error) {
	order, err := s.loadForSupplierAction(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPending {
		return nil, apierror.Conflict("only pending orders can be rejected", order.Status)
	}
	resp, err := s.transition(ctx, order, model.OrderStatusRejected, actor.UserID, comment)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, worker.NotificationPayload{
		Event:      "order.rejected",
		ConsumerID: order.ConsumerID.String(),
		EntityID:   order.ID.String(),
	})
	return resp, nil
}

// Cancel lets the consumer withdraw an order before the supplier has acted
// on it. Confirmed orders cannot be cancelled from the consumer side.
func (s *orderService) Cancel(ctx context.Context, actor *identity.Actor, orderID uuid.UUID) (*dto.OrderStatusResponse, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("order not found")
		}
		return nil, err
	}
	if !actor.IsConsumer(order.ConsumerID) {
		return nil, apierror.Forbidden("order belongs to another consumer")
	}
	if order.Status != model.OrderStatusPending {
		return nil, apierror.Conflict("only pending orders can be cancelled", order.Status)
	}
	return s.transition(ctx, order, model.OrderStatusCancelled, actor.UserID, "")
}

// Dispatch transitions confirmed → in_delivery.
func (s *orderService) Dispatch(ctx context.Context, actor *identity.Actor, orderID uuid.UUID) (*dto.OrderStatusResponse, error) {
	order, err := s.loadForSupplierAction(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusConfirmed {
		return nil, apierror.Conflict("only confirmed orders can be dispatched", order.Status)
	}
	return s.transition(ctx, order, model.OrderStatusInDelivery, actor.UserID, "")
}

// Complete transitions in_delivery → completed.
func (s *orderService) Complete(ctx context.Context, actor *identity.Actor, orderID uuid.UUID) (*dto.OrderStatusResponse, error) {
	order, err := s.loadForSupplierAction(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusInDelivery {
		return nil, apierror.Conflict("only orders in delivery can be completed", order.Status)
	}
	return s.transition(ctx, order, model.OrderStatusCompleted, actor.UserID, "")
}

func (s *orderService) Get(ctx context.Context, actor *identity.Actor, orderID uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("order not found")
		}
		return nil, err
	}
	if !actor.IsConsumer(order.ConsumerID) && !actor.IsStaffOf(order.SupplierID) {
		return nil, apierror.Forbidden("no access to this order")
	}
	return orderToResponse(order), nil
}

func (s *orderService) List(ctx context.Context, actor *identity.Actor, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	normalizeOrderFilter(&filter)

	var orders []model.Order
	var total int64
	var err error
	switch actor.Kind {
	case identity.KindConsumer:
		orders, total, err = s.repo.ListByConsumer(ctx, actor.Consumer.ID, filter)
	case identity.KindStaff:
		orders, total, err = s.repo.ListBySupplier(ctx, actor.Staff.SupplierID, filter)
	case identity.KindSuperuser:
		orders, total, err = s.repo.ListAll(ctx, filter)
	default:
		return nil, apierror.Forbidden("no profile associated with this account")
	}
	if err != nil {
		return nil, err
	}

	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, *orderToResponse(&orders[i]))
	}
	return &dto.OrderListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *orderService) loadForSupplierAction(ctx context.Context, actor *identity.Actor, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("order not found")
		}
		return nil, err
	}
	if !actor.IsStaffOf(order.SupplierID) {
		return nil, apierror.Forbidden("order belongs to another supplier")
	}
	return order, nil
}

func (s *orderService) transition(ctx context.Context, order *model.Order, target string, changedBy uuid.UUID, comment string) (*dto.OrderStatusResponse, error) {
	old := order.Status
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateStatusTx(tx, order.ID, old, target); err != nil {
			return err
		}
		return s.repo.CreateHistoryTx(tx, &model.OrderStatusHistory{
			OrderID:     order.ID,
			OldStatus:   old,
			NewStatus:   target,
			ChangedByID: &changedBy,
			Comment:     comment,
		})
	})
	if err != nil {
		return nil, s.staleToConflict(ctx, order.ID, err)
	}
	order.Status = target
	return &dto.OrderStatusResponse{ID: order.ID.String(), OldStatus: old, NewStatus: target}, nil
}

// staleToConflict turns a lost status-guard race into the same Conflict the
// caller would have seen had the other request committed first.
func (s *orderService) staleToConflict(ctx context.Context, orderID uuid.UUID, err error) error {
	if !errors.Is(err, repository.ErrStaleStatus) {
		return err
	}
	current := ""
	if fresh, ferr := s.repo.FindByID(ctx, orderID); ferr == nil {
		current = fresh.Status
	}
	return apierror.Conflict("order was modified by another request", current)
}

func (s *orderService) notify(ctx context.Context, payload worker.NotificationPayload) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueNotification(ctx, payload); err != nil {
		log.Warn().Err(err).Str("event", payload.Event).Msg("failed to enqueue notification")
	}
}

func normalizeOrderFilter(f *dto.OrderFilter) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}
}

func orderToResponse(o *model.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		r := dto.OrderItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
			Remark:    item.Remark,
		}
		if item.Product != nil {
			r.Product = item.Product.Name
		}
		items = append(items, r)
	}
	return &dto.OrderResponse{
		ID:              o.ID.String(),
		ConsumerID:      o.ConsumerID.String(),
		SupplierID:      o.SupplierID.String(),
		Status:          o.Status,
		Items:           items,
		TotalAmount:     o.TotalAmount,
		DeliveryAddress: o.DeliveryAddress,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
	}
}
