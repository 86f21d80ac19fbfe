package handler

import (
	"context"
	"net/http"

	"scp/internal/dto"
	"scp/internal/identity"
	"scp/internal/middleware"
	"scp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler { return &OrdersHandler{svc: svc} }

// Create godoc
// @Summary      Place an order
// @Description  Creates a pending order against an accepted supplier link. Stock is not checked until confirmation.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateOrderRequest true "Order lines"
// @Success      201  {object} dto.OrderResponse
// @Failure      403  {object} apierror.Error
// @Router       /v1/orders [post]
func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Confirm godoc
// @Summary      Confirm a pending order
// @Description  Atomically checks and decrements stock for every line. On shortage nothing is decremented and the response lists every short line.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Order UUID"
// @Success      200  {object} dto.OrderStatusResponse
// @Failure      409  {object} apierror.Error
// @Router       /v1/orders/{id}/confirm [post]
func (h *OrdersHandler) Confirm(c *gin.Context) {
	h.action(c, h.svc.Confirm)
}

// Reject godoc
// @Summary      Reject a pending order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Order UUID"
// @Success      200  {object} dto.OrderStatusResponse
// @Router       /v1/orders/{id}/reject [post]
func (h *OrdersHandler) Reject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	// Optional comment body
	var body struct {
		Comment string `json:"comment"`
	}
	_ = c.ShouldBindJSON(&body)

	resp, err := h.svc.Reject(c.Request.Context(), middleware.GetActor(c), id, body.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary      Cancel an own pending order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Order UUID"
// @Success      200  {object} dto.OrderStatusResponse
// @Router       /v1/orders/{id}/cancel [post]
func (h *OrdersHandler) Cancel(c *gin.Context) {
	h.action(c, h.svc.Cancel)
}

// Dispatch godoc
// @Summary      Mark a confirmed order as in delivery
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Order UUID"
// @Success      200  {object} dto.OrderStatusResponse
// @Router       /v1/orders/{id}/dispatch [post]
func (h *OrdersHandler) Dispatch(c *gin.Context) {
	h.action(c, h.svc.Dispatch)
}

// Complete godoc
// @Summary      Mark a delivered order as completed
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Order UUID"
// @Success      200  {object} dto.OrderStatusResponse
// @Router       /v1/orders/{id}/complete [post]
func (h *OrdersHandler) Complete(c *gin.Context) {
	h.action(c, h.svc.Complete)
}

// Get godoc
// @Summary      Fetch one order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Order UUID"
// @Success      200  {object} dto.OrderResponse
// @Router       /v1/orders/{id} [get]
func (h *OrdersHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List orders visible to the caller
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Filter by status"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Page size (default 50)"
// @Success      200  {object} dto.OrderListResponse
// @Router       /v1/orders [get]
func (h *OrdersHandler) List(c *gin.Context) {
	var filter dto.OrderFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), middleware.GetActor(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) action(c *gin.Context, fn func(ctx context.Context, actor *identity.Actor, id uuid.UUID) (*dto.OrderStatusResponse, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := fn(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
