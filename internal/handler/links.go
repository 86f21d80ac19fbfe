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

type LinksHandler struct{ svc service.LinkService }

func NewLinksHandler(svc service.LinkService) *LinksHandler { return &LinksHandler{svc: svc} }

// Request godoc
// @Summary      Request a supplier link
// @Description  Consumer asks a supplier for an approved relationship. Re-requesting after a rejection or cancellation is allowed; duplicates conflict.
// @Tags         links
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RequestLinkRequest true "Target supplier"
// @Success      201  {object} dto.LinkResponse
// @Failure      409  {object} apierror.Error
// @Router       /v1/links [post]
func (h *LinksHandler) Request(c *gin.Context) {
	var req dto.RequestLinkRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Request(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Approve godoc
// @Summary      Approve a pending link
// @Description  Accepts the request and assigns the least-loaded sales rep when the supplier has sales staff.
// @Tags         links
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Link UUID"
// @Success      200  {object} dto.LinkActionResponse
// @Failure      409  {object} apierror.Error
// @Router       /v1/links/{id}/approve [post]
func (h *LinksHandler) Approve(c *gin.Context) {
	h.action(c, h.svc.Approve)
}

// Reject godoc
// @Summary      Reject a pending link
// @Tags         links
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Link UUID"
// @Success      200  {object} dto.LinkActionResponse
// @Router       /v1/links/{id}/reject [post]
func (h *LinksHandler) Reject(c *gin.Context) {
	h.action(c, h.svc.Reject)
}

// Block godoc
// @Summary      Block a pending link
// @Tags         links
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Link UUID"
// @Success      200  {object} dto.LinkActionResponse
// @Router       /v1/links/{id}/block [post]
func (h *LinksHandler) Block(c *gin.Context) {
	h.action(c, h.svc.Block)
}

// Cancel godoc
// @Summary      Cancel an own pending request
// @Tags         links
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Link UUID"
// @Success      200  {object} dto.LinkActionResponse
// @Router       /v1/links/{id}/cancel [post]
func (h *LinksHandler) Cancel(c *gin.Context) {
	h.action(c, h.svc.Cancel)
}

// Get godoc
// @Summary      Fetch one link
// @Tags         links
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Link UUID"
// @Success      200  {object} dto.LinkResponse
// @Router       /v1/links/{id} [get]
func (h *LinksHandler) Get(c *gin.Context) {
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
// @Summary      List links visible to the caller
// @Tags         links
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} dto.LinkResponse
// @Router       /v1/links [get]
func (h *LinksHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListSuppliers godoc
// @Summary      Verified supplier directory
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} dto.SupplierResponse
// @Router       /v1/suppliers [get]
func (h *LinksHandler) ListSuppliers(c *gin.Context) {
	resp, err := h.svc.ListSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LinksHandler) action(c *gin.Context, fn func(ctx context.Context, actor *identity.Actor, id uuid.UUID) (*dto.LinkActionResponse, error)) {
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
