package handler

import (
	"net/http"

	"scp/internal/dto"
	"scp/internal/middleware"
	"scp/internal/service"

	"github.com/gin-gonic/gin"
)

type ComplaintsHandler struct{ svc service.ComplaintService }

func NewComplaintsHandler(svc service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{svc: svc}
}

// Create godoc
// @Summary      File a complaint
// @Description  Opens a complaint at the sales level, auto-assigned to the least-loaded sales rep.
// @Tags         complaints
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateComplaintRequest true "Complaint details"
// @Success      201  {object} dto.ComplaintResponse
// @Failure      403  {object} apierror.Error
// @Router       /v1/complaints [post]
func (h *ComplaintsHandler) Create(c *gin.Context) {
	var req dto.CreateComplaintRequest
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

// Escalate godoc
// @Summary      Escalate a complaint one level
// @Description  Raises sales → manager → owner. Escalating past owner is a conflict; the level change and its audit note commit together.
// @Tags         complaints
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Complaint UUID"
// @Param        body body dto.EscalateComplaintRequest true "Escalation reason"
// @Success      200  {object} dto.EscalateComplaintResponse
// @Failure      409  {object} apierror.Error
// @Router       /v1/complaints/{id}/escalate [post]
func (h *ComplaintsHandler) Escalate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.EscalateComplaintRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Escalate(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary      Change complaint status
// @Tags         complaints
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Complaint UUID"
// @Param        body body dto.ComplaintStatusRequest true "Target status"
// @Success      200  {object} dto.ComplaintStatusResponse
// @Router       /v1/complaints/{id}/status [put]
func (h *ComplaintsHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ComplaintStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddNote godoc
// @Summary      Append a note to a complaint
// @Tags         complaints
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Complaint UUID"
// @Param        body body dto.ComplaintNoteRequest true "Note"
// @Success      201  {object} dto.ComplaintNoteResponse
// @Router       /v1/complaints/{id}/notes [post]
func (h *ComplaintsHandler) AddNote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ComplaintNoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddNote(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListNotes godoc
// @Summary      List complaint notes
// @Description  Internal notes are visible to supplier staff only.
// @Tags         complaints
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Complaint UUID"
// @Success      200  {array} dto.ComplaintNoteResponse
// @Router       /v1/complaints/{id}/notes [get]
func (h *ComplaintsHandler) ListNotes(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListNotes(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Fetch one complaint
// @Tags         complaints
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Complaint UUID"
// @Success      200  {object} dto.ComplaintResponse
// @Router       /v1/complaints/{id} [get]
func (h *ComplaintsHandler) Get(c *gin.Context) {
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
// @Summary      List complaints visible to the caller
// @Tags         complaints
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Filter by status"
// @Param        level  query string false "Filter by escalation level"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Page size (default 50)"
// @Success      200  {object} dto.ComplaintListResponse
// @Router       /v1/complaints [get]
func (h *ComplaintsHandler) List(c *gin.Context) {
	var filter dto.ComplaintFilter
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
