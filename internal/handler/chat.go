package handler

import (
	"net/http"

	"scp/internal/dto"
	"scp/internal/middleware"
	"scp/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct{ svc service.ChatService }

func NewChatHandler(svc service.ChatService) *ChatHandler { return &ChatHandler{svc: svc} }

// CreateConversation godoc
// @Summary      Open a conversation
// @Description  Consumer threads are routed to the link's assigned sales rep, falling back to the least-loaded rep.
// @Tags         conversations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateConversationRequest true "Thread details"
// @Success      201  {object} dto.ConversationResponse
// @Router       /v1/conversations [post]
func (h *ChatHandler) CreateConversation(c *gin.Context) {
	var req dto.CreateConversationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateConversation(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SendMessage godoc
// @Summary      Send a message
// @Tags         conversations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Conversation UUID"
// @Param        body body dto.SendMessageRequest true "Message"
// @Success      201  {object} dto.MessageResponse
// @Router       /v1/conversations/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SendMessage(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListMessages godoc
// @Summary      List messages in a conversation
// @Tags         conversations
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Conversation UUID"
// @Success      200  {array} dto.MessageResponse
// @Router       /v1/conversations/{id}/messages [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListMessages(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List conversations visible to the caller
// @Tags         conversations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} dto.ConversationResponse
// @Router       /v1/conversations [get]
func (h *ChatHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
