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

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ChatService manages conversations and messages. A consumer-facing thread
// is routed to the link's assigned sales rep when one exists, falling back
// to the least-loaded rep; the assignment never changes afterwards.
type ChatService interface {
	CreateConversation(ctx context.Context, actor *identity.Actor, req dto.CreateConversationRequest) (*dto.ConversationResponse, error)
	SendMessage(ctx context.Context, actor *identity.Actor, conversationID uuid.UUID, req dto.SendMessageRequest) (*dto.MessageResponse, error)
	ListMessages(ctx context.Context, actor *identity.Actor, conversationID uuid.UUID) ([]dto.MessageResponse, error)
	List(ctx context.Context, actor *identity.Actor) ([]dto.ConversationResponse, error)
}

type chatService struct {
	repo       repository.ConversationRepository
	linkRepo   repository.LinkRepository
	assignment AssignmentService
}

func NewChatService(
	repo repository.ConversationRepository,
	linkRepo repository.LinkRepository,
	assignment AssignmentService,
) ChatService {
	return &chatService{repo: repo, linkRepo: linkRepo, assignment: assignment}
}

func (s *chatService) CreateConversation(ctx context.Context, actor *identity.Actor, req dto.CreateConversationRequest) (*dto.ConversationResponse, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, apierror.Validation("supplier_id is not a valid uuid")
	}

	conv := &model.Conversation{
		SupplierID:  supplierID,
		Type:        valueOr(req.Type, model.ConversationSupplierConsumer),
		CreatedByID: &actor.UserID,
	}
	if req.OrderID != nil {
		oid, err := uuid.Parse(*req.OrderID)
		if err != nil {
			return nil, apierror.Validation("order_id is not a valid uuid")
		}
		conv.OrderID = &oid
	}

	switch conv.Type {
	case model.ConversationSupplierConsumer:
		if actor.Kind != identity.KindConsumer {
			return nil, apierror.Forbidden("only consumers can open supplier conversations")
		}
		consumerID := actor.Consumer.ID
		link, err := s.linkRepo.FindAcceptedPair(ctx, consumerID, supplierID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.Forbidden("no accepted link with this supplier")
			}
			return nil, err
		}
		conv.ConsumerID = &consumerID

		// Route to the link's rep; fall back to the least-loaded sales
		// rep when the link has none. Routing is best effort — a failing
		// load read leaves the thread unassigned.
		if link.AssignedSalesRepID != nil {
			conv.AssignedStaffID = link.AssignedSalesRepID
		} else {
			rep, err := s.assignment.PickLeastLoaded(ctx, supplierID, model.RoleSales)
			if err != nil {
				log.Warn().Err(err).Str("supplier_id", supplierID.String()).Msg("conversation routing skipped")
				rep = nil
			}
			if rep != nil {
				conv.AssignedStaffID = &rep.ID
			}
		}
	case model.ConversationSupplierInternal:
		if !actor.IsStaffOf(supplierID) {
			return nil, apierror.Forbidden("internal threads are for supplier staff")
		}
	default:
		return nil, apierror.Validation("unknown conversation type")
	}

	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conversationToResponse(conv), nil
}

func (s *chatService) SendMessage(ctx context.Context, actor *identity.Actor, conversationID uuid.UUID, req dto.SendMessageRequest) (*dto.MessageResponse, error) {
	conv, err := s.loadWithAccess(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		ConversationID: conv.ID,
		SenderID:       actor.UserID,
		Text:           req.Text,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.repo.Touch(ctx, conv.ID); err != nil {
		return nil, err
	}
	return messageToResponse(msg), nil
}

func (s *chatService) ListMessages(ctx context.Context, actor *identity.Actor, conversationID uuid.UUID) ([]dto.MessageResponse, error) {
	conv, err := s.loadWithAccess(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.repo.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, *messageToResponse(&msgs[i]))
	}
	return out, nil
}

func (s *chatService) List(ctx context.Context, actor *identity.Actor) ([]dto.ConversationResponse, error) {
	var convs []model.Conversation
	var err error
	switch actor.Kind {
	case identity.KindConsumer:
		convs, err = s.repo.ListByConsumer(ctx, actor.Consumer.ID)
	case identity.KindStaff:
		convs, err = s.repo.ListBySupplier(ctx, actor.Staff.SupplierID)
	case identity.KindSuperuser:
		convs, err = s.repo.ListAll(ctx)
	default:
		return nil, apierror.Forbidden("no profile associated with this account")
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.ConversationResponse, 0, len(convs))
	for i := range convs {
		out = append(out, *conversationToResponse(&convs[i]))
	}
	return out, nil
}

func (s *chatService) loadWithAccess(ctx context.Context, actor *identity.Actor, conversationID uuid.UUID) (*model.Conversation, error) {
	conv, err := s.repo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("conversation not found")
		}
		return nil, err
	}
	if conv.ConsumerID != nil && actor.IsConsumer(*conv.ConsumerID) {
		return conv, nil
	}
	if actor.IsStaffOf(conv.SupplierID) {
		return conv, nil
	}
	return nil, apierror.Forbidden("no access to this conversation")
}

func conversationToResponse(c *model.Conversation) *dto.ConversationResponse {
	resp := &dto.ConversationResponse{
		ID:         c.ID.String(),
		SupplierID: c.SupplierID.String(),
		Type:       c.Type,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  c.UpdatedAt.Format(time.RFC3339),
	}
	if c.ConsumerID != nil {
		id := c.ConsumerID.String()
		resp.ConsumerID = &id
	}
	if c.OrderID != nil {
		id := c.OrderID.String()
		resp.OrderID = &id
	}
	if c.AssignedStaffID != nil {
		id := c.AssignedStaffID.String()
		resp.AssignedStaff = &id
	}
	return resp
}

func messageToResponse(m *model.Message) *dto.MessageResponse {
	return &dto.MessageResponse{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		SenderID:       m.SenderID.String(),
		Text:           m.Text,
		SentAt:         m.SentAt.Format(time.RFC3339),
		IsRead:         m.IsRead,
	}
}
