package dto

// ─── Conversations ───────────────────────────────────────────────────────────

type CreateConversationRequest struct {
	SupplierID string  `json:"supplier_id" validate:"required,uuid"`
	OrderID    *string `json:"order_id"    validate:"omitempty,uuid"`
	Type       string  `json:"type"        validate:"omitempty,oneof=supplier_consumer supplier_internal"`
}

type ConversationResponse struct {
	ID            string  `json:"id"`
	SupplierID    string  `json:"supplier_id"`
	ConsumerID    *string `json:"consumer_id,omitempty"`
	OrderID       *string `json:"order_id,omitempty"`
	Type          string  `json:"type"`
	AssignedStaff *string `json:"assigned_staff,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

type MessageResponse struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	Text           string `json:"text"`
	SentAt         string `json:"sent_at"`
	IsRead         bool   `json:"is_read"`
}
