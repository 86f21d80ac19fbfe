package dto

import "github.com/shopspring/decimal"

// ─── Requests ────────────────────────────────────────────────────────────────

type OrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"   validate:"required,gt=0"`
	// UnitPrice is captured from the caller at order time and is immutable
	// afterwards; zero is a valid price (free line). When omitted the
	// catalog price applies.
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,min=0"`
	Remark    string          `json:"remark"`
}

type CreateOrderRequest struct {
	SupplierID            string             `json:"supplier_id" validate:"required,uuid"`
	Items                 []OrderItemRequest `json:"items"       validate:"required,min=1,dive"`
	RequestedDeliveryDate *string            `json:"requested_delivery_date"` // YYYY-MM-DD
	DeliveryAddress       string             `json:"delivery_address"`
	Notes                 string             `json:"notes"`
}

// OrderFilter is bound from the query string of GET /v1/orders.
type OrderFilter struct {
	Status string `form:"status"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ProductID string          `json:"product_id"`
	Product   string          `json:"product"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Remark    string          `json:"remark,omitempty"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	ConsumerID      string              `json:"consumer_id"`
	SupplierID      string              `json:"supplier_id"`
	Status          string              `json:"status"`
	Items           []OrderItemResponse `json:"items"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	DeliveryAddress string              `json:"delivery_address,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	CreatedAt       string              `json:"created_at"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// OrderStatusResponse echoes the transition performed by
// confirm/reject/cancel/dispatch/complete.
type OrderStatusResponse struct {
	ID        string `json:"id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}
