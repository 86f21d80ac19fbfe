package dto

// ─── Relationship links ──────────────────────────────────────────────────────

type RequestLinkRequest struct {
	SupplierID string  `json:"supplier_id" validate:"required,uuid"`
	Notes      *string `json:"notes"`
}

type LinkResponse struct {
	ID               string  `json:"id"`
	ConsumerID       string  `json:"consumer_id"`
	SupplierID       string  `json:"supplier_id"`
	ConsumerName     string  `json:"consumer_name,omitempty"`
	SupplierName     string  `json:"supplier_name,omitempty"`
	Status           string  `json:"status"`
	RequestedAt      string  `json:"requested_at"`
	ApprovedAt       *string `json:"approved_at,omitempty"`
	AssignedSalesRep *string `json:"assigned_sales_rep,omitempty"`
}

// LinkActionResponse echoes the transition that approve/reject/block/cancel
// performed.
type LinkActionResponse struct {
	ID               string  `json:"id"`
	OldStatus        string  `json:"old_status"`
	NewStatus        string  `json:"new_status"`
	ConsumerID       string  `json:"consumer"`
	SupplierID       string  `json:"supplier"`
	AssignedSalesRep *string `json:"assigned_sales_rep,omitempty"`
}

// ─── Suppliers directory ─────────────────────────────────────────────────────

type SupplierResponse struct {
	ID          string  `json:"id"`
	CompanyName string  `json:"company_name"`
	City        string  `json:"city"`
	Description *string `json:"description,omitempty"`
	IsVerified  bool    `json:"is_verified"`
}
