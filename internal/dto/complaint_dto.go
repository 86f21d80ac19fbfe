package dto

// ─── Requests ────────────────────────────────────────────────────────────────

type CreateComplaintRequest struct {
	// SupplierID may be omitted when OrderID is set; the supplier is then
	// inferred from the order.
	SupplierID  *string `json:"supplier_id" validate:"omitempty,uuid"`
	OrderID     *string `json:"order_id"    validate:"omitempty,uuid"`
	Title       string  `json:"title"       validate:"required,max=200"`
	Description string  `json:"description" validate:"required"`
	Type        string  `json:"type"        validate:"omitempty,oneof=product delivery billing service other"`
	Severity    string  `json:"severity"    validate:"omitempty,oneof=low medium high critical"`
}

type EscalateComplaintRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

type ComplaintStatusRequest struct {
	Status          string `json:"status" validate:"required,oneof=open in_progress resolved closed"`
	Notes           string `json:"notes"`
	ResolutionNotes string `json:"resolution_notes"`
}

type ComplaintNoteRequest struct {
	Content    string `json:"content" validate:"required"`
	IsInternal bool   `json:"is_internal"`
}

// ComplaintFilter is bound from the query string of GET /v1/complaints.
type ComplaintFilter struct {
	Status string `form:"status"`
	Level  string `form:"level"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type ComplaintResponse struct {
	ID              string  `json:"id"`
	ConsumerID      string  `json:"consumer_id"`
	SupplierID      string  `json:"supplier_id"`
	OrderID         *string `json:"order_id,omitempty"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Type            string  `json:"type"`
	Severity        string  `json:"severity"`
	Status          string  `json:"status"`
	EscalationLevel string  `json:"escalation_level"`
	AssignedTo      *string `json:"assigned_to,omitempty"`
	ResolvedAt      *string `json:"resolved_at,omitempty"`
	ResolutionNotes *string `json:"resolution_notes,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

type ComplaintListResponse struct {
	Data  []ComplaintResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

// EscalateComplaintResponse echoes the level transition and the staff member
// the complaint was handed to (nil when the tier has no staff).
type EscalateComplaintResponse struct {
	ID         string  `json:"id"`
	OldLevel   string  `json:"old_level"`
	NewLevel   string  `json:"new_level"`
	Reason     string  `json:"reason"`
	AssignedTo *string `json:"assigned_to,omitempty"`
}

type ComplaintStatusResponse struct {
	ID         string  `json:"id"`
	OldStatus  string  `json:"old_status"`
	NewStatus  string  `json:"new_status"`
	ResolvedAt *string `json:"resolved_at,omitempty"`
	ResolvedBy *string `json:"resolved_by,omitempty"`
}

type ComplaintNoteResponse struct {
	ID            string `json:"id"`
	NoteType      string `json:"note_type"`
	Content       string `json:"content"`
	PreviousValue string `json:"previous_value,omitempty"`
	NewValue      string `json:"new_value,omitempty"`
	IsInternal    bool   `json:"is_internal"`
	CreatedBy     string `json:"created_by,omitempty"`
	CreatedAt     string `json:"created_at"`
}
