// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
//
// Workflow services return *Error values tagged with a Kind; handlers map the
// Kind to an HTTP status via Status(). Anything that is not an *Error is
// treated as an internal error.
package apierror

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
)

// Kind classifies a workflow failure.
type Kind int

const (
	KindInternal          Kind = iota // unclassified — 500
	KindNotFound                      // entity id unresolved — 404
	KindForbidden                     // actor lacks role/ownership — 403
	KindConflict                      // operation invalid for current state — 409
	KindValidation                    // malformed input — 422
	KindInsufficientStock             // specialized Conflict with shortfall list — 409
)

// StockShortfall describes one under-stocked order line. Confirm failures
// enumerate every shortfall, not just the first.
type StockShortfall struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Available decimal.Decimal `json:"available"`
	Required  decimal.Decimal `json:"required"`
}

// Error is the canonical workflow error. It marshals as the API error
// envelope: {"detail": "...", "items": [...], "fields": {...}}.
type Error struct {
	Kind       Kind              `json:"-"`
	Detail     string            `json:"detail"`
	Items      []StockShortfall  `json:"items,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	CurrentVal string            `json:"current_status,omitempty"`
}

func (e *Error) Error() string { return e.Detail }

// Status maps the error kind to its HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict, KindInsufficientStock:
		return http.StatusConflict
	case KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(detail string) *Error  { return &Error{Kind: KindNotFound, Detail: detail} }
func Forbidden(detail string) *Error { return &Error{Kind: KindForbidden, Detail: detail} }

// Conflict reports an operation invalid for the entity's current state.
// The current state is echoed to the caller so double-submits are debuggable.
func Conflict(detail, current string) *Error {
	return &Error{Kind: KindConflict, Detail: detail, CurrentVal: current}
}

func Validation(detail string) *Error { return &Error{Kind: KindValidation, Detail: detail} }

// ValidationFields wraps multiple field errors from request binding.
func ValidationFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Detail: "validation error", Fields: fields}
}

// InsufficientStock reports that one or more order lines exceed available
// stock. The operation that raised it must not have mutated any stock.
func InsufficientStock(items []StockShortfall) *Error {
	return &Error{
		Kind:   KindInsufficientStock,
		Detail: "insufficient stock for one or more items",
		Items:  items,
	}
}

// As unwraps err into *Error when it carries one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// New keeps the plain envelope constructor for ad-hoc handler responses.
func New(msg string) *Error { return &Error{Kind: KindInternal, Detail: msg} }
