// Package apperrors defines the workflow error taxonomy shared by the
// domain operations: lookups that miss, stock that would go negative,
// illegal status transitions and malformed input.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// NotFoundError indicates a missing entity
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource string, id uint) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InsufficientStockError indicates an adjustment that would drive a
// medicine's quantity negative. Fulfillment pre-flight aggregates one
// shortage per short line.
type InsufficientStockError struct {
	Shortages []Shortage
}

// Shortage describes one medicine that cannot cover the requested quantity
type Shortage struct {
	MedicineID   uint   `json:"medicine_id"`
	MedicineName string `json:"medicine_name"`
	Requested    int    `json:"requested"`
	Available    int    `json:"available"`
}

func (e *InsufficientStockError) Error() string {
	if len(e.Shortages) == 0 {
		return "insufficient stock"
	}
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s (requested %d, available %d)", s.MedicineName, s.Requested, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}

// NewInsufficientStock creates an InsufficientStockError for one medicine
func NewInsufficientStock(medicineID uint, name string, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{Shortages: []Shortage{{
		MedicineID:   medicineID,
		MedicineName: name,
		Requested:    requested,
		Available:    available,
	}}}
}

// InvalidStateError indicates an illegal status transition
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

// NewInvalidState creates an InvalidStateError
func NewInvalidState(format string, args ...interface{}) *InvalidStateError {
	return &InvalidStateError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError indicates malformed input for a specific field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation creates a ValidationError
func NewValidation(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps a workflow error to an HTTP status code. Unknown errors
// map to 500 so unexpected persistence failures surface as generic failures.
func HTTPStatus(err error) int {
	var (
		notFound     *NotFoundError
		insufficient *InsufficientStockError
		invalidState *InvalidStateError
		validation   *ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &insufficient):
		return http.StatusConflict
	case errors.As(err, &invalidState):
		return http.StatusConflict
	case errors.As(err, &validation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
