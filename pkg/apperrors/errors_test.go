package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewNotFound("medicine", 4), http.StatusNotFound},
		{"insufficient stock", NewInsufficientStock(4, "Ibuprofen", 10, 2), http.StatusConflict},
		{"invalid state", NewInvalidState("prescription RX-1 is already cancelled"), http.StatusConflict},
		{"validation", NewValidation("quantity", "must be at least 1"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("handle: %w", NewValidation("name", "is required")), http.StatusBadRequest},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "medicine 4 not found", NewNotFound("medicine", 4).Error())
	assert.Equal(t, "patient not found", NewNotFound("patient", 0).Error())
}

func TestInsufficientStockAggregatesShortages(t *testing.T) {
	err := &InsufficientStockError{Shortages: []Shortage{
		{MedicineID: 1, MedicineName: "Ibuprofen", Requested: 10, Available: 2},
		{MedicineID: 2, MedicineName: "Insulin", Requested: 5, Available: 0},
	}}
	assert.Equal(t, "insufficient stock: Ibuprofen (requested 10, available 2), Insulin (requested 5, available 0)", err.Error())
}

func TestValidationMessage(t *testing.T) {
	assert.Equal(t, "quantity: must be at least 1", NewValidation("quantity", "must be at least 1").Error())
	assert.Equal(t, "at least one line is required", NewValidation("", "at least one line is required").Error())
}
