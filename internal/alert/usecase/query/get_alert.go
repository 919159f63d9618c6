package query

import (
	"context"

	"github.com/pharmacore/pharmacy-api/internal/alert/domain"
)

// GetAlertQuery represents the query to get an alert
type GetAlertQuery struct {
	ID uint
}

// GetAlertHandler handles get alert query
type GetAlertHandler struct {
	alerts domain.Repository
}

// NewGetAlertHandler creates a new get alert handler
func NewGetAlertHandler(alerts domain.Repository) *GetAlertHandler {
	return &GetAlertHandler{alerts: alerts}
}

// Handle executes the get alert query
func (h *GetAlertHandler) Handle(ctx context.Context, q GetAlertQuery) (*domain.AlertLog, error) {
	return h.alerts.FindByID(ctx, q.ID)
}
