package command

import (
	"context"
	"time"

	"github.com/pharmacore/pharmacy-api/internal/alert/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// ResolveAlertCommand represents the command to resolve an alert
type ResolveAlertCommand struct {
	AlertID    uint
	ResolvedBy uint
	Notes      string
}

// ResolveAlertHandler handles alert resolution command
type ResolveAlertHandler struct {
	alerts domain.Repository
}

// NewResolveAlertHandler creates a new resolve alert handler
func NewResolveAlertHandler(alerts domain.Repository) *ResolveAlertHandler {
	return &ResolveAlertHandler{alerts: alerts}
}

// Handle executes the resolve alert command. Resolution is one-way; a
// resolved alert stays resolved and re-resolving is rejected.
func (h *ResolveAlertHandler) Handle(ctx context.Context, cmd ResolveAlertCommand) (*domain.AlertLog, error) {
	if cmd.ResolvedBy == 0 {
		return nil, apperrors.NewValidation("resolved_by", "actor is required")
	}

	alert, err := h.alerts.FindByID(ctx, cmd.AlertID)
	if err != nil {
		return nil, err
	}
	if alert.IsResolved {
		return nil, apperrors.NewInvalidState("alert %d is already resolved", alert.ID)
	}

	now := time.Now()
	alert.IsResolved = true
	alert.ResolvedByID = &cmd.ResolvedBy
	alert.ResolvedAt = &now
	alert.ResolvedNotes = cmd.Notes

	if err := h.alerts.Update(ctx, alert); err != nil {
		return nil, err
	}

	return alert, nil
}
