package command

import (
	"context"
	"errors"
	"time"

	"github.com/pharmacore/pharmacy-api/internal/alert/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// BulkResolveAlertsCommand represents the command to resolve a batch of
// alerts in one call.
type BulkResolveAlertsCommand struct {
	AlertIDs   []uint
	ResolvedBy uint
	Notes      string
}

// BulkResolveAlertsHandler handles batch alert resolution
type BulkResolveAlertsHandler struct {
	alerts domain.Repository
}

// NewBulkResolveAlertsHandler creates a new bulk resolve handler
func NewBulkResolveAlertsHandler(alerts domain.Repository) *BulkResolveAlertsHandler {
	return &BulkResolveAlertsHandler{alerts: alerts}
}

// Handle resolves every unresolved alert in the id list and returns how
// many were resolved. Unknown and already-resolved ids are skipped, not
// errors, so the call is safe to retry.
func (h *BulkResolveAlertsHandler) Handle(ctx context.Context, cmd BulkResolveAlertsCommand) (int, error) {
	if cmd.ResolvedBy == 0 {
		return 0, apperrors.NewValidation("resolved_by", "actor is required")
	}
	if len(cmd.AlertIDs) == 0 {
		return 0, apperrors.NewValidation("alert_ids", "no alert IDs provided")
	}

	resolved := 0
	now := time.Now()
	for _, id := range cmd.AlertIDs {
		alert, err := h.alerts.FindByID(ctx, id)
		if err != nil {
			var nf *apperrors.NotFoundError
			if errors.As(err, &nf) {
				continue
			}
			return resolved, err
		}
		if alert.IsResolved {
			continue
		}

		alert.IsResolved = true
		alert.ResolvedByID = &cmd.ResolvedBy
		alert.ResolvedAt = &now
		alert.ResolvedNotes = cmd.Notes
		if err := h.alerts.Update(ctx, alert); err != nil {
			return resolved, err
		}
		resolved++
	}
	return resolved, nil
}
