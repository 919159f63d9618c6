package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/pharmacore/pharmacy-api/internal/alert/domain"
	"github.com/pharmacore/pharmacy-api/internal/alert/usecase/command"
	"github.com/pharmacore/pharmacy-api/internal/alert/usecase/query"
	userhttp "github.com/pharmacore/pharmacy-api/internal/user/delivery/http"
	userdomain "github.com/pharmacore/pharmacy-api/internal/user/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// AlertHandler handles HTTP requests for alerts and preferences
type AlertHandler struct {
	resolveHandler *command.ResolveAlertHandler
	bulkHandler    *command.BulkResolveAlertsHandler
	prefHandler    *command.UpdatePreferenceHandler

	getHandler   *query.GetAlertHandler
	listHandler  *query.ListAlertsHandler
	statsHandler *query.AlertStatsHandler

	prefs domain.PreferenceRepository
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(
	resolveHandler *command.ResolveAlertHandler,
	bulkHandler *command.BulkResolveAlertsHandler,
	prefHandler *command.UpdatePreferenceHandler,
	getHandler *query.GetAlertHandler,
	listHandler *query.ListAlertsHandler,
	statsHandler *query.AlertStatsHandler,
	prefs domain.PreferenceRepository,
) *AlertHandler {
	return &AlertHandler{
		resolveHandler: resolveHandler,
		bulkHandler:    bulkHandler,
		prefHandler:    prefHandler,
		getHandler:     getHandler,
		listHandler:    listHandler,
		statsHandler:   statsHandler,
		prefs:          prefs,
	}
}

// List handles GET /api/alerts
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	medicineID, _ := strconv.ParseUint(r.URL.Query().Get("medicine_id"), 10, 32)

	q := query.ListAlertsQuery{
		AlertType:  r.URL.Query().Get("type"),
		Severity:   r.URL.Query().Get("severity"),
		MedicineID: uint(medicineID),
		Limit:      limit,
		Offset:     offset,
	}
	if resolved := r.URL.Query().Get("resolved"); resolved != "" {
		v := resolved == "true"
		q.Resolved = &v
	}
	if after := r.URL.Query().Get("created_after"); after != "" {
		t, err := time.Parse(time.RFC3339, after)
		if err != nil {
			respondError(w, http.StatusBadRequest, "created_after must be RFC3339")
			return
		}
		q.CreatedAfter = &t
	}

	alerts, err := h.listHandler.Handle(r.Context(), q)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, alerts)
}

// Unresolved handles GET /api/alerts/unresolved
func (h *AlertHandler) Unresolved(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.listHandler.Unresolved(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, alerts)
}

// Critical handles GET /api/alerts/critical
func (h *AlertHandler) Critical(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.listHandler.Critical(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, alerts)
}

// Stats handles GET /api/alerts/stats
func (h *AlertHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsHandler.Handle(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Get handles GET /api/alerts/{id}
func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	alert, err := h.getHandler.Handle(r.Context(), query.GetAlertQuery{ID: id})
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, alert)
}

// Resolve handles POST /api/alerts/{id}/resolve
func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, ok := userhttp.CallerID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	alert, err := h.resolveHandler.Handle(r.Context(), command.ResolveAlertCommand{
		AlertID:    id,
		ResolvedBy: actorID,
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, alert)
}

// BulkResolve handles POST /api/alerts/bulk-resolve
func (h *AlertHandler) BulkResolve(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userhttp.CallerID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var req struct {
		AlertIDs []uint `json:"alert_ids"`
		Notes    string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resolved, err := h.bulkHandler.Handle(r.Context(), command.BulkResolveAlertsCommand{
		AlertIDs:   req.AlertIDs,
		ResolvedBy: actorID,
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":        fmt.Sprintf("Resolved %d alerts", resolved),
		"resolved_count": resolved,
	})
}

// GetPreference handles GET /api/alerts/preferences
func (h *AlertHandler) GetPreference(w http.ResponseWriter, r *http.Request) {
	userID, ok := userhttp.CallerID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	pref, err := h.prefs.GetOrCreate(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, pref)
}

// UpdatePreference handles PUT /api/alerts/preferences
func (h *AlertHandler) UpdatePreference(w http.ResponseWriter, r *http.Request) {
	userID, ok := userhttp.CallerID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var req struct {
		EmailNotifications        *bool   `json:"email_notifications"`
		PushNotifications         *bool   `json:"push_notifications"`
		TelegramNotifications     *bool   `json:"telegram_notifications"`
		ReceiveLowStockAlerts     *bool   `json:"receive_low_stock_alerts"`
		ReceiveExpiryAlerts       *bool   `json:"receive_expiry_alerts"`
		ReceivePrescriptionAlerts *bool   `json:"receive_prescription_alerts"`
		ReceiveSystemAlerts       *bool   `json:"receive_system_alerts"`
		MinSeverityLevel          *string `json:"min_severity_level"`
		DailyDigest               *bool   `json:"daily_digest"`
		ImmediateAlerts           *bool   `json:"immediate_alerts"`
		TelegramChatID            *string `json:"telegram_chat_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pref, err := h.prefHandler.Handle(r.Context(), command.UpdatePreferenceCommand{
		UserID:                    userID,
		EmailNotifications:        req.EmailNotifications,
		PushNotifications:         req.PushNotifications,
		TelegramNotifications:     req.TelegramNotifications,
		ReceiveLowStockAlerts:     req.ReceiveLowStockAlerts,
		ReceiveExpiryAlerts:       req.ReceiveExpiryAlerts,
		ReceivePrescriptionAlerts: req.ReceivePrescriptionAlerts,
		ReceiveSystemAlerts:       req.ReceiveSystemAlerts,
		MinSeverityLevel:          req.MinSeverityLevel,
		DailyDigest:               req.DailyDigest,
		ImmediateAlerts:           req.ImmediateAlerts,
		TelegramChatID:            req.TelegramChatID,
	})
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, pref)
}

// RegisterRoutes registers all alert routes
func (h *AlertHandler) RegisterRoutes(router *mux.Router) {
	staff := func(next http.HandlerFunc) http.HandlerFunc {
		return userhttp.RequireRoles(next, userdomain.RolePharmacist, userdomain.RoleAdmin)
	}

	// Fixed paths before the {id} wildcard
	router.HandleFunc("/api/alerts/unresolved", userhttp.AuthMiddleware(h.Unresolved)).Methods("GET")
	router.HandleFunc("/api/alerts/critical", userhttp.AuthMiddleware(h.Critical)).Methods("GET")
	router.HandleFunc("/api/alerts/stats", userhttp.AuthMiddleware(h.Stats)).Methods("GET")
	router.HandleFunc("/api/alerts/preferences", userhttp.AuthMiddleware(h.GetPreference)).Methods("GET")
	router.HandleFunc("/api/alerts/preferences", userhttp.AuthMiddleware(h.UpdatePreference)).Methods("PUT")
	router.HandleFunc("/api/alerts/bulk-resolve", staff(h.BulkResolve)).Methods("POST")

	router.HandleFunc("/api/alerts", userhttp.AuthMiddleware(h.List)).Methods("GET")
	router.HandleFunc("/api/alerts/{id}", userhttp.AuthMiddleware(h.Get)).Methods("GET")
	router.HandleFunc("/api/alerts/{id}/resolve", staff(h.Resolve)).Methods("POST")
}

// pathID parses the {id} path variable, responding with 400 on failure
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
