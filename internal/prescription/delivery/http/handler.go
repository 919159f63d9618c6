package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/pharmacore/pharmacy-api/internal/prescription/usecase/command"
	"github.com/pharmacore/pharmacy-api/internal/prescription/usecase/query"
	userhttp "github.com/pharmacore/pharmacy-api/internal/user/delivery/http"
	userdomain "github.com/pharmacore/pharmacy-api/internal/user/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// PrescriptionHandler handles HTTP requests for prescriptions
type PrescriptionHandler struct {
	createHandler  *command.CreatePrescriptionHandler
	fulfillHandler *command.FulfillPrescriptionHandler
	cancelHandler  *command.CancelPrescriptionHandler
	replaceHandler *command.ReplaceLinesHandler

	getHandler   *query.GetPrescriptionHandler
	listHandler  *query.ListPrescriptionsHandler
	statsHandler *query.PrescriptionStatsHandler
}

// NewPrescriptionHandler creates a new prescription handler
func NewPrescriptionHandler(
	createHandler *command.CreatePrescriptionHandler,
	fulfillHandler *command.FulfillPrescriptionHandler,
	cancelHandler *command.CancelPrescriptionHandler,
	replaceHandler *command.ReplaceLinesHandler,
	getHandler *query.GetPrescriptionHandler,
	listHandler *query.ListPrescriptionsHandler,
	statsHandler *query.PrescriptionStatsHandler,
) *PrescriptionHandler {
	return &PrescriptionHandler{
		createHandler:  createHandler,
		fulfillHandler: fulfillHandler,
		cancelHandler:  cancelHandler,
		replaceHandler: replaceHandler,
		getHandler:     getHandler,
		listHandler:    listHandler,
		statsHandler:   statsHandler,
	}
}

type lineRequest struct {
	MedicineID uint `json:"medicine_id"`
	Quantity   int  `json:"quantity"`
}

func toLineInputs(lines []lineRequest) []command.LineInput {
	inputs := make([]command.LineInput, 0, len(lines))
	for _, l := range lines {
		inputs = append(inputs, command.LineInput{MedicineID: l.MedicineID, Quantity: l.Quantity})
	}
	return inputs
}

// Create handles POST /api/prescriptions
func (h *PrescriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := userhttp.CallerID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var req struct {
		PatientID  uint          `json:"patient_id"`
		IsUrgent   bool          `json:"is_urgent"`
		Diagnosis  string        `json:"diagnosis"`
		Notes      string        `json:"notes"`
		DateIssued string        `json:"date_issued"`
		Medicines  []lineRequest `json:"medicines"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.CreatePrescriptionCommand{
		PatientID:      req.PatientID,
		PrescribedByID: actorID,
		IsUrgent:       req.IsUrgent,
		Diagnosis:      req.Diagnosis,
		Notes:          req.Notes,
		Lines:          toLineInputs(req.Medicines),
	}
	if req.DateIssued != "" {
		issued, err := time.Parse(time.RFC3339, req.DateIssued)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date_issued must be RFC3339")
			return
		}
		cmd.DateIssued = issued
	}

	result, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// Get handles GET /api/prescriptions/{id}
func (h *PrescriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, _ := userhttp.CallerID(r)
	role, _ := userhttp.CallerRole(r)

	p, err := h.getHandler.Handle(r.Context(), query.GetPrescriptionQuery{
		ID:            id,
		RequesterID:   actorID,
		RequesterRole: role,
	})
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// List handles GET /api/prescriptions
func (h *PrescriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, _ := userhttp.CallerID(r)
	role, _ := userhttp.CallerRole(r)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	patientID, _ := strconv.ParseUint(r.URL.Query().Get("patient_id"), 10, 32)

	q := query.ListPrescriptionsQuery{
		Status:        r.URL.Query().Get("status"),
		PatientID:     uint(patientID),
		RequesterID:   actorID,
		RequesterRole: role,
		Limit:         limit,
		Offset:        offset,
	}
	if urgent := r.URL.Query().Get("urgent"); urgent != "" {
		v := urgent == "true"
		q.IsUrgent = &v
	}

	prescriptions, err := h.listHandler.Handle(r.Context(), q)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, prescriptions)
}

// Fulfill handles POST /api/prescriptions/{id}/fulfill
func (h *PrescriptionHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
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
		Partial bool   `json:"partial"`
		Notes   string `json:"notes"`
	}
	// Empty body means full fulfillment
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	p, err := h.fulfillHandler.Handle(r.Context(), command.FulfillPrescriptionCommand{
		PrescriptionID: id,
		FulfilledByID:  actorID,
		Partial:        req.Partial,
		Notes:          req.Notes,
	})
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// Cancel handles POST /api/prescriptions/{id}/cancel
func (h *PrescriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, _ := userhttp.CallerID(r)

	var req struct {
		Reason string `json:"reason"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	p, err := h.cancelHandler.Handle(r.Context(), command.CancelPrescriptionCommand{
		PrescriptionID: id,
		ActorID:        actorID,
		Reason:         req.Reason,
	})
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// Stats handles GET /api/prescriptions/stats
func (h *PrescriptionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsHandler.Handle(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// ReplaceLines handles PUT /api/prescriptions/{id}/medicines
func (h *PrescriptionHandler) ReplaceLines(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, _ := userhttp.CallerID(r)

	var req struct {
		Medicines []lineRequest `json:"medicines"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.replaceHandler.Handle(r.Context(), command.ReplaceLinesCommand{
		PrescriptionID: id,
		ActorID:        actorID,
		Lines:          toLineInputs(req.Medicines),
	})
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// RegisterRoutes registers all prescription routes
func (h *PrescriptionHandler) RegisterRoutes(router *mux.Router) {
	doctors := func(next http.HandlerFunc) http.HandlerFunc {
		return userhttp.RequireRoles(next, userdomain.RoleDoctor, userdomain.RoleAdmin)
	}
	staff := func(next http.HandlerFunc) http.HandlerFunc {
		return userhttp.RequireRoles(next, userdomain.RolePharmacist, userdomain.RoleAdmin)
	}

	router.HandleFunc("/api/prescriptions", userhttp.AuthMiddleware(h.List)).Methods("GET")
	router.HandleFunc("/api/prescriptions", doctors(h.Create)).Methods("POST")
	// Fixed path before the {id} wildcard
	router.HandleFunc("/api/prescriptions/stats", userhttp.AuthMiddleware(h.Stats)).Methods("GET")
	router.HandleFunc("/api/prescriptions/{id}", userhttp.AuthMiddleware(h.Get)).Methods("GET")
	router.HandleFunc("/api/prescriptions/{id}/fulfill", staff(h.Fulfill)).Methods("POST")
	router.HandleFunc("/api/prescriptions/{id}/cancel", doctors(h.Cancel)).Methods("POST")
	router.HandleFunc("/api/prescriptions/{id}/medicines", doctors(h.ReplaceLines)).Methods("PUT")
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
