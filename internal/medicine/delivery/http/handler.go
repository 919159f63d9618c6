package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	"github.com/pharmacore/pharmacy-api/internal/medicine/usecase/command"
	"github.com/pharmacore/pharmacy-api/internal/medicine/usecase/query"
	userhttp "github.com/pharmacore/pharmacy-api/internal/user/delivery/http"
	userdomain "github.com/pharmacore/pharmacy-api/internal/user/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// MedicineHandler handles HTTP requests for medicines and stock
type MedicineHandler struct {
	createHandler *command.CreateMedicineHandler
	updateHandler *command.UpdateMedicineHandler
	deleteHandler *command.DeleteMedicineHandler
	adjustHandler *command.AdjustStockHandler

	getHandler    *query.GetMedicineHandler
	listHandler   *query.ListMedicinesHandler
	healthHandler *query.InventoryHealthHandler
	logsHandler   *query.GetLogsHandler
}

// NewMedicineHandler creates a new medicine handler
func NewMedicineHandler(
	medicines domain.MedicineRepository,
	suppliers domain.SupplierRepository,
	ledger domain.StockLedger,
) *MedicineHandler {
	return &MedicineHandler{
		createHandler: command.NewCreateMedicineHandler(medicines, suppliers),
		updateHandler: command.NewUpdateMedicineHandler(medicines, suppliers),
		deleteHandler: command.NewDeleteMedicineHandler(medicines),
		adjustHandler: command.NewAdjustStockHandler(ledger),
		getHandler:    query.NewGetMedicineHandler(medicines),
		listHandler:   query.NewListMedicinesHandler(medicines),
		healthHandler: query.NewInventoryHealthHandler(medicines),
		logsHandler:   query.NewGetLogsHandler(medicines),
	}
}

// Create handles POST /api/medicines
func (h *MedicineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string `json:"name"`
		Description    string `json:"description"`
		Category       string `json:"category"`
		Quantity       int    `json:"quantity"`
		Dosage         string `json:"dosage"`
		ExpiryDate     string `json:"expiry_date"`
		ThresholdAlert int    `json:"threshold_alert"`
		SupplierID     uint   `json:"supplier_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expiry, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "expiry_date must be YYYY-MM-DD")
		return
	}

	cmd := command.CreateMedicineCommand{
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		Quantity:       req.Quantity,
		Dosage:         req.Dosage,
		ExpiryDate:     expiry,
		ThresholdAlert: req.ThresholdAlert,
		SupplierID:     req.SupplierID,
	}

	medicine, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, medicine)
}

// Get handles GET /api/medicines/{id}
func (h *MedicineHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	medicine, err := h.getHandler.Handle(r.Context(), query.GetMedicineQuery{ID: id})
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, medicine)
}

// List handles GET /api/medicines
func (h *MedicineHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	activeOnly := r.URL.Query().Get("active") == "true"

	q := query.ListMedicinesQuery{
		Category:   r.URL.Query().Get("category"),
		Search:     r.URL.Query().Get("search"),
		ActiveOnly: activeOnly,
		Limit:      limit,
		Offset:     offset,
	}

	medicines, err := h.listHandler.Handle(r.Context(), q)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, medicines)
}

// Update handles PUT /api/medicines/{id}
func (h *MedicineHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name           string  `json:"name"`
		Description    string  `json:"description"`
		Category       string  `json:"category"`
		Dosage         string  `json:"dosage"`
		ExpiryDate     *string `json:"expiry_date"`
		ThresholdAlert *int    `json:"threshold_alert"`
		SupplierID     *uint   `json:"supplier_id"`
		IsActive       *bool   `json:"is_active"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.UpdateMedicineCommand{
		ID:             id,
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		Dosage:         req.Dosage,
		ThresholdAlert: req.ThresholdAlert,
		SupplierID:     req.SupplierID,
		IsActive:       req.IsActive,
	}
	if req.ExpiryDate != nil {
		expiry, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "expiry_date must be YYYY-MM-DD")
			return
		}
		cmd.ExpiryDate = &expiry
	}

	medicine, err := h.updateHandler.Handle(r.Context(), cmd)
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, medicine)
}

// Delete handles DELETE /api/medicines/{id}
func (h *MedicineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.deleteHandler.Handle(r.Context(), command.DeleteMedicineCommand{ID: id}); err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Medicine deleted"})
}

// AdjustStock handles POST /api/medicines/{id}/adjust
func (h *MedicineHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
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
		QuantityChange int    `json:"quantity_change"`
		Action         string `json:"action"`
		Reason         string `json:"reason"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.AdjustStockCommand{
		MedicineID: id,
		Delta:      req.QuantityChange,
		Action:     req.Action,
		ActorID:    actorID,
		Reason:     req.Reason,
	}

	result, err := h.adjustHandler.Handle(r.Context(), cmd)
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"medicine": result.Medicine,
		"log":      result.Entry,
	})
}

// LowStock handles GET /api/medicines/low-stock
func (h *MedicineHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.healthHandler.LowStock(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

// Expiring handles GET /api/medicines/expiring
func (h *MedicineHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	medicines, err := h.healthHandler.Expiring(r.Context(), query.ExpiringQuery{Days: days})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

// Logs handles GET /api/medicines/{id}/logs
func (h *MedicineHandler) Logs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	logs, err := h.logsHandler.Handle(r.Context(), query.GetLogsQuery{
		MedicineID: id,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, logs)
}

// RegisterRoutes registers all medicine routes
func (h *MedicineHandler) RegisterRoutes(router *mux.Router) {
	staff := func(next http.HandlerFunc) http.HandlerFunc {
		return userhttp.RequireRoles(next, userdomain.RolePharmacist, userdomain.RoleAdmin)
	}

	// Fixed paths before the {id} wildcard
	router.HandleFunc("/api/medicines/low-stock", userhttp.AuthMiddleware(h.LowStock)).Methods("GET")
	router.HandleFunc("/api/medicines/expiring", userhttp.AuthMiddleware(h.Expiring)).Methods("GET")

	router.HandleFunc("/api/medicines", userhttp.AuthMiddleware(h.List)).Methods("GET")
	router.HandleFunc("/api/medicines", staff(h.Create)).Methods("POST")
	router.HandleFunc("/api/medicines/{id}", userhttp.AuthMiddleware(h.Get)).Methods("GET")
	router.HandleFunc("/api/medicines/{id}", staff(h.Update)).Methods("PUT")
	router.HandleFunc("/api/medicines/{id}", staff(h.Delete)).Methods("DELETE")
	router.HandleFunc("/api/medicines/{id}/adjust", staff(h.AdjustStock)).Methods("POST")
	router.HandleFunc("/api/medicines/{id}/logs", userhttp.AuthMiddleware(h.Logs)).Methods("GET")
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
