package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	userhttp "github.com/pharmacore/pharmacy-api/internal/user/delivery/http"
	userdomain "github.com/pharmacore/pharmacy-api/internal/user/domain"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// SupplierHandler handles HTTP requests for suppliers
type SupplierHandler struct {
	repo domain.SupplierRepository
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(repo domain.SupplierRepository) *SupplierHandler {
	return &SupplierHandler{repo: repo}
}

// Create handles POST /api/suppliers
func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var supplier domain.Supplier
	if err := json.NewDecoder(r.Body).Decode(&supplier); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if supplier.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if supplier.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	supplier.ID = 0
	if err := h.repo.Create(r.Context(), &supplier); err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, supplier)
}

// Get handles GET /api/suppliers/{id}
func (h *SupplierHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	supplier, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, supplier)
}

// List handles GET /api/suppliers
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}

	suppliers, err := h.repo.FindAll(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, suppliers)
}

// Update handles PUT /api/suppliers/{id}
func (h *SupplierHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	supplier, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	var req struct {
		Name          string `json:"name"`
		ContactPerson string `json:"contact_person"`
		Email         string `json:"email"`
		Phone         string `json:"phone"`
		Address       string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name != "" {
		supplier.Name = req.Name
	}
	if req.ContactPerson != "" {
		supplier.ContactPerson = req.ContactPerson
	}
	if req.Email != "" {
		supplier.Email = req.Email
	}
	if req.Phone != "" {
		supplier.Phone = req.Phone
	}
	if req.Address != "" {
		supplier.Address = req.Address
	}

	if err := h.repo.Update(r.Context(), supplier); err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, supplier)
}

// Delete handles DELETE /api/suppliers/{id}
func (h *SupplierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Supplier deleted"})
}

// RegisterRoutes registers all supplier routes
func (h *SupplierHandler) RegisterRoutes(router *mux.Router) {
	staff := func(next http.HandlerFunc) http.HandlerFunc {
		return userhttp.RequireRoles(next, userdomain.RolePharmacist, userdomain.RoleAdmin)
	}

	router.HandleFunc("/api/suppliers", userhttp.AuthMiddleware(h.List)).Methods("GET")
	router.HandleFunc("/api/suppliers", staff(h.Create)).Methods("POST")
	router.HandleFunc("/api/suppliers/{id}", userhttp.AuthMiddleware(h.Get)).Methods("GET")
	router.HandleFunc("/api/suppliers/{id}", staff(h.Update)).Methods("PUT")
	router.HandleFunc("/api/suppliers/{id}", staff(h.Delete)).Methods("DELETE")
}
