package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/pharmacore/pharmacy-api/internal/user/domain"
	"github.com/pharmacore/pharmacy-api/internal/user/usecase/command"
	"github.com/pharmacore/pharmacy-api/internal/user/usecase/query"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// UserHandler handles HTTP requests for staff accounts
type UserHandler struct {
	registerHandler *command.RegisterUserHandler
	loginHandler    *command.LoginUserHandler

	getUserHandler *query.GetUserHandler
	listHandler    *query.ListUsersHandler

	repo domain.UserRepository
}

// NewUserHandler creates a new user handler
func NewUserHandler(repo domain.UserRepository) *UserHandler {
	return &UserHandler{
		registerHandler: command.NewRegisterUserHandler(repo),
		loginHandler:    command.NewLoginUserHandler(repo),
		getUserHandler:  query.NewGetUserHandler(repo),
		listHandler:     query.NewListUsersHandler(repo),
		repo:            repo,
	}
}

// Register handles POST /auth/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
		Phone    string `json:"phone"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Role == "" {
		req.Role = domain.RolePharmacist
	}

	cmd := command.RegisterUserCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
		Phone:    req.Phone,
	}

	user, err := h.registerHandler.Handle(r.Context(), cmd)
	if err != nil {
		h.respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.LoginUserCommand{
		Username: req.Username,
		Password: req.Password,
	}

	response, err := h.loginHandler.Handle(r.Context(), cmd)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// GetProfile handles GET /users/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := CallerID(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	user, err := h.getUserHandler.Handle(r.Context(), query.GetUserQuery{ID: userID})
	if err != nil {
		h.respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// GetUser handles GET /users/{id} (admin only)
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.getUserHandler.Handle(r.Context(), query.GetUserQuery{ID: uint(id)})
	if err != nil {
		h.respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// ListUsers handles GET /users (admin only)
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	q := query.ListUsersQuery{
		Limit:  limit,
		Offset: offset,
		Role:   r.URL.Query().Get("role"),
	}

	users, err := h.listHandler.Handle(r.Context(), q)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, users)
}

// DeactivateUser handles DELETE /users/{id} (admin only)
func (h *UserHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.repo.FindByID(r.Context(), uint(id))
	if err != nil {
		h.respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	user.IsActive = false
	if err := h.repo.Update(r.Context(), user); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "User deactivated"})
}

// HealthCheck handles GET /health
func (h *UserHandler) HealthCheck(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			h.respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}

		h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

// respondJSON sends a JSON response
func (h *UserHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func (h *UserHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes registers all user routes
func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	// Public routes
	router.HandleFunc("/auth/register", h.Register).Methods("POST")
	router.HandleFunc("/auth/login", h.Login).Methods("POST")

	// Authenticated routes
	router.HandleFunc("/users/me", AuthMiddleware(h.GetProfile)).Methods("GET")

	// Admin routes
	router.HandleFunc("/users", AdminMiddleware(h.ListUsers)).Methods("GET")
	router.HandleFunc("/users/{id}", AdminMiddleware(h.GetUser)).Methods("GET")
	router.HandleFunc("/users/{id}", AdminMiddleware(h.DeactivateUser)).Methods("DELETE")
}

// RegisterHealthCheck registers health check endpoint
func (h *UserHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", h.HealthCheck(db)).Methods("GET")
}
