package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
	userhttp "github.com/pharmacore/pharmacy-api/internal/user/delivery/http"
	"github.com/pharmacore/pharmacy-api/pkg/apperrors"
)

// PatientHandler handles HTTP requests for patients
type PatientHandler struct {
	repo domain.PatientRepository
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(repo domain.PatientRepository) *PatientHandler {
	return &PatientHandler{repo: repo}
}

type patientRequest struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	DateOfBirth      string `json:"date_of_birth"`
	Gender           string `json:"gender"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergency_contact"`
	EmergencyPhone   string `json:"emergency_phone"`
	MedicalHistory   string `json:"medical_history"`
	Allergies        string `json:"allergies"`
}

// Create handles POST /api/patients
func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		respondError(w, http.StatusBadRequest, "first_name and last_name are required")
		return
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		respondError(w, http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
		return
	}

	gender := req.Gender
	if gender == "" {
		gender = domain.GenderUnknown
	}

	patient := &domain.Patient{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		DateOfBirth:      dob,
		Gender:           gender,
		Phone:            req.Phone,
		Email:            req.Email,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		EmergencyPhone:   req.EmergencyPhone,
		MedicalHistory:   req.MedicalHistory,
		Allergies:        req.Allergies,
	}

	if err := h.repo.Create(r.Context(), patient); err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, patient)
}

// Get handles GET /api/patients/{id}
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	patient, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, patient)
}

// List handles GET /api/patients
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}

	patients, err := h.repo.FindAll(r.Context(), r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, patients)
}

// Update handles PUT /api/patients/{id}
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	patient, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	var req patientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.FirstName != "" {
		patient.FirstName = req.FirstName
	}
	if req.LastName != "" {
		patient.LastName = req.LastName
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
			return
		}
		patient.DateOfBirth = dob
	}
	if req.Gender != "" {
		patient.Gender = req.Gender
	}
	if req.Phone != "" {
		patient.Phone = req.Phone
	}
	if req.Email != "" {
		patient.Email = req.Email
	}
	if req.Address != "" {
		patient.Address = req.Address
	}
	if req.EmergencyContact != "" {
		patient.EmergencyContact = req.EmergencyContact
	}
	if req.EmergencyPhone != "" {
		patient.EmergencyPhone = req.EmergencyPhone
	}
	if req.MedicalHistory != "" {
		patient.MedicalHistory = req.MedicalHistory
	}
	if req.Allergies != "" {
		patient.Allergies = req.Allergies
	}

	if err := h.repo.Update(r.Context(), patient); err != nil {
		respondError(w, apperrors.HTTPStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, patient)
}

// RegisterRoutes registers all patient routes
func (h *PatientHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/patients", userhttp.AuthMiddleware(h.List)).Methods("GET")
	router.HandleFunc("/api/patients", userhttp.AuthMiddleware(h.Create)).Methods("POST")
	router.HandleFunc("/api/patients/{id}", userhttp.AuthMiddleware(h.Get)).Methods("GET")
	router.HandleFunc("/api/patients/{id}", userhttp.AuthMiddleware(h.Update)).Methods("PUT")
}
