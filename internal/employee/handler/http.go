// Package handler exposes employee CRUD over HTTP.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/adriandevv/checador/internal/employee/domain"
	"github.com/adriandevv/checador/internal/employee/repository"
	"github.com/adriandevv/checador/internal/server/middleware"
	"github.com/adriandevv/checador/internal/server/respond"
	userdomain "github.com/adriandevv/checador/internal/user/domain"
)

// Handler serves the /employees routes. Writes are admin only; an employee
// can read their own record.
type Handler struct {
	employees repository.Repository
}

// NewHandler returns an employee handler.
func NewHandler(employees repository.Repository) *Handler {
	return &Handler{employees: employees}
}

// RegisterRoutes mounts the employee routes on r.
func (h *Handler) RegisterRoutes(r *mux.Router, mw *middleware.Auth) {
	owned := r.PathPrefix("/employees").Subrouter()
	owned.Use(mw.RequireAuth, middleware.RequireOwnership("id"))
	owned.HandleFunc("/{id:[0-9]+}", h.Get).Methods(http.MethodGet)

	admin := r.PathPrefix("/employees").Subrouter()
	admin.Use(mw.RequireAuth, middleware.RequireRole(userdomain.RoleAdmin))
	admin.HandleFunc("", h.List).Methods(http.MethodGet)
	admin.HandleFunc("", h.Create).Methods(http.MethodPost)
	admin.HandleFunc("/{id:[0-9]+}", h.Update).Methods(http.MethodPut)
	admin.HandleFunc("/{id:[0-9]+}/active", h.SetActive).Methods(http.MethodPatch)
}

type employeeResponse struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	SecondLastName string    `json:"secondLastName,omitempty"`
	FullName       string    `json:"fullName"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toResponse(e *domain.Employee) employeeResponse {
	return employeeResponse{
		ID: e.ID, FirstName: e.FirstName, LastName: e.LastName,
		SecondLastName: e.SecondLastName, FullName: e.FullName(),
		Active: e.Active, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
	}
}

type employeeRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	SecondLastName string `json:"secondLastName"`
}

// List handles GET /employees?limit=N&offset=M.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := int32(50), int32(0)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n <= 0 || n > 500 {
			respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid limit")
			return
		}
		limit = int32(n)
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n < 0 {
			respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid offset")
			return
		}
		offset = int32(n)
	}
	employees, err := h.employees.List(r.Context(), limit, offset)
	if err != nil {
		respond.Internal(w, err)
		return
	}
	out := make([]employeeResponse, len(employees))
	for i, e := range employees {
		out[i] = toResponse(e)
	}
	respond.Success(w, http.StatusOK, "employees", out)
}

// Get handles GET /employees/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	employee, err := h.employees.GetByID(r.Context(), id)
	if err != nil {
		respond.Internal(w, err)
		return
	}
	if employee == nil {
		respond.Error(w, http.StatusNotFound, respond.CodeNotFound, "employee not found")
		return
	}
	respond.Success(w, http.StatusOK, "employee", toResponse(employee))
}

// Create handles POST /employees.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid request body")
		return
	}
	employee := &domain.Employee{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		SecondLastName: req.SecondLastName,
		Active:         true,
	}
	if err := employee.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, err.Error())
		return
	}
	created, err := h.employees.Create(r.Context(), employee)
	if err != nil {
		respond.Internal(w, err)
		return
	}
	respond.Success(w, http.StatusCreated, "employee created", toResponse(created))
}

// Update handles PUT /employees/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid request body")
		return
	}
	existing, err := h.employees.GetByID(r.Context(), id)
	if err != nil {
		respond.Internal(w, err)
		return
	}
	if existing == nil {
		respond.Error(w, http.StatusNotFound, respond.CodeNotFound, "employee not found")
		return
	}
	existing.FirstName = req.FirstName
	existing.LastName = req.LastName
	existing.SecondLastName = req.SecondLastName
	if err := existing.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, err.Error())
		return
	}
	if err := h.employees.Update(r.Context(), existing); err != nil {
		respond.Internal(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "employee updated", toResponse(existing))
}

// SetActive handles PATCH /employees/{id}/active.
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid request body")
		return
	}
	if err := h.employees.SetActive(r.Context(), id, req.Active); err != nil {
		respond.Internal(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "employee updated", nil)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid id")
		return 0, false
	}
	return id, true
}
