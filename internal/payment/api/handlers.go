package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rentdesk/internal/common/api"
	"rentdesk/internal/common/database"
	"rentdesk/internal/common/middleware"
	"rentdesk/internal/common/money"
	"rentdesk/internal/payment"
	"rentdesk/internal/pricing"
)

// Handler handles payment allocation HTTP requests
type Handler struct {
	service    *payment.Service
	calculator *pricing.Calculator
	currency   money.Currency
}

// NewHandler creates a new payment handler
func NewHandler(service *payment.Service, calculator *pricing.Calculator, currency money.Currency) *Handler {
	return &Handler{service: service, calculator: calculator, currency: currency}
}

// Routes returns the payment routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/quote", h.Quote)

	r.Post("/", h.CreateAllocation)
	r.Get("/{id}", h.GetAllocation)
	r.Post("/{id}/lines", h.AddLine)
	r.Patch("/{id}/lines/{index}", h.UpdateLine)
	r.Delete("/{id}/lines/{index}", h.RemoveLine)
	r.Post("/{id}/submit", h.Submit)

	return r
}

// AllocationView is the API shape of an allocation, with the derived
// amounts and the current error list attached.
type AllocationView struct {
	*payment.Allocation
	Allocated money.Money `json:"allocated"`
	Remaining money.Money `json:"remaining"`
	Settled   bool        `json:"settled"`
	Errors    []string    `json:"validation_errors,omitempty"`
}

func (h *Handler) view(a *payment.Allocation, errs []string) AllocationView {
	return AllocationView{
		Allocation: a,
		Allocated:  a.Allocated(),
		Remaining:  a.Remaining(),
		Settled:    h.service.Engine().Settled(*a),
		Errors:     errs,
	}
}

// validatedView re-validates the allocation so every response carries the
// current error list.
func (h *Handler) validatedView(w http.ResponseWriter, r *http.Request, tenantID string, a *payment.Allocation) (AllocationView, bool) {
	_, errs, err := h.service.Validate(r.Context(), tenantID, a.ID)
	if err != nil {
		api.InternalError(w, "failed to validate allocation")
		return AllocationView{}, false
	}
	return h.view(a, errs), true
}

// QuoteRequest is the API request for pricing a reservation.
type QuoteRequest struct {
	SubtotalMinor int64 `json:"subtotal_minor" validate:"required,gt=0"`
}

// Quote handles POST /quote
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.ValidationError(w, err)
		return
	}

	quote := h.calculator.Quote(money.New(req.SubtotalMinor, h.currency))
	api.WriteData(w, http.StatusOK, quote)
}

// CreateAllocationRequest is the API request for starting an allocation.
type CreateAllocationRequest struct {
	SessionID     string `json:"session_id"`
	CustomerID    string `json:"customer_id"`
	TotalMinor    int64  `json:"total_minor" validate:"required,gt=0"`
	DefaultMethod string `json:"default_method"`
}

// CreateAllocation handles POST /
func (h *Handler) CreateAllocation(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.BadRequest(w, "tenant ID required")
		return
	}

	var req CreateAllocationRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.ValidationError(w, err)
		return
	}

	method := payment.MethodCreditCard
	if req.DefaultMethod != "" {
		parsed, err := payment.ParseMethod(req.DefaultMethod)
		if err != nil {
			api.BadRequest(w, err.Error())
			return
		}
		method = parsed
	}

	a, err := h.service.CreateAllocation(r.Context(), tenantID, req.SessionID, req.CustomerID,
		money.New(req.TotalMinor, h.currency), method)
	if err != nil {
		if errors.Is(err, database.ErrAlreadyExists) {
			api.Conflict(w, "allocation already exists")
			return
		}
		api.InternalError(w, "failed to create allocation")
		return
	}

	api.WriteData(w, http.StatusCreated, h.view(a, nil))
}

// GetAllocation handles GET /{id}
func (h *Handler) GetAllocation(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.BadRequest(w, "tenant ID required")
		return
	}

	a, errs, err := h.service.Validate(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			api.NotFound(w, "allocation not found")
			return
		}
		api.InternalError(w, "failed to load allocation")
		return
	}

	api.WriteData(w, http.StatusOK, h.view(a, errs))
}

// AddLineRequest is the API request for appending a payment line.
type AddLineRequest struct {
	Method string `json:"method" validate:"required"`
}

// AddLine handles POST /{id}/lines
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.BadRequest(w, "tenant ID required")
		return
	}

	var req AddLineRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.ValidationError(w, err)
		return
	}

	method, err := payment.ParseMethod(req.Method)
	if err != nil {
		api.BadRequest(w, err.Error())
		return
	}

	a, err := h.service.AddLine(r.Context(), tenantID, chi.URLParam(r, "id"), method)
	if !h.writeLineOpError(w, err) {
		return
	}

	if view, ok := h.validatedView(w, r, tenantID, a); ok {
		api.WriteData(w, http.StatusOK, view)
	}
}

// UpdateLineRequest is the API request for editing a payment line. Exactly
// one of method, amount_minor, or points is applied, in that priority.
type UpdateLineRequest struct {
	Method      *string `json:"method,omitempty"`
	AmountMinor *int64  `json:"amount_minor,omitempty"`
	Points      *int64  `json:"points,omitempty"`
}

// UpdateLine handles PATCH /{id}/lines/{index}
func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.BadRequest(w, "tenant ID required")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		api.BadRequest(w, "line index must be a number")
		return
	}

	var req UpdateLineRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.ValidationError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	var a *payment.Allocation
	switch {
	case req.Method != nil:
		method, perr := payment.ParseMethod(*req.Method)
		if perr != nil {
			api.BadRequest(w, perr.Error())
			return
		}
		a, err = h.service.UpdateLineMethod(r.Context(), tenantID, id, index, method)
	case req.AmountMinor != nil:
		a, err = h.service.UpdateLineAmount(r.Context(), tenantID, id, index,
			money.New(*req.AmountMinor, h.currency))
	case req.Points != nil:
		a, err = h.service.UpdateLinePoints(r.Context(), tenantID, id, index, *req.Points)
	default:
		api.BadRequest(w, "one of method, amount_minor, or points is required")
		return
	}
	if !h.writeLineOpError(w, err) {
		return
	}

	if view, ok := h.validatedView(w, r, tenantID, a); ok {
		api.WriteData(w, http.StatusOK, view)
	}
}

// RemoveLine handles DELETE /{id}/lines/{index}
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.BadRequest(w, "tenant ID required")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		api.BadRequest(w, "line index must be a number")
		return
	}

	a, err := h.service.RemoveLine(r.Context(), tenantID, chi.URLParam(r, "id"), index)
	if !h.writeLineOpError(w, err) {
		return
	}

	if view, ok := h.validatedView(w, r, tenantID, a); ok {
		api.WriteData(w, http.StatusOK, view)
	}
}

// SubmitResponse is the API response for a successful submission.
type SubmitResponse struct {
	Allocation  AllocationView              `json:"allocation"`
	Settlements []payment.SettlementRequest `json:"settlements"`
}

// Submit handles POST /{id}/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.BadRequest(w, "tenant ID required")
		return
	}

	a, requests, err := h.service.Submit(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			api.NotFound(w, "allocation not found")
		case errors.Is(err, payment.ErrAlreadySubmitted):
			api.Conflict(w, "allocation already submitted")
		case a != nil:
			api.Unprocessable(w, err.Error())
		default:
			api.InternalError(w, "failed to submit allocation")
		}
		return
	}

	api.WriteData(w, http.StatusOK, SubmitResponse{
		Allocation:  h.view(a, nil),
		Settlements: requests,
	})
}

// writeLineOpError maps line operation failures onto API responses. It
// returns true when there was no error.
func (h *Handler) writeLineOpError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, database.ErrNotFound):
		api.NotFound(w, "allocation not found")
	case errors.Is(err, payment.ErrAlreadySubmitted):
		api.Conflict(w, "allocation already submitted")
	case errors.Is(err, payment.ErrLastLine), errors.Is(err, payment.ErrLineIndex):
		api.BadRequest(w, err.Error())
	default:
		api.BadRequest(w, err.Error())
	}
	return false
}
