package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rentdesk/internal/common/api"
	"rentdesk/internal/common/database"
	"rentdesk/internal/common/middleware"
	"rentdesk/internal/wizard"
)

// Handler handles reservation wizard HTTP requests
type Handler struct {
	service *wizard.Service
}

// NewHandler creates a new wizard handler
func NewHandler(service *wizard.Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the reservation wizard routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateSession)
	r.Get("/{id}", h.GetSession)
	r.Get("/{id}/status", h.GetStatus)
	r.Post("/{id}/navigate", h.Navigate)
	r.Patch("/{id}/data", h.UpdateData)
	r.Post("/{id}/steps/{step}/{action}", h.StepAction)
	r.Post("/{id}/submit", h.Submit)

	return r
}

// StepView is the per-step slice of a session response.
type StepView struct {
	Number   int               `json:"number"`
	Title    string            `json:"title"`
	GroupID  string            `json:"group_id,omitempty"`
	Required bool              `json:"required"`
	Status   wizard.Status     `json:"status"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// SessionView is the API shape of a wizard session.
type SessionView struct {
	ID         string         `json:"id"`
	ActiveStep int            `json:"active_step"`
	Steps      []StepView     `json:"steps"`
	Groups     []wizard.Group `json:"groups"`
	Bag        wizard.DataBag `json:"data"`
}

func (h *Handler) view(session *wizard.Session) SessionView {
	graph := h.service.Graph()
	steps := make([]StepView, 0, graph.Len())
	for _, st := range graph.Steps() {
		steps = append(steps, StepView{
			Number:   st.Number,
			Title:    st.Title,
			GroupID:  st.GroupID,
			Required: graph.IsRequired(st.Number, session.Bag),
			Status:   session.StepStatus(st.Number),
			Errors:   session.StepErrors(st.Number),
		})
	}
	return SessionView{
		ID:         session.ID,
		ActiveStep: session.ActiveStep,
		Steps:      steps,
		Groups:     graph.Groups(),
		Bag:        session.Bag,
	}
}

// CreateSession handles POST /
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.BadRequest(w, "tenant ID required")
		return
	}

	session, err := h.service.CreateSession(r.Context(), tenantID)
	if err != nil {
		api.InternalError(w, "failed to create reservation draft")
		return
	}

	api.WriteData(w, http.StatusCreated, h.view(session))
}

// GetSession handles GET /{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.BadRequest(w, "tenant ID required")
		return
	}

	session, err := h.service.GetSession(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			api.NotFound(w, "reservation draft not found")
			return
		}
		api.InternalError(w, "failed to load reservation draft")
		return
	}

	api.WriteData(w, http.StatusOK, h.view(session))
}

// GetStatus handles GET /{id}/status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.BadRequest(w, "tenant ID required")
		return
	}

	session, err := h.service.GetSession(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			api.NotFound(w, "reservation draft not found")
			return
		}
		api.InternalError(w, "failed to load reservation draft")
		return
	}

	api.WriteData(w, http.StatusOK, session.Statuses())
}

// NavigateRequest is the API request for moving the active step.
type NavigateRequest struct {
	Target int `json:"target" validate:"required,min=1"`
}

// Navigate handles POST /{id}/navigate
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.BadRequest(w, "tenant ID required")
		return
	}

	var req NavigateRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.ValidationError(w, err)
		return
	}

	session, err := h.service.Navigate(r.Context(), tenantID, chi.URLParam(r, "id"), req.Target)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			api.NotFound(w, "reservation draft not found")
		case errors.Is(err, wizard.ErrUnknownStep):
			api.BadRequest(w, err.Error())
		default:
			api.InternalError(w, "failed to navigate")
		}
		return
	}

	api.WriteData(w, http.StatusOK, h.view(session))
}

// UpdateDataRequest is the API request for writing data bag fields.
type UpdateDataRequest struct {
	Fields map[string]any `json:"fields" validate:"required"`
}

// UpdateData handles PATCH /{id}/data
func (h *Handler) UpdateData(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.BadRequest(w, "tenant ID required")
		return
	}

	var req UpdateDataRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.ValidationError(w, err)
		return
	}

	session, err := h.service.UpdateFields(r.Context(), tenantID, chi.URLParam(r, "id"), req.Fields)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			api.NotFound(w, "reservation draft not found")
			return
		}
		api.InternalError(w, "failed to update reservation draft")
		return
	}

	api.WriteData(w, http.StatusOK, h.view(session))
}

// StepAction handles POST /{id}/steps/{step}/{action}
func (h *Handler) StepAction(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.BadRequest(w, "tenant ID required")
		return
	}

	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		api.BadRequest(w, "step must be a number")
		return
	}
	action := wizard.StepAction(chi.URLParam(r, "action"))

	session, err := h.service.ApplyStepAction(r.Context(), tenantID, chi.URLParam(r, "id"), step, action)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			api.NotFound(w, "reservation draft not found")
		case errors.Is(err, wizard.ErrUnknownStep):
			api.BadRequest(w, err.Error())
		default:
			api.BadRequest(w, err.Error())
		}
		return
	}

	api.WriteData(w, http.StatusOK, h.view(session))
}

// SubmitRequest optionally narrows which steps the submission gate checks.
type SubmitRequest struct {
	RequiredSteps []int `json:"required_steps"`
}

// Submit handles POST /{id}/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.BadRequest(w, "tenant ID required")
		return
	}

	var req SubmitRequest
	if r.ContentLength > 0 {
		if err := api.DecodeAndValidate(r, &req); err != nil {
			api.ValidationError(w, err)
			return
		}
	}

	session, err := h.service.Submit(r.Context(), tenantID, chi.URLParam(r, "id"), req.RequiredSteps)
	if err != nil {
		var subErr *wizard.SubmissionError
		switch {
		case errors.Is(err, database.ErrNotFound):
			api.NotFound(w, "reservation draft not found")
		case errors.As(err, &subErr):
			details := make(map[string]string, len(subErr.InvalidSteps))
			for i, n := range subErr.InvalidSteps {
				details[strconv.Itoa(n)] = subErr.Titles[i]
			}
			api.WriteErrorWithDetails(w, http.StatusUnprocessableEntity,
				api.ErrCodeUnprocessable, subErr.Error(), details)
		default:
			api.InternalError(w, "failed to submit reservation")
		}
		return
	}

	api.WriteData(w, http.StatusOK, h.view(session))
}
