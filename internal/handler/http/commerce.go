package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trimly/accounts/internal/service"
	"github.com/trimly/accounts/pkg/httputil"
	"github.com/trimly/accounts/pkg/middleware"
	"github.com/trimly/accounts/pkg/validator"
)

// CommerceHandler handles HTTP requests for the service catalog endpoints.
type CommerceHandler struct {
	service *service.AccountService
	logger  *slog.Logger
}

// NewCommerceHandler creates a new commerce HTTP handler.
func NewCommerceHandler(svc *service.AccountService, logger *slog.Logger) *CommerceHandler {
	return &CommerceHandler{service: svc, logger: logger}
}

// ServiceRequest is the JSON request body for creating or replacing a
// catalog entry.
type ServiceRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Cost     float64 `json:"cost" validate:"required,gt=0"`
	Duration int     `json:"duration" validate:"required,gt=0"`
}

// CreateService handles POST /api/v1/accounts/me/services.
// A 202 with verification details means the account still needs
// provider-side onboarding and the service was not created.
func (h *CommerceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req ServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	email := middleware.EmailFromContext(r.Context())

	result, err := h.service.CreateService(r.Context(), service.CreateServiceInput{
		Name:     req.Name,
		Cost:     req.Cost,
		Duration: req.Duration,
	}, email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if result.VerificationRequired {
		httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: result})
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}

// UpdateService handles PUT /api/v1/accounts/me/services/{priceId}
func (h *CommerceHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	priceID := chi.URLParam(r, "priceId")

	var req ServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	email := middleware.EmailFromContext(r.Context())

	result, err := h.service.UpdateService(r.Context(), email, priceID, service.CreateServiceInput{
		Name:     req.Name,
		Cost:     req.Cost,
		Duration: req.Duration,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if result.VerificationRequired {
		httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: result})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// DeleteService handles DELETE /api/v1/accounts/me/services/{priceId}
func (h *CommerceHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	priceID := chi.URLParam(r, "priceId")

	email := middleware.EmailFromContext(r.Context())

	if err := h.service.DeleteService(r.Context(), email, priceID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"deleted": priceID},
	})
}
