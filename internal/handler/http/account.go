package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/trimly/accounts/internal/service"
	"github.com/trimly/accounts/pkg/httputil"
	"github.com/trimly/accounts/pkg/middleware"
	"github.com/trimly/accounts/pkg/validator"
)

// AccountHandler handles HTTP requests for profile, blocklist, and payment
// history endpoints.
type AccountHandler struct {
	service *service.AccountService
	logger  *slog.Logger
}

// NewAccountHandler creates a new account HTTP handler.
func NewAccountHandler(svc *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// UpdateProfileRequest is the JSON request body for partial profile updates.
// Absent fields are left unchanged; an explicit empty string clears a field.
type UpdateProfileRequest struct {
	Location            *string `json:"location" validate:"omitempty,max=200"`
	FirstName           *string `json:"first_name" validate:"omitempty,max=100"`
	LastName            *string `json:"last_name" validate:"omitempty,max=100"`
	PhoneNumber         *string `json:"phone_number" validate:"omitempty,max=30"`
	ProfileImage        *string `json:"profile_image" validate:"omitempty,max=2048"`
	FavoriteBarberEmail *string `json:"favorite_barber_email" validate:"omitempty,email"`
	IsServiceProvider   *bool   `json:"is_service_provider"`
}

// BlockUserRequest is the JSON request body for adding a blocklist entry.
type BlockUserRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RecordPaymentRequest is the JSON request body for appending a payment
// record to the authenticated provider's history.
type RecordPaymentRequest struct {
	PayerEmail   string   `json:"payer_email" validate:"required,email"`
	Amount       float64  `json:"amount" validate:"required,gt=0"`
	ServiceNames []string `json:"service_names"`
}

// --- Handlers ---

// GetProfile handles GET /api/v1/accounts/me
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromContext(r.Context())

	account, err := h.service.GetAccount(r.Context(), email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: account})
}

// UpdateProfile handles PATCH /api/v1/accounts/me
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req UpdateProfileRequest
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

	account, err := h.service.UpdateProfile(r.Context(), email, service.ProfileUpdateInput{
		Location:            req.Location,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		PhoneNumber:         req.PhoneNumber,
		ProfileImage:        req.ProfileImage,
		FavoriteBarberEmail: req.FavoriteBarberEmail,
		IsServiceProvider:   req.IsServiceProvider,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: account})
}

// ListBlocked handles GET /api/v1/accounts/me/blocked
func (h *AccountHandler) ListBlocked(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromContext(r.Context())

	blocked, err := h.service.BlockedUsers(r.Context(), email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: blocked})
}

// BlockUser handles POST /api/v1/accounts/me/blocked
func (h *AccountHandler) BlockUser(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req BlockUserRequest
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

	if err := h.service.BlockUser(r.Context(), email, req.Email); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"blocked": req.Email},
	})
}

// UnblockUser handles DELETE /api/v1/accounts/me/blocked/{email}
func (h *AccountHandler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	target, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil || target == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "a target email path parameter is required"},
		})
		return
	}

	email := middleware.EmailFromContext(r.Context())

	if err := h.service.UnblockUser(r.Context(), email, target); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"unblocked": target},
	})
}

// ListPayments handles GET /api/v1/accounts/me/payments
func (h *AccountHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromContext(r.Context())

	history, err := h.service.PaymentHistory(r.Context(), email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: history})
}

// RecordPayment handles POST /api/v1/accounts/me/payments
func (h *AccountHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req RecordPaymentRequest
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

	record, err := h.service.RecordPayment(r.Context(), service.RecordPaymentInput{
		ProviderEmail: email,
		PayerEmail:    req.PayerEmail,
		Amount:        req.Amount,
		ServiceNames:  req.ServiceNames,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: record})
}
