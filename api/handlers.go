/*
handlers.go - HTTP API handlers for the food donation marketplace

PURPOSE:
  Exposes the donation ledger, history aggregator, and auth service via a
  REST API. Handles HTTP request/response, JSON serialization, and delegates
  to domain logic.

ENDPOINTS:
  Auth:
    POST   /api/auth/signup            Register and receive a token
    POST   /api/auth/signin            Sign in and receive a token
    GET    /api/auth/me                Current user details

  Donations (bearer token required):
    GET    /api/donations              List available (unclaimed) donations
    POST   /api/donations              Post a donation
    POST   /api/donations/claim        Claim an open donation

  Users (bearer token required):
    GET    /api/users/{id}/history     Posted/received donations + stats

  Impact (bearer token required):
    POST   /api/ai/impact              Weight-tiered impact message

ERROR HANDLING:
  Domain errors map onto HTTP statuses in one place (writeDomainError):
  - 400: Validation errors (with the offending field)
  - 404: Donation not found
  - 409: Donation already claimed
  - 403: Self-claim, cross-user history access
  - 500: Everything else, reported generically and logged with its cause

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - donation/ledger.go: The domain logic behind the donation routes
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/waste2give/marketplace/auth"
	"github.com/waste2give/marketplace/donation"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger  *donation.Ledger
	History *donation.Aggregator
	Auth    *auth.Service
	Log     zerolog.Logger
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(ledger *donation.Ledger, history *donation.Aggregator, authSvc *auth.Service, log zerolog.Logger) *Handler {
	return &Handler{Ledger: ledger, History: history, Auth: authSvc, Log: log}
}

// =============================================================================
// DONATION HANDLERS
// =============================================================================

// ListDonations returns all unclaimed donations, newest first.
func (h *Handler) ListDonations(w http.ResponseWriter, r *http.Request) {
	available, err := h.Ledger.ListAvailable(r.Context())
	if err != nil {
		h.writeDomainError(w, err, "Failed to fetch donations")
		return
	}
	writeJSON(w, http.StatusOK, toDonationDTOs(available))
}

// CreateDonation posts a new donation. The authenticated identity is the
// donor; the explicit donorId field is only a fallback for callers the
// middleware could not resolve.
func (h *Handler) CreateDonation(w http.ResponseWriter, r *http.Request) {
	var req CreateDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	donorID := IdentityFromContext(r.Context())
	if donorID == "" {
		donorID = donation.UserID(req.DonorID)
	}

	created, err := h.Ledger.Create(r.Context(), donation.CreateInput{
		Item:       req.Item,
		Quantity:   req.Quantity,
		Weight:     req.Weight,
		PickupTime: req.PickupTime,
		Address:    req.Address,
		DonorID:    donorID,
	})
	if err != nil {
		h.writeDomainError(w, err, "Failed to create donation")
		return
	}

	lbs, _ := created.Pounds.Float64()
	writeJSON(w, http.StatusCreated, CreateDonationResponse{
		DonationID:  string(created.ID),
		PoundsSaved: lbs,
		AiMessage:   created.ImpactMessage,
	})
}

// ClaimDonation transitions a donation to the claimed state.
func (h *Handler) ClaimDonation(w http.ResponseWriter, r *http.Request) {
	var req ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	caller := IdentityFromContext(r.Context())
	claimed, err := h.Ledger.Claim(r.Context(),
		donation.DonationID(req.DonationID),
		donation.UserID(req.ReceiverID),
		caller)
	if err != nil {
		h.writeDomainError(w, err, "Failed to claim donation")
		return
	}

	writeJSON(w, http.StatusOK, ClaimResponse{
		Success:  true,
		Donation: toDonationDTO(claimed),
	})
}

// =============================================================================
// HISTORY HANDLER
// =============================================================================

// GetUserHistory returns the per-user derived view. Callers may only request
// their own history; the check happens before any aggregation.
func (h *Handler) GetUserHistory(w http.ResponseWriter, r *http.Request) {
	userID := donation.UserID(chi.URLParam(r, "id"))

	if caller := IdentityFromContext(r.Context()); caller != userID {
		h.writeDomainError(w, donation.ErrForbidden, "")
		return
	}

	hist, err := h.History.History(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, err, "Failed to fetch user history")
		return
	}

	saved, _ := hist.Stats.TotalPoundsSaved.Float64()
	received, _ := hist.Stats.TotalPoundsReceived.Float64()
	writeJSON(w, http.StatusOK, HistoryResponse{
		UserID: string(userID),
		History: HistoryDTO{
			Posted:   toDonationDTOs(hist.Posted),
			Received: toDonationDTOs(hist.Received),
		},
		Stats: StatsDTO{
			TotalPoundsSaved:    saved,
			TotalPoundsReceived: received,
			TotalTransactions:   hist.Stats.TotalTransactions,
		},
	})
}

// =============================================================================
// IMPACT HANDLER
// =============================================================================

// WeightImpact returns a message tiered purely by pounds saved.
func (h *Handler) WeightImpact(w http.ResponseWriter, r *http.Request) {
	var req ImpactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Lbs <= 0 {
		writeError(w, http.StatusBadRequest, "Valid weight in pounds required", nil)
		return
	}
	message := donation.WeightImpact(decimal.NewFromFloat(req.Lbs))
	writeJSON(w, http.StatusOK, ImpactResponse{ImpactMessage: message})
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// SignUp registers a new user.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, token, err := h.Auth.SignUp(req.Name, req.Email, req.Password, req.UserType)
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Name, email and password required", nil)
		return
	case errors.Is(err, auth.ErrEmailInUse):
		writeError(w, http.StatusBadRequest, "Email already in use", nil)
		return
	case err != nil:
		h.Log.Error().Err(err).Msg("sign up failed")
		writeError(w, http.StatusInternalServerError, "Registration failed", nil)
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: toUserDTO(user)})
}

// SignIn verifies credentials and issues a token.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password required", nil)
		return
	}

	user, token, err := h.Auth.SignIn(req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("sign in failed")
		writeError(w, http.StatusInternalServerError, "Authentication failed", nil)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: toUserDTO(user)})
}

// Me returns the current authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id := IdentityFromContext(r.Context())
	user, err := h.Auth.UserByID(string(id))
	if errors.Is(err, auth.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("get user failed")
		writeError(w, http.StatusInternalServerError, "Failed to retrieve user data", nil)
		return
	}
	writeJSON(w, http.StatusOK, MeResponse{User: toUserDTO(user)})
}

// =============================================================================
// ERROR MAPPING AND RESPONSE HELPERS
// =============================================================================

// writeDomainError maps a domain error onto an HTTP status. Internal errors
// are reported generically; the cause goes to the log, not the client.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error, internalMsg string) {
	var verr *donation.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Message, Field: verr.Field})
	case errors.Is(err, donation.ErrDonationNotFound):
		writeError(w, http.StatusNotFound, "Donation not found", nil)
	case errors.Is(err, donation.ErrAlreadyClaimed):
		writeError(w, http.StatusConflict, "This donation has already been claimed", nil)
	case errors.Is(err, donation.ErrSelfClaim):
		writeError(w, http.StatusForbidden, "You cannot claim your own donation", nil)
	case errors.Is(err, donation.ErrForbidden):
		writeError(w, http.StatusForbidden, "Unauthorized to access this user data", nil)
	default:
		h.Log.Error().Err(err).Msg(internalMsg)
		writeError(w, http.StatusInternalServerError, internalMsg, nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
