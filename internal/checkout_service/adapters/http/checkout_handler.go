package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ecomcart/golang_services/internal/checkout_service/domain"
)

// SessionIDHeader identifies the customer's server-side session. The session
// plumbing itself (cookies, expiry) belongs to the storefront in front of
// this service.
const SessionIDHeader = "X-Session-ID"

// CheckoutProcessor is the slice of the orchestrator the handler needs.
type CheckoutProcessor interface {
	AuthorizeAndCheckout(ctx context.Context, sessionID string, sub domain.CheckoutSubmission) domain.AttemptOutcome
	ResolveChallenge(ctx context.Context, sessionID string, userIP string, fields map[string]string) domain.AttemptOutcome
}

type CheckoutHandler struct {
	service  CheckoutProcessor
	logger   *slog.Logger
	validate *validator.Validate
}

func NewCheckoutHandler(service CheckoutProcessor, logger *slog.Logger, validate *validator.Validate) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		logger:   logger.With("component", "checkout_handler"),
		validate: validate,
	}
}

func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/checkout/payment", h.ProcessPayment)
	r.Post("/checkout/secure3d", h.ProcessSecure3D)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Default().Error("Failed to write JSON response", "error", err)
		}
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// outcomeStatusCode maps a terminal outcome onto an HTTP status. A settled
// and an unsettled Complete both answered; the body's settled flag carries
// the difference.
func outcomeStatusCode(outcome domain.AttemptOutcome) int {
	switch outcome.Status {
	case domain.OutcomeComplete:
		return http.StatusOK
	case domain.OutcomeChallengeRequired:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func outcomeResponse(outcome domain.AttemptOutcome) AttemptOutcomeResponseDTO {
	return AttemptOutcomeResponseDTO{
		Status:    string(outcome.Status),
		Settled:   outcome.Settled,
		Reference: outcome.Reference,
		Challenge: outcome.Challenge,
		Message:   outcome.UserMessage,
	}
}

// ProcessPayment handles the step-2 submission and runs a payment attempt.
func (h *CheckoutHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := r.Header.Get(SessionIDHeader)
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "missing session id")
		return
	}

	var reqDTO CheckoutPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	outcome := h.service.AuthorizeAndCheckout(ctx, sessionID, reqDTO.toSubmission(clientIP(r)))
	respondWithJSON(w, outcomeStatusCode(outcome), outcomeResponse(outcome))
}

// ProcessSecure3D handles the challenge page's postback. The ACS posts an
// arbitrary form-encoded field set; it is forwarded verbatim.
func (h *CheckoutHandler) ProcessSecure3D(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := r.Header.Get(SessionIDHeader)
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "missing session id")
		return
	}

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid form payload: "+err.Error())
		return
	}
	fields := make(map[string]string, len(r.PostForm))
	for name := range r.PostForm {
		fields[name] = r.PostForm.Get(name)
	}

	outcome := h.service.ResolveChallenge(ctx, sessionID, clientIP(r), fields)
	respondWithJSON(w, outcomeStatusCode(outcome), outcomeResponse(outcome))
}
