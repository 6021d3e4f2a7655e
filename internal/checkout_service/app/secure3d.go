package app

import (
	"context"
	"log/slog"
	"sort"

	"github.com/ecomcart/golang_services/internal/checkout_service/domain"
)

// secureChallengeHandler owns the 3-D Secure detour: turning the challenge
// page's postback into the gateway's parameter-list shape and interpreting
// the authorisation answer.
type secureChallengeHandler struct {
	gateway domain.GatewayClient
	logger  *slog.Logger
}

func newSecureChallengeHandler(gateway domain.GatewayClient, logger *slog.Logger) *secureChallengeHandler {
	return &secureChallengeHandler{
		gateway: gateway,
		logger:  logger.With("component", "secure3d"),
	}
}

// buildChallengeRequest flattens an arbitrary name/value postback into the
// gateway's RequestParameter list. Every key appears exactly once; parameters
// are sorted by name so the payload is deterministic.
func buildChallengeRequest(fields map[string]string) []domain.RequestParameter {
	params := make([]domain.RequestParameter, 0, len(fields))
	for name, value := range fields {
		params = append(params, domain.RequestParameter{Name: name, Value: value})
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
	return params
}

// Resolve submits the challenge postback for authorisation. On success the
// returned acquirer code feeds single-payment checkout directly; the card was
// already validated before the challenge was issued, so no re-validation
// happens on this path.
func (h *secureChallengeHandler) Resolve(ctx context.Context, fields map[string]string) (string, domain.CallResult) {
	params := buildChallengeRequest(fields)
	authCode, result := h.gateway.AuthoriseSecure3D(ctx, params)
	if !result.OK() {
		h.logger.InfoContext(ctx, "secure challenge not authorised", "status", result.Status)
		return "", result
	}
	return authCode, result
}
