package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/ecomcart/golang_services/internal/checkout_service/domain"
)

// methodStrategy drives the gateway call chain for one payment method. A
// strategy holds no connection state and is safe to invoke repeatedly as long
// as each attempt carries a fresh reference.
type methodStrategy interface {
	execute(ctx context.Context, tc *domain.TransactionContext, reference string) domain.AttemptOutcome
}

// recurringDayOfMonth mirrors the gateway's transaction model: every card and
// bank checkout in recurring capture mode is recorded as an open-ended
// mandate pinned to the first of the month, with no target amount or stop
// condition.
const recurringDayOfMonth = 1

func newRecurringCheckout(tc *domain.TransactionContext, reference string) domain.RecurringCheckout {
	return domain.RecurringCheckout{
		Reference:          reference,
		TransactionID:      domain.NewGUID(),
		BasketCollectionID: domain.NewGUID(),
		TimestampUTC:       time.Now().UTC(),
		UserIP:             tc.UserIP,
		Method:             tc.Method,
		Bank:               tc.Bank,
		PaymentDayOfMonth:  recurringDayOfMonth,
		TargetAmountMinor:  nil,
		StopWhenTargetMet:  nil,
	}
}

func newSingleCheckout(tc *domain.TransactionContext, reference, authCode string) domain.SingleCheckout {
	return domain.SingleCheckout{
		Reference:          reference,
		TransactionID:      domain.NewGUID(),
		BasketCollectionID: domain.NewGUID(),
		TimestampUTC:       time.Now().UTC(),
		UserIP:             tc.UserIP,
		AuthorisationCode:  authCode,
	}
}

// cardStrategy: validate the card, then either tokenize and settle through
// the recurring operation, or (single capture) authorise against the card
// network, which may demand a 3-D Secure challenge.
type cardStrategy struct {
	gateway domain.GatewayClient
	logger  *slog.Logger
}

func (s *cardStrategy) execute(ctx context.Context, tc *domain.TransactionContext, reference string) domain.AttemptOutcome {
	result := s.gateway.ValidateCardDetails(ctx, *tc.Card, tc.Billing)
	if !result.OK() {
		s.logger.InfoContext(ctx, "card validation failed", "status", result.Status, "reference", reference)
		return domain.ErrorOutcome(result.Message)
	}

	if tc.Capture == domain.CaptureSingle {
		return s.executeSingle(ctx, tc, reference)
	}

	token, result := s.gateway.SaveCardAsToken(ctx, *tc.Card, tc.Billing)
	if !result.OK() {
		s.logger.InfoContext(ctx, "tokenization failed", "status", result.Status, "reference", reference)
		return domain.ErrorOutcome(result.Message)
	}

	tx := newRecurringCheckout(tc, reference)
	tx.CardToken = token
	settled, result := s.gateway.CheckoutRecurring(ctx, tx)
	if !result.OK() {
		s.logger.ErrorContext(ctx, "recurring checkout failed", "status", result.Status, "reference", reference)
		return domain.ErrorOutcome(result.Message)
	}
	return domain.CompleteOutcome(settled, reference)
}

func (s *cardStrategy) executeSingle(ctx context.Context, tc *domain.TransactionContext, reference string) domain.AttemptOutcome {
	auth, result := s.gateway.AuthoriseWebTransaction(ctx, domain.WebAuthorisationRequest{
		Reference:  reference,
		Card:       *tc.Card,
		Billing:    tc.Billing,
		TotalMinor: tc.TotalMinor,
		Currency:   tc.Currency,
		UserIP:     tc.UserIP,
	})
	if !result.OK() {
		s.logger.InfoContext(ctx, "web authorisation failed", "status", result.Status, "reference", reference)
		return domain.ErrorOutcome(result.Message)
	}
	if auth.ChallengeRequired {
		s.logger.InfoContext(ctx, "secure challenge demanded by gateway", "reference", reference)
		return domain.ChallengeOutcome(auth.ChallengePayload)
	}

	settled, result := s.gateway.CheckoutSingle(ctx, newSingleCheckout(tc, reference, auth.AuthorisationCode))
	if !result.OK() {
		s.logger.ErrorContext(ctx, "single checkout failed", "status", result.Status, "reference", reference)
		return domain.ErrorOutcome(result.Message)
	}
	return domain.CompleteOutcome(settled, reference)
}

// bankStrategy: validate the account, then settle through the recurring
// operation with no card token. Bank debits never take the challenge detour.
type bankStrategy struct {
	gateway domain.GatewayClient
	logger  *slog.Logger
}

func (s *bankStrategy) execute(ctx context.Context, tc *domain.TransactionContext, reference string) domain.AttemptOutcome {
	result := s.gateway.ValidateAccount(ctx, *tc.Bank)
	if !result.OK() {
		s.logger.InfoContext(ctx, "account validation failed", "status", result.Status, "reference", reference)
		return domain.ErrorOutcome(result.Message)
	}

	settled, result := s.gateway.CheckoutRecurring(ctx, newRecurringCheckout(tc, reference))
	if !result.OK() {
		s.logger.ErrorContext(ctx, "recurring checkout failed", "status", result.Status, "reference", reference)
		return domain.ErrorOutcome(result.Message)
	}
	return domain.CompleteOutcome(settled, reference)
}
