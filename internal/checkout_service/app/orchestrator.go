package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/ecomcart/golang_services/internal/checkout_service/domain"
)

// CheckoutService is the transaction orchestrator: it drives a payment
// attempt from basket snapshot to terminal outcome, and separately resumes a
// 3-D Secure challenge continuation. Each attempt is strictly sequential:
// every remote call's result gates the next, and re-invocation always
// requests a fresh transaction reference, so two attempts are never conflated
// even after a transient error.
type CheckoutService struct {
	gateway    domain.GatewayClient
	baskets    domain.BasketProvider
	challenges domain.ChallengeStore
	notifier   domain.Notifier
	secure3d   *secureChallengeHandler
	card       *cardStrategy
	bank       *bankStrategy
	logger     *slog.Logger
}

func NewCheckoutService(
	gateway domain.GatewayClient,
	baskets domain.BasketProvider,
	challenges domain.ChallengeStore,
	notifier domain.Notifier,
	logger *slog.Logger,
) *CheckoutService {
	logger = logger.With("service", "checkout")
	return &CheckoutService{
		gateway:    gateway,
		baskets:    baskets,
		challenges: challenges,
		notifier:   notifier,
		secure3d:   newSecureChallengeHandler(gateway, logger),
		card:       &cardStrategy{gateway: gateway, logger: logger},
		bank:       &bankStrategy{gateway: gateway, logger: logger},
		logger:     logger,
	}
}

// AuthorizeAndCheckout runs one payment attempt: seed the context from the
// basket snapshot, obtain a fresh reference, run the method strategy, and
// reduce everything to an AttemptOutcome. A ChallengeRequired outcome stores
// the challenge payload for the session and returns immediately; the
// customer's postback re-enters through ResolveChallenge.
func (s *CheckoutService) AuthorizeAndCheckout(ctx context.Context, sessionID string, sub domain.CheckoutSubmission) domain.AttemptOutcome {
	started := time.Now()
	method := string(sub.Method)

	outcome := s.authorizeAndCheckout(ctx, sessionID, sub)

	checkoutAttemptDurationHist.WithLabelValues(method).Observe(time.Since(started).Seconds())
	checkoutAttemptsCounter.WithLabelValues(method, string(outcome.Status)).Inc()
	return outcome
}

func (s *CheckoutService) authorizeAndCheckout(ctx context.Context, sessionID string, sub domain.CheckoutSubmission) domain.AttemptOutcome {
	snapshot, err := s.baskets.GetBasketData(ctx, sessionID)
	if err != nil {
		s.logger.ErrorContext(ctx, "basket snapshot unavailable", "session_id", sessionID, "error", err)
		return domain.ErrorOutcome("")
	}
	if len(snapshot.Lines) == 0 {
		s.logger.WarnContext(ctx, "attempt with empty basket", "session_id", sessionID)
		return domain.ErrorOutcome("")
	}

	tc := domain.NewTransactionContext(sub, *snapshot)
	if err := tc.Validate(); err != nil {
		s.logger.ErrorContext(ctx, "invalid transaction context", "error", err)
		return domain.ErrorOutcome("")
	}

	reference, err := s.gateway.GenerateReference(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "could not obtain transaction reference", "error", err)
		return domain.ErrorOutcome("")
	}
	s.logger.InfoContext(ctx, "payment attempt started",
		"reference", reference,
		"method", tc.Method,
		"capture", tc.Capture,
		"total_minor", tc.TotalMinor,
		"currency", tc.Currency,
	)

	var outcome domain.AttemptOutcome
	switch tc.Method {
	case domain.PaymentMethodCard:
		outcome = s.card.execute(ctx, &tc, reference)
	case domain.PaymentMethodBankTransfer:
		outcome = s.bank.execute(ctx, &tc, reference)
	}

	switch outcome.Status {
	case domain.OutcomeChallengeRequired:
		if err := s.challenges.Put(ctx, sessionID, outcome.Challenge); err != nil {
			s.logger.ErrorContext(ctx, "failed to store challenge state", "session_id", sessionID, "error", err)
			return domain.ErrorOutcome("")
		}
		s.logger.InfoContext(ctx, "attempt paused on secure challenge", "reference", reference)
	case domain.OutcomeComplete:
		s.logger.InfoContext(ctx, "attempt complete", "reference", outcome.Reference, "settled", outcome.Settled)
		if outcome.Settled {
			s.notifyConfirmed(ctx, tc.TotalMinor, tc.Currency, outcome.Reference)
		}
	case domain.OutcomeError:
		s.logger.InfoContext(ctx, "attempt failed", "reference", reference)
	}
	return outcome
}

// ResolveChallenge resumes an attempt paused on a 3-D Secure challenge. It is
// only enterable when a prior ChallengeRequired stored state for the session;
// a missing state is a precondition violation and no remote call is made.
func (s *CheckoutService) ResolveChallenge(ctx context.Context, sessionID string, userIP string, fields map[string]string) domain.AttemptOutcome {
	outcome := s.resolveChallenge(ctx, sessionID, userIP, fields)
	challengeResolutionsCounter.WithLabelValues(string(outcome.Status)).Inc()
	return outcome
}

func (s *CheckoutService) resolveChallenge(ctx context.Context, sessionID string, userIP string, fields map[string]string) domain.AttemptOutcome {
	if _, err := s.challenges.Get(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "challenge resolution without stored state", "session_id", sessionID, "error", err)
		return domain.ErrorOutcome("")
	}

	snapshot, err := s.baskets.GetBasketData(ctx, sessionID)
	if err != nil {
		s.logger.ErrorContext(ctx, "basket snapshot unavailable for challenge resolution", "session_id", sessionID, "error", err)
		return domain.ErrorOutcome("")
	}

	// The continuation is its own attempt: it gets a fresh reference.
	reference, err := s.gateway.GenerateReference(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "could not obtain transaction reference", "error", err)
		return domain.ErrorOutcome("")
	}

	authCode, result := s.secure3d.Resolve(ctx, fields)
	if !result.OK() {
		if result.Status == domain.CallDeclined {
			// The gateway answered; the stored challenge page is spent.
			s.clearChallenge(ctx, sessionID)
		}
		return domain.ErrorOutcome(result.Message)
	}

	tc := domain.TransactionContext{UserIP: userIP}
	settled, result := s.gateway.CheckoutSingle(ctx, newSingleCheckout(&tc, reference, authCode))
	if !result.OK() {
		return domain.ErrorOutcome(result.Message)
	}

	s.clearChallenge(ctx, sessionID)
	s.logger.InfoContext(ctx, "challenge resolved", "reference", reference, "settled", settled)
	if settled {
		s.notifyConfirmed(ctx, snapshot.TotalMinor, snapshot.Currency, reference)
	}
	return domain.CompleteOutcome(settled, reference)
}

func (s *CheckoutService) clearChallenge(ctx context.Context, sessionID string) {
	if err := s.challenges.Clear(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear challenge state", "session_id", sessionID, "error", err)
	}
}

// notifyConfirmed emits the order-confirmed event. The outcome is already
// decided; a notifier failure is logged and swallowed.
func (s *CheckoutService) notifyConfirmed(ctx context.Context, totalMinor int64, currency, reference string) {
	confirmation := domain.OrderConfirmation{
		Reference:  reference,
		TotalMinor: totalMinor,
		Currency:   currency,
	}
	if err := s.notifier.Send(ctx, confirmation); err != nil {
		s.logger.ErrorContext(ctx, "order confirmation notification failed", "reference", reference, "error", err)
	}
}
