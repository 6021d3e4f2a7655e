package domain

import (
	"context"
	"time"
)

// BasketLine is one priced line of the basket snapshot.
type BasketLine struct {
	ProductID   string `json:"product_id"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	AmountMinor int64  `json:"amount_minor"`
}

// BasketSnapshot is the read-only basket state used to seed an attempt.
// Total and currency are taken verbatim; the core never re-prices.
type BasketSnapshot struct {
	Lines      []BasketLine `json:"lines"`
	TotalMinor int64        `json:"total_minor"`
	Currency   string       `json:"currency"`
}

// BasketProvider yields the basket snapshot for a session, called once per
// attempt.
type BasketProvider interface {
	GetBasketData(ctx context.Context, sessionID string) (*BasketSnapshot, error)
}

// ChallengeStore holds the 3-D Secure challenge payload between the
// authorisation call and the customer's postback. Owned by the session
// collaborator; the orchestrator reads and writes it at exactly two points.
type ChallengeStore interface {
	Put(ctx context.Context, sessionID string, payload string) error
	// Get returns ErrChallengeStateMissing when no payload is stored.
	Get(ctx context.Context, sessionID string) (string, error)
	Clear(ctx context.Context, sessionID string) error
}

// OrderConfirmation is the event emitted after a settled checkout.
type OrderConfirmation struct {
	Reference  string `json:"reference"`
	TotalMinor int64  `json:"total_minor"`
	Currency   string `json:"currency"`
}

// Notifier is invoked only after Complete(settled=true). A notifier failure
// must never change the already-decided outcome.
type Notifier interface {
	Send(ctx context.Context, confirmation OrderConfirmation) error
}

// RequestParameter is one flattened name/value pair of a 3-D Secure postback.
type RequestParameter struct {
	Name  string
	Value string
}

// WebAuthorisationRequest asks the card network for a direct authorisation
// decision. The gateway may answer with a challenge instead.
type WebAuthorisationRequest struct {
	Reference  string
	Card       CardDetails
	Billing    BillingAddress
	TotalMinor int64
	Currency   string
	UserIP     string
}

// WebAuthorisation is the gateway's answer to a web authorisation call when
// the call itself succeeded.
type WebAuthorisation struct {
	ChallengeRequired bool
	ChallengePayload  string // HTML fragment to render when a challenge is demanded
	AuthorisationCode string // acquirer code when authorised outright
}

// RecurringCheckout is the settlement request for the recurring-transaction
// operation. Card payments carry a token; bank debits carry account details
// and no token.
type RecurringCheckout struct {
	Reference          string
	TransactionID      string
	BasketCollectionID string
	TimestampUTC       time.Time
	UserIP             string
	Method             PaymentMethod
	CardToken          string
	Bank               *BankAccountDetails
	PaymentDayOfMonth  int
	TargetAmountMinor  *int64
	StopWhenTargetMet  *bool
}

// SingleCheckout is the settlement request for a single-payment transaction,
// entered with an authorisation code already in hand.
type SingleCheckout struct {
	Reference          string
	TransactionID      string
	BasketCollectionID string
	TimestampUTC       time.Time
	UserIP             string
	AuthorisationCode  string
}

// GatewayClient is the port to the remote payment gateway. Implementations
// never let a transport fault escape: every method reduces failures to a
// CallResult (or an error for reference generation, which precedes the
// normalized chain).
type GatewayClient interface {
	// GenerateReference obtains the gateway-issued transaction reference that
	// correlates all calls of one attempt.
	GenerateReference(ctx context.Context) (string, error)

	ValidateCardDetails(ctx context.Context, card CardDetails, billing BillingAddress) CallResult
	SaveCardAsToken(ctx context.Context, card CardDetails, billing BillingAddress) (string, CallResult)
	ValidateAccount(ctx context.Context, account BankAccountDetails) CallResult

	AuthoriseWebTransaction(ctx context.Context, req WebAuthorisationRequest) (*WebAuthorisation, CallResult)
	AuthoriseSecure3D(ctx context.Context, params []RequestParameter) (string, CallResult)

	CheckoutRecurring(ctx context.Context, tx RecurringCheckout) (bool, CallResult)
	CheckoutSingle(ctx context.Context, tx SingleCheckout) (bool, CallResult)
}
