package domain

import "fmt"

// PaymentMethod selects which strategy drives the gateway call chain.
type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// CaptureMode selects how a card payment is settled. Recurring mirrors the
// gateway's transaction model where every card checkout is recorded as an
// open-ended mandate pinned to day-of-month 1; single routes through web
// authorisation and may demand a 3-D Secure challenge.
type CaptureMode string

const (
	CaptureRecurring CaptureMode = "recurring"
	CaptureSingle    CaptureMode = "single"
)

// BillingAddress carries the step-1 address fields sent with card payloads.
type BillingAddress struct {
	FirstNames  string
	LastName    string
	Address1    string
	Address2    string
	Address3    string
	TownCity    string
	State       string
	PostalCode  string
	CountryCode string
}

// CardDetails carries the step-2 card fields. Raw card data is sent to the
// gateway for a single validation call and never stored.
type CardDetails struct {
	Cardholder   string
	CardNumber   string
	ExpiryMonth  string
	ExpiryYear   string
	StartMonth   string // optional
	StartYear    string // optional
	IssueNumber  string
	SecurityCode string
}

// BankAccountDetails carries the step-2 bank transfer fields.
type BankAccountDetails struct {
	AccountHolder string
	AccountNumber string
	SortCode      string
}

// CheckoutSubmission is the explicit step-1/step-2 form data handed to the
// orchestrator. Exactly one of Card or Bank must be populated, matching Method.
type CheckoutSubmission struct {
	Billing BillingAddress
	Method  PaymentMethod
	Capture CaptureMode
	Card    *CardDetails
	Bank    *BankAccountDetails
	UserIP  string
}

// TransactionContext is the immutable per-attempt context: the submission plus
// the basket snapshot taken verbatim at authorisation time. No re-pricing
// happens mid-flow.
type TransactionContext struct {
	TotalMinor int64
	Currency   string
	Billing    BillingAddress
	Method     PaymentMethod
	Capture    CaptureMode
	Card       *CardDetails
	Bank       *BankAccountDetails
	UserIP     string
}

// NewTransactionContext seeds a context from a submission and basket snapshot.
func NewTransactionContext(sub CheckoutSubmission, snapshot BasketSnapshot) TransactionContext {
	capture := sub.Capture
	if capture == "" {
		capture = CaptureRecurring
	}
	return TransactionContext{
		TotalMinor: snapshot.TotalMinor,
		Currency:   snapshot.Currency,
		Billing:    sub.Billing,
		Method:     sub.Method,
		Capture:    capture,
		Card:       sub.Card,
		Bank:       sub.Bank,
		UserIP:     sub.UserIP,
	}
}

// Validate enforces the context invariants: exactly one payment method field
// set is populated and it matches the selector.
func (t *TransactionContext) Validate() error {
	if t.Currency == "" {
		return fmt.Errorf("%w: missing currency", ErrPreconditionViolation)
	}
	if t.TotalMinor <= 0 {
		return fmt.Errorf("%w: non-positive basket total", ErrPreconditionViolation)
	}
	switch t.Method {
	case PaymentMethodCard:
		if t.Card == nil || t.Bank != nil {
			return fmt.Errorf("%w: card method requires card details only", ErrPreconditionViolation)
		}
	case PaymentMethodBankTransfer:
		if t.Bank == nil || t.Card != nil {
			return fmt.Errorf("%w: bank transfer requires account details only", ErrPreconditionViolation)
		}
	default:
		return fmt.Errorf("%w: unknown payment method %q", ErrPreconditionViolation, t.Method)
	}
	if t.Capture != CaptureRecurring && t.Capture != CaptureSingle {
		return fmt.Errorf("%w: unknown capture mode %q", ErrPreconditionViolation, t.Capture)
	}
	return nil
}
