package domain

import "errors"

// User-facing messages. Transport and session diagnostics never reach the
// customer; anything unexpected collapses to GenericUserMessage.
const (
	GenericUserMessage        = "Sorry, there was a problem. Please call us for further assistance."
	CardNotAuthorisedMessage  = "Card not authorised. Please try again or contact your bank."
	InvalidBankDetailsMessage = "Invalid bank details."
)

var (
	// ErrValidationDeclined: the gateway explicitly rejected the card or
	// account details. User-correctable.
	ErrValidationDeclined = errors.New("payment details declined by gateway")

	// ErrAuthorizationDeclined: the issuer refused authorisation.
	ErrAuthorizationDeclined = errors.New("authorisation declined by issuer")

	// ErrGatewayUnavailable: network failure, timeout, or a malformed gateway
	// response.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrPreconditionViolation: missing reference, contradictory context, or
	// missing prior challenge state. A programming or session error, not a
	// gateway answer.
	ErrPreconditionViolation = errors.New("checkout precondition violated")

	// ErrChallengeStateMissing: no stored 3-D Secure challenge payload for the
	// session attempting resolution.
	ErrChallengeStateMissing = errors.New("no stored secure challenge state")

	// ErrBasketUnavailable: the session has no basket snapshot to charge.
	ErrBasketUnavailable = errors.New("basket snapshot unavailable")
)
