package domain

// CallStatus tags the normalized outcome of a single remote gateway call.
type CallStatus string

const (
	CallSuccess  CallStatus = "success"
	CallDeclined CallStatus = "declined"
	CallError    CallStatus = "gateway_error"
)

// CallResult is the uniform shape every gateway call site reduces to. No
// partial or ambiguous state passes upward: a call either succeeded, was
// declined with a user-safe message, or failed at the transport/contract
// level.
type CallResult struct {
	Status  CallStatus
	Message string
}

// Succeeded builds a CallSuccess result.
func Succeeded() CallResult {
	return CallResult{Status: CallSuccess}
}

// Declined builds a CallDeclined result. An empty gateway message falls back
// to the generic user message.
func Declined(message string) CallResult {
	if message == "" {
		message = GenericUserMessage
	}
	return CallResult{Status: CallDeclined, Message: message}
}

// Unavailable builds a CallError result. The message shown to users is always
// generic; transport diagnostics belong in the log.
func Unavailable() CallResult {
	return CallResult{Status: CallError, Message: GenericUserMessage}
}

// OK reports whether the call succeeded.
func (r CallResult) OK() bool {
	return r.Status == CallSuccess
}

// OutcomeStatus tags the terminal result of a payment attempt.
type OutcomeStatus string

const (
	OutcomeComplete          OutcomeStatus = "complete"
	OutcomeChallengeRequired OutcomeStatus = "challenge_required"
	OutcomeError             OutcomeStatus = "error"
)

// AttemptOutcome is what the orchestrator surfaces to the calling workflow.
// Created once per attempt and consumed immediately; never persisted here.
type AttemptOutcome struct {
	Status      OutcomeStatus
	Settled     bool   // meaningful only for OutcomeComplete
	Reference   string // set for OutcomeComplete
	Challenge   string // challenge payload for OutcomeChallengeRequired
	UserMessage string // set for OutcomeError
}

// CompleteOutcome marks an attempt the gateway answered. Settled=false is a
// negative answer, not an error: the gateway accepted the call and declined
// settlement.
func CompleteOutcome(settled bool, reference string) AttemptOutcome {
	return AttemptOutcome{Status: OutcomeComplete, Settled: settled, Reference: reference}
}

// ChallengeOutcome marks an attempt paused on a 3-D Secure challenge.
func ChallengeOutcome(payload string) AttemptOutcome {
	return AttemptOutcome{Status: OutcomeChallengeRequired, Challenge: payload}
}

// ErrorOutcome marks a failed attempt. An empty message falls back to the
// generic user message.
func ErrorOutcome(userMessage string) AttemptOutcome {
	if userMessage == "" {
		userMessage = GenericUserMessage
	}
	return AttemptOutcome{Status: OutcomeError, UserMessage: userMessage}
}
