package domain

import "github.com/google/uuid"

// NewGUID returns a locally generated RFC-4122 v4 identifier used for
// per-call TransactionId and BasketCollectionId values sent to the gateway.
// Generation is purely local and never fails.
func NewGUID() string {
	return uuid.New().String()
}
