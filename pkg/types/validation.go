package types

import (
	"context"
	"time"
)

// ValidationStatus represents the outcome of secret validation.
type ValidationStatus string

const (
	StatusValid        ValidationStatus = "valid"
	StatusInvalid      ValidationStatus = "invalid"
	StatusUndetermined ValidationStatus = "undetermined"
)

// ValidationResult represents the outcome of validating a secret.
type ValidationResult struct {
	Status      ValidationStatus  `json:"status"`
	Confidence  float64           `json:"confidence"`
	Message     string            `json:"message"`
	ValidatedAt time.Time         `json:"validated_at"`
	Details     map[string]string `json:"details,omitempty"`
}

// NewValidationResult creates a result with current timestamp.
func NewValidationResult(status ValidationStatus, confidence float64, message string) *ValidationResult {
	return &ValidationResult{
		Status:      status,
		Confidence:  confidence,
		Message:     message,
		ValidatedAt: time.Now(),
		Details:     make(map[string]string),
	}
}

// VerificationOutcome is what a verification hook reports for a secret.
// Only VerifiedTrue marks a finding as verified.
type VerificationOutcome string

const (
	VerifiedTrue  VerificationOutcome = "verified_true"
	VerifiedFalse VerificationOutcome = "verified_false"
	Unverified    VerificationOutcome = "unverified"
	Unknown       VerificationOutcome = "unknown"
)

// VerifyFunc classifies a candidate secret. lc may be nil.
type VerifyFunc func(ctx context.Context, secret string, lc *LineContext) (VerificationOutcome, error)

// Outcome maps a validation status to a verification outcome.
func (r *ValidationResult) Outcome() VerificationOutcome {
	if r == nil {
		return Unknown
	}
	switch r.Status {
	case StatusValid:
		return VerifiedTrue
	case StatusInvalid:
		return VerifiedFalse
	case StatusUndetermined:
		return Unverified
	default:
		return Unknown
	}
}
