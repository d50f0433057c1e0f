// Package validator verifies candidate secrets against the services that
// issued them.
package validator

import (
	"context"

	"github.com/praetorian-inc/policyscan/pkg/types"
)

// Validator validates detected secrets against their source APIs.
type Validator interface {
	// Name returns a human-readable name for this validator.
	Name() string

	// CanValidate reports whether the secret has the shape this validator
	// understands.
	CanValidate(secret string) bool

	// Validate checks if the secret is valid/active. lc may carry companion
	// values (e.g. an AWS secret key near its access key ID).
	Validate(ctx context.Context, secret string, lc *types.LineContext) (*types.ValidationResult, error)
}
