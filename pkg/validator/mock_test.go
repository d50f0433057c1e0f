package validator

import (
	"context"
	"strings"

	"github.com/praetorian-inc/policyscan/pkg/types"
)

type mockValidator struct {
	name   string
	prefix string
	result *types.ValidationResult
	err    error
	calls  int
}

func (m *mockValidator) Name() string { return m.name }

func (m *mockValidator) CanValidate(secret string) bool {
	return strings.HasPrefix(secret, m.prefix)
}

func (m *mockValidator) Validate(ctx context.Context, secret string, lc *types.LineContext) (*types.ValidationResult, error) {
	m.calls++
	return m.result, m.err
}
