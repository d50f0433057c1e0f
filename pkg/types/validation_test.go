package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationStatus_String(t *testing.T) {
	assert.Equal(t, "valid", string(StatusValid))
	assert.Equal(t, "invalid", string(StatusInvalid))
	assert.Equal(t, "undetermined", string(StatusUndetermined))
}

func TestValidationResult_New(t *testing.T) {
	result := NewValidationResult(StatusValid, 1.0, "credentials accepted")

	assert.Equal(t, StatusValid, result.Status)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, "credentials accepted", result.Message)
	assert.False(t, result.ValidatedAt.IsZero())
	assert.NotNil(t, result.Details)
}

func TestValidationResult_Outcome(t *testing.T) {
	tests := []struct {
		status ValidationStatus
		want   VerificationOutcome
	}{
		{StatusValid, VerifiedTrue},
		{StatusInvalid, VerifiedFalse},
		{StatusUndetermined, Unverified},
		{ValidationStatus("bogus"), Unknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, NewValidationResult(tt.status, 0, "").Outcome())
		})
	}
}

func TestValidationResult_Outcome_Nil(t *testing.T) {
	var r *ValidationResult
	assert.Equal(t, Unknown, r.Outcome())
}
