package validator

import (
	"context"
	"fmt"

	"github.com/praetorian-inc/policyscan/pkg/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Engine coordinates validation across multiple validators with caching.
// Its Verify method satisfies types.VerifyFunc.
type Engine struct {
	validators []Validator
	cache      *ValidationCache
	sem        chan struct{} // bounds concurrent outbound validations
	logger     zerolog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithWorkers bounds concurrent validations; values <= 0 mean 4.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n <= 0 {
			n = 4
		}
		e.sem = make(chan struct{}, n)
	}
}

// NewEngine creates a validation engine with registered validators.
func NewEngine(validators []Validator, opts ...EngineOption) *Engine {
	e := &Engine{
		validators: validators,
		cache:      NewValidationCache(),
		sem:        make(chan struct{}, 4),
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewDefaultEngine creates an engine with the built-in validators.
func NewDefaultEngine(opts ...EngineOption) (*Engine, error) {
	validators := []Validator{
		NewAWSValidator(),
		NewAzureStorageValidator(),
		NewPostgresValidator(),
	}
	httpValidators, err := LoadEmbeddedValidators()
	if err != nil {
		return nil, err
	}
	validators = append(validators, httpValidators...)
	return NewEngine(validators, opts...), nil
}

// Validators returns the registered validators.
func (e *Engine) Validators() []Validator {
	return append([]Validator(nil), e.validators...)
}

// Validate checks the cache, then runs the first validator that accepts
// the secret. It returns a nil result when no validator accepts the secret.
// Only valid and invalid results are cached; an undetermined result may
// change with more context.
func (e *Engine) Validate(ctx context.Context, secret string, lc *types.LineContext) (*types.ValidationResult, error) {
	if secret == "" {
		return types.NewValidationResult(types.StatusUndetermined, 0, "no secret value found in match"), nil
	}

	if cached := e.cache.Get(secret); cached != nil {
		return cached, nil
	}

	for _, v := range e.validators {
		if !v.CanValidate(secret) {
			continue
		}

		select {
		case e.sem <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		result, err := v.Validate(ctx, secret, lc)
		<-e.sem

		if err != nil {
			return types.NewValidationResult(types.StatusUndetermined, 0, fmt.Sprintf("validation error: %v", err)), nil
		}
		e.logger.Debug().Str("validator", v.Name()).Str("status", string(result.Status)).Msg("Validated secret")
		if result.Status != types.StatusUndetermined {
			e.cache.Set(secret, result)
		}
		return result, nil
	}

	return nil, nil
}

// Verify implements types.VerifyFunc. Secrets no validator accepts are
// types.Unknown.
func (e *Engine) Verify(ctx context.Context, secret string, lc *types.LineContext) (types.VerificationOutcome, error) {
	result, err := e.Validate(ctx, secret, lc)
	if err != nil {
		return types.Unverified, err
	}
	return result.Outcome(), nil
}
