// Package finding turns line-scan results into deduplicated findings.
package finding

import (
	"context"
	"fmt"

	"github.com/praetorian-inc/policyscan/pkg/matcher"
	"github.com/praetorian-inc/policyscan/pkg/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Input identifies the scanned line.
type Input struct {
	Filename   string
	LineNumber int
	Line       string
	Context    *types.LineContext // optional; passed to the verification hook
}

type options struct {
	logger zerolog.Logger
}

// Option configures Build.
type Option func(*options)

// WithLogger sets the logger used for verification failures.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Build wraps scan results in findings. Rule metadata comes from set by each
// result's pattern. verify may be nil; a hook error, panic or any outcome
// other than types.VerifiedTrue leaves the finding unverified.
func Build(ctx context.Context, in Input, results []matcher.Result, set *matcher.Set, verify types.VerifyFunc, opts ...Option) []*types.Finding {
	o := options{logger: log.Logger}
	for _, opt := range opts {
		opt(&o)
	}

	lc := in.Context
	if lc == nil {
		lc = &types.LineContext{Line: in.Line}
	}

	out := NewSet()
	for _, res := range results {
		if res.Matcher == nil {
			continue
		}
		rule, ok := set.Rule(res.Matcher.Pattern)
		if !ok {
			o.logger.Debug().Str("pattern", res.Matcher.Pattern).Msg("No rule registered for pattern")
			continue
		}

		verified := Verify(ctx, verify, res.Value, lc, o.logger) == types.VerifiedTrue
		out.Add(types.NewFinding(rule, in.Filename, in.LineNumber, res.Value, verified))
	}
	return out.Findings()
}

// Verify runs hook and converts errors and panics into types.Unverified.
// A nil hook yields types.Unknown.
func Verify(ctx context.Context, hook types.VerifyFunc, secret string, lc *types.LineContext, logger zerolog.Logger) (outcome types.VerificationOutcome) {
	if hook == nil {
		return types.Unknown
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Warn().Str("panic", fmt.Sprint(r)).Msg("Verification hook panicked")
			outcome = types.Unverified
		}
	}()

	outcome, err := hook(ctx, secret, lc)
	if err != nil {
		logger.Debug().Err(err).Msg("Verification failed")
		return types.Unverified
	}
	return outcome
}
