package matcher

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single regex match attempt.
const DefaultTimeout = 5 * time.Second

type options struct {
	timeout   time.Duration
	prefilter bool
	logger    zerolog.Logger
}

func defaultOptions() options {
	return options{
		timeout:   DefaultTimeout,
		prefilter: true,
		logger:    log.Logger,
	}
}

// Option configures Compile.
type Option func(*options)

// WithTimeout sets the per-match regex timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithPrefilter enables or disables the literal-keyword prefilter.
func WithPrefilter(enabled bool) Option {
	return func(o *options) {
		o.prefilter = enabled
	}
}

// WithLogger sets the logger used for scan-time regex errors.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
