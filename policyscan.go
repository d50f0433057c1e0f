// Package policyscan detects secret-like values in single lines of text
// using detector rules resolved per tenant.
//
// Rules come from a process cache, then either the local bundle or the
// tenant's remote policy document. They are compiled once per tenant and
// shared read-only by every scan.
//
// # Basic Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine, err := policyscan.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, f := range engine.Scan(ctx, "main.tf", line, 12, nil) {
//	    fmt.Printf("%s (%s) at %s:%d\n", f.RuleName, f.RuleID, f.Location.Filename, f.Location.Line)
//	}
//
// # Multiple Tenants
//
// Hosts serving several tenants resolve a Detector per tenant and reuse it:
//
//	det, err := engine.Detector(ctx, policyscan.Tenant("acme"))
//	if err != nil {
//	    var ce *matcher.CompileError
//	    if errors.As(err, &ce) {
//	        // a tenant rule has an invalid pattern
//	    }
//	}
//	findings := det.Scan(ctx, filename, line, lineNumber, lc)
package policyscan

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/praetorian-inc/policyscan/pkg/config"
	"github.com/praetorian-inc/policyscan/pkg/finding"
	"github.com/praetorian-inc/policyscan/pkg/matcher"
	"github.com/praetorian-inc/policyscan/pkg/policystore"
	"github.com/praetorian-inc/policyscan/pkg/resolver"
	"github.com/praetorian-inc/policyscan/pkg/types"
	"github.com/praetorian-inc/policyscan/pkg/validator"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Re-export commonly used types for convenience.
type (
	// Finding is one reported candidate secret occurrence.
	Finding = types.Finding

	// Rule is a named, identified detector pattern.
	Rule = types.Rule

	// TenantContext identifies whose rules apply.
	TenantContext = types.TenantContext

	// LineContext carries the lines surrounding a scanned line.
	LineContext = types.LineContext

	// VerifyFunc classifies a candidate secret.
	VerifyFunc = types.VerifyFunc
)

// Tenant returns a TenantContext for id.
func Tenant(id string) TenantContext {
	return types.Tenant(id)
}

// Engine resolves, compiles and memoizes detectors per tenant.
// Safe for concurrent use.
type Engine struct {
	cfg      config.Config
	tenant   types.TenantContext
	resolver *resolver.Resolver
	verify   types.VerifyFunc
	logger   zerolog.Logger

	store       policystore.Store
	storeSet    bool
	cache       *resolver.Cache
	matcherOpts []matcher.Option

	mu        sync.Mutex
	detectors map[string]*detectorEntry
}

type detectorEntry struct {
	det      *Detector
	err      error
	reported bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine and its components.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithVerifier installs a verification hook. It takes precedence over
// Config.Verify.
func WithVerifier(fn types.VerifyFunc) Option {
	return func(e *Engine) {
		e.verify = fn
	}
}

// WithStore uses s for remote policy documents instead of building a store
// from Config.Store. A nil s disables remote resolution.
func WithStore(s policystore.Store) Option {
	return func(e *Engine) {
		e.store = s
		e.storeSet = true
	}
}

// WithCache shares a tenant cache between engines.
func WithCache(c *resolver.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithMatcherOptions passes options to matcher.Compile.
func WithMatcherOptions(opts ...matcher.Option) Option {
	return func(e *Engine) {
		e.matcherOpts = append(e.matcherOpts, opts...)
	}
}

// New creates an Engine. Configuration is resolved once here.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		cfg:       cfg,
		tenant:    types.Tenant(cfg.Tenant),
		logger:    log.Logger,
		detectors: make(map[string]*detectorEntry),
	}
	for _, opt := range opts {
		opt(e)
	}

	if !e.storeSet && !cfg.UseLocalBundle {
		s, err := policystore.New(context.Background(), cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("creating policy store: %w", err)
		}
		e.store = s
	}

	if e.verify == nil && cfg.Verify {
		ve, err := validator.NewDefaultEngine(validator.WithLogger(e.logger))
		if err != nil {
			return nil, fmt.Errorf("creating validation engine: %w", err)
		}
		e.verify = ve.Verify
	}

	resolverOpts := []resolver.Option{resolver.WithLogger(e.logger)}
	if e.cache != nil {
		resolverOpts = append(resolverOpts, resolver.WithCache(e.cache))
	}
	e.resolver = resolver.New(resolver.Config{
		UseLocalBundle: cfg.UseLocalBundle,
		BundlePath:     cfg.BundlePath,
		Prefix:         cfg.Prefix,
		Store:          e.store,
	}, resolverOpts...)
	e.matcherOpts = append([]matcher.Option{matcher.WithLogger(e.logger)}, e.matcherOpts...)

	return e, nil
}

// Tenant returns the configured default tenant.
func (e *Engine) Tenant() types.TenantContext {
	return e.tenant
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Resolver returns the engine's resolver.
func (e *Engine) Resolver() *resolver.Resolver {
	return e.resolver
}

// LoadDetectors returns the default tenant's rules. It never fails.
func (e *Engine) LoadDetectors(ctx context.Context) []*types.Rule {
	return e.LoadDetectorsFor(ctx, e.tenant)
}

// LoadDetectorsFor returns tenant's rules. It never fails.
func (e *Engine) LoadDetectorsFor(ctx context.Context, tenant types.TenantContext) []*types.Rule {
	return e.resolver.LoadDetectors(ctx, tenant)
}

// Detector returns the compiled detector for tenant. Detectors are memoized
// per tenant, the anonymous tenant included, and so are compile failures. A
// resolution that failed is not memoized and is retried on the next call. A
// rule with an invalid pattern makes Detector return a *matcher.CompileError.
func (e *Engine) Detector(ctx context.Context, tenant types.TenantContext) (*Detector, error) {
	e.mu.Lock()
	entry, ok := e.detectors[tenant.ID]
	e.mu.Unlock()
	if ok {
		return entry.det, entry.err
	}

	rules, stable := e.resolver.Resolve(ctx, tenant)
	det, err := e.Compile(tenant, rules)
	if !stable {
		return det, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if entry, ok := e.detectors[tenant.ID]; ok {
		return entry.det, entry.err
	}
	e.detectors[tenant.ID] = &detectorEntry{det: det, err: err}
	return det, err
}

// Compile builds an unmemoized detector for tenant from rules, e.g. a
// filtered subset of the resolved rules.
func (e *Engine) Compile(tenant types.TenantContext, rules []*types.Rule) (*Detector, error) {
	set, err := matcher.Compile(rules, e.matcherOpts...)
	if err != nil {
		return nil, err
	}
	return &Detector{
		tenant: tenant,
		rules:  rules,
		set:    set,
		verify: e.verify,
		logger: e.logger.With().Str("tenant", tenant.String()).Logger(),
	}, nil
}

// Scan scans one line for the default tenant.
func (e *Engine) Scan(ctx context.Context, filename, line string, lineNumber int, lc *types.LineContext) []*types.Finding {
	return e.ScanTenant(ctx, e.tenant, filename, line, lineNumber, lc)
}

// ScanTenant scans one line with tenant's detector. A detector that fails to
// compile is logged once per tenant and yields no findings.
func (e *Engine) ScanTenant(ctx context.Context, tenant types.TenantContext, filename, line string, lineNumber int, lc *types.LineContext) []*types.Finding {
	det, err := e.Detector(ctx, tenant)
	if err != nil {
		e.reportCompileError(tenant, err)
		return nil
	}
	return det.Scan(ctx, filename, line, lineNumber, lc)
}

func (e *Engine) reportCompileError(tenant types.TenantContext, err error) {
	e.mu.Lock()
	entry := e.detectors[tenant.ID]
	first := entry != nil && !entry.reported
	if first {
		entry.reported = true
	}
	e.mu.Unlock()
	if !first {
		return
	}

	ev := e.logger.Error().Err(err).Str("tenant", tenant.String())
	var ce *matcher.CompileError
	if errors.As(err, &ce) {
		ev = ev.Str("rule_id", ce.RuleID).Str("pattern", ce.Pattern)
	}
	ev.Msg("Failed to compile detectors, scans return no findings")
}

// Detector is the compiled rule set of one tenant. Immutable and safe for
// concurrent use.
type Detector struct {
	tenant types.TenantContext
	rules  []*types.Rule
	set    *matcher.Set
	verify types.VerifyFunc
	logger zerolog.Logger
}

// Tenant returns the tenant the detector was built for.
func (d *Detector) Tenant() types.TenantContext {
	return d.tenant
}

// Rules returns a copy of the detector's rules in resolution order.
func (d *Detector) Rules() []*types.Rule {
	if d == nil {
		return nil
	}
	return types.CloneRules(d.rules)
}

// Len returns the number of distinct compiled patterns.
func (d *Detector) Len() int {
	if d == nil {
		return 0
	}
	return d.set.Len()
}

// Scan returns the deduplicated findings on line. lineNumber is 1-based and
// lc may be nil.
func (d *Detector) Scan(ctx context.Context, filename, line string, lineNumber int, lc *types.LineContext) []*types.Finding {
	if d == nil {
		return nil
	}
	results := d.set.Scan(line)
	if len(results) == 0 {
		return nil
	}
	return finding.Build(ctx, finding.Input{
		Filename:   filename,
		LineNumber: lineNumber,
		Line:       line,
		Context:    lc,
	}, results, d.set, d.verify, finding.WithLogger(d.logger))
}
