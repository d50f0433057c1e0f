// Package resolver resolves the detector rules active for a tenant: the
// process cache first, then the local bundle or the remote policy store.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/praetorian-inc/policyscan/pkg/policystore"
	"github.com/praetorian-inc/policyscan/pkg/rule"
	"github.com/praetorian-inc/policyscan/pkg/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is resolved once at construction.
type Config struct {
	UseLocalBundle bool
	BundlePath     string // empty selects the bundle embedded in the binary
	Prefix         string // remote key prefix, policystore.DefaultPrefix when empty
	Store          policystore.Store
}

// Resolver owns the tenant cache. Safe for concurrent use; racing
// resolutions of one tenant may both acquire, and the last Put wins.
type Resolver struct {
	cfg          Config
	cache        *Cache
	transformer  *rule.Transformer
	logger       zerolog.Logger
	acquisitions atomic.Int64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithCache shares an existing cache.
func WithCache(c *Cache) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

// New creates a Resolver.
func New(cfg Config, opts ...Option) *Resolver {
	r := &Resolver{
		cfg:    cfg,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = NewCache()
	}
	r.transformer = rule.NewTransformer(rule.WithTransformerLogger(r.logger))
	return r
}

// Cache returns the resolver's cache.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Acquisitions counts bundle loads and remote fetches performed.
func (r *Resolver) Acquisitions() int64 {
	return r.acquisitions.Load()
}

// LoadDetectors returns the tenant's rules. It never fails: acquisition
// errors are logged and yield no rules.
func (r *Resolver) LoadDetectors(ctx context.Context, tenant types.TenantContext) []*types.Rule {
	rules, _ := r.Resolve(ctx, tenant)
	return rules
}

// Resolve is LoadDetectors that also reports whether the result is stable.
// A resolved rule set, including an empty one or a missing policy document,
// is stable and cached for a non-empty tenant. A failed acquisition is not
// stable and is not cached, so the next call retries.
func (r *Resolver) Resolve(ctx context.Context, tenant types.TenantContext) ([]*types.Rule, bool) {
	if rules, ok := r.cache.Lookup(tenant.ID); ok {
		return rules, true
	}

	rules, err := r.acquire(ctx, tenant)
	logger := r.logger.With().Str("tenant", tenant.String()).Logger()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load detectors, continuing without custom rules")
		return nil, false
	}

	r.cache.Put(tenant.ID, rules)
	logger.Debug().Int("detectors", len(rules)).Msg("Loaded detectors")
	return types.CloneRules(rules), true
}

func (r *Resolver) acquire(ctx context.Context, tenant types.TenantContext) (rules []*types.Rule, err error) {
	defer func() {
		if p := recover(); p != nil {
			rules, err = nil, fmt.Errorf("panic during acquisition: %v", p)
		}
	}()

	if r.cfg.UseLocalBundle {
		r.acquisitions.Add(1)
		return r.loadBundle()
	}
	return r.fetchRemote(ctx, tenant)
}

func (r *Resolver) loadBundle() ([]*types.Rule, error) {
	if r.cfg.BundlePath == "" {
		return rule.LoadEmbeddedBundle()
	}
	return rule.LoadBundleFile(r.cfg.BundlePath)
}

func (r *Resolver) fetchRemote(ctx context.Context, tenant types.TenantContext) ([]*types.Rule, error) {
	if r.cfg.Store == nil {
		r.logger.Debug().Msg("No policy store configured")
		return nil, nil
	}
	if tenant.IsZero() {
		r.logger.Debug().Msg("No tenant set, skipping remote policies")
		return nil, nil
	}

	r.acquisitions.Add(1)
	key := policystore.PolicyKey(r.cfg.Prefix, tenant.ID)
	data, err := r.cfg.Store.Fetch(ctx, key)
	if errors.Is(err, policystore.ErrNotFound) {
		r.logger.Debug().Str("key", key).Msg("No policy document for tenant")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return r.transformer.TransformDocument(data)
}
