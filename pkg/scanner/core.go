// Package scanner scans submitted lines for a tenant and records findings.
package scanner

import (
	"context"
	"fmt"

	"github.com/praetorian-inc/policyscan/pkg/store"
	"github.com/praetorian-inc/policyscan/pkg/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Engine is the detection engine Core delegates to. *policyscan.Engine
// implements it.
type Engine interface {
	Tenant() types.TenantContext
	LoadDetectorsFor(ctx context.Context, tenant types.TenantContext) []*types.Rule
	ScanTenant(ctx context.Context, tenant types.TenantContext, filename, line string, lineNumber int, lc *types.LineContext) []*types.Finding
}

// Core wraps the engine and store for scanning operations
type Core struct {
	engine Engine
	store  store.Store
	logger zerolog.Logger
}

// Option configures a Core.
type Option func(*Core)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Core) {
		c.logger = l
	}
}

// WithStore records findings in s instead of an in-memory store.
func WithStore(s store.Store) Option {
	return func(c *Core) {
		c.store = s
	}
}

// NewCore creates a Core around engine.
func NewCore(engine Engine, opts ...Option) (*Core, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	c := &Core{
		engine: engine,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		s, err := store.New(store.Config{Path: ":memory:"})
		if err != nil {
			return nil, err
		}
		c.store = s
	}
	return c, nil
}

// Store returns the findings store.
func (c *Core) Store() store.Store {
	return c.store
}

func (c *Core) tenant(id string) types.TenantContext {
	if id == "" {
		return c.engine.Tenant()
	}
	return types.Tenant(id)
}

// Scan scans a single line
func (c *Core) Scan(ctx context.Context, item LineItem) (*ScanResult, error) {
	if item.LineNumber < 1 {
		return nil, fmt.Errorf("line_number must be positive, got %d", item.LineNumber)
	}

	findings := c.engine.ScanTenant(ctx, c.tenant(item.Tenant), item.Filename, item.Line, item.LineNumber, item.Context)
	for _, f := range findings {
		if err := c.store.AddFinding(f); err != nil {
			return nil, fmt.Errorf("storing finding: %w", err)
		}
	}
	if findings == nil {
		findings = []*types.Finding{}
	}

	return &ScanResult{
		Filename:   item.Filename,
		LineNumber: item.LineNumber,
		Findings:   findings,
	}, nil
}

// ScanBatch scans multiple lines
func (c *Core) ScanBatch(ctx context.Context, items []LineItem) (*BatchScanResult, error) {
	results := []ScanResult{}
	total := 0

	for _, item := range items {
		res, err := c.Scan(ctx, item)
		if err != nil {
			// Skip items that fail to scan
			c.logger.Debug().Err(err).Str("filename", item.Filename).Msg("Skipping batch item")
			continue
		}
		results = append(results, *res)
		total += len(res.Findings)
	}

	return &BatchScanResult{
		Results: results,
		Total:   total,
	}, nil
}

// Rules returns the rules resolved for tenant.
func (c *Core) Rules(ctx context.Context, tenant string) *RulesResult {
	t := c.tenant(tenant)
	rules := c.engine.LoadDetectorsFor(ctx, t)
	if rules == nil {
		rules = []*types.Rule{}
	}
	return &RulesResult{Tenant: t.ID, Rules: rules}
}

// Close releases scanner resources
func (c *Core) Close() error {
	return c.store.Close()
}
