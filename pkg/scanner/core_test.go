package scanner

import (
	"context"
	"strings"
	"testing"

	"github.com/praetorian-inc/policyscan/pkg/store"
	"github.com/praetorian-inc/policyscan/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine reports one finding per occurrence of "SECRET" and records the
// tenants it was asked about.
type fakeEngine struct {
	tenants []string
}

func (f *fakeEngine) Tenant() types.TenantContext { return types.Tenant("default") }

func (f *fakeEngine) LoadDetectorsFor(_ context.Context, tenant types.TenantContext) []*types.Rule {
	f.tenants = append(f.tenants, tenant.ID)
	if tenant.ID == "empty" {
		return nil
	}
	return []*types.Rule{{Name: "Secret", RuleID: "CKV_SEC_X", Pattern: "SECRET"}}
}

func (f *fakeEngine) ScanTenant(_ context.Context, tenant types.TenantContext, filename, line string, lineNumber int, _ *types.LineContext) []*types.Finding {
	f.tenants = append(f.tenants, tenant.ID)
	if !strings.Contains(line, "SECRET") {
		return nil
	}
	return []*types.Finding{types.NewFinding(&types.Rule{Name: "Secret", RuleID: "CKV_SEC_X"}, filename, lineNumber, "SECRET", false)}
}

func newTestCore(t *testing.T) (*Core, *fakeEngine) {
	t.Helper()
	eng := &fakeEngine{}
	core, err := NewCore(eng, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	t.Cleanup(func() { core.Close() })
	return core, eng
}

func TestNewCore_RequiresEngine(t *testing.T) {
	_, err := NewCore(nil)
	assert.Error(t, err)
}

func TestCore_Scan(t *testing.T) {
	core, eng := newTestCore(t)

	res, err := core.Scan(context.Background(), LineItem{Filename: "a.env", Line: "X=SECRET", LineNumber: 4})
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "a.env", res.Filename)
	assert.Equal(t, 4, res.LineNumber)
	assert.Equal(t, []string{"default"}, eng.tenants)

	stored, err := core.Store().GetFindings()
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestCore_Scan_NoFindingsIsEmptySlice(t *testing.T) {
	core, _ := newTestCore(t)

	res, err := core.Scan(context.Background(), LineItem{Filename: "a", Line: "nothing", LineNumber: 1})
	require.NoError(t, err)
	assert.NotNil(t, res.Findings)
	assert.Empty(t, res.Findings)
}

func TestCore_Scan_InvalidLineNumber(t *testing.T) {
	core, _ := newTestCore(t)

	_, err := core.Scan(context.Background(), LineItem{Filename: "a", Line: "SECRET"})
	assert.Error(t, err)
}

func TestCore_ScanBatch(t *testing.T) {
	core, eng := newTestCore(t)

	res, err := core.ScanBatch(context.Background(), []LineItem{
		{Filename: "a", Line: "SECRET", LineNumber: 1, Tenant: "acme"},
		{Filename: "b", Line: "clean", LineNumber: 1},
		{Filename: "c", Line: "SECRET", LineNumber: 0},
	})
	require.NoError(t, err)
	assert.Len(t, res.Results, 2)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, []string{"acme", "default"}, eng.tenants)
}

func TestCore_Rules(t *testing.T) {
	core, _ := newTestCore(t)

	res := core.Rules(context.Background(), "")
	assert.Equal(t, "default", res.Tenant)
	assert.Len(t, res.Rules, 1)

	res = core.Rules(context.Background(), "empty")
	assert.NotNil(t, res.Rules)
	assert.Empty(t, res.Rules)
}

func TestCore_WithStore(t *testing.T) {
	s := store.NewMemory()
	core, err := NewCore(&fakeEngine{}, WithStore(s), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	_, err = core.Scan(context.Background(), LineItem{Filename: "a", Line: "SECRET", LineNumber: 1})
	require.NoError(t, err)

	stored, err := s.GetFindings()
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
