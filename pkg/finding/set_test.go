package finding

import (
	"testing"

	"github.com/praetorian-inc/policyscan/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestSet_FirstInsertWins(t *testing.T) {
	s := NewSet()
	a := types.NewFinding(&types.Rule{Name: "Key", RuleID: "A"}, "f", 1, "v", false)
	b := types.NewFinding(&types.Rule{Name: "Key", RuleID: "B"}, "f", 1, "v", false)

	assert.True(t, s.Add(a))
	assert.False(t, s.Add(b))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "A", s.Findings()[0].RuleID)
	assert.True(t, s.Contains(b.Key()))
}

func TestSet_VerifiedIsPartOfKey(t *testing.T) {
	s := NewSet()
	r := &types.Rule{Name: "Key", RuleID: "A"}

	s.Add(types.NewFinding(r, "f", 1, "v", false))
	s.Add(types.NewFinding(r, "f", 1, "v", true))
	s.Add(types.NewFinding(r, "f", 2, "v", false))
	s.Add(types.NewFinding(r, "g", 1, "v", false))
	s.Add(nil)

	assert.Equal(t, 4, s.Len())
}
