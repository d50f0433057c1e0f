package matcher

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/praetorian-inc/policyscan/pkg/prefilter"
	"github.com/praetorian-inc/policyscan/pkg/types"
	"github.com/rs/zerolog"
)

// CompileError reports a rule whose pattern is not a valid regex. One bad
// pattern fails the whole set.
type CompileError struct {
	RuleID   string
	RuleName string
	Pattern  string
	Err      error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile pattern %q for rule %s (%s): %v", e.Pattern, e.RuleID, e.RuleName, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Matcher is one compiled pattern. Pattern is the key back to rule metadata.
type Matcher struct {
	Pattern string
	re      *regexp2.Regexp
	groups  int
}

// Groups returns the number of capture groups in the pattern.
func (m *Matcher) Groups() int {
	return m.groups
}

// Set is an immutable collection of compiled matchers plus the
// pattern-to-rule metadata lookup. Safe for concurrent scans.
type Set struct {
	matchers  []*Matcher
	byPattern map[string]*types.Rule
	index     map[*types.Rule]int // prefilter key -> matcher position
	pf        *prefilter.Prefilter
	logger    zerolog.Logger
}

// CompilePattern compiles a pattern exactly as authored. RE2 compatibility
// mode is tried first for (?P<name>...) groups, then the default
// Perl-compatible mode for lookarounds and backreferences.
func CompilePattern(pattern string, timeout time.Duration) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.RE2)
	if err != nil {
		re, err = regexp2.Compile(pattern, regexp2.None)
		if err != nil {
			return nil, err
		}
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return re, nil
}

// Compile builds a Set from rules. Identical patterns share one matcher and
// the last rule carrying a pattern owns its metadata. Any invalid pattern
// fails compilation with a *CompileError.
func Compile(rules []*types.Rule, opts ...Option) (*Set, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Set{
		byPattern: make(map[string]*types.Rule, len(rules)),
		logger:    o.logger,
	}

	compiled := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r == nil {
			continue
		}
		s.byPattern[r.Pattern] = r
		if compiled[r.Pattern] {
			continue
		}

		re, err := CompilePattern(r.Pattern, o.timeout)
		if err != nil {
			return nil, &CompileError{RuleID: r.RuleID, RuleName: r.Name, Pattern: r.Pattern, Err: err}
		}
		compiled[r.Pattern] = true
		s.matchers = append(s.matchers, &Matcher{
			Pattern: r.Pattern,
			re:      re,
			groups:  len(re.GetGroupNumbers()) - 1,
		})
	}

	if o.prefilter {
		s.buildPrefilter()
	}
	return s, nil
}

func (s *Set) buildPrefilter() {
	keyed := make([]*types.Rule, 0, len(s.matchers))
	s.index = make(map[*types.Rule]int, len(s.matchers))
	for i, m := range s.matchers {
		r := &types.Rule{Pattern: m.Pattern, Keywords: prefilter.LiteralKeywords(m.Pattern)}
		s.index[r] = i
		keyed = append(keyed, r)
	}
	s.pf = prefilter.New(keyed)
}

// Rule returns the metadata owning pattern.
func (s *Set) Rule(pattern string) (*types.Rule, bool) {
	r, ok := s.byPattern[pattern]
	return r, ok
}

// Matchers returns the compiled matchers in compile order.
func (s *Set) Matchers() []*Matcher {
	return append([]*Matcher(nil), s.matchers...)
}

// Len returns the number of distinct compiled patterns.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.matchers)
}
