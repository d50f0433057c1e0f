package matcher

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Scan finds every candidate secret in line.
//
// Each matcher reports all non-overlapping matches left to right. A pattern
// without capture groups yields the full match; a pattern with groups yields
// one result per non-empty group, in group order. Empty values are dropped.
// Results are not deduplicated.
func (s *Set) Scan(line string) []Result {
	return s.scan(line, nil)
}

// ScanWithStats is Scan plus per-matcher statistics.
func (s *Set) ScanWithStats(line string) ScanReport {
	var report ScanReport
	report.Results = s.scan(line, &report)
	for _, st := range report.Stats {
		switch st.Status {
		case RuleCompleted:
			report.Summary.CompletedRules++
		case RuleSkipped:
			report.Summary.SkippedRules++
		case RuleTimedOut:
			report.Summary.TimedOutRules++
		case RuleError:
			report.Summary.ErrorRules++
		}
	}
	report.Summary.TotalRules = len(report.Stats)
	return report
}

func (s *Set) scan(line string, report *ScanReport) []Result {
	if s == nil || len(s.matchers) == 0 {
		return nil
	}

	candidates := s.candidates(line)
	var results []Result
	for i, m := range s.matchers {
		if candidates != nil && !candidates[i] {
			if report != nil {
				report.Stats = append(report.Stats, RuleStat{Pattern: m.Pattern, Status: RuleSkipped})
			}
			continue
		}

		start := time.Now()
		before := len(results)
		var err error
		results, err = m.appendMatches(results, line)

		if report != nil {
			st := RuleStat{Pattern: m.Pattern, Status: RuleCompleted, Duration: time.Since(start), Matches: len(results) - before}
			if err != nil {
				st.Status, st.Error = classify(err), err
			}
			report.Stats = append(report.Stats, st)
		}
		if err != nil {
			s.logError(m, err)
		}
	}
	return results
}

// candidates marks the matchers the prefilter cannot rule out. A nil
// slice means every matcher runs.
func (s *Set) candidates(line string) []bool {
	if s.pf == nil {
		return nil
	}
	marks := make([]bool, len(s.matchers))
	for _, r := range s.pf.Filter([]byte(line)) {
		marks[s.index[r]] = true
	}
	return marks
}

// appendMatches appends m's results for line. On a regex error the results
// found so far are kept and the rest of the line is skipped for m.
func (m *Matcher) appendMatches(results []Result, line string) ([]Result, error) {
	match, err := m.re.FindStringMatch(line)
	for err == nil && match != nil {
		results = m.appendValues(results, match)
		match, err = m.re.FindNextMatch(match)
	}
	return results, err
}

func (m *Matcher) appendValues(results []Result, match *regexp2.Match) []Result {
	groups := match.Groups()
	if len(groups) <= 1 {
		// Empty full matches from zero-width patterns are dropped like empty
		// groups, so such a pattern never produces an empty finding value.
		if v := match.String(); v != "" {
			results = append(results, Result{Value: v, Matcher: m})
		}
		return results
	}
	for _, g := range groups[1:] {
		if len(g.Captures) == 0 {
			continue
		}
		if v := g.String(); v != "" {
			results = append(results, Result{Value: v, Matcher: m})
		}
	}
	return results
}

func classify(err error) RuleStatus {
	if strings.Contains(err.Error(), "match timeout") {
		return RuleTimedOut
	}
	return RuleError
}

func (s *Set) logError(m *Matcher, err error) {
	ev := s.logger.Warn().Str("pattern", m.Pattern).Err(err)
	if r, ok := s.byPattern[m.Pattern]; ok {
		ev = ev.Str("rule", r.RuleID)
	}
	if classify(err) == RuleTimedOut {
		ev.Msg("Regex timeout on line, skipping rule for this line")
		return
	}
	ev.Msg("Regex error on line, skipping rule for this line")
}
