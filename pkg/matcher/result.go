package matcher

import "time"

// Result is one extracted candidate secret and the matcher that produced it.
type Result struct {
	Value   string
	Matcher *Matcher
}

// RuleStatus is how one matcher's scan of a line ended.
type RuleStatus int

const (
	// RuleCompleted indicates the matcher scanned the whole line
	RuleCompleted RuleStatus = iota
	// RuleTimedOut indicates a match attempt exceeded the regex timeout
	RuleTimedOut
	// RuleError indicates the regex engine returned another error
	RuleError
	// RuleSkipped indicates the prefilter ruled the matcher out
	RuleSkipped
)

// String returns the string representation of RuleStatus
func (rs RuleStatus) String() string {
	switch rs {
	case RuleCompleted:
		return "completed"
	case RuleTimedOut:
		return "timeout"
	case RuleError:
		return "error"
	case RuleSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// RuleStat describes one matcher's work on a line.
type RuleStat struct {
	Pattern  string
	Status   RuleStatus
	Duration time.Duration
	Matches  int
	Error    error
}

// Summary aggregates RuleStats.
type Summary struct {
	TotalRules     int
	CompletedRules int
	SkippedRules   int
	TimedOutRules  int
	ErrorRules     int
}

// ScanReport is the detailed output of ScanWithStats.
type ScanReport struct {
	Results []Result
	Stats   []RuleStat
	Summary Summary
}
