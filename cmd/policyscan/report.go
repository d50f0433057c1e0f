package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/praetorian-inc/policyscan/pkg/types"
	"golang.org/x/term"
)

// styles holds color formatters for human output
type styles struct {
	findingHeading *color.Color
	id             *color.Color
	ruleName       *color.Color
	heading        *color.Color
	match          *color.Color
	metadata       *color.Color
	verified       *color.Color
}

// newStyles creates color formatters for report output
func newStyles(enabled bool) *styles {
	s := &styles{
		findingHeading: color.New(color.Bold, color.FgHiWhite),
		id:             color.New(color.FgHiGreen),
		ruleName:       color.New(color.Bold, color.FgHiBlue),
		heading:        color.New(color.Bold),
		match:          color.New(color.FgYellow),
		metadata:       color.New(color.FgHiBlue),
		verified:       color.New(color.Bold, color.FgHiRed),
	}

	for _, c := range []*color.Color{s.findingHeading, s.id, s.ruleName, s.heading, s.match, s.metadata, s.verified} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// colorEnabled resolves the --color flag. "auto" enables color when stdout
// is a terminal and NO_COLOR is unset.
func colorEnabled(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""
	}
}

// truncate shortens long values for display.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func outputHuman(out io.Writer, findings []*types.Finding, useColor bool) error {
	if len(findings) == 0 {
		fmt.Fprintf(out, "\nNo findings.\n")
		return nil
	}
	s := newStyles(useColor)

	fmt.Fprintln(out)
	for i, f := range findings {
		fmt.Fprintf(out, "%s (%s %s)\n",
			s.findingHeading.Sprintf("Finding %d/%d", i+1, len(findings)),
			s.heading.Sprint("id"),
			s.id.Sprint(f.ID))
		fmt.Fprintf(out, "%s %s %s\n",
			s.heading.Sprint("Rule:"),
			s.ruleName.Sprint(f.RuleName),
			s.metadata.Sprintf("[%s]", f.RuleID))
		fmt.Fprintf(out, "%s %s:%d\n",
			s.heading.Sprint("File:"),
			s.metadata.Sprint(f.Location.Filename),
			f.Location.Line)
		fmt.Fprintf(out, "%s %s\n",
			s.heading.Sprint("Value:"),
			s.match.Sprint(truncate(f.Value, 200)))
		if f.Verified {
			fmt.Fprintf(out, "%s\n", s.verified.Sprint("Verified: active credential"))
		}
		fmt.Fprintln(out)
	}
	return nil
}
