package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/praetorian-inc/policyscan"
	"github.com/praetorian-inc/policyscan/pkg/enum"
	"github.com/praetorian-inc/policyscan/pkg/logging"
	"github.com/praetorian-inc/policyscan/pkg/rule"
	"github.com/praetorian-inc/policyscan/pkg/sarif"
	"github.com/praetorian-inc/policyscan/pkg/store"
	"github.com/praetorian-inc/policyscan/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	scanRulesInclude  string
	scanRulesExclude  string
	scanOutputPath    string
	scanOutputFormat  string
	scanMaxFileSize   int64
	scanIncludeHidden bool
	scanExclude       []string
	scanContextLines  int
	scanVerify        bool
	scanColor         string
)

var scanCmd = &cobra.Command{
	Use:   "scan <target>",
	Short: "Scan a file or directory for secrets",
	Long:  "Scan every line of a file or directory tree with the tenant's detector rules",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanRulesInclude, "rules-include", "", "Include rules whose check ID matches regex pattern (comma-separated)")
	scanCmd.Flags().StringVar(&scanRulesExclude, "rules-exclude", "", "Exclude rules whose check ID matches regex pattern (comma-separated)")
	scanCmd.Flags().StringVar(&scanOutputPath, "db", ":memory:", "Findings database path")
	scanCmd.Flags().StringVar(&scanOutputFormat, "format", "human", "Output format: json, sarif, human")
	scanCmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", 10*1024*1024, "Maximum file size to scan (bytes)")
	scanCmd.Flags().BoolVar(&scanIncludeHidden, "include-hidden", false, "Include hidden files and directories")
	scanCmd.Flags().StringSliceVar(&scanExclude, "exclude", nil, "Skip paths matching glob (repeatable, supports **)")
	scanCmd.Flags().IntVar(&scanContextLines, "context-lines", -1, "Lines of context handed to verification (default from config)")
	scanCmd.Flags().BoolVar(&scanVerify, "verify", false, "Verify detected secrets against their source APIs")
	scanCmd.Flags().StringVar(&scanColor, "color", "auto", "Color output: auto, always, never")
}

func runScan(cmd *cobra.Command, args []string) error {
	target := args[0]

	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("target does not exist: %s", target)
	}
	switch scanOutputFormat {
	case "json", "sarif", "human":
	default:
		return fmt.Errorf("unknown output format: %s", scanOutputFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if scanVerify {
		cfg.Verify = true
	}
	if scanContextLines >= 0 {
		cfg.ContextLines = scanContextLines
	}

	engine, err := policyscan.New(cfg, policyscan.WithLogger(log.Logger))
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	rules, err := filterRules(engine.LoadDetectors(ctx), scanRulesInclude, scanRulesExclude)
	if err != nil {
		return err
	}
	det, err := engine.Compile(engine.Tenant(), rules)
	if err != nil {
		return fmt.Errorf("compiling detectors: %w", err)
	}

	s, err := store.New(store.Config{Path: scanOutputPath})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer s.Close()

	for _, r := range rules {
		if err := s.AddRule(r); err != nil {
			return fmt.Errorf("storing rule: %w", err)
		}
	}

	enumerator := enum.NewFilesystemEnumerator(enum.Config{
		Root:          target,
		IncludeHidden: scanIncludeHidden,
		MaxFileSize:   scanMaxFileSize,
		Exclude:       scanExclude,
		ContextLines:  cfg.ContextLines,
	})

	var mu sync.Mutex
	matchCount := 0
	err = enumerator.Enumerate(ctx, func(path string, lineNumber int, line string, lc *types.LineContext) error {
		findings := det.Scan(ctx, path, line, lineNumber, lc)
		if len(findings) == 0 {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()
		for _, f := range findings {
			matchCount++
			if err := s.AddFinding(f); err != nil {
				return fmt.Errorf("storing finding: %w", err)
			}
			logging.Hit().
				Str("rule_id", f.RuleID).
				Str("rule", f.RuleName).
				Str("file", f.Location.Filename).
				Int("line", f.Location.Line).
				Bool("verified", f.Verified).
				Msg("Secret found")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	findings, err := s.GetFindings()
	if err != nil {
		return fmt.Errorf("retrieving findings: %w", err)
	}

	// Summary goes to stderr for machine formats to keep stdout pure JSON
	summary := cmd.OutOrStdout()
	if scanOutputFormat != "human" {
		summary = cmd.ErrOrStderr()
	}
	fmt.Fprintf(summary, "Scan complete: %d rules, %d matches, %d findings\n", det.Len(), matchCount, len(findings))
	if scanOutputPath != ":memory:" {
		fmt.Fprintf(summary, "Results stored in: %s\n", scanOutputPath)
	}

	return outputFindings(cmd, findings)
}

// filterRules applies --rules-include and --rules-exclude.
func filterRules(rules []*types.Rule, include, exclude string) ([]*types.Rule, error) {
	if include == "" && exclude == "" {
		return rules, nil
	}
	filtered, err := rule.Filter(rules, rule.FilterConfig{
		Include: rule.ParsePatterns(include),
		Exclude: rule.ParsePatterns(exclude),
	})
	if err != nil {
		return nil, fmt.Errorf("filtering rules: %w", err)
	}
	return filtered, nil
}

func outputFindings(cmd *cobra.Command, findings []*types.Finding) error {
	switch scanOutputFormat {
	case "json":
		if findings == nil {
			findings = []*types.Finding{}
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(findings)
	case "sarif":
		jsonBytes, err := sarif.FromFindings(findings, true).ToJSON()
		if err != nil {
			return fmt.Errorf("serializing SARIF: %w", err)
		}
		if _, err := cmd.OutOrStdout().Write(jsonBytes); err != nil {
			return fmt.Errorf("writing SARIF output: %w", err)
		}
		return nil
	default:
		return outputHuman(cmd.OutOrStdout(), findings, colorEnabled(scanColor))
	}
}
