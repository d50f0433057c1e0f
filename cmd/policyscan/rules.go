package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/praetorian-inc/policyscan"
	"github.com/praetorian-inc/policyscan/pkg/rule"
	"github.com/praetorian-inc/policyscan/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	outputFormat string
	rulesCheck   bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage detection rules",
	Long:  "Commands for listing, checking and converting detector rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the rules resolved for the tenant",
	Long:  "Display the detector rules active for the tenant with their check IDs and names",
	RunE:  runRulesList,
}

var rulesTransformCmd = &cobra.Command{
	Use:   "transform <policies.json>",
	Short: "Convert a policy document into a detector bundle",
	Long:  "Read a tenant policy document and print the equivalent local bundle JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesTransform,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesTransformCmd)
	rulesListCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format: table, json")
	rulesListCmd.Flags().BoolVar(&rulesCheck, "check", false, "Validate every rule and fail on errors")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := policyscan.New(cfg, policyscan.WithLogger(log.Logger))
	if err != nil {
		return err
	}
	rules := engine.LoadDetectors(commandContext(cmd))

	if rulesCheck {
		if errs := rule.ValidateRules(rules); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "invalid rule: %v\n", e)
			}
			return fmt.Errorf("%d of %d rules are invalid", len(errs), len(rules))
		}
	}

	switch outputFormat {
	case "json":
		return outputRulesJSON(cmd, rules)
	case "table":
		return outputRulesTable(cmd, rules)
	default:
		return fmt.Errorf("unknown output format: %s", outputFormat)
	}
}

func runRulesTransform(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading policy document: %w", err)
	}
	rules, err := rule.NewTransformer(rule.WithTransformerLogger(log.Logger)).TransformDocument(data)
	if err != nil {
		return fmt.Errorf("parsing policy document: %w", err)
	}
	return outputRulesJSON(cmd, rules)
}

// =============================================================================
// HELPERS
// =============================================================================

func outputRulesJSON(cmd *cobra.Command, rules []*types.Rule) error {
	if rules == nil {
		rules = []*types.Rule{}
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(rules)
}

func outputRulesTable(cmd *cobra.Command, rules []*types.Rule) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "ID\tName\tPattern\n")
	fmt.Fprintf(w, "--\t----\t-------\n")

	for _, r := range rules {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.RuleID, r.Name, truncate(r.Pattern, 60))
	}
	return nil
}
