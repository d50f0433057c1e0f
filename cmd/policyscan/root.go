package main

import (
	"context"
	"fmt"

	"github.com/praetorian-inc/policyscan/pkg/config"
	"github.com/praetorian-inc/policyscan/pkg/logging"
	"github.com/praetorian-inc/policyscan/pkg/policystore"
	"github.com/spf13/cobra"
)

var (
	flagTenant      string
	flagConfig      string
	flagLogLevel    string
	flagLogJSON     bool
	flagLocalBundle bool
	flagBundlePath  string
	flagStore       string
	flagBucket      string
	flagPrefix      string
)

var rootCmd = &cobra.Command{
	Use:   "policyscan",
	Short: "policyscan - per-tenant secret detection",
	Long: `policyscan finds credentials, tokens and keys in text, line by line.

Detector rules are resolved per tenant from the local bundle or from the
tenant's policy document in a remote store (S3, Azure Blob, HTTP or a
directory), and compiled once per process.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_, err := logging.Setup(logging.Options{
			Level: flagLogLevel,
			JSON:  flagLogJSON,
			Out:   cmd.ErrOrStderr(),
		})
		return err
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagTenant, "tenant", "", "Tenant whose detector rules apply (default $"+config.EnvTenant+")")
	pf.StringVar(&flagConfig, "config", "", "Path to a YAML configuration file")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level: trace, debug, info, warn, error, hit")
	pf.BoolVar(&flagLogJSON, "log-json", false, "Emit logs as JSON")
	pf.BoolVar(&flagLocalBundle, "local-bundle", false, "Use the local detector bundle instead of the remote store")
	pf.StringVar(&flagBundlePath, "bundle-path", "", "Path to a detector bundle (default: embedded bundle)")
	pf.StringVar(&flagStore, "store", "", "Policy store: none, s3, azblob, http, file")
	pf.StringVar(&flagBucket, "bucket", "", "Bucket or container holding policy documents")
	pf.StringVar(&flagPrefix, "prefix", "", "Key prefix of policy documents (default \""+policystore.DefaultPrefix+"\")")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the environment and config file, then applies the
// persistent flags that were set.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}

	if flagTenant != "" {
		cfg.Tenant = flagTenant
	}
	if flagLocalBundle {
		cfg.UseLocalBundle = true
	}
	if flagBundlePath != "" {
		cfg.BundlePath = flagBundlePath
	}
	if flagStore != "" {
		kind, err := policystore.ParseKind(flagStore)
		if err != nil {
			return cfg, err
		}
		cfg.Store.Kind = kind
	}
	if flagBucket != "" {
		cfg.Store.Bucket = flagBucket
	}
	if flagPrefix != "" {
		cfg.Prefix = flagPrefix
	}
	return cfg, cfg.Validate()
}

// commandContext returns cmd's context, or Background when the command was
// not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
