// Package config resolves engine configuration from the environment, an
// optional YAML file, and CLI flags, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/praetorian-inc/policyscan/pkg/policystore"
	"gopkg.in/yaml.v3"
)

// Environment variables read by FromEnv.
const (
	EnvTenant         = "POLICYSCAN_TENANT"
	EnvLegacyTenant   = "CUSTOMER_NAME"
	EnvUseLocalBundle = "POLICYSCAN_USE_LOCAL_BUNDLE"
	EnvBundlePath     = "POLICYSCAN_BUNDLE_PATH"
	EnvStore          = "POLICYSCAN_STORE"
	EnvBucket         = "POLICYSCAN_BUCKET"
	EnvPrefix         = "POLICYSCAN_PREFIX"
	EnvRegion         = "POLICYSCAN_REGION"
	EnvEndpoint       = "POLICYSCAN_ENDPOINT"
	EnvStoreURL       = "POLICYSCAN_STORE_URL"
	EnvStoreRoot      = "POLICYSCAN_STORE_ROOT"
	EnvStoreTimeout   = "POLICYSCAN_STORE_TIMEOUT"
)

// DefaultStoreTimeout bounds a remote policy fetch.
const DefaultStoreTimeout = 30 * time.Second

// Config is the resolved engine configuration.
type Config struct {
	Tenant         string
	UseLocalBundle bool
	BundlePath     string
	Prefix         string
	Store          policystore.Config
	ContextLines   int  // lines of context handed to verification
	Verify         bool // run the built-in verification engine
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Prefix: policystore.DefaultPrefix,
		Store: policystore.Config{
			Kind:    policystore.KindNone,
			Timeout: DefaultStoreTimeout,
		},
		ContextLines: 3,
	}
}

// FromEnv overlays environment variables on Default. getenv is usually
// os.Getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	cfg.Tenant = getenv(EnvTenant)
	if cfg.Tenant == "" {
		cfg.Tenant = getenv(EnvLegacyTenant)
	}

	if v := getenv(EnvUseLocalBundle); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvUseLocalBundle, err)
		}
		cfg.UseLocalBundle = b
	}
	setString(&cfg.BundlePath, getenv(EnvBundlePath))
	setString(&cfg.Prefix, getenv(EnvPrefix))
	setString(&cfg.Store.Bucket, getenv(EnvBucket))
	setString(&cfg.Store.Region, getenv(EnvRegion))
	setString(&cfg.Store.Endpoint, getenv(EnvEndpoint))
	setString(&cfg.Store.URL, getenv(EnvStoreURL))
	setString(&cfg.Store.Root, getenv(EnvStoreRoot))

	if v := getenv(EnvStore); v != "" {
		kind, err := policystore.ParseKind(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvStore, err)
		}
		cfg.Store.Kind = kind
	}
	if v := getenv(EnvStoreTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvStoreTimeout, err)
		}
		cfg.Store.Timeout = d
	}
	return cfg, nil
}

// Load is FromEnv(os.Getenv), overlaid with the YAML file at path when path
// is non-empty.
func Load(path string) (Config, error) {
	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, cfg.Validate()
	}
	fc, err := LoadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := fc.Apply(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects inconsistent settings.
func (c Config) Validate() error {
	if _, err := policystore.ParseKind(string(c.Store.Kind)); err != nil && c.Store.Kind != policystore.KindMemory {
		return err
	}
	if c.ContextLines < 0 {
		return fmt.Errorf("context lines must not be negative, got %d", c.ContextLines)
	}
	if c.Store.Timeout < 0 {
		return fmt.Errorf("store timeout must not be negative, got %s", c.Store.Timeout)
	}
	return nil
}

// FileConfig is the on-disk YAML configuration shape. Nil fields leave the
// underlying setting untouched.
type FileConfig struct {
	Tenant         *string          `yaml:"tenant"`
	UseLocalBundle *bool            `yaml:"use_local_bundle"`
	BundlePath     *string          `yaml:"bundle_path"`
	Prefix         *string          `yaml:"prefix"`
	ContextLines   *int             `yaml:"context_lines"`
	Verify         *bool            `yaml:"verify"`
	Store          *StoreFileConfig `yaml:"store"`
}

// StoreFileConfig is the store section of FileConfig.
type StoreFileConfig struct {
	Kind     *string `yaml:"kind"`
	Bucket   *string `yaml:"bucket"`
	Region   *string `yaml:"region"`
	Endpoint *string `yaml:"endpoint"`
	URL      *string `yaml:"url"`
	Root     *string `yaml:"root"`
	Timeout  *string `yaml:"timeout"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parsing %s: %w", path, err)
	}
	return fc, nil
}

// Apply overlays the set fields of fc onto cfg.
func (fc FileConfig) Apply(cfg *Config) error {
	setPtr(&cfg.Tenant, fc.Tenant)
	setPtr(&cfg.UseLocalBundle, fc.UseLocalBundle)
	setPtr(&cfg.BundlePath, fc.BundlePath)
	setPtr(&cfg.Prefix, fc.Prefix)
	setPtr(&cfg.ContextLines, fc.ContextLines)
	setPtr(&cfg.Verify, fc.Verify)

	s := fc.Store
	if s == nil {
		return nil
	}
	if s.Kind != nil {
		kind, err := policystore.ParseKind(*s.Kind)
		if err != nil {
			return err
		}
		cfg.Store.Kind = kind
	}
	setPtr(&cfg.Store.Bucket, s.Bucket)
	setPtr(&cfg.Store.Region, s.Region)
	setPtr(&cfg.Store.Endpoint, s.Endpoint)
	setPtr(&cfg.Store.URL, s.URL)
	setPtr(&cfg.Store.Root, s.Root)
	if s.Timeout != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*s.Timeout))
		if err != nil {
			return fmt.Errorf("store timeout: %w", err)
		}
		cfg.Store.Timeout = d
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setPtr[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
