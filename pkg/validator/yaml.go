package validator

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ValidatorsConfig is the root YAML structure for validator definitions.
type ValidatorsConfig struct {
	Validators []ValidatorDef `yaml:"validators"`
}

// ValidatorDef defines a single HTTP-based validator.
type ValidatorDef struct {
	Name          string  `yaml:"name"`
	SecretPattern string  `yaml:"secret_pattern"` // regex the whole secret must match
	HTTP          HTTPDef `yaml:"http"`
}

// HTTPDef defines HTTP request configuration.
type HTTPDef struct {
	Method       string   `yaml:"method"`
	URL          string   `yaml:"url"`
	Auth         AuthDef  `yaml:"auth"`
	Headers      []Header `yaml:"headers,omitempty"`
	Body         string   `yaml:"body,omitempty"` // Static request body for POST/PUT
	SuccessCodes []int    `yaml:"success_codes"`
	FailureCodes []int    `yaml:"failure_codes"`
}

// AuthDef defines authentication configuration.
type AuthDef struct {
	Type       string `yaml:"type"`                  // bearer, basic, header, query
	HeaderName string `yaml:"header_name,omitempty"` // for type=header
	Prefix     string `yaml:"prefix,omitempty"`      // for type=header, prepended to the secret
	QueryParam string `yaml:"query_param,omitempty"` // for type=query
	Username   string `yaml:"username,omitempty"`    // for type=basic; empty sends the secret as username
}

// Header is a custom header key-value pair.
type Header struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Validate checks that def can be turned into a validator.
func (def ValidatorDef) Validate() error {
	if def.Name == "" {
		return fmt.Errorf("validator name is required")
	}
	if def.SecretPattern == "" {
		return fmt.Errorf("validator %s: secret_pattern is required", def.Name)
	}
	if _, err := regexp.Compile(def.SecretPattern); err != nil {
		return fmt.Errorf("validator %s: invalid secret_pattern: %w", def.Name, err)
	}
	if def.HTTP.URL == "" {
		return fmt.Errorf("validator %s: http.url is required", def.Name)
	}
	switch def.HTTP.Auth.Type {
	case "bearer", "basic", "query":
	case "header":
		if def.HTTP.Auth.HeaderName == "" {
			return fmt.Errorf("validator %s: header auth requires header_name", def.Name)
		}
	default:
		return fmt.Errorf("validator %s: unsupported auth type %q", def.Name, def.HTTP.Auth.Type)
	}
	return nil
}

// LoadValidatorsFromYAML parses YAML and creates HTTPValidator instances.
func LoadValidatorsFromYAML(data []byte) ([]Validator, error) {
	var cfg ValidatorsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	validators := make([]Validator, 0, len(cfg.Validators))
	for _, def := range cfg.Validators {
		v, err := NewHTTPValidator(def, nil)
		if err != nil {
			return nil, err
		}
		validators = append(validators, v)
	}

	return validators, nil
}
