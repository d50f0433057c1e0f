package validator

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/praetorian-inc/policyscan/pkg/httpclient"
	"github.com/praetorian-inc/policyscan/pkg/types"
)

// HTTPValidator validates secrets via HTTP requests defined in YAML.
type HTTPValidator struct {
	def     ValidatorDef
	pattern *regexp.Regexp
	client  *retryablehttp.Client
}

// NewHTTPValidator creates a validator from a YAML definition. A nil client
// selects a non-retrying client with the default timeout.
func NewHTTPValidator(def ValidatorDef, client *retryablehttp.Client) (*HTTPValidator, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		client = httpclient.New(httpclient.Options{})
	}
	if def.HTTP.Method == "" {
		def.HTTP.Method = http.MethodGet
	}
	return &HTTPValidator{
		def:     def,
		pattern: regexp.MustCompile(`^(?:` + def.SecretPattern + `)$`),
		client:  client,
	}, nil
}

// Name returns the validator name.
func (v *HTTPValidator) Name() string {
	return v.def.Name
}

// CanValidate returns true if the secret matches the definition's pattern.
func (v *HTTPValidator) CanValidate(secret string) bool {
	return v.pattern.MatchString(secret)
}

// Validate performs HTTP validation against the configured endpoint.
func (v *HTTPValidator) Validate(ctx context.Context, secret string, _ *types.LineContext) (*types.ValidationResult, error) {
	var body any
	if v.def.HTTP.Body != "" {
		body = strings.NewReader(v.def.HTTP.Body)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, v.def.HTTP.Method, v.def.HTTP.URL, body)
	if err != nil {
		return types.NewValidationResult(types.StatusUndetermined, 0, fmt.Sprintf("failed to create request: %v", err)), nil
	}

	for _, h := range v.def.HTTP.Headers {
		req.Header.Set(h.Name, h.Value)
	}
	v.applyAuth(req.Request, secret)

	resp, err := v.client.Do(req)
	if err != nil {
		return types.NewValidationResult(types.StatusUndetermined, 0, fmt.Sprintf("request failed: %v", err)), nil
	}
	defer resp.Body.Close()

	return v.evaluateResponse(resp.StatusCode), nil
}

func (v *HTTPValidator) applyAuth(req *http.Request, secret string) {
	auth := v.def.HTTP.Auth
	switch auth.Type {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+secret)
	case "basic":
		if auth.Username != "" {
			req.SetBasicAuth(auth.Username, secret)
		} else {
			req.SetBasicAuth(secret, "")
		}
	case "header":
		req.Header.Set(auth.HeaderName, auth.Prefix+secret)
	case "query":
		q := req.URL.Query()
		q.Set(auth.QueryParam, secret)
		req.URL.RawQuery = q.Encode()
	}
}

func (v *HTTPValidator) evaluateResponse(statusCode int) *types.ValidationResult {
	for _, code := range v.def.HTTP.SuccessCodes {
		if statusCode == code {
			return types.NewValidationResult(types.StatusValid, 1.0, fmt.Sprintf("HTTP %d - credentials accepted", statusCode))
		}
	}

	for _, code := range v.def.HTTP.FailureCodes {
		if statusCode == code {
			return types.NewValidationResult(types.StatusInvalid, 1.0, fmt.Sprintf("HTTP %d - credentials rejected", statusCode))
		}
	}

	return types.NewValidationResult(types.StatusUndetermined, 0.5, fmt.Sprintf("HTTP %d - unexpected status code", statusCode))
}
