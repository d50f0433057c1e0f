package rule

import (
	"fmt"

	"github.com/praetorian-inc/policyscan/pkg/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// definitionValuePath is where a policy's regex patterns live inside its code.
var definitionValuePath = []string{"definition", "value"}

// Transformer turns policy records into detector rules.
type Transformer struct {
	logger zerolog.Logger
}

// TransformerOption configures a Transformer.
type TransformerOption func(*Transformer)

// WithTransformerLogger sets the logger used for per-record diagnostics.
func WithTransformerLogger(l zerolog.Logger) TransformerOption {
	return func(t *Transformer) {
		t.logger = l
	}
}

// NewTransformer creates a Transformer.
func NewTransformer(opts ...TransformerOption) *Transformer {
	t := &Transformer{logger: log.Logger}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform converts records into rules, one rule per pattern in each
// record's definition.value. Records that cannot be used are logged and
// skipped; Transform never fails.
func (t *Transformer) Transform(records []PolicyRecord) []*types.Rule {
	var rules []*types.Rule
	for i, rec := range records {
		rules = append(rules, t.transformRecord(i, rec)...)
	}
	t.logger.Debug().Int("policies", len(records)).Int("detectors", len(rules)).Msg("Transformed secrets policies to detectors")
	return rules
}

// TransformDocument parses a remote policy document and transforms it.
// Only a document that is not JSON at all is an error.
func (t *Transformer) TransformDocument(data []byte) ([]*types.Rule, error) {
	records, err := ParsePolicyDocument(data)
	if err != nil {
		return nil, err
	}
	return t.Transform(records), nil
}

func (t *Transformer) transformRecord(index int, rec PolicyRecord) (rules []*types.Rule) {
	logger := t.logger.With().Int("policy", index).Str("title", rec.Title).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Warn().Str("panic", fmt.Sprint(r)).Msg("Skipping policy that failed to transform")
			rules = nil
		}
	}()

	if rec.Code == "" {
		logger.Debug().Msg("Skipping policy without code")
		return nil
	}

	doc, err := ParseDocument(rec.Code)
	if err != nil {
		logger.Warn().Err(err).Msg("Skipping policy with unparsable code")
		return nil
	}

	patterns, skipped, status := doc.Strings(definitionValuePath...)
	switch status {
	case PathMissing:
		logger.Debug().Str("path", pathString(definitionValuePath)).Msg("Policy could not be parsed")
		return nil
	case PathWrongType:
		logger.Warn().Str("path", pathString(definitionValuePath)).Msg("Policy has unexpected shape")
		return nil
	}
	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Msg("Ignoring non-string patterns in policy")
	}

	checkID := rec.CheckID()
	for _, pattern := range patterns {
		r := &types.Rule{
			Name:    rec.Title,
			RuleID:  checkID,
			Pattern: pattern,
		}
		r.StructuralID = r.ComputeStructuralID()
		rules = append(rules, r)
	}
	return rules
}

// Transform converts records, logging per-record diagnostics to logger.
func Transform(records []PolicyRecord, logger zerolog.Logger) []*types.Rule {
	return NewTransformer(WithTransformerLogger(logger)).Transform(records)
}
