package rule

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
)

// PolicyRecord is one tenant-authored secrets policy as delivered by the
// remote policy store. Falsy identifier values (absent, null, "", 0, false)
// are normalized to "" when a document is parsed.
type PolicyRecord struct {
	Code           string // embedded structured document (YAML or JSON text)
	Title          string
	CheckovCheckID string
	IncidentID     string
}

// CheckID returns the identifier rules derived from this record carry:
// the assigned check ID, or the incident ID when no check ID is assigned.
func (p PolicyRecord) CheckID() string {
	if p.CheckovCheckID != "" {
		return p.CheckovCheckID
	}
	return p.IncidentID
}

// ParsePolicyDocument parses a remote policy document into records.
//
// Accepted shapes:
//   - a JSON array of policy records
//   - a single policy record object (normalized to one record)
//   - an object wrapping either of the above under "secretsPolicies"
//
// Array elements that are not objects are skipped.
func ParsePolicyDocument(data []byte) ([]PolicyRecord, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("policy document is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	if root.IsObject() {
		if wrapped := root.Get("secretsPolicies"); wrapped.Exists() {
			root = wrapped
		}
	}

	switch {
	case root.Type == gjson.Null:
		return nil, nil
	case root.IsArray():
		var records []PolicyRecord
		root.ForEach(func(_, value gjson.Result) bool {
			if value.IsObject() {
				records = append(records, recordFromJSON(value))
			}
			return true
		})
		return records, nil
	case root.IsObject():
		return []PolicyRecord{recordFromJSON(root)}, nil
	default:
		return nil, fmt.Errorf("unexpected policy document type %s", root.Type)
	}
}

func recordFromJSON(obj gjson.Result) PolicyRecord {
	return PolicyRecord{
		Code:           codeField(obj.Get("code")),
		Title:          obj.Get("title").String(),
		CheckovCheckID: truthyString(obj.Get("checkovCheckId")),
		IncidentID:     truthyString(obj.Get("incidentId")),
	}
}

// codeField accepts code delivered either as text or as an inline JSON
// document; YAML parses both.
func codeField(r gjson.Result) string {
	switch {
	case r.Type == gjson.String:
		return r.Str
	case r.IsObject(), r.IsArray():
		return r.Raw
	default:
		return ""
	}
}

// truthyString renders r as a string, or "" when r is falsy.
func truthyString(r gjson.Result) string {
	switch r.Type {
	case gjson.Null, gjson.False:
		return ""
	case gjson.String:
		return r.Str
	case gjson.Number:
		if r.Num == 0 {
			return ""
		}
		return r.Raw
	case gjson.True:
		return r.Raw
	case gjson.JSON:
		if r.IsArray() && len(r.Array()) == 0 {
			return ""
		}
		if r.IsObject() && len(r.Map()) == 0 {
			return ""
		}
		return r.Raw
	default:
		return ""
	}
}
