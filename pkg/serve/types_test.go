package serve

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_ScanUnmarshal(t *testing.T) {
	input := `{"type":"scan","payload":{"filename":"main.tf","line":"key=abc","line_number":3,"tenant":"acme","context":{"before":["a"],"line":"key=abc"}}}`

	var req Request
	err := json.Unmarshal([]byte(input), &req)
	require.NoError(t, err)

	assert.Equal(t, "scan", req.Type)

	var payload ScanPayload
	err = json.Unmarshal(req.Payload, &payload)
	require.NoError(t, err)

	assert.Equal(t, "main.tf", payload.Filename)
	assert.Equal(t, "key=abc", payload.Line)
	assert.Equal(t, 3, payload.LineNumber)
	assert.Equal(t, "acme", payload.Tenant)
	require.NotNil(t, payload.Context)
	assert.Equal(t, []string{"a"}, payload.Context.Before)
}

func TestResponse_Marshal(t *testing.T) {
	resp := Response{
		Success: true,
		Type:    "ready",
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"success":true`)
	assert.Contains(t, string(data), `"type":"ready"`)
	assert.NotContains(t, string(data), `"error"`)
}
