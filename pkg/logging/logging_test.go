package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	origLogger := log.Logger
	origLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = origLogger
		zerolog.SetGlobalLevel(origLevel)
		SetGlobalHitWriter(nil)
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{" warn ", zerolog.WarnLevel, false},
		{"hit", HitLevel, false},
		{"trace", zerolog.TraceLevel, false},
		{"loud", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetup_JSON(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	logger, err := Setup(Options{Level: "debug", JSON: true, Out: &buf})
	require.NoError(t, err)

	logger.Debug().Str("tenant", "acme").Msg("resolved")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "acme", entry["tenant"])
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestSetup_InvalidLevel(t *testing.T) {
	restoreGlobals(t)

	_, err := Setup(Options{Level: "nope", Out: &bytes.Buffer{}})
	assert.Error(t, err)
}

func TestHit_RewritesLevel(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	_, err := Setup(Options{Level: "info", JSON: true, Out: &buf})
	require.NoError(t, err)

	Hit().Str("rule", "CKV_SEC_1").Int("line", 3).Bool("verified", false).Msg("HIT")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hit", entry["level"])
	assert.Equal(t, "CKV_SEC_1", entry["rule"])
	assert.NotContains(t, entry, "_hit")
}

func TestHitLevelWriter_PassThrough(t *testing.T) {
	var buf bytes.Buffer
	w := NewHitLevelWriter(&buf)

	n, err := w.Write([]byte(`{"level":"warn","message":"plain"}` + "\n"))
	require.NoError(t, err)
	assert.Greater(t, n, 0)
	assert.True(t, strings.Contains(buf.String(), `"level":"warn"`))
}

func TestHitLevelWriter_SetOutput(t *testing.T) {
	var first, second bytes.Buffer
	w := NewHitLevelWriter(&first)
	w.SetOutput(&second)

	_, err := w.Write([]byte("x"))
	require.NoError(t, err)
	assert.Empty(t, first.String())
	assert.Equal(t, "x", second.String())
}
