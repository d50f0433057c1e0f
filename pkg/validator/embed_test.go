package validator

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedValidators(t *testing.T) {
	validators, err := LoadEmbeddedValidators()
	require.NoError(t, err)
	require.NotEmpty(t, validators)

	byName := make(map[string]Validator)
	for _, v := range validators {
		byName[v.Name()] = v
	}

	require.Contains(t, byName, "github")
	assert.True(t, byName["github"].CanValidate("ghp_"+"0123456789abcdefghijklmnopqrstuvwxyz"))
	require.Contains(t, byName, "stripe")
	assert.False(t, byName["stripe"].CanValidate("sk_test_0123456789abcdefghijklmn"))
}

func TestLoadValidatorsFromYAML_Invalid(t *testing.T) {
	_, err := LoadValidatorsFromYAML([]byte("validators: ["))
	assert.Error(t, err)

	_, err = LoadValidatorsFromYAML([]byte(`
validators:
  - name: broken
    secret_pattern: x
    http:
      url: https://example.com
      auth:
        type: carrier-pigeon
`))
	assert.Error(t, err)
}

func TestLoadValidatorsFS(t *testing.T) {
	fsys := fstest.MapFS{
		"defs/b.yaml": {Data: []byte(`
validators:
  - name: second
    secret_pattern: 'tok_[0-9]{4}'
    http:
      url: https://example.com/b
      auth:
        type: bearer
`)},
		"defs/a.yaml": {Data: []byte(`
validators:
  - name: first
    secret_pattern: 'key_[a-z]{4}'
    http:
      url: https://example.com/a
      auth:
        type: bearer
`)},
		"defs/notes.txt": {Data: []byte("ignored")},
	}

	validators, err := LoadValidatorsFS(fsys, "defs")
	require.NoError(t, err)
	require.Len(t, validators, 2)
	assert.Equal(t, "first", validators[0].Name())
	assert.Equal(t, "second", validators[1].Name())
	assert.True(t, validators[1].CanValidate("tok_1234"))
}

func TestLoadValidatorsFS_ParseError(t *testing.T) {
	fsys := fstest.MapFS{"defs/bad.yaml": {Data: []byte("validators: [")}}

	_, err := LoadValidatorsFS(fsys, "defs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defs/bad.yaml")
}
