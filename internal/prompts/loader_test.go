package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_RewritePrompts(t *testing.T) {
	ClearCache()

	for _, key := range []string{"system", "optimize", "mode-creative", "mode-strict"} {
		t.Run(key, func(t *testing.T) {
			prompt, err := Get("rewrite.json", key)
			require.NoError(t, err)
			assert.NotEmpty(t, prompt)
		})
	}
}

func TestGet_Errors(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "system")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")

	_, err = Get("rewrite.json", "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() { MustGet("nonexistent.json", "system") })
	assert.NotPanics(t, func() {
		assert.Contains(t, MustGet("rewrite.json", "system"), "valid JSON")
	})
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		expected string
	}{
		{"single", "Hello {{.Name}}", map[string]string{"Name": "Ada"}, "Hello Ada"},
		{"repeated", "{{.X}}-{{.X}}", map[string]string{"X": "a"}, "a-a"},
		{"missing value kept", "{{.A}} {{.B}}", map[string]string{"A": "1"}, "1 {{.B}}"},
		{"literal braces untouched", `{"k": "{{.V}}"}`, map[string]string{"V": "v"}, `{"k": "v"}`},
		{"no substitution in values", "{{.A}}", map[string]string{"A": "{{.B}}", "B": "x"}, "{{.B}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.template, tt.data))
		})
	}
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("rewrite.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"mode-creative", "mode-strict", "optimize", "system"}, keys)
}
