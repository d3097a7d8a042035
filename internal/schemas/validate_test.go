package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_OptimizationOutcome(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		valid bool
	}{
		{
			name:  "complete",
			doc:   `{"rankings":[{"original":"a","rewritten":"b","relevance_score":0.8,"improvement_reasoning":"r"}],"gaps":["Go"],"new_bullets":[]}`,
			valid: true,
		},
		{
			name:  "only rankings",
			doc:   `{"rankings":[]}`,
			valid: true,
		},
		{
			name:  "score out of range is still valid",
			doc:   `{"rankings":[{"original":"a","rewritten":"b","relevance_score":1.7}]}`,
			valid: true,
		},
		{
			name: "missing rankings",
			doc:  `{"gaps":[]}`,
		},
		{
			name: "ranking missing rewritten",
			doc:  `{"rankings":[{"original":"a","relevance_score":0.5}]}`,
		},
		{
			name: "score is a string",
			doc:  `{"rankings":[{"original":"a","rewritten":"b","relevance_score":"high"}]}`,
		},
		{
			name: "rankings not an array",
			doc:  `{"rankings":{}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(OptimizationOutcome, []byte(tt.doc))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.NotEmpty(t, verr.Errors)
			assert.Contains(t, verr.Error(), "validation failed")
		})
	}
}

func TestValidate_NotJSON(t *testing.T) {
	err := Validate(OptimizationOutcome, []byte("not json"))
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("missing.json", []byte(`{}`))
	var lerr *SchemaLoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "missing.json", lerr.Path)
	assert.Error(t, lerr.Unwrap())
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type":"object","required":["name"]}`
	assert.NoError(t, ValidateJSONString(schema, `{"name":"x"}`))

	err := ValidateJSONString(schema, `{}`)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "(root)", verr.Errors[0].Field)

	err = ValidateJSONString(`{"type": 12}`, `{}`)
	var lerr *SchemaLoadError
	assert.True(t, errors.As(err, &lerr))
}
