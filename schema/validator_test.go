package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "properties": {
    "transport": {"type": "string", "enum": ["http", "websocket"]},
    "exclude": {"type": "array", "items": {"type": "string"}}
  }
}`

func TestValidator(t *testing.T) {
	v, err := NewValidator("test.json", []byte(testSchema))
	require.NoError(t, err)

	assert.NoError(t, v.Validate(map[string]interface{}{"transport": "http"}))

	err = v.Validate(map[string]interface{}{"transport": "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/transport")

	type doc struct {
		Exclude []string `json:"exclude"`
	}
	assert.NoError(t, v.Validate(doc{Exclude: []string{"*.env"}}))
}

func TestNewValidator_BadSchema(t *testing.T) {
	_, err := NewValidator("bad.json", []byte(`{"type": 12}`))
	assert.Error(t, err)
}
