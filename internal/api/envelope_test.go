package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeTransformerSuccess(t *testing.T) {
	out, err := EnvelopeTransformer(nil, "200", map[string]string{"name": "Ada"})
	require.NoError(t, err)

	env, ok := out.(*Envelope)
	require.True(t, ok)

	assert.Equal(t, envelopeVersion, env.V)
	assert.True(t, env.Success)
	assert.Equal(t, map[string]string{"name": "Ada"}, env.Data)
	assert.Empty(t, env.Error)
	assert.Empty(t, env.Code)
}

func TestEnvelopeTransformerSimpleError(t *testing.T) {
	out, err := EnvelopeTransformer(nil, "500", &APIError{
		status:  http.StatusInternalServerError,
		Message: "something broke",
	})
	require.NoError(t, err)

	env, ok := out.(*Envelope)
	require.True(t, ok)

	assert.Equal(t, envelopeVersion, env.V)
	assert.False(t, env.Success)
	assert.Equal(t, "something broke", env.Error)
	assert.Empty(t, env.Code)
	assert.Nil(t, env.Data)
}

func TestEnvelopeTransformerCodedError(t *testing.T) {
	out, err := EnvelopeTransformer(nil, "404", &APIError{
		status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "contact not found",
		Details: map[string]any{"id": "abc123"},
	})
	require.NoError(t, err)

	env, ok := out.(*Envelope)
	require.True(t, ok)

	assert.False(t, env.Success)
	assert.Equal(t, "contact not found", env.Error)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Equal(t, "contact not found", env.Message)
	assert.NotNil(t, env.Details)
}

func TestEnvelopeTransformerNon2xxStatusNotSuccessful(t *testing.T) {
	for _, status := range []string{"400", "401", "404", "500"} {
		out, err := EnvelopeTransformer(nil, status, map[string]string{})
		require.NoError(t, err)
		env := out.(*Envelope)
		assert.False(t, env.Success, "status %s should not be successful", status)
	}

	for _, status := range []string{"200", "201", "204", "307"} {
		out, err := EnvelopeTransformer(nil, status, map[string]string{})
		require.NoError(t, err)
		env := out.(*Envelope)
		assert.True(t, env.Success, "status %s should be successful", status)
	}
}

func TestEnvelopeJSONShape(t *testing.T) {
	out, err := EnvelopeTransformer(nil, "200", map[string]int{"count": 3})
	require.NoError(t, err)

	raw, err := json.Marshal(out)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Contains(t, decoded, "v")
	assert.Contains(t, decoded, "success")
	assert.Contains(t, decoded, "data")
	assert.NotContains(t, decoded, "error")
	assert.NotContains(t, decoded, "code")
}
