package apierror

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToJSON(t *testing.T) {
	var body map[string]any
	require.NoError(t, json.Unmarshal(Timeout("").ToJSON(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, CodeTimeout, body["code"])
	assert.Equal(t, "Market website timed out", body["message"])
	assert.NotContains(t, body, "details")
}

func TestInvalidInputDetails(t *testing.T) {
	e := InvalidInput("bad", FieldError{Field: "page", Message: "must be positive"})
	assert.Equal(t, http.StatusBadRequest, e.StatusCode)

	var body map[string]any
	require.NoError(t, json.Unmarshal(e.ToJSON(), &body))
	assert.Len(t, body["details"], 1)
}
