package schemas

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/job-portal/internal/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestReferenceDataSchema_ValidJSONSchema(t *testing.T) {
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(schemas.ReferenceDataSchema()), &v))

	_, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemas.ReferenceDataSchema()))
	assert.NoError(t, err, "schema should compile")
}

func TestDefaultReferenceData(t *testing.T) {
	doc, err := schemas.ValidateReferenceDataFile("reference_data.json")
	require.NoError(t, err)

	var parsed struct {
		Statuses []struct {
			Role string `json:"role"`
		} `json:"statuses"`
	}
	require.NoError(t, json.Unmarshal(doc, &parsed))

	roles := map[string]bool{}
	for _, st := range parsed.Statuses {
		roles[st.Role] = true
	}
	for _, role := range []string{"applied", "hired", "rejected", "withdrawn"} {
		assert.True(t, roles[role], "default data should carry a %s status", role)
	}
}
