package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/orris-inc/tenancy/internal/shared/errors"
)

func TestErrorResponseWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"policy violation", apperrors.NewPolicyViolationError("downgrade blocked"), http.StatusUnprocessableEntity, "policy_violation"},
		{"wrapped conflict", errors.Join(errors.New("ctx"), apperrors.NewConflictError("busy")), http.StatusConflict, "conflict"},
		{"plain error is opaque", errors.New("db is down"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			ErrorResponseWithError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantType, resp.Error.Type)
			assert.NotContains(t, resp.Error.Message, "db is down")
		})
	}
}

func TestParseIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for raw, ok := range map[string]bool{"42": true, "0": false, "-1": false, "abc": false, "": false} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{{Key: "id", Value: raw}}

		id, err := ParseIDParam(c, "id", "tenant")
		if ok {
			require.NoError(t, err, raw)
			assert.Equal(t, uint(42), id)
		} else {
			assert.True(t, apperrors.IsValidationError(err), raw)
		}
	}
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "o***@acme.io", MaskEmail("ops@acme.io"))
	assert.Equal(t, "a***@acme.io", MaskEmail("a@acme.io"))
	assert.Equal(t, "***", MaskEmail("not-an-email"))
	assert.Equal(t, "***@acme.io", MaskEmail("@acme.io"))
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "t=12...", Prefix("t=1234,v1=abcdef", 4))
	assert.Equal(t, "short", Prefix("short", 16))
	assert.Equal(t, "éé...", Prefix("ééé", 2))
	assert.Equal(t, "...", Prefix("anything", 0))
}
