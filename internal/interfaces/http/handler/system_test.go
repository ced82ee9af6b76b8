package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasehold/backend/internal/interfaces/http/dto"
)

// serveSystem invokes a SystemHandler method directly and decodes the
// success envelope.
func serveSystem(t *testing.T, path string, handle gin.HandlerFunc) map[string]interface{} {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, path, nil)

	handle(c)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is not an object")
	return data
}

func TestSystemHandlerGetSystemInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler()
	require.False(t, h.startTime.IsZero())

	data := serveSystem(t, "/system/info", h.GetSystemInfo)

	assert.Equal(t, "Leasehold Backend API", data["name"])
	assert.Equal(t, "1.0.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}

func TestSystemHandlerPing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	data := serveSystem(t, "/system/ping", NewSystemHandler().Ping)

	assert.Equal(t, "pong", data["message"])

	timestamp, ok := data["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, timestamp)
	assert.NoError(t, err)
}
