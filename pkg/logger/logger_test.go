package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func serveLogged(t *testing.T, status int, path string) []observer.LoggedEntry {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(zap.New(core)))
	r.GET("/students/:id", func(c *gin.Context) {
		c.Status(status)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)

	return logs.AllUntimed()
}

func TestGinMiddlewareLogsRouteAndPath(t *testing.T) {
	entries := serveLogged(t, http.StatusOK, "/students/stu-1")
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "request served", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "/students/:id", fields["route"])
	assert.Equal(t, "/students/stu-1", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}

func TestGinMiddlewareEscalatesByStatus(t *testing.T) {
	entries := serveLogged(t, http.StatusServiceUnavailable, "/students/stu-1")
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)

	entries = serveLogged(t, http.StatusConflict, "/students/stu-1")
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}
