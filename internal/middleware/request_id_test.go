package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/util"
)

func requestIDRouter(seen *[2]string) *gin.Engine {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/test", func(c *gin.Context) {
		seen[0] = util.RequestID(c)
		seen[1] = logger.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestRequestIDKeepsClientValue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var seen [2]string
	router := requestIDRouter(&seen)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(RequestIDHeader, "trace-42.a_b:c")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "trace-42.a_b:c", w.Header().Get(RequestIDHeader))
	assert.Equal(t, [2]string{"trace-42.a_b:c", "trace-42.a_b:c"}, seen)
}

func TestRequestIDReplacesUnsafeValues(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for name, header := range map[string]string{
		"missing":  "",
		"too long": strings.Repeat("a", maxRequestIDLength+1),
		"spaces":   "two words",
		"newline":  "id\ninjected=1",
	} {
		t.Run(name, func(t *testing.T) {
			var seen [2]string
			router := requestIDRouter(&seen)

			req := httptest.NewRequest("GET", "/test", nil)
			if header != "" {
				req.Header[RequestIDHeader] = []string{header}
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			id := w.Header().Get(RequestIDHeader)
			_, err := uuid.Parse(id)
			require.NoError(t, err, "want a generated uuid, got %q", id)
			assert.Equal(t, [2]string{id, id}, seen)
		})
	}
}
