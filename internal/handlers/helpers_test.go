package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type bindTarget struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=user admin"`
	Bio   string `json:"bio" binding:"max=5"`
}

func TestBindJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	useJSONFieldNames()

	tests := []struct {
		name    string
		body    string
		status  int
		field   string
		message string
	}{
		{name: "valid", body: `{"email":"a@b.co"}`, status: http.StatusOK},
		{name: "malformed", body: `{"email":`, status: http.StatusBadRequest},
		{name: "missing", body: `{}`, status: http.StatusUnprocessableEntity, field: "email", message: "email is required"},
		{name: "bad email", body: `{"email":"nope"}`, status: http.StatusUnprocessableEntity, field: "email", message: "email must be a valid email"},
		{name: "oneof", body: `{"email":"a@b.co","role":"root"}`, status: http.StatusUnprocessableEntity, field: "role", message: "role must be one of: user admin"},
		{name: "max", body: `{"email":"a@b.co","bio":"toolong"}`, status: http.StatusUnprocessableEntity, field: "bio", message: "bio must be at most 5 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var target bindTarget
			if bindJSON(c, &target) {
				c.Status(http.StatusOK)
			}

			assert.Equal(t, tt.status, w.Code)
			if tt.field != "" {
				assert.Contains(t, w.Body.String(), `"field":"`+tt.field+`"`)
				assert.Contains(t, w.Body.String(), tt.message)
			}
		})
	}
}
