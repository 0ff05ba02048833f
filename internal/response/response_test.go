package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"marketplace/internal/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"validation", apperr.Validation("Passwords do not match"), http.StatusBadRequest, `{"success":false,"message":"Passwords do not match"}`},
		{"not found", apperr.NotFound("User not found"), http.StatusNotFound, `{"success":false,"message":"User not found"}`},
		{"forbidden", apperr.Forbidden("Access denied"), http.StatusForbidden, `{"success":false,"message":"Access denied"}`},
		{"internal hides cause", apperr.Internal("Internal server error", errors.New("dial tcp: refused")), http.StatusInternalServerError, `{"success":false,"message":"Internal server error"}`},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, `{"success":false,"message":"Internal server error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			Error(c, tt.err)
			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
			assert.True(t, c.IsAborted())
		})
	}
}

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	OK(c, http.StatusCreated, gin.H{"message": "created", "count": 2})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"created","count":2}`, w.Body.String())
}
