package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace/internal/auth"
	"marketplace/internal/ctxmanage"
	"marketplace/internal/models"
	"marketplace/internal/storetest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var cookie = auth.SessionCookie{Name: "token"}

type gateFixture struct {
	users   *storetest.Users
	tokens  *auth.TokenIssuer
	router  *gin.Engine
	reached int
}

// newGateFixture mounts GET /x behind authentication and the given gates.
func newGateFixture(t *testing.T, gates func(*storetest.Users) []gin.HandlerFunc, seed ...*models.User) *gateFixture {
	t.Helper()
	f := &gateFixture{
		users:  storetest.NewUsers(seed...),
		tokens: auth.NewTokenIssuer("test-secret", time.Hour),
		router: gin.New(),
	}
	chain := []gin.HandlerFunc{Authenticate(f.tokens, cookie)}
	chain = append(chain, gates(f.users)...)
	chain = append(chain, func(c *gin.Context) {
		f.reached++
		u, ok := CurrentUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": u.ID.Hex()})
	})
	f.router.GET("/x", chain...)
	return f
}

func (f *gateFixture) get(t *testing.T, u *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if u != nil {
		token, err := f.tokens.Issue(u)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: token})
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Message
}

func adminOrSeller(users *storetest.Users) []gin.HandlerFunc {
	return []gin.HandlerFunc{RequireAnyOf(users, models.RoleAdmin, models.RoleSeller)}
}

func TestRequireAnyOfAdmits(t *testing.T) {
	seller := &models.User{Role: models.RoleSeller}
	f := newGateFixture(t, adminOrSeller, seller)

	w := f.get(t, seller)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.reached)
	assert.Equal(t, 1, f.users.Reads)
}

func TestRequireAnyOfForbidden(t *testing.T) {
	buyer := &models.User{Role: models.RoleBuyer}
	f := newGateFixture(t, adminOrSeller, buyer)

	w := f.get(t, buyer)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied", message(t, w))
	assert.Zero(t, f.reached)
	assert.Zero(t, f.users.Writes)
}

func TestRequireAnyOfMissingUser(t *testing.T) {
	f := newGateFixture(t, adminOrSeller)

	w := f.get(t, &models.User{ID: primitive.NewObjectID()})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, f.reached)
}

func TestRequireAnyOfStorageFault(t *testing.T) {
	seller := &models.User{Role: models.RoleSeller}
	f := newGateFixture(t, adminOrSeller, seller)
	f.users.Fail = true

	w := f.get(t, seller)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", message(t, w))
}

func TestRequireAnyOfInactiveAccount(t *testing.T) {
	seller := &models.User{Role: models.RoleSeller, Status: models.UserStatusInactive}
	f := newGateFixture(t, adminOrSeller, seller)

	w := f.get(t, seller)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Account is inactive", message(t, w))
	assert.Zero(t, f.reached)
	assert.Zero(t, f.users.Writes)
}

func TestChainedGatesLoadUserOnce(t *testing.T) {
	seller := &models.User{Role: models.RoleSeller}
	f := newGateFixture(t, func(users *storetest.Users) []gin.HandlerFunc {
		return []gin.HandlerFunc{
			RequireAnyOf(users),
			RequireAnyOf(users, models.RoleAdmin, models.RoleSeller),
			RequireAnyOf(users, models.RoleSeller),
		}
	}, seller)

	w := f.get(t, seller)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.users.Reads)
}

func TestAuthenticate(t *testing.T) {
	buyer := &models.User{Role: models.RoleBuyer}
	anyone := func(users *storetest.Users) []gin.HandlerFunc {
		return []gin.HandlerFunc{RequireAnyOf(users)}
	}

	t.Run("no token", func(t *testing.T) {
		f := newGateFixture(t, anyone, buyer)
		w := f.get(t, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Zero(t, f.users.Reads)
	})

	t.Run("bad token", func(t *testing.T) {
		f := newGateFixture(t, anyone, buyer)
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bearer header", func(t *testing.T) {
		f := newGateFixture(t, anyone, buyer)
		token, err := f.tokens.Issue(buyer)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestLoggerTraceID(t *testing.T) {
	r := gin.New()
	r.Use(Logger())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = ctxmanage.GetTraceIdOfRequest(c)
		c.Status(http.StatusOK)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(ctxmanage.TraceIDHeader, "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", w.Header().Get(ctxmanage.TraceIDHeader))
	})

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(ctxmanage.TraceIDHeader))
	})
}
