package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/access"
	"github.com/xiebiao/library/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type revokedSet map[string]bool

func (s revokedSet) IsRevoked(_ context.Context, id string) (bool, error) {
	return s[id], nil
}

type envelope struct {
	Code int `json:"code"`
}

func decodeCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func newAuthEngine(m *AuthMiddleware) *gin.Engine {
	r := gin.New()
	r.Use(m.Authenticate())
	r.GET("/whoami", func(c *gin.Context) {
		p := Principal(c)
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "role": p.Role().String()})
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	manager := jwt.NewManager("secret", time.Hour)
	reader, err := manager.GenerateToken(7, "reader", false)
	require.NoError(t, err)
	librarian, err := manager.GenerateToken(1, "librarian", true)
	require.NoError(t, err)
	revoked, err := manager.GenerateToken(8, "gone", false)
	require.NoError(t, err)
	other, err := jwt.NewManager("other", time.Hour).GenerateToken(7, "reader", false)
	require.NoError(t, err)

	engine := newAuthEngine(NewAuthMiddleware(manager, revokedSet{revoked.ID: true}))

	tests := []struct {
		name     string
		header   string
		status   int
		wantRole string
	}{
		{"anonymous", "", http.StatusOK, "anonymous"},
		{"reader", "Bearer " + reader.AccessToken, http.StatusOK, "reader"},
		{"staff", "bearer " + librarian.AccessToken, http.StatusOK, "staff"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"foreign signature", "Bearer " + other.AccessToken, http.StatusUnauthorized, ""},
		{"revoked", "Bearer " + revoked.AccessToken, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.wantRole != "" {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantRole, body["role"])
			}
		})
	}
}

func TestAuthenticate_RevokedCode(t *testing.T) {
	manager := jwt.NewManager("secret", time.Hour)
	tok, err := manager.GenerateToken(8, "gone", false)
	require.NoError(t, err)

	engine := newAuthEngine(NewAuthMiddleware(manager, revokedSet{tok.ID: true}))
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, 40103, decodeCode(t, w))
}

func TestPrincipal_DefaultsToAnonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, access.Anonymous(), Principal(c))
}

func TestAuthorize(t *testing.T) {
	manager := jwt.NewManager("secret", time.Hour)
	reader, err := manager.GenerateToken(7, "reader", false)
	require.NoError(t, err)
	librarian, err := manager.GenerateToken(1, "librarian", true)
	require.NoError(t, err)

	reached := false
	r := gin.New()
	r.Use(NewAuthMiddleware(manager, nil).Authenticate())
	r.PUT("/instances/:id", Authorize(access.OpUpdateInstance), func(c *gin.Context) {
		reached = true
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name    string
		token   string
		status  int
		code    int
		reached bool
	}{
		{"anonymous", "", http.StatusUnauthorized, 40100, false},
		{"reader", reader.AccessToken, http.StatusForbidden, 40104, false},
		{"staff", librarian.AccessToken, http.StatusNoContent, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			req := httptest.NewRequest(http.MethodPut, "/instances/not-a-number", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.reached, reached)
			if tt.code != 0 {
				assert.Equal(t, tt.code, decodeCode(t, w))
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(1, 2)
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "buckets are per IP")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))

	now = now.Add(time.Hour)
	l.Allow("10.0.0.3")
	assert.Len(t, l.clients, 1, "idle clients are swept")
}

func TestRateLimiter_Disabled(t *testing.T) {
	l := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow("10.0.0.1"))
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	r := gin.New()
	r.GET("/search", NewRateLimiter(1, 1).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/search", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/search", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, 42900, decodeCode(t, second))
}

func TestRequestLogger_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 50000, decodeCode(t, w))
}

func TestTracingAndMetrics_PassThrough(t *testing.T) {
	r := gin.New()
	r.Use(Tracing(), Metrics())
	r.GET("/books/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
