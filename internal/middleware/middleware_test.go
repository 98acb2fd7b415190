package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"judicial-archive/internal/i18n"
	"judicial-archive/internal/models"
	"judicial-archive/internal/repositories"
	"judicial-archive/internal/session"
	jwtpkg "judicial-archive/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type principals map[string]*models.User

func (p principals) Principal(_ context.Context, id string) (*models.User, error) {
	u, ok := p[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

type testEnv struct {
	router  *gin.Engine
	issuer  jwtpkg.Issuer
	revoker *session.MemoryRevoker
	users   principals
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tr, err := i18n.New("ar")
	require.NoError(t, err)

	env := &testEnv{
		issuer:  jwtpkg.Issuer{Secret: []byte("test-secret"), Name: "judicial-archive", TTL: time.Hour},
		revoker: session.NewMemoryRevoker(),
		users: principals{
			"u-admin":  {ID: "u-admin", Username: "admin", Role: models.RoleAdmin, IsActive: true},
			"u-viewer": {ID: "u-viewer", Username: "viewer", Role: models.RoleViewer, IsActive: true},
			"u-off":    {ID: "u-off", Username: "off", Role: models.RoleArchivist, IsActive: false},
		},
	}
	auth := Auth{Tokens: env.issuer, Revoker: env.revoker, Users: env.users, Translator: tr}

	r := gin.New()
	r.Use(Language(tr))
	api := r.Group("/api", auth.JWTAuth())
	api.GET("/me", func(c *gin.Context) {
		u, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"username": u.Username, "actor": Actor(c).UserID})
	})
	api.POST("/documents", RequirePermission(tr, models.PermissionWrite), func(c *gin.Context) { c.Status(http.StatusCreated) })
	api.GET("/users", RequirePermission(tr, models.PermissionManage), func(c *gin.Context) { c.Status(http.StatusOK) })
	env.router = r
	return env
}

func (e *testEnv) token(t *testing.T, userID string) (string, *jwtpkg.Claims) {
	t.Helper()
	tok, claims, err := e.issuer.Issue(jwtpkg.Claims{UserID: userID})
	require.NoError(t, err)
	return tok, claims
}

func (e *testEnv) do(method, path, token string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJWTAuth(t *testing.T) {
	env := newTestEnv(t)
	tok, claims := env.token(t, "u-admin")

	w := env.do(http.MethodGet, "/api/me", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode(t, w)["username"])
	assert.Equal(t, "u-admin", decode(t, w)["actor"])

	w = env.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.Equal(t, i18n.MsgUnauthorized, body["code"])
	assert.Equal(t, "يجب تسجيل الدخول أولا", body["error"])

	w = env.do(http.MethodGet, "/api/me", "garbage", map[string]string{"Accept-Language": "en"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", decode(t, w)["error"])

	require.NoError(t, env.revoker.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))
	w = env.do(http.MethodGet, "/api/me", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	offTok, _ := env.token(t, "u-off")
	w = env.do(http.MethodGet, "/api/me", offTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, i18n.MsgAccountDisabled, decode(t, w)["code"])

	goneTok, _ := env.token(t, "u-deleted")
	w = env.do(http.MethodGet, "/api/me", goneTok, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other := jwtpkg.Issuer{Secret: []byte("other-secret"), Name: "judicial-archive", TTL: time.Hour}
	forged, _, err := other.Issue(jwtpkg.Claims{UserID: "u-admin"})
	require.NoError(t, err)
	w = env.do(http.MethodGet, "/api/me", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleChangeAppliesImmediately(t *testing.T) {
	env := newTestEnv(t)
	tok, _ := env.token(t, "u-viewer")

	w := env.do(http.MethodPost, "/api/documents", tok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, i18n.MsgForbidden, decode(t, w)["code"])

	env.users["u-viewer"].Role = models.RoleArchivist
	w = env.do(http.MethodPost, "/api/documents", tok, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRequirePermission_Manage(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.token(t, "u-admin")
	viewer, _ := env.token(t, "u-viewer")

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/users", admin, nil).Code)
	w := env.do(http.MethodGet, "/api/users?lang=fr", viewer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "fr", w.Header().Get("Content-Language"))
	assert.Equal(t, "Vous n'avez pas la permission d'effectuer cette action", decode(t, w)["error"])
}

func TestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(nil, 10*time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, i18n.MsgRequestTimeout, decode(t, w)["code"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestExtractIPFromRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ExtractIPFromRequest(c))

	c.Request.Header.Del("X-Forwarded-For")
	c.Request.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", ExtractIPFromRequest(c))
}
