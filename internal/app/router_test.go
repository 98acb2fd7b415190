package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"judicial-archive/internal/config"
	"judicial-archive/internal/i18n"
	"judicial-archive/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type server struct {
	app    *App
	router *gin.Engine
}

func testConfig(t *testing.T) config.Config {
	return config.Config{
		AppEnv:           "test",
		DefaultLanguage:  "en",
		RequestTimeout:   5 * time.Second,
		MetricsEnabled:   true,
		StatusWorkflow:   "enforced",
		RecentActivities: 5,
		StoreDriver:      config.StoreMemory,
		JWTAccessSecret:  "router-test-secret",
		JWTIssuer:        "judicial-archive",
		JWTAccessTTL:     time.Hour,
		BCryptCost:       bcrypt.MinCost,
		UploadDir:        t.TempDir(),
		MaxUploadBytes:   1 << 20,
	}
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	a, err := Build(context.Background(), testConfig(t), nil, repositories.NewMemoryStore())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	res, err := a.Seed(context.Background(), 42)
	require.NoError(t, err)
	require.False(t, res.Skipped)

	return &server{app: a, router: a.Router()}
}

func (s *server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) login(t *testing.T, username, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Bearer", body.TokenType)
	return body.AccessToken
}

func decodeInto[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// firstSection walks the hierarchy to a section and returns its id.
func (s *server) firstSection(t *testing.T, token string) string {
	t.Helper()
	blocks := decodeInto[[]map[string]any](t, s.do(t, http.MethodGet, "/api/blocks", token, nil))
	require.NotEmpty(t, blocks)
	rows := decodeInto[[]map[string]any](t, s.do(t, http.MethodGet, "/api/blocks/"+blocks[0]["id"].(string)+"/rows", token, nil))
	require.NotEmpty(t, rows)
	sections := decodeInto[[]map[string]any](t, s.do(t, http.MethodGet, "/api/rows/"+rows[0]["id"].(string)+"/sections", token, nil))
	require.NotEmpty(t, sections)
	return sections[0]["id"].(string)
}

func TestLoginAndLogout(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, i18n.MsgInvalidCredentials, decodeInto[map[string]any](t, w)["code"])

	w = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decodeInto[map[string]any](t, w)["detail"])

	token := s.login(t, "admin", "admin123")
	w = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decodeInto[map[string]map[string]any](t, w)
	assert.Equal(t, "admin", me["user"]["username"])
	assert.NotContains(t, me["user"], "passwordHash")

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/auth/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/auth/me", token, nil).Code)
}

func TestDocumentLifecycle(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "archivist", "arch123")
	section := s.firstSection(t, token)

	w := s.do(t, http.MethodPost, "/api/documents", token, map[string]any{
		"sectionId": section,
		"title":     "Zorglub Été contentieux",
		"category":  "Civil",
		"status":    "pending",
		"metadata":  map[string]any{"court": "Rabat"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeInto[map[string]any](t, w)
	id := created["id"].(string)
	assert.Regexp(t, `^[A-J]\.[1-3]\.[1-4]\.\d+$`, created["reference"])
	assert.Equal(t, "civil", created["category"])
	assert.Equal(t, section, created["section"].(map[string]any)["id"])
	assert.Equal(t, "archivist", created["creator"].(map[string]any)["username"])

	w = s.do(t, http.MethodGet, "/api/documents?search=zorglub+ete", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := decodeInto[[]map[string]any](t, w)
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0]["id"])

	w = s.do(t, http.MethodGet, "/api/documents?search=zorglub&status=archived", token, nil)
	assert.Empty(t, decodeInto[[]map[string]any](t, w))

	w = s.do(t, http.MethodGet, "/api/documents?category=unknown", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, "/api/documents/"+id, token, map[string]any{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Status cannot change from pending to archived", decodeInto[map[string]any](t, w)["error"])

	w = s.do(t, http.MethodPatch, "/api/documents/"+id, token, map[string]any{"status": "active"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "active", decodeInto[map[string]any](t, w)["status"])

	w = s.do(t, http.MethodPost, "/api/papers", token, map[string]any{"documentId": id, "title": "Requête"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	papers := decodeInto[[]map[string]any](t, s.do(t, http.MethodGet, "/api/documents/"+id+"/papers", token, nil))
	require.Len(t, papers, 1)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/documents/"+id, token, nil).Code)
	w = s.do(t, http.MethodGet, "/api/documents/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "The requested resource was not found", decodeInto[map[string]any](t, w)["error"])
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/papers/"+papers[0]["id"].(string), token, nil).Code)
}

func TestPermissions(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin", "admin123")

	w := s.do(t, http.MethodPost, "/api/users", admin, map[string]any{
		"username": "lecteur",
		"password": "lecteur123",
		"email":    "lecteur@cour-appel.ma",
		"fullName": "Lecteur",
		"role":     "viewer",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	viewerID := decodeInto[map[string]any](t, w)["id"].(string)

	viewer := s.login(t, "lecteur", "lecteur123")
	archivist := s.login(t, "archivist", "arch123")

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/documents", viewer, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/documents", viewer, map[string]any{}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/users", archivist, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/blocks", archivist, map[string]any{"label": "K"}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/audit/logs", archivist, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/documents", "", nil).Code)

	perms := decodeInto[map[string]any](t, s.do(t, http.MethodGet, "/api/permissions", viewer, nil))
	assert.Equal(t, "viewer", perms["role"])
	assert.Equal(t, []any{"read"}, perms["permissions"])

	// promotion takes effect on the next request with the same token
	w = s.do(t, http.MethodPatch, "/api/users/"+viewerID, admin, map[string]any{"role": "archivist"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, "/api/documents", viewer, map[string]any{
		"sectionId": s.firstSection(t, viewer),
		"title":     "Après promotion",
		"category":  "legal",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodDelete, "/api/users/"+viewerID, admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, i18n.MsgUserHasDocuments, decodeInto[map[string]any](t, w)["code"])

	w = s.do(t, http.MethodPatch, "/api/users/"+viewerID, admin, map[string]any{"isActive": false})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/api/documents", viewer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, i18n.MsgAccountDisabled, decodeInto[map[string]any](t, w)["code"])
}

func TestLocationsAndAudit(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin", "admin123")

	w := s.do(t, http.MethodPost, "/api/blocks", admin, map[string]any{"label": "K"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	block := decodeInto[map[string]any](t, w)["id"].(string)

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/api/blocks", admin, map[string]any{"label": "K"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/blocks/missing/rows", admin, map[string]any{"label": "1"}).Code)

	w = s.do(t, http.MethodPost, "/api/blocks/"+block+"/rows", admin, map[string]any{"label": "1"})
	require.Equal(t, http.StatusCreated, w.Code)
	row := decodeInto[map[string]any](t, w)["id"].(string)

	w = s.do(t, http.MethodPost, "/api/rows/"+row+"/sections", admin, map[string]any{"label": "1"})
	require.Equal(t, http.StatusCreated, w.Code)
	section := decodeInto[map[string]any](t, w)["id"].(string)

	w = s.do(t, http.MethodPost, "/api/documents", admin, map[string]any{"sectionId": section, "title": "Premier", "category": "legal"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "K.1.1.1", decodeInto[map[string]any](t, w)["reference"])

	w = s.do(t, http.MethodGet, "/api/documents?blockId="+block, admin, nil)
	assert.Len(t, decodeInto[[]map[string]any](t, w), 1)

	w = s.do(t, http.MethodGet, "/api/audit/logs?action=block_created", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs := decodeInto[map[string]any](t, w)
	assert.EqualValues(t, 1, logs["total"])

	w = s.do(t, http.MethodGet, "/api/audit/resource/"+block, admin, nil)
	assert.EqualValues(t, 1, decodeInto[map[string]any](t, w)["total"])
}

func TestDashboardRoutes(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin", "admin123")
	archivist := s.login(t, "archivist", "arch123")

	all := decodeInto[[]map[string]any](t, s.do(t, http.MethodGet, "/api/documents", admin, nil))
	stats := decodeInto[map[string]float64](t, s.do(t, http.MethodGet, "/api/dashboard/stats", admin, nil))
	assert.EqualValues(t, len(all), stats["totalCases"])
	assert.EqualValues(t, len(all), stats["processedDocs"]+stats["pendingDocs"]+stats["archivedCases"])

	recent := decodeInto[[]map[string]any](t, s.do(t, http.MethodGet, "/api/dashboard/recent-documents?limit=3", admin, nil))
	assert.Len(t, recent, 3)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/dashboard/recent-documents?limit=x", admin, nil).Code)

	w := s.do(t, http.MethodGet, "/api/dashboard/user-progress", archivist, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decodeInto[map[string]any](t, w), "categoryBreakdown")

	me := decodeInto[map[string]map[string]any](t, s.do(t, http.MethodGet, "/api/auth/me", admin, nil))
	w = s.do(t, http.MethodGet, "/api/profile?userId="+me["user"]["id"].(string), archivist, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/profile/activity", archivist, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 90, decodeInto[map[string]any](t, w)["days"])
}

func TestAttachmentRoutes(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "archivist", "arch123")

	w := s.do(t, http.MethodPost, "/api/documents", token, map[string]any{"sectionId": s.firstSection(t, token), "title": "Pièces", "category": "legal"})
	require.Equal(t, http.StatusCreated, w.Code)
	doc := decodeInto[map[string]any](t, w)["id"].(string)
	w = s.do(t, http.MethodPost, "/api/papers", token, map[string]any{"documentId": doc, "title": "Scan"})
	require.Equal(t, http.StatusCreated, w.Code)
	paper := decodeInto[map[string]any](t, w)["id"].(string)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "scan.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("contenu du scan"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/papers/"+paper+"/attachment", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	uploaded := decodeInto[map[string]any](t, rec)
	assert.True(t, strings.HasPrefix(uploaded["attachmentUrl"].(string), "local://"))

	w = s.do(t, http.MethodGet, "/api/papers/"+paper+"/attachment", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "contenu du scan", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "scan.txt")

	w = s.do(t, http.MethodPost, "/api/papers/"+paper+"/attachment-url", token, map[string]any{"filename": "scan.pdf"})
	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, i18n.MsgAttachmentsDisabled, decodeInto[map[string]any](t, w)["code"])

	w = s.do(t, http.MethodPost, "/api/papers", token, map[string]any{"documentId": doc, "title": "Copie", "attachmentUrl": uploaded["attachmentUrl"]})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	stored := filepath.Join(s.app.Config.UploadDir, "papers", paper, "scan.txt")
	_, err = os.Stat(stored)
	require.NoError(t, err)
	w = s.do(t, http.MethodDelete, "/api/documents/"+doc, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err), "attachment removed with its document")
}

func TestHealthMetricsAndLanguage(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeInto[map[string]any](t, w)["status"])

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "judicial_archive_http_requests_total")

	req := httptest.NewRequest(http.MethodGet, "/api/nowhere", nil)
	req.Header.Set("Accept-Language", "ar")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ar", rec.Header().Get("Content-Language"))
	assert.Equal(t, i18n.MsgNotFound, decodeInto[map[string]any](t, rec)["code"])
}

func TestOpenStoreSQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreDriver = config.StoreSQLite
	cfg.SQLitePath = t.TempDir() + "/archive.db"
	cfg.AutoMigrate = true

	store, err := OpenStore(cfg, nil)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Ping(context.Background()))

	cfg.StoreDriver = "mongo"
	_, err = OpenStore(cfg, nil)
	assert.Error(t, err)
}
