package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/lifedash/internal/logging"
	"github.com/dmitrijs2005/lifedash/internal/server/config"
	"github.com/dmitrijs2005/lifedash/internal/server/documents"
	"github.com/dmitrijs2005/lifedash/internal/server/gallery"
	"github.com/dmitrijs2005/lifedash/internal/server/suggest"
	"github.com/dmitrijs2005/lifedash/internal/server/users"
)

type fakeCompleter struct {
	completion string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return f.completion, nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		SecretKey:                   "test-secret",
		AccessTokenValidityDuration: time.Hour,
		S3Region:                    "us-east-1",
		S3RootUser:                  "minioadmin",
		S3RootPassword:              "minioadmin",
		S3BaseEndpoint:              "http://127.0.0.1:9000",
		S3Bucket:                    "gallery",
	}

	h := NewHandlers(
		users.NewService(users.NewInMemoryRepository(), cfg),
		documents.NewService(documents.NewInMemoryRepository()),
		gallery.NewService(cfg),
		suggest.NewService(&fakeCompleter{completion: "- idea one\n- idea two\n- idea three"}),
		testLogger(),
		[]byte(cfg.SecretKey),
	)
	return NewRouter(h)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 && strings.HasPrefix(w.Body.String(), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func registerUser(t *testing.T, r *gin.Engine, email string) (ownerID, token string) {
	t.Helper()
	w, body := doJSON(t, r, http.MethodPost, "/auth/register",
		`{"email":"`+email+`","password":"abcdef"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	user := body["user"].(map[string]any)
	return user["id"].(string), body["token"].(string)
}

func TestPing(t *testing.T) {
	r := newTestRouter(t)
	w, body := doJSON(t, r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", body["message"])
}

func TestRegister_CreatedWithToken(t *testing.T) {
	r := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/auth/register",
		`{"email":"A@B.com","password":"abcdef"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	user := body["user"].(map[string]any)
	assert.Equal(t, "a@b.com", user["email"])
	assert.NotEmpty(t, user["id"])
	assert.NotEmpty(t, body["token"])
}

func TestRegister_ShortPassword(t *testing.T) {
	r := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/auth/register",
		`{"email":"a@b.com","password":"123"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["message"], "at least 6 characters")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	r := newTestRouter(t)
	registerUser(t, r, "a@b.com")

	w, body := doJSON(t, r, http.MethodPost, "/auth/register",
		`{"email":"a@b.com","password":"zyxwvu"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User with this email already exists", body["message"])
}

func TestLogin_SuccessAndFailure(t *testing.T) {
	r := newTestRouter(t)
	ownerID, _ := registerUser(t, r, "a@b.com")

	w, body := doJSON(t, r, http.MethodPost, "/auth/login",
		`{"email":"a@b.com","password":"abcdef"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := body["user"].(map[string]any)
	assert.Equal(t, ownerID, user["id"])
	assert.NotEmpty(t, body["token"])

	w, body = doJSON(t, r, http.MethodPost, "/auth/login",
		`{"email":"a@b.com","password":"wrong!"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", body["message"])
}

func TestDocuments_CreateAndList(t *testing.T) {
	r := newTestRouter(t)
	alice, _ := registerUser(t, r, "alice@b.com")
	bob, _ := registerUser(t, r, "bob@b.com")

	w, created := doJSON(t, r, http.MethodPost, "/todos",
		`{"ownerId":"`+alice+`","task":"buy milk","completed":false}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "buy milk", created["task"])
	assert.Equal(t, alice, created["ownerId"])
	assert.NotEmpty(t, created["id"])
	assert.NotEmpty(t, created["createdAt"])

	_, _ = doJSON(t, r, http.MethodPost, "/todos",
		`{"ownerId":"`+bob+`","task":"walk dog","completed":false}`, nil)

	w, _ = doJSON(t, r, http.MethodGet, "/todos?ownerId="+alice, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var docs []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	require.Len(t, docs, 1, "only alice's todos are visible")
	assert.Equal(t, "buy milk", docs[0]["task"])
}

func TestDocuments_ListRequiresOwner(t *testing.T) {
	r := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodGet, "/todos", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocuments_UpdateForeignOwnerIsNotFound(t *testing.T) {
	r := newTestRouter(t)
	alice, _ := registerUser(t, r, "alice@b.com")
	bob, _ := registerUser(t, r, "bob@b.com")

	_, created := doJSON(t, r, http.MethodPost, "/todos",
		`{"ownerId":"`+alice+`","task":"buy milk","completed":false}`, nil)
	id := created["id"].(string)

	w, _ := doJSON(t, r, http.MethodPut, "/todos/"+id,
		`{"ownerId":"`+bob+`","task":"hijacked","completed":true}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, updated := doJSON(t, r, http.MethodPut, "/todos/"+id,
		`{"ownerId":"`+alice+`","task":"buy milk","completed":true}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, updated["completed"])
}

func TestDocuments_Delete(t *testing.T) {
	r := newTestRouter(t)
	alice, _ := registerUser(t, r, "alice@b.com")

	_, created := doJSON(t, r, http.MethodPost, "/plans",
		`{"ownerId":"`+alice+`","title":"Learn Go","status":"Not Started"}`, nil)
	id := created["id"].(string)

	w, _ := doJSON(t, r, http.MethodDelete, "/plans/"+id+"?ownerId=intruder", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body := doJSON(t, r, http.MethodDelete, "/plans/"+id+"?ownerId="+alice, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Deleted successfully", body["message"])

	w, _ = doJSON(t, r, http.MethodGet, "/plans?ownerId="+alice, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestDocuments_CollectionsAreSeparate(t *testing.T) {
	r := newTestRouter(t)
	alice, _ := registerUser(t, r, "alice@b.com")

	_, _ = doJSON(t, r, http.MethodPost, "/todos",
		`{"ownerId":"`+alice+`","task":"buy milk","completed":false}`, nil)

	w, _ := doJSON(t, r, http.MethodGet, "/plans?ownerId="+alice, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestSuggest(t *testing.T) {
	r := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/suggest",
		`{"existingEntries":"- buy milk (pending)","type":"todo"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	suggestions := body["suggestions"].([]any)
	assert.Len(t, suggestions, 3)
	assert.Equal(t, "idea one", suggestions[0])
}

func TestSuggest_InvalidType(t *testing.T) {
	r := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/suggest",
		`{"existingEntries":"x","type":"password"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGallery_RequiresToken(t *testing.T) {
	r := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/gallery/uploads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/gallery/uploads", "",
		map[string]string{"Authorization": "Bearer not.a.jwt"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGallery_PresignsWithToken(t *testing.T) {
	r := newTestRouter(t)
	ownerID, token := registerUser(t, r, "a@b.com")

	w, body := doJSON(t, r, http.MethodPost, "/gallery/uploads", "",
		map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	key := body["key"].(string)
	assert.Contains(t, key, ownerID, "object keys are owner-partitioned")
	assert.Contains(t, body["url"], "http://127.0.0.1:9000")
}
