package app

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"blog-admin/pkg/config"
	"blog-admin/pkg/jwt"
	"blog-admin/pkg/logger"
	"blog-admin/services/posts/internal/entity"
	"blog-admin/services/posts/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.Discard()
	return NewRouter(cfg, log, NewUseCase(log, nil, nil, nil), nil)
}

func request(r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func samplePost(title string) gin.H {
	return gin.H{
		"title":         title,
		"description":   "d",
		"featuredImage": "u",
		"publishDate":   "2024-01-01T00:00",
		"published":     false,
	}
}

func TestHealth(t *testing.T) {
	w := request(newTestRouter(&config.Config{}), "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPostLifecycle(t *testing.T) {
	r := newTestRouter(&config.Config{})

	w := request(r, "POST", "/posts", "", samplePost("A"))
	require.Equal(t, http.StatusCreated, w.Code)
	var created entity.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	w = request(r, "GET", "/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var posts []entity.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "A", posts[0].Title)

	w = request(r, "PUT", "/posts/"+created.ID, "", samplePost("B"))
	require.Equal(t, http.StatusOK, w.Code)

	w = request(r, "GET", "/posts/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"B"`)

	w = request(r, "DELETE", "/posts/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = request(r, "GET", "/posts/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImagesDisabledWithoutBucket(t *testing.T) {
	r := newTestRouter(&config.Config{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "cover.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", "/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestWritesRequireTokenWhenSecretSet(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret-key"}
	r := newTestRouter(cfg)

	w := request(r, "GET", "/posts", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(r, "POST", "/posts", "", samplePost("A"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwt.NewService(cfg.JWTSecret).GenerateToken("admin", "admin")
	require.NoError(t, err)
	w = request(r, "POST", "/posts", token, samplePost("A"))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestLoginTokenOpensWrites(t *testing.T) {
	hash, err := usecase.HashPassword("s3cret")
	require.NoError(t, err)
	r := newTestRouter(&config.Config{
		JWTSecret:         "test-secret-key",
		AdminUsername:     "admin",
		AdminPasswordHash: hash,
	})

	w := request(r, "POST", "/auth/token", "", gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(r, "POST", "/auth/token", "", gin.H{"username": "admin", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	w = request(r, "POST", "/posts", body.Token, samplePost("A"))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestLoginDisabledWithoutSecret(t *testing.T) {
	r := newTestRouter(&config.Config{AdminUsername: "admin", AdminPasswordHash: "$2a$10$abc"})

	w := request(r, "POST", "/auth/token", "", gin.H{"username": "admin", "password": "s3cret"})
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
