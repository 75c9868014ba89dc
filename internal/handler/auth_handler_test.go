package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/classdesk/diary-api/internal/models"
	"github.com/classdesk/diary-api/internal/service"
	"github.com/classdesk/diary-api/internal/store"
	"github.com/classdesk/diary-api/pkg/config"
)

type stubDirectory struct {
	accounts map[string]*models.Account
}

func (s *stubDirectory) FindByLogin(_ context.Context, login string) (*models.Account, error) {
	account, ok := s.accounts[login]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return account, nil
}

func (s *stubDirectory) Create(_ context.Context, account *models.Account) error {
	s.accounts[account.Login] = account
	return nil
}

func newAuthRouter(t *testing.T) (*gin.Engine, store.Stores) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	layout := store.Layout{DataDir: t.TempDir()}
	require.NoError(t, layout.EnsureBaseDirs())
	stores := store.NewStores(layout, config.StorageConfig{BusyTimeout: time.Second, MaxOpenConns: 1})

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	dir := &stubDirectory{accounts: map[string]*models.Account{
		"ivanov": {Login: "ivanov", PasswordHash: string(hash), Role: models.RoleStudent, RoutingKey: "10A"},
	}}

	authSvc := service.NewAuthService(dir, nil, nil, service.AuthConfig{Secret: "s", Expiration: time.Hour, Issuer: "diary-api"})
	bundleSvc := service.NewBundleService(stores, dir, nil, nil)

	h := NewAuthHandler(authSvc, bundleSvc)
	r := gin.New()
	r.POST("/login", h.Login)
	r.POST("/process", h.Process)
	return r, stores
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginEndpoint(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := postJSON(t, r, "/login", gin.H{"login": "ivanov", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.AuthResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "ivanov", envelope.Data.Login)
	assert.Equal(t, "10A", envelope.Data.RoutingKey)
	assert.NotEmpty(t, envelope.Data.Token)

	w = postJSON(t, r, "/login", gin.H{"login": "ivanov", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProcessEndpointStreamsBundle(t *testing.T) {
	r, stores := newAuthRouter(t)
	ctx := context.Background()

	require.NoError(t, os.MkdirAll(stores.Layout.ClassDir("10A"), 0o755))
	require.NoError(t, stores.Timetable("10A").Create(ctx))
	require.NoError(t, stores.Homework("10A").Create(ctx, time.Now().Year()))

	w := postJSON(t, r, "/process", gin.H{"message": []string{"ivanov", "secret"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ivanov_files.zip")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestProcessEndpointRejectsBadRequests(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := postJSON(t, r, "/process", gin.H{"message": []string{"only-login"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, r, "/process", gin.H{"message": []string{"ivanov", "wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
