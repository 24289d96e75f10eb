package handlers_test

import (
	"DataSentinel/internal/config"
	"DataSentinel/internal/handlers"
	"DataSentinel/internal/middleware"
	"DataSentinel/internal/notify"
	"DataSentinel/internal/repo"
	"DataSentinel/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

// testServer: роутер поверх настоящих сервисов и SQLite в памяти.
type testServer struct {
	router     http.Handler
	svc        *service.Services
	hub        *notify.Hub
	dispatcher *notify.Dispatcher
	cfg        *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := repo.OpenSQLite("file:"+uuid.NewString()+"?mode=memory&cache=shared", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	logger := zap.NewNop().Sugar()
	cfg := &config.Config{AuthSecret: testSecret, BlobMaxSizeMB: 1}
	st := repo.NewStores(db)
	hub := notify.NewHub()
	dispatcher := notify.NewDispatcher(st.Notifications, hub, nil, 64, logger)
	t.Cleanup(dispatcher.Close)

	svc := service.New(st, service.Options{
		Notifier:       dispatcher,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Logger:         logger,
	})
	h := handlers.NewHandler(svc, hub, logger, cfg)
	return &testServer{router: h.Router, svc: svc, hub: hub, dispatcher: dispatcher, cfg: cfg}
}

// register регистрирует пользователя через API и возвращает его id и токен.
func (s *testServer) register(t *testing.T, login string) (string, string) {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/user/register", "", map[string]string{"login": login, "password": "secret"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.User.ID, resp.Token
}

// admin создаёт администратора и выдаёт ему токен.
func (s *testServer) admin(t *testing.T) (string, string) {
	t.Helper()
	u, err := s.svc.Users.EnsureAdmin(context.Background(), "root", "root-secret")
	require.NoError(t, err)
	token, err := middleware.BuildToken(u.ID, u.Role, testSecret)
	require.NoError(t, err)
	return u.ID, token
}

// do выполняет JSON-запрос с токеном в Authorization: Bearer.
func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

type uploadedFile struct {
	ID           string `json:"file_id"`
	Name         string `json:"name"`
	HoneytokenID string `json:"honeytoken_id"`
}

// upload загружает файл через multipart-форму.
func (s *testServer) upload(t *testing.T, token, name string, content []byte) uploadedFile {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, _ = fw.Write(content)
	require.NoError(t, mw.WriteField("description", "test file"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var f uploadedFile
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &f))
	return f
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
