package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk-server/internal/articles"
	"github.com/newsdesk/newsdesk-server/internal/audit"
	"github.com/newsdesk/newsdesk-server/internal/locks"
	"github.com/newsdesk/newsdesk-server/internal/oidc"
	"github.com/newsdesk/newsdesk-server/internal/publisherrequests"
	"github.com/newsdesk/newsdesk-server/internal/publishers"
	"github.com/newsdesk/newsdesk-server/internal/revocation"
	"github.com/newsdesk/newsdesk-server/internal/storage"
	"github.com/newsdesk/newsdesk-server/internal/tokens"
	"github.com/newsdesk/newsdesk-server/internal/users"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "handlers-test-secret"
	adminEmail = "editor@newsdesk.test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type server struct {
	t       *testing.T
	engine  *gin.Engine
	users   *users.MemoryUserRepository
	uploads *storage.MemoryStorage
}

type serverOption func(*Deps)

func withRedis(client *redis.Client) serverOption {
	return func(d *Deps) { d.Revoked = revocation.NewList(client) }
}

func newServer(t *testing.T, opts ...serverOption) *server {
	t.Helper()
	userRepo := users.NewMemoryUserRepository()
	articleRepo := articles.NewMemoryArticleRepository()
	pubRepo := publishers.NewMemoryPublisherRepository()
	locker := locks.NewMemoryLocker()

	userSvc := users.NewService(userRepo, []string{adminEmail})
	articleSvc := articles.NewService(articleRepo, userRepo, locker, time.Second)
	uploads := storage.NewMemoryStorage()
	d := Deps{
		Verifier:   oidc.NewHMACVerifier(testSecret),
		Users:      userSvc,
		Articles:   articleSvc,
		Publishers: publishers.NewService(pubRepo, articleSvc),
		Requests: publisherrequests.NewWorkflow(publisherrequests.NewMemoryRequestRepository(),
			userRepo, pubRepo, audit.NewMemoryStore(), locker, time.Second),
		Uploads: uploads,
	}
	for _, o := range opts {
		o(&d)
	}
	return &server{t: t, engine: NewRouter(d), users: userRepo, uploads: uploads}
}

func (s *server) token(email string) string {
	s.t.Helper()
	tok, err := tokens.MintDevToken(testSecret, email, "", time.Hour)
	require.NoError(s.t, err)
	return tok
}

// do sends body (marshalled unless already []byte) as email; an empty email sends no token.
func (s *server) do(method, path, email string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf *bytes.Reader
	switch b := body.(type) {
	case nil:
		buf = bytes.NewReader(nil)
	case []byte:
		buf = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(email))
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *server) seedUser(email string) {
	s.t.Helper()
	_, err := s.users.Upsert(context.Background(), email, map[string]interface{}{"name": email})
	require.NoError(s.t, err)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, code int, msg string) {
	t.Helper()
	require.Equal(t, code, w.Code, w.Body.String())
	var body map[string]string
	decode(t, w, &body)
	require.Equal(t, msg, body["error"])
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, code int) {
	t.Helper()
	require.Equal(t, code, w.Code, w.Body.String())
}

