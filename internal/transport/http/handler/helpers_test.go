package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/go-social-nosql/internal/application/post"
	"github.com/go-social-nosql/internal/config"
	"github.com/go-social-nosql/internal/domain"
	jwtinfra "github.com/go-social-nosql/internal/infrastructure/jwt"
	"github.com/go-social-nosql/internal/transport/http/middleware"
)

// --- service mocks ---

type mockUserSvc struct{ mock.Mock }

func (m *mockUserSvc) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserSvc) Get(ctx context.Context, userID string) (*domain.PublicUser, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.PublicUser); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserSvc) GetByUsername(ctx context.Context, username string) (*domain.PublicUser, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.PublicUser); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserSvc) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.PublicUser, error) {
	args := m.Called(ctx, userID, req)
	if u, _ := args.Get(0).(*domain.PublicUser); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserSvc) Search(ctx context.Context, query, callerID string) ([]domain.UserSummary, error) {
	args := m.Called(ctx, query, callerID)
	out, _ := args.Get(0).([]domain.UserSummary)
	return out, args.Error(1)
}
func (m *mockUserSvc) Summaries(ctx context.Context, userIDs []string) (map[string]domain.UserSummary, error) {
	args := m.Called(ctx, userIDs)
	out, _ := args.Get(0).(map[string]domain.UserSummary)
	return out, args.Error(1)
}
func (m *mockUserSvc) UploadAvatar(ctx context.Context, userID string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, userID, r, contentType)
	return args.String(0), args.Error(1)
}

type mockEngagementSvc struct{ mock.Mock }

func (m *mockEngagementSvc) ToggleFollow(ctx context.Context, actorID, targetID string) (*domain.FollowResult, error) {
	args := m.Called(ctx, actorID, targetID)
	if r, _ := args.Get(0).(*domain.FollowResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockEngagementSvc) ToggleLike(ctx context.Context, actorID, postID string) (*domain.LikeResult, error) {
	args := m.Called(ctx, actorID, postID)
	if r, _ := args.Get(0).(*domain.LikeResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPostSvc struct{ mock.Mock }

func (m *mockPostSvc) Create(ctx context.Context, authorID string, req domain.CreatePostRequest, img *post.Image) (*domain.Post, error) {
	args := m.Called(ctx, authorID, req, img)
	if p, _ := args.Get(0).(*domain.Post); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPostSvc) Delete(ctx context.Context, actorID, postID string) error {
	return m.Called(ctx, actorID, postID).Error(0)
}
func (m *mockPostSvc) ListByAuthor(ctx context.Context, authorID string) ([]domain.PostView, error) {
	args := m.Called(ctx, authorID)
	out, _ := args.Get(0).([]domain.PostView)
	return out, args.Error(1)
}
func (m *mockPostSvc) Feed(ctx context.Context, userID string) ([]domain.PostView, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]domain.PostView)
	return out, args.Error(1)
}
func (m *mockPostSvc) AddComment(ctx context.Context, actorID, postID string, req domain.CommentRequest) (*domain.Comment, error) {
	args := m.Called(ctx, actorID, postID, req)
	if c, _ := args.Get(0).(*domain.Comment); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotificationSvc struct{ mock.Mock }

func (m *mockNotificationSvc) Create(ctx context.Context, recipientID, senderID string, typ domain.NotificationType, message string) (string, error) {
	args := m.Called(ctx, recipientID, senderID, typ, message)
	return args.String(0), args.Error(1)
}
func (m *mockNotificationSvc) ListForUser(ctx context.Context, userID string) ([]domain.NotificationView, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]domain.NotificationView)
	return out, args.Error(1)
}

// --- helpers ---

// newTestJWTProvider generates a fresh RSA key pair and returns a *jwtinfra.Provider.
func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         24 * time.Hour,
	})
	require.NoError(t, err)
	return p
}

// bearerReq builds a request with a signed Bearer token for the given user.
func bearerReq(t *testing.T, p *jwtinfra.Provider, method, target, userID string, body []byte) *http.Request {
	t.Helper()
	token, err := p.Sign(userID, userID+"-name")
	require.NoError(t, err)
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// withChiParam injects a chi URL param into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// serveAuthed wraps the handler with middleware.Auth before serving.
func serveAuthed(p *jwtinfra.Provider, h http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	middleware.Auth(p)(h).ServeHTTP(w, r)
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}
