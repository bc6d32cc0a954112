package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bylinehq/byline/pkg/access"
	"github.com/bylinehq/byline/pkg/auth"
	"github.com/bylinehq/byline/pkg/comments"
	"github.com/bylinehq/byline/pkg/posts"
)

// Test users, keyed by the bearer token that authenticates them
var testUsers = map[string]*auth.User{
	"byline_reader": {ID: "reader-1", Username: "reader", Role: access.RoleReader},
	"byline_writer": {ID: "writer-1", Username: "writer", Role: access.RoleWriter},
	"byline_other":  {ID: "writer-2", Username: "other", Role: access.RoleWriter},
	"byline_admin":  {ID: "admin-1", Username: "admin", Role: access.RoleAdmin},
}

type mapAuthenticator struct{}

func (mapAuthenticator) AuthenticateToken(ctx context.Context, token string) (*auth.User, error) {
	if user, ok := testUsers[token]; ok {
		return user, nil
	}
	return nil, auth.ErrInvalidToken
}

// mockPostStore lets each test override just the methods it needs
type mockPostStore struct {
	createFunc func(ctx context.Context, post *posts.Post) error
	getFunc    func(ctx context.Context, id string) (*posts.Post, error)
	listFunc   func(ctx context.Context, pred access.Predicate, limit, offset int) ([]*posts.Post, int64, error)
	updateFunc func(ctx context.Context, post *posts.Post) error
	deleteFunc func(ctx context.Context, id string) error
}

func (m *mockPostStore) Create(ctx context.Context, post *posts.Post) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, post)
	}
	return nil
}

func (m *mockPostStore) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, posts.ErrPostNotFound
}

func (m *mockPostStore) List(ctx context.Context, pred access.Predicate, limit, offset int) ([]*posts.Post, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, pred, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockPostStore) Update(ctx context.Context, post *posts.Post) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, post)
	}
	return nil
}

func (m *mockPostStore) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockPostStore) CountByStatus(ctx context.Context) (int64, int64, error) {
	return 0, 0, nil
}

// mockCommentStore lets each test override just the methods it needs
type mockCommentStore struct {
	createFunc func(ctx context.Context, comment *comments.Comment) error
	getFunc    func(ctx context.Context, id string) (*comments.Comment, error)
	listFunc   func(ctx context.Context, postID string, limit, offset int) ([]*comments.Comment, int64, error)
	deleteFunc func(ctx context.Context, id string) error
}

func (m *mockCommentStore) Create(ctx context.Context, comment *comments.Comment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, comment)
	}
	return nil
}

func (m *mockCommentStore) GetByID(ctx context.Context, id string) (*comments.Comment, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, comments.ErrCommentNotFound
}

func (m *mockCommentStore) ListByPost(ctx context.Context, postID string, limit, offset int) ([]*comments.Comment, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, postID, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockCommentStore) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockCommentStore) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

// mockAuthService lets each test override just the methods it needs
type mockAuthService struct {
	createUserFunc  func(ctx context.Context, username, email, password string, role access.Role) (*auth.User, error)
	loginFunc       func(ctx context.Context, username, password string) (*auth.User, error)
	issueTokenFunc  func(ctx context.Context, userID, name string, expiresAt *time.Time) (*auth.APIToken, string, error)
	listTokensFunc  func(ctx context.Context, userID string) ([]*auth.APIToken, error)
	revokeTokenFunc func(ctx context.Context, userID, tokenID string) error
}

func (m *mockAuthService) CreateUser(ctx context.Context, username, email, password string, role access.Role) (*auth.User, error) {
	if m.createUserFunc != nil {
		return m.createUserFunc(ctx, username, email, password, role)
	}
	return &auth.User{ID: "new-user", Username: username, Email: email, Role: role}, nil
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*auth.User, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, username, password)
	}
	return nil, auth.ErrInvalidCredentials
}

func (m *mockAuthService) IssueToken(ctx context.Context, userID, name string, expiresAt *time.Time) (*auth.APIToken, string, error) {
	if m.issueTokenFunc != nil {
		return m.issueTokenFunc(ctx, userID, name, expiresAt)
	}
	return &auth.APIToken{ID: "t1", UserID: userID, Name: name, ExpiresAt: expiresAt}, "byline_issued", nil
}

func (m *mockAuthService) ListUserTokens(ctx context.Context, userID string) ([]*auth.APIToken, error) {
	if m.listTokensFunc != nil {
		return m.listTokensFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockAuthService) RevokeToken(ctx context.Context, userID, tokenID string) error {
	if m.revokeTokenFunc != nil {
		return m.revokeTokenFunc(ctx, userID, tokenID)
	}
	return nil
}

type testServerStores struct {
	posts    *mockPostStore
	comments *mockCommentStore
	auth     *mockAuthService
}

func newTestServer(t *testing.T, stores testServerStores) *Server {
	t.Helper()

	if stores.posts == nil {
		stores.posts = &mockPostStore{}
	}
	if stores.comments == nil {
		stores.comments = &mockCommentStore{}
	}
	if stores.auth == nil {
		stores.auth = &mockAuthService{}
	}

	return NewServer(Options{
		Authenticator: mapAuthenticator{},
		AuthService:   stores.auth,
		Posts:         stores.posts,
		Comments:      stores.comments,
	})
}

// doRequest performs a request against the server's router. An empty
// token leaves the request anonymous.
func doRequest(t *testing.T, s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dest))
}

func publishedPost(id, author string) *posts.Post {
	return &posts.Post{ID: id, Title: "T", Content: "C", Status: access.StatusPublished, AuthorID: author}
}

func draftPost(id, author string) *posts.Post {
	return &posts.Post{ID: id, Title: "T", Content: "C", Status: access.StatusDraft, AuthorID: author}
}
