package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rmdelbarrio/adet/internal/domain/enums"
	"github.com/rmdelbarrio/adet/internal/domain/model"
	pgrepo "github.com/rmdelbarrio/adet/internal/repo/postgres"
	redrepo "github.com/rmdelbarrio/adet/internal/repo/redis"
	authsvc "github.com/rmdelbarrio/adet/internal/services/auth"
	ratesvc "github.com/rmdelbarrio/adet/internal/services/rate"
	userssvc "github.com/rmdelbarrio/adet/internal/services/users"
)

func TestAuthHandlerFullFlow(t *testing.T) {
	h := newAuthHandlerForTest(t)

	resp := doJSON(t, h.Register, map[string]string{"username": "alice", "password": "secret-pass"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("register status: got %d want %d (%s)", resp.Code, http.StatusCreated, resp.Body.String())
	}

	resp = doJSON(t, h.Login, map[string]string{"username": "alice", "password": "secret-pass"})
	if resp.Code != http.StatusOK {
		t.Fatalf("login status: got %d want %d (%s)", resp.Code, http.StatusOK, resp.Body.String())
	}
	tokens := decodeTokens(t, resp)
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("login returned empty tokens")
	}
	if tokens.ExpiresInSec <= 0 {
		t.Fatalf("expires_in_sec must be positive, got %d", tokens.ExpiresInSec)
	}
	if tokens.Me.Username != "alice" || tokens.Me.Role != "user" {
		t.Fatalf("unexpected me payload: %+v", tokens.Me)
	}

	resp = doJSON(t, h.Refresh, map[string]string{"refresh_token": tokens.RefreshToken})
	if resp.Code != http.StatusOK {
		t.Fatalf("refresh status: got %d want %d (%s)", resp.Code, http.StatusOK, resp.Body.String())
	}
	rotated := decodeTokens(t, resp)
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}

	resp = doJSON(t, h.Refresh, map[string]string{"refresh_token": tokens.RefreshToken})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("replayed refresh status: got %d want %d", resp.Code, http.StatusUnauthorized)
	}

	resp = doJSON(t, h.Logout, map[string]string{"refresh_token": rotated.RefreshToken})
	if resp.Code != http.StatusOK {
		t.Fatalf("logout status: got %d want %d (%s)", resp.Code, http.StatusOK, resp.Body.String())
	}

	resp = doJSON(t, h.Refresh, map[string]string{"refresh_token": rotated.RefreshToken})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout status: got %d want %d", resp.Code, http.StatusUnauthorized)
	}
}

func TestAuthHandlerLoginFailuresShareOneBody(t *testing.T) {
	h := newAuthHandlerForTest(t)

	resp := doJSON(t, h.Register, map[string]string{"username": "alice", "password": "secret-pass"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("register status: got %d (%s)", resp.Code, resp.Body.String())
	}

	wrongPass := doJSON(t, h.Login, map[string]string{"username": "alice", "password": "wrong"})
	unknownUser := doJSON(t, h.Login, map[string]string{"username": "nobody", "password": "secret-pass"})

	if wrongPass.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected statuses: %d / %d", wrongPass.Code, unknownUser.Code)
	}
	if wrongPass.Body.String() != unknownUser.Body.String() {
		t.Fatalf("failure bodies are distinguishable: %q vs %q", wrongPass.Body.String(), unknownUser.Body.String())
	}
}

func TestAuthHandlerRegisterConflict(t *testing.T) {
	h := newAuthHandlerForTest(t)

	if resp := doJSON(t, h.Register, map[string]string{"username": "alice", "password": "secret-pass"}); resp.Code != http.StatusCreated {
		t.Fatalf("first register status: got %d", resp.Code)
	}

	resp := doJSON(t, h.Register, map[string]string{"username": "alice", "password": "other-pass"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("duplicate register status: got %d want %d", resp.Code, http.StatusConflict)
	}
}

func TestAuthHandlerLoginRateLimited(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer func() { _ = redisClient.Close() }()

	h := newAuthHandlerForTest(t)
	h.AttachLoginLimiter(ratesvc.NewLoginLimiter(redrepo.NewRateRepo(redisClient), 100, 2))

	for i := 0; i < 2; i++ {
		resp := doJSON(t, h.Login, map[string]string{"username": "alice", "password": "wrong"})
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("attempt #%d status: got %d want %d", i+1, resp.Code, http.StatusUnauthorized)
		}
	}

	resp := doJSON(t, h.Login, map[string]string{"username": "alice", "password": "wrong"})
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("third attempt status: got %d want %d", resp.Code, http.StatusTooManyRequests)
	}

	var payload struct {
		Code          string `json:"code"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode rate limit body: %v", err)
	}
	if payload.Code != "TOO_MANY_ATTEMPTS" || payload.RetryAfterSec <= 0 {
		t.Fatalf("unexpected rate limit payload: %+v", payload)
	}
}

func newAuthHandlerForTest(t *testing.T) *AuthHandler {
	t.Helper()

	tokens, err := authsvc.NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}

	store := newMemoryUserStore()
	authService := authsvc.NewService(tokens, store)
	userService := userssvc.NewService(store)

	return NewAuthHandler(authService, userService, zap.NewNop())
}

func doJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decodeTokens(t *testing.T, resp *httptest.ResponseRecorder) (out struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresInSec int64  `json:"expires_in_sec"`
	Me           struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"me"`
}) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode tokens body: %v", err)
	}
	return out
}

// memoryUserStore backs both the user service and the session lifecycle
// in handler tests.
type memoryUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*model.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{nextID: 1, users: make(map[int64]*model.User)}
}

func (m *memoryUserStore) Create(_ context.Context, username, passwordHash string, role enums.Role) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return model.User{}, pgrepo.ErrUsernameTaken
		}
	}
	now := time.Now().UTC()
	u := &model.User{
		ID:           m.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.nextID++
	m.users[u.ID] = u
	return *u, nil
}

func (m *memoryUserStore) GetByID(_ context.Context, id int64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return *u, nil
}

func (m *memoryUserStore) GetByUsername(_ context.Context, username string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return *u, nil
		}
	}
	return model.User{}, pgrepo.ErrUserNotFound
}

func (m *memoryUserStore) GetByRefreshToken(_ context.Context, token string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.CurrentRefreshToken != nil && *u.CurrentRefreshToken == token {
			return *u, nil
		}
	}
	return model.User{}, pgrepo.ErrUserNotFound
}

func (m *memoryUserStore) SetRefreshToken(_ context.Context, userID int64, token *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return pgrepo.ErrUserNotFound
	}
	if token == nil {
		u.CurrentRefreshToken = nil
		return nil
	}
	value := *token
	u.CurrentRefreshToken = &value
	return nil
}

func (m *memoryUserStore) RotateRefreshToken(_ context.Context, userID int64, oldToken, newToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return pgrepo.ErrUserNotFound
	}
	if u.CurrentRefreshToken == nil || *u.CurrentRefreshToken != oldToken {
		return pgrepo.ErrRefreshTokenStale
	}
	value := newToken
	u.CurrentRefreshToken = &value
	return nil
}

func (m *memoryUserStore) ClearRefreshToken(_ context.Context, userID int64, oldToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return pgrepo.ErrUserNotFound
	}
	if u.CurrentRefreshToken == nil || *u.CurrentRefreshToken != oldToken {
		return pgrepo.ErrRefreshTokenStale
	}
	u.CurrentRefreshToken = nil
	return nil
}

func (m *memoryUserStore) List(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memoryUserStore) UpdateRole(_ context.Context, userID int64, role enums.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return pgrepo.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (m *memoryUserStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return pgrepo.ErrUserNotFound
	}
	delete(m.users, userID)
	return nil
}
