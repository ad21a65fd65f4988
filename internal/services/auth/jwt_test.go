package auth_test

import (
	"errors"
	"testing"
	"time"

	authsvc "github.com/rmdelbarrio/adet/internal/services/auth"
)

func TestTokenManagerRequiresSecrets(t *testing.T) {
	if _, err := authsvc.NewTokenManager("", "refresh", time.Minute, time.Hour); err == nil {
		t.Fatalf("empty access secret should be rejected")
	}
	if _, err := authsvc.NewTokenManager("access", "  ", time.Minute, time.Hour); err == nil {
		t.Fatalf("blank refresh secret should be rejected")
	}
}

func TestTokenClaimsRoundTrip(t *testing.T) {
	m := newTokenManagerForTest(t)

	signed, expiresAt, err := m.IssueAccessToken(42, "alice", "admin")
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("access token already expired at issue time")
	}

	claims, err := m.ParseAccessToken(signed)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.ExpiresAt.Equal(expiresAt.Truncate(time.Second)) && !claims.ExpiresAt.Equal(expiresAt) {
		t.Fatalf("expiry mismatch: issued %v, parsed %v", expiresAt, claims.ExpiresAt)
	}
}

func TestAccessAndRefreshSecretsAreIndependent(t *testing.T) {
	m := newTokenManagerForTest(t)

	refresh, _, err := m.IssueRefreshToken(1, "alice", "user")
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}

	if _, err := m.ParseAccessToken(refresh); !errors.Is(err, authsvc.ErrInvalidToken) {
		t.Fatalf("refresh token must not validate as access token, got err=%v", err)
	}

	access, _, err := m.IssueAccessToken(1, "alice", "user")
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}
	if _, err := m.ParseRefreshToken(access); !errors.Is(err, authsvc.ErrInvalidToken) {
		t.Fatalf("access token must not validate as refresh token, got err=%v", err)
	}
}

func TestParseRejectsForeignSecret(t *testing.T) {
	m := newTokenManagerForTest(t)
	other, err := authsvc.NewTokenManager("other-access", "other-refresh", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}

	signed, _, err := other.IssueAccessToken(1, "alice", "user")
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	if _, err := m.ParseAccessToken(signed); !errors.Is(err, authsvc.ErrInvalidToken) {
		t.Fatalf("token signed with a foreign secret should be invalid, got err=%v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	m := newTokenManagerForTest(t)

	for _, raw := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		if _, err := m.ParseAccessToken(raw); !errors.Is(err, authsvc.ErrInvalidToken) {
			t.Fatalf("raw %q should be invalid, got err=%v", raw, err)
		}
	}
}

func TestSameSecondTokensDiffer(t *testing.T) {
	m := newTokenManagerForTest(t)

	first, _, err := m.IssueRefreshToken(1, "alice", "user")
	if err != nil {
		t.Fatalf("issue first token: %v", err)
	}
	second, _, err := m.IssueRefreshToken(1, "alice", "user")
	if err != nil {
		t.Fatalf("issue second token: %v", err)
	}

	if first == second {
		t.Fatalf("tokens minted back to back must be distinct")
	}
}

func newTokenManagerForTest(t *testing.T) *authsvc.TokenManager {
	t.Helper()

	m, err := authsvc.NewTokenManager("test-access-secret", "test-refresh-secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}
	return m
}
