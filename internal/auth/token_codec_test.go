package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"pgregory.net/rapid"
)

func newTestTokenCodec() *TokenCodec {
	return NewTokenCodec(TokenCodecConfig{
		SigningKey: "test-signing-key-32-characters!!",
		Issuer:     "https://houseofllm.com",
		Audience:   "EMAIL_SERVER",
	})
}

func TestIssueAndParseAccessToken(t *testing.T) {
	codec := newTestTokenCodec()
	accountID := uuid.New().String()

	token, err := codec.IssueAccess(accountID, []string{"USER"}, 15*time.Minute)
	if err != nil {
		t.Fatalf("failed to issue access token: %v", err)
	}

	claims, err := codec.Parse(token, AccessTokenKind)
	if err != nil {
		t.Fatalf("failed to parse access token: %v", err)
	}

	if claims.AccountID() != accountID {
		t.Errorf("subject mismatch: expected %s, got %s", accountID, claims.AccountID())
	}
	if claims.Kind != AccessTokenKind {
		t.Errorf("kind mismatch: expected %s, got %s", AccessTokenKind, claims.Kind)
	}
	if claims.Issuer != "https://houseofllm.com" {
		t.Errorf("issuer mismatch: got %s", claims.Issuer)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != "EMAIL_SERVER" {
		t.Errorf("audience mismatch: got %v", claims.Audience)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "USER" {
		t.Errorf("roles mismatch: got %v", claims.Roles)
	}
}

func TestParseRejectsKindMismatch(t *testing.T) {
	codec := newTestTokenCodec()
	accountID := uuid.New().String()

	refresh, err := codec.IssueRefresh(accountID, []string{"USER"}, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue refresh token: %v", err)
	}
	reset, err := codec.IssueReset(accountID, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue reset token: %v", err)
	}

	cases := []struct {
		name     string
		token    string
		expected TokenKind
	}{
		{"refresh as access", refresh, AccessTokenKind},
		{"refresh as reset", refresh, ResetTokenKind},
		{"reset as access", reset, AccessTokenKind},
		{"reset as refresh", reset, RefreshTokenKind},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := codec.Parse(tc.token, tc.expected); err == nil {
				t.Error("expected kind mismatch to be rejected")
			}
		})
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	codec := newTestTokenCodec()
	other := NewTokenCodec(TokenCodecConfig{
		SigningKey: "a-completely-different-key-here!",
		Issuer:     "https://houseofllm.com",
		Audience:   "EMAIL_SERVER",
	})

	token, err := other.IssueAccess(uuid.New().String(), nil, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if _, err := codec.Parse(token, AccessTokenKind); err == nil {
		t.Error("token signed with a different key should be rejected")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	codec := newTestTokenCodec()

	token, err := codec.IssueAccess(uuid.New().String(), nil, -time.Minute)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if _, err := codec.Parse(token, AccessTokenKind); err == nil {
		t.Error("expired token should be rejected")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	codec := newTestTokenCodec()

	for _, tokenString := range []string{"", "garbage", "a.b.c"} {
		if _, err := codec.Parse(tokenString, AccessTokenKind); err == nil {
			t.Errorf("malformed input should be rejected: %q", tokenString)
		}
	}
}

func TestParseSubjectRejectsNonUUIDSubject(t *testing.T) {
	codec := newTestTokenCodec()

	token, err := codec.IssueAccess("not-a-uuid", nil, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if _, err := codec.ParseSubject(token, AccessTokenKind); err == nil {
		t.Error("non-UUID subject should be rejected")
	}
}

// *For any* account and TTL, the issued token carries exp = iat + TTL
// and round-trips through Parse with the same subject.
func TestPropertyTokenExpirationCorrectness(t *testing.T) {
	codec := newTestTokenCodec()

	rapid.Check(t, func(t *rapid.T) {
		accountID := uuid.New().String()
		ttlSeconds := rapid.Int64Range(60, 30*24*3600).Draw(t, "ttlSeconds")
		ttl := time.Duration(ttlSeconds) * time.Second

		before := time.Now()
		token, err := codec.IssueRefresh(accountID, []string{"USER"}, ttl)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}
		after := time.Now()

		claims, err := codec.Parse(token, RefreshTokenKind)
		if err != nil {
			t.Fatalf("failed to parse token: %v", err)
		}

		if claims.AccountID() != accountID {
			t.Errorf("subject mismatch: expected %s, got %s", accountID, claims.AccountID())
		}

		exp := claims.ExpiresAt.Time
		if exp.Before(before.Add(ttl).Add(-time.Second)) || exp.After(after.Add(ttl).Add(time.Second)) {
			t.Errorf("expiry incorrect: expected ~%v, got %v", before.Add(ttl), exp)
		}
	})
}

func TestBackToBackIssuanceProducesDistinctTokens(t *testing.T) {
	codec := newTestTokenCodec()
	accountID := uuid.New().String()

	first, err := codec.IssueRefresh(accountID, []string{"USER"}, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	second, err := codec.IssueRefresh(accountID, []string{"USER"}, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if first == second {
		t.Error("tokens issued back to back should be distinct")
	}
}
