package auth

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestHashProducesEncodedArgon2idHash(t *testing.T) {
	h := NewPasswordHasher()

	encoded, err := h.Hash("SecurePass1!")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
		t.Errorf("unexpected hash format: %s", encoded)
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		t.Errorf("expected 6 hash segments, got %d: %s", len(parts), encoded)
	}
}

func TestHashIsSaltedPerCall(t *testing.T) {
	h := NewPasswordHasher()

	first, err := h.Hash("SecurePass1!")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	second, err := h.Hash("SecurePass1!")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if first == second {
		t.Error("two hashes of the same password should differ")
	}

	if !h.Verify("SecurePass1!", first) || !h.Verify("SecurePass1!", second) {
		t.Error("both hashes should verify against the original password")
	}
}

func TestVerifyRejectsWrongPassword(t *testing.T) {
	h := NewPasswordHasher()

	encoded, err := h.Hash("SecurePass1!")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if h.Verify("WrongPass1!", encoded) {
		t.Error("wrong password should not verify")
	}
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	h := NewPasswordHasher()

	malformed := []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=65536,t=1,p=4$short",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$!!!",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=99$m=65536,t=1,p=4$c2FsdA$aGFzaA",
	}

	for _, hash := range malformed {
		if h.Verify("SecurePass1!", hash) {
			t.Errorf("malformed hash should not verify: %q", hash)
		}
	}
}

// *For any* password, hashing then verifying with the same password
// succeeds, and verifying with any different password fails.
func TestPropertyHashVerifyRoundTrip(t *testing.T) {
	h := NewPasswordHasher()

	rapid.Check(t, func(t *rapid.T) {
		password := rapid.StringMatching(`[ -~]{8,64}`).Draw(t, "password")
		other := rapid.StringMatching(`[ -~]{8,64}`).Draw(t, "other")

		encoded, err := h.Hash(password)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}

		if !h.Verify(password, encoded) {
			t.Errorf("password should verify against its own hash")
		}

		if other != password && h.Verify(other, encoded) {
			t.Errorf("different password should not verify")
		}
	})
}
