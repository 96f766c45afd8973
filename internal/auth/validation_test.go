package auth

import (
	"testing"

	"pgregory.net/rapid"
)

func TestValidateRegisterRequest(t *testing.T) {
	cases := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{
			name: "valid request",
			req: RegisterRequest{
				Email:     "ada@example.com",
				Password:  "SecurePass1!",
				FirstName: "Ada",
				LastName:  "Lovelace",
			},
			wantErr: false,
		},
		{
			name: "missing email",
			req: RegisterRequest{
				Password:  "SecurePass1!",
				FirstName: "Ada",
				LastName:  "Lovelace",
			},
			wantErr: true,
		},
		{
			name: "malformed email",
			req: RegisterRequest{
				Email:     "not-an-email",
				Password:  "SecurePass1!",
				FirstName: "Ada",
				LastName:  "Lovelace",
			},
			wantErr: true,
		},
		{
			name: "missing names",
			req: RegisterRequest{
				Email:    "ada@example.com",
				Password: "SecurePass1!",
			},
			wantErr: true,
		},
		{
			name: "weak password",
			req: RegisterRequest{
				Email:     "ada@example.com",
				Password:  "password",
				FirstName: "Ada",
				LastName:  "Lovelace",
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			violations := ValidateRequest(tc.req)
			if tc.wantErr && len(violations) == 0 {
				t.Error("expected violations, got none")
			}
			if !tc.wantErr && len(violations) > 0 {
				t.Errorf("expected no violations, got %v", violations)
			}
		})
	}
}

func TestPasswordComplexityRules(t *testing.T) {
	valid := RegisterRequest{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}

	cases := []struct {
		password string
		ok       bool
	}{
		{"SecurePass1!", true},
		{"Aa1!aaaa", true},
		{"Aa1!aaa", false},        // too short
		{"alllowercase1!", false}, // no upper
		{"ALLUPPERCASE1!", false}, // no lower
		{"NoDigitsHere!", false},  // no digit
		{"NoSpecials11", false},   // no special
		{"", false},
	}

	for _, tc := range cases {
		req := valid
		req.Password = tc.password
		violations := ValidateRequest(req)
		if tc.ok && len(violations) > 0 {
			t.Errorf("password %q should be accepted: %v", tc.password, violations)
		}
		if !tc.ok && len(violations) == 0 {
			t.Errorf("password %q should be rejected", tc.password)
		}
	}
}

func TestViolationsUseJSONFieldNames(t *testing.T) {
	violations := ValidateRequest(RegisterRequest{})
	if len(violations) == 0 {
		t.Fatal("expected violations for an empty request")
	}

	fields := make(map[string]bool)
	for _, v := range violations {
		fields[v.Field] = true
	}

	for _, want := range []string{"email", "password", "firstName", "lastName"} {
		if !fields[want] {
			t.Errorf("expected violation for field %q, got %v", want, violations)
		}
	}
}

func TestValidateRefreshRequest(t *testing.T) {
	if violations := ValidateRequest(RefreshRequest{}); len(violations) == 0 {
		t.Error("empty refresh token should be rejected")
	}
	if violations := ValidateRequest(RefreshRequest{RefreshToken: "some-token"}); len(violations) > 0 {
		t.Errorf("expected no violations, got %v", violations)
	}
}

// *For any* password containing all four character classes at length
// >= 8, validation accepts it.
func TestPropertyComplexPasswordsAccepted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		upper := rapid.StringMatching(`[A-Z]{1,8}`).Draw(t, "upper")
		lower := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "lower")
		digit := rapid.StringMatching(`[0-9]{1,8}`).Draw(t, "digit")
		special := rapid.StringMatching(`[!@#$%^&*]{1,8}`).Draw(t, "special")

		password := upper + lower + digit + special
		for len(password) < MinPasswordLength {
			password += "Aa1!"
		}

		req := RegisterRequest{
			Email:     "ada@example.com",
			Password:  password,
			FirstName: "Ada",
			LastName:  "Lovelace",
		}
		if violations := ValidateRequest(req); len(violations) > 0 {
			t.Errorf("password %q should be accepted: %v", password, violations)
		}
	})
}
