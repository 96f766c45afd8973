package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	appctx "github.com/houseofllm/user-management/internal/context"
)

// newTestRouter mounts the auth routes with a stub middleware that
// injects the given account id, mirroring a verified access token.
func newTestRouter(env *testEnv, accountID string) http.Handler {
	handler := NewHandler(env.service, nil)

	stubAuth := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if accountID == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), appctx.AccountIDKey, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		RegisterRoutes(r, handler, stubAuth)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rec.Body.String(), err)
	}
	return rec, resp
}

func TestHandlerRegisterCreated(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env, "")

	rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		`{"email":"ada@example.com","password":"SecurePass1!","firstName":"Ada","lastName":"Lovelace"}`)

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !resp.Success {
		t.Error("expected success envelope")
	}
}

func TestHandlerRegisterDuplicateConflict(t *testing.T) {
	env := newTestEnv()
	env.register(t, "ada@example.com", "SecurePass1!")
	router := newTestRouter(env, "")

	rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		`{"email":"ada@example.com","password":"SecurePass1!","firstName":"Ada","lastName":"Lovelace"}`)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "ACCOUNT_ALREADY_EXISTS" {
		t.Errorf("expected ACCOUNT_ALREADY_EXISTS, got %+v", resp.Error)
	}
}

func TestHandlerRegisterValidationFailure(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env, "")

	rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		`{"email":"not-an-email","password":"weak","firstName":"","lastName":""}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != CodeValidationError {
		t.Errorf("expected %s, got %+v", CodeValidationError, resp.Error)
	}
	if len(resp.Error.Details) == 0 {
		t.Error("expected per-field violation details")
	}
}

func TestHandlerRegisterMalformedBody(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env, "")

	rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandlerLoginStatuses(t *testing.T) {
	env := newTestEnv()
	env.register(t, "ada@example.com", "SecurePass1!")
	router := newTestRouter(env, "")

	cases := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "success",
			body:     `{"email":"ada@example.com","password":"SecurePass1!"}`,
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password",
			body:     `{"email":"ada@example.com","password":"WrongPass1!"}`,
			wantCode: http.StatusConflict,
			wantErr:  "INVALID_CREDENTIALS",
		},
		{
			name:     "unknown account",
			body:     `{"email":"nobody@example.com","password":"SecurePass1!"}`,
			wantCode: http.StatusConflict,
			wantErr:  "ACCOUNT_NOT_FOUND",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", tc.body)
			if rec.Code != tc.wantCode {
				t.Errorf("expected %d, got %d: %s", tc.wantCode, rec.Code, rec.Body.String())
			}
			if tc.wantErr != "" {
				if resp.Error == nil || resp.Error.Code != tc.wantErr {
					t.Errorf("expected error code %s, got %+v", tc.wantErr, resp.Error)
				}
			}
		})
	}
}

func TestHandlerRefreshUnauthorized(t *testing.T) {
	env := newTestEnv()
	env.register(t, "ada@example.com", "SecurePass1!")
	router := newTestRouter(env, "")

	rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh",
		`{"refreshToken":"garbage"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "INVALID_TOKEN" {
		t.Errorf("expected INVALID_TOKEN, got %+v", resp.Error)
	}
}

func TestHandlerRefreshRotates(t *testing.T) {
	env := newTestEnv()
	env.register(t, "ada@example.com", "SecurePass1!")
	router := newTestRouter(env, "")

	_, loginResp := doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		`{"email":"ada@example.com","password":"SecurePass1!"}`)

	data, _ := json.Marshal(loginResp.Data)
	var pair TokenPairResponse
	if err := json.Unmarshal(data, &pair); err != nil {
		t.Fatalf("failed to decode token pair: %v", err)
	}

	body, _ := json.Marshal(RefreshRequest{RefreshToken: pair.RefreshToken})
	rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", string(body))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !resp.Success {
		t.Error("expected success envelope")
	}
}

func TestHandlerMe(t *testing.T) {
	env := newTestEnv()
	account := env.register(t, "ada@example.com", "SecurePass1!")
	router := newTestRouter(env, account.ID.String())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	data, _ := json.Marshal(resp.Data)
	var view AccountView
	if err := json.Unmarshal(data, &view); err != nil {
		t.Fatalf("failed to decode account view: %v", err)
	}

	if view.Email != "ada@example.com" {
		t.Errorf("unexpected email: %s", view.Email)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response must not leak password material")
	}
}

func TestHandlerMeUnknownAccountConflict(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env, "0f0e0d0c-0b0a-0908-0706-050403020100")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestHandlerForgotPassword(t *testing.T) {
	env := newTestEnv()
	env.register(t, "ada@example.com", "SecurePass1!")
	router := newTestRouter(env, "")

	rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/forgot-password",
		`{"email":"ada@example.com"}`)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data, _ := json.Marshal(resp.Data)
	var msg MessageResponse
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	if msg.Message != "Password reset token has been sent to ada@example.com" {
		t.Errorf("unexpected message: %q", msg.Message)
	}
}

func TestHandlerForgotPasswordUnknownConflict(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env, "")

	rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/forgot-password",
		`{"email":"nobody@example.com"}`)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "ACCOUNT_NOT_FOUND" {
		t.Errorf("expected ACCOUNT_NOT_FOUND, got %+v", resp.Error)
	}
}

func TestHandlerResetPassword(t *testing.T) {
	env := newTestEnv()
	env.register(t, "ada@example.com", "SecurePass1!")
	router := newTestRouter(env, "")

	doJSON(t, router, http.MethodPost, "/api/v1/auth/forgot-password",
		`{"email":"ada@example.com"}`)

	resetToken := env.mailer.tokens[0]
	rec, resp := doJSON(t, router, http.MethodPost,
		"/api/v1/auth/reset-password?token="+resetToken,
		`{"newPassword":"NewSecure2@"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data, _ := json.Marshal(resp.Data)
	var msg MessageResponse
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	if msg.Message != "Password reset successful" {
		t.Errorf("unexpected message: %q", msg.Message)
	}
}

func TestHandlerResetPasswordMissingToken(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env, "")

	rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/reset-password",
		`{"newPassword":"NewSecure2@"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "INVALID_TOKEN" {
		t.Errorf("expected INVALID_TOKEN, got %+v", resp.Error)
	}
}

func TestHandlerResetPasswordInvalidToken(t *testing.T) {
	env := newTestEnv()
	env.register(t, "ada@example.com", "SecurePass1!")
	router := newTestRouter(env, "")

	rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/auth/reset-password?token=garbage",
		`{"newPassword":"NewSecure2@"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
