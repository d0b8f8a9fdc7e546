package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// newTokenServer はGoogleのトークンエンドポイントを模したサーバーを返す。
func newTokenServer(t *testing.T, body map[string]interface{}, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		if got := r.PostForm.Get("code"); got != "auth-code" {
			t.Errorf("code = %q, want %q", got, "auth-code")
		}
		if got := r.PostForm.Get("redirect_uri"); got != "postmessage" {
			t.Errorf("redirect_uri = %q, want %q", got, "postmessage")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(srv *httptest.Server, validator IDTokenValidator) *GoogleOAuthProvider {
	return NewGoogleOAuthProvider(GoogleOAuthConfig{
		ClientID:     "test-client-id",
		ClientSecret: "test-secret",
		RedirectURL:  "postmessage",
		Endpoint:     oauth2.Endpoint{TokenURL: srv.URL, AuthStyle: oauth2.AuthStyleInParams},
		HTTPClient:   srv.Client(),
		Validator:    validator,
	})
}

func TestGoogleOAuthProvider_ExchangeCode_Success(t *testing.T) {
	srv := newTokenServer(t, map[string]interface{}{
		"access_token":  "test-access-token",
		"token_type":    "Bearer",
		"expires_in":    3600,
		"refresh_token": "test-refresh-token",
		"id_token":      "raw-id-token",
	}, http.StatusOK)

	provider := newTestProvider(srv, func(_ context.Context, idToken, audience string) (*idtoken.Payload, error) {
		if idToken != "raw-id-token" {
			t.Errorf("idToken = %q, want %q", idToken, "raw-id-token")
		}
		if audience != "test-client-id" {
			t.Errorf("audience = %q, want %q", audience, "test-client-id")
		}
		return &idtoken.Payload{Claims: map[string]interface{}{
			"email":   "user@gmail.com",
			"name":    "Google User",
			"picture": "https://example.com/p.png",
		}}, nil
	})

	info, err := provider.ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("ExchangeCode returned error: %v", err)
	}
	if info.Email != "user@gmail.com" || info.Name != "Google User" || info.Picture != "https://example.com/p.png" {
		t.Errorf("unexpected user info: %+v", info)
	}
	if info.RefreshToken != "test-refresh-token" {
		t.Errorf("RefreshToken = %q, want %q", info.RefreshToken, "test-refresh-token")
	}
}

func TestGoogleOAuthProvider_ExchangeCode_TokenError(t *testing.T) {
	srv := newTokenServer(t, map[string]interface{}{"error": "invalid_grant"}, http.StatusBadRequest)
	provider := newTestProvider(srv, func(context.Context, string, string) (*idtoken.Payload, error) {
		t.Fatal("validator must not be called when exchange fails")
		return nil, nil
	})

	if _, err := provider.ExchangeCode(context.Background(), "auth-code"); err == nil {
		t.Fatal("expected error for failed exchange")
	}
}

func TestGoogleOAuthProvider_ExchangeCode_MissingIDToken(t *testing.T) {
	srv := newTokenServer(t, map[string]interface{}{
		"access_token": "test-access-token",
		"token_type":   "Bearer",
	}, http.StatusOK)
	provider := newTestProvider(srv, nil)

	if _, err := provider.ExchangeCode(context.Background(), "auth-code"); err == nil {
		t.Fatal("expected error when id_token is missing")
	}
}

func TestGoogleOAuthProvider_ExchangeCode_InvalidIDToken(t *testing.T) {
	srv := newTokenServer(t, map[string]interface{}{
		"access_token": "test-access-token",
		"token_type":   "Bearer",
		"id_token":     "forged",
	}, http.StatusOK)
	provider := newTestProvider(srv, func(context.Context, string, string) (*idtoken.Payload, error) {
		return nil, errors.New("audience mismatch")
	})

	if _, err := provider.ExchangeCode(context.Background(), "auth-code"); err == nil {
		t.Fatal("expected error for invalid id_token")
	}
}

func TestGoogleOAuthProvider_RequestsCalendarScope(t *testing.T) {
	provider := NewGoogleOAuthProvider(GoogleOAuthConfig{ClientID: "id", RedirectURL: "postmessage"})

	found := false
	for _, s := range provider.OAuth2Config().Scopes {
		if s == "https://www.googleapis.com/auth/calendar.events" {
			found = true
		}
	}
	if !found {
		t.Errorf("scopes %v should include calendar.events", provider.OAuth2Config().Scopes)
	}
	if provider.OAuth2Config().Endpoint.TokenURL == "" {
		t.Error("default endpoint should be set")
	}
}
