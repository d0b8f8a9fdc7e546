package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/wardrobe/internal/model"
)

// mockAuthenticator はテスト用のAuthenticatorモック。
type mockAuthenticator struct {
	authenticateFn func(ctx context.Context, token string) (*model.User, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, token)
	}
	return nil, nil
}

func acceptToken(valid string, user *model.User) *mockAuthenticator {
	return &mockAuthenticator{
		authenticateFn: func(_ context.Context, token string) (*model.User, error) {
			if token == valid {
				return user, nil
			}
			return nil, model.NewInvalidTokenError()
		},
	}
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Code
}

func TestBearerAuthMiddleware_ValidToken_InjectsUser(t *testing.T) {
	user := &model.User{ID: "user-123", Email: "a@example.com"}
	var gotUser *model.User
	handler := NewBearerAuthMiddleware(acceptToken("good", user))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/outfits/week", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotUser == nil || gotUser.ID != "user-123" {
		t.Errorf("user in context = %+v, want user-123", gotUser)
	}
}

func TestBearerAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	user := &model.User{ID: "user-123"}
	handler := NewBearerAuthMiddleware(acceptToken("good", user))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer good")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestBearerAuthMiddleware_MissingOrMalformedHeader_Returns401(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"ヘッダーなし", ""},
		{"スキームのみ", "Bearer"},
		{"トークンが空", "Bearer   "},
		{"Basic認証", "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := NewBearerAuthMiddleware(&mockAuthenticator{
				authenticateFn: func(context.Context, string) (*model.User, error) {
					called = true
					return nil, nil
				},
			})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be called")
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
			if code := decodeErrorCode(t, w); code != model.ErrCodeUnauthorized {
				t.Errorf("code = %q, want %q", code, model.ErrCodeUnauthorized)
			}
			if called {
				t.Error("authenticator should not be called without a token")
			}
		})
	}
}

func TestBearerAuthMiddleware_InvalidToken_Returns401(t *testing.T) {
	handler := NewBearerAuthMiddleware(acceptToken("good", &model.User{ID: "u"}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if code := decodeErrorCode(t, w); code != model.ErrCodeInvalidToken {
		t.Errorf("code = %q, want %q", code, model.ErrCodeInvalidToken)
	}
}

func TestBearerAuthMiddleware_StorageError_Returns500(t *testing.T) {
	handler := NewBearerAuthMiddleware(&mockAuthenticator{
		authenticateFn: func(context.Context, string) (*model.User, error) {
			return nil, errors.New("db down")
		},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestUserFromContext(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Error("expected no user in empty context")
	}

	ctx := ContextWithUser(context.Background(), &model.User{ID: "user-1"})
	user, ok := UserFromContext(ctx)
	if !ok || user.ID != "user-1" {
		t.Errorf("UserFromContext = (%+v, %v), want user-1", user, ok)
	}
}
