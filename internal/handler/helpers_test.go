package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/wardrobe/internal/middleware"
	"github.com/hitoshi/wardrobe/internal/model"
)

// withUser はBearer認証ミドルウェアが注入するのと同じ形でユーザーをコンテキストに設定する。
func withUser(req *http.Request, user *model.User) *http.Request {
	return req.WithContext(middleware.ContextWithUser(req.Context(), user))
}

func testUser() *model.User {
	return &model.User{ID: "user-123", Email: "alice@example.com", Name: "Alice", Picture: "https://example.com/a.png"}
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Code
}
