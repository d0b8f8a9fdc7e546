package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/hitoshi/wardrobe/internal/calendar"
	"github.com/hitoshi/wardrobe/internal/metrics"
	"github.com/hitoshi/wardrobe/internal/middleware"
	"github.com/hitoshi/wardrobe/internal/model"
	"github.com/hitoshi/wardrobe/internal/outfit"
	"github.com/hitoshi/wardrobe/internal/recommend"
	"github.com/hitoshi/wardrobe/internal/security"
	"github.com/hitoshi/wardrobe/internal/user"
	"github.com/hitoshi/wardrobe/internal/wardrobe"
)

// --- 統合テスト用のステートフルモック ---

// integrationState は統合テスト用の共有状態を保持する。
// 実際のサービス層を通し、永続化だけをメモリ上で置き換える。
type integrationState struct {
	mu      sync.Mutex
	nextID  int64
	users   map[string]*model.User
	items   map[int64]*model.ClothingItem
	outfits map[string]map[string]model.OutfitProposal // userID -> date -> proposal
}

func newIntegrationState() *integrationState {
	return &integrationState{
		users:   make(map[string]*model.User),
		items:   make(map[int64]*model.ClothingItem),
		outfits: make(map[string]map[string]model.OutfitProposal),
	}
}

// clothingStore はrepository.ClothingRepositoryのメモリ実装。
type clothingStore struct{ s *integrationState }

func (c *clothingStore) ListByUser(ctx context.Context, userID string) ([]*model.ClothingItem, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	var out []*model.ClothingItem
	for _, it := range c.s.items {
		if it.UserID == userID {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *clothingStore) FindOwned(ctx context.Context, userID string, ids []int64) (map[int64]*model.ClothingItem, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	out := make(map[int64]*model.ClothingItem)
	for _, id := range ids {
		if it, ok := c.s.items[id]; ok && it.UserID == userID {
			cp := *it
			out[id] = &cp
		}
	}
	return out, nil
}

func (c *clothingStore) Create(ctx context.Context, item *model.ClothingItem) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.nextID++
	item.ID = c.s.nextID
	item.CreatedAt = time.Now()
	cp := *item
	c.s.items[item.ID] = &cp
	return nil
}

func (c *clothingStore) SetAvailability(ctx context.Context, userID string, id int64, available bool) (*model.ClothingItem, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	it, ok := c.s.items[id]
	if !ok || it.UserID != userID {
		return nil, nil
	}
	it.IsAvailable = available
	cp := *it
	return &cp, nil
}

func (c *clothingStore) Delete(ctx context.Context, userID string, id int64) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	it, ok := c.s.items[id]
	if !ok || it.UserID != userID {
		return false, nil
	}
	delete(c.s.items, id)
	for date, o := range c.s.outfits[userID] {
		if o.TopID == id || o.BottomID == id {
			delete(c.s.outfits[userID], date)
		}
	}
	return true, nil
}

// outfitStore はrepository.OutfitRepositoryのメモリ実装。
type outfitStore struct{ s *integrationState }

func (o *outfitStore) UpsertBatch(ctx context.Context, userID string, proposals []model.OutfitProposal) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	if o.s.outfits[userID] == nil {
		o.s.outfits[userID] = make(map[string]model.OutfitProposal)
	}
	for _, p := range proposals {
		o.s.outfits[userID][p.Date.Format(model.DateLayout)] = p
	}
	return nil
}

func (o *outfitStore) ListRange(ctx context.Context, userID string, from, to time.Time) ([]model.OutfitWithItems, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	var out []model.OutfitWithItems
	for _, p := range o.s.outfits[userID] {
		if p.Date.Before(from) || p.Date.After(to) {
			continue
		}
		out = append(out, model.OutfitWithItems{
			Date:   p.Date,
			Top:    *o.s.items[p.TopID],
			Bottom: *o.s.items[p.BottomID],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// userStore はuser.Storeのメモリ実装。退会時に関連データも削除する。
type userStore struct{ s *integrationState }

func (u *userStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	return u.s.users[id], nil
}

func (u *userStore) DeleteByID(ctx context.Context, id string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	delete(u.s.users, id)
	delete(u.s.outfits, id)
	for itemID, it := range u.s.items {
		if it.UserID == id {
			delete(u.s.items, itemID)
		}
	}
	return nil
}

// tokenAuthenticator はトークン文字列をそのままユーザーIDとして扱う。
type tokenAuthenticator struct{ s *integrationState }

func (a *tokenAuthenticator) Authenticate(ctx context.Context, token string) (*model.User, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	u, ok := a.s.users[token]
	if !ok {
		return nil, model.NewAuthUserNotFoundError()
	}
	cp := *u
	return &cp, nil
}

// rotatingGenerator は衣類一覧から先頭のトップス・ボトムスで7日分のプランを返す。
type rotatingGenerator struct {
	s       *integrationState
	userID  string
	prompts []string
}

func (g *rotatingGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	items, _ := (&clothingStore{s: g.s}).ListByUser(ctx, g.userID)
	var topID, bottomID int64
	for _, it := range items {
		if it.ItemType == "top" && topID == 0 {
			topID = it.ID
		}
		if it.ItemType == "bottom" && bottomID == 0 {
			bottomID = it.ID
		}
	}
	entries := make([]string, recommend.PlanDays)
	for i := range entries {
		entries[i] = fmt.Sprintf(`{"date":"2000-01-0%d","top_id":%d,"bottom_id":%d}`, i+1, topID, bottomID)
	}
	return "[" + strings.Join(entries, ",") + "]", nil
}

// recordingEvents はカレンダーへの書き込みを記録する。
type recordingEvents struct {
	mu       sync.Mutex
	inserted []*gcal.Event
}

func (e *recordingEvents) ListDay(ctx context.Context, date string) ([]*gcal.Event, error) {
	return nil, nil
}

func (e *recordingEvents) Delete(ctx context.Context, eventID string) error {
	return nil
}

func (e *recordingEvents) Insert(ctx context.Context, event *gcal.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inserted = append(e.inserted, event)
	return nil
}

type integrationEnv struct {
	router    http.Handler
	state     *integrationState
	generator *rotatingGenerator
	events    *recordingEvents
}

// --- 統合テスト用ルーター構築ヘルパー ---

func createIntegrationRouter(t *testing.T) *integrationEnv {
	t.Helper()

	state := newIntegrationState()
	state.users["alice"] = &model.User{ID: "alice", Email: "alice@example.com", GoogleRefreshToken: "refresh-alice"}
	state.users["bob"] = &model.User{ID: "bob", Email: "bob@example.com"}

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	clothing := &clothingStore{s: state}
	gen := &rotatingGenerator{s: state, userID: "alice"}
	events := &recordingEvents{}

	syncer := calendar.NewSyncer(func(ctx context.Context, refreshToken string) (calendar.EventsAPI, error) {
		if refreshToken != "refresh-alice" {
			t.Errorf("refreshToken = %q, want %q", refreshToken, "refresh-alice")
		}
		return events, nil
	}, logger)

	planner := outfit.NewPlanner(clothing, &outfitStore{s: state}, syncer, metrics.NopCollector{}, logger, time.UTC)
	recommender := recommend.NewService(clothing, nil, gen, metrics.NopCollector{}, logger, time.UTC)

	limiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(100, 10))
	t.Cleanup(limiter.Stop)

	router := NewRouter(&RouterDeps{
		Authenticator:      &tokenAuthenticator{s: state},
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		RateLimiter:        limiter,
		Logger:             logger,

		AuthService:     &mockAuthService{},
		ClothingService: wardrobe.NewService(clothing, security.NewLabelSanitizer(), security.NewSSRFGuard()),
		OutfitService:   NewOutfitServiceAdapter(planner, recommender),
		UserService:     user.NewService(&userStore{s: state}),
	})

	return &integrationEnv{router: router, state: state, generator: gen, events: events}
}

func (env *integrationEnv) do(t *testing.T, token, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// --- 統合テスト ---

func TestIntegration_GenerateSaveAndViewWeek(t *testing.T) {
	env := createIntegrationRouter(t)

	// 1. 衣類を登録（ラベルは小文字に正規化される）
	w := env.do(t, "alice", http.MethodPost, "/clothing-items", `{"item_type":"Top","color":"Navy"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create top status = %d: %s", w.Code, w.Body.String())
	}
	w = env.do(t, "alice", http.MethodPost, "/clothing-items", `{"item_type":"bottom","color":"beige","image_url":"https://cdn.example.com/b.png"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create bottom status = %d: %s", w.Code, w.Body.String())
	}

	// 2. プラン生成
	w = env.do(t, "alice", http.MethodPost, "/outfits/generate", "")
	if w.Code != http.StatusOK {
		t.Fatalf("generate status = %d: %s", w.Code, w.Body.String())
	}
	var plan []outfitResponse
	if err := json.NewDecoder(w.Body).Decode(&plan); err != nil {
		t.Fatalf("failed to decode plan: %v", err)
	}
	if len(plan) != recommend.PlanDays {
		t.Fatalf("len(plan) = %d, want %d", len(plan), recommend.PlanDays)
	}
	today := model.Today(time.Now(), time.UTC).Format(model.DateLayout)
	if plan[0].Date != today {
		t.Errorf("plan[0].date = %q, want today %q", plan[0].Date, today)
	}
	if plan[0].Top.Color != "navy" || plan[0].Top.ItemType != "top" {
		t.Errorf("plan[0].top = %+v", plan[0].Top)
	}
	if len(env.generator.prompts) != 1 || !strings.Contains(env.generator.prompts[0], "Average Weekly Weather: none") {
		t.Errorf("unexpected prompt: %v", env.generator.prompts)
	}

	// 3. 生成結果を保存
	save := make([]map[string]any, len(plan))
	for i, p := range plan {
		save[i] = map[string]any{"date": p.Date, "top_id": p.Top.ID, "bottom_id": p.Bottom.ID}
	}
	payload, _ := json.Marshal(save)
	w = env.do(t, "alice", http.MethodPost, "/outfits", string(payload))
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", w.Code, w.Body.String())
	}

	// カレンダー連携済みのため7日分のイベントが作成される
	if len(env.events.inserted) != recommend.PlanDays {
		t.Fatalf("inserted events = %d, want %d", len(env.events.inserted), recommend.PlanDays)
	}
	if got := env.events.inserted[0].Summary; got != "Outfit: navy top + beige bottom" {
		t.Errorf("summary = %q", got)
	}

	// 4. 週間表示
	w = env.do(t, "alice", http.MethodGet, "/outfits/week", "")
	if w.Code != http.StatusOK {
		t.Fatalf("week status = %d: %s", w.Code, w.Body.String())
	}
	var week []outfitResponse
	if err := json.NewDecoder(w.Body).Decode(&week); err != nil {
		t.Fatalf("failed to decode week: %v", err)
	}
	if len(week) != recommend.PlanDays {
		t.Fatalf("len(week) = %d, want %d", len(week), recommend.PlanDays)
	}
	if week[0].Date != today || week[0].Bottom.ImageURL == nil {
		t.Errorf("week[0] = %+v", week[0])
	}
}

func TestIntegration_GenerateWithEmptyWardrobe(t *testing.T) {
	env := createIntegrationRouter(t)

	w := env.do(t, "alice", http.MethodPost, "/outfits/generate", `{}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if code := decodeErrorCode(t, w); code != model.ErrCodeEmptyWardrobe {
		t.Errorf("code = %q, want %q", code, model.ErrCodeEmptyWardrobe)
	}
	if len(env.generator.prompts) != 0 {
		t.Error("generator should not be called for an empty wardrobe")
	}
}

func TestIntegration_CannotUseOtherUsersClothing(t *testing.T) {
	env := createIntegrationRouter(t)

	env.do(t, "alice", http.MethodPost, "/clothing-items", `{"item_type":"top","color":"red"}`)
	env.do(t, "alice", http.MethodPost, "/clothing-items", `{"item_type":"bottom","color":"blue"}`)

	// bobの一覧にaliceの衣類は含まれない
	w := env.do(t, "bob", http.MethodGet, "/clothing-items", "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("bob items = %s, want []", w.Body.String())
	}

	// bobはaliceの衣類でコーディネートを保存できない
	w = env.do(t, "bob", http.MethodPost, "/outfits", `[{"date":"2026-10-15","top_id":1,"bottom_id":2}]`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if code := decodeErrorCode(t, w); code != model.ErrCodeInvalidClothing {
		t.Errorf("code = %q, want %q", code, model.ErrCodeInvalidClothing)
	}

	// bobはaliceの衣類を削除できない
	w = env.do(t, "bob", http.MethodDelete, "/clothing-items/1", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("delete status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestIntegration_SaveWithoutCalendarDoesNotSync(t *testing.T) {
	env := createIntegrationRouter(t)

	env.do(t, "bob", http.MethodPost, "/clothing-items", `{"item_type":"top","color":"red"}`)
	env.do(t, "bob", http.MethodPost, "/clothing-items", `{"item_type":"bottom","color":"blue"}`)

	w := env.do(t, "bob", http.MethodPost, "/outfits", `[{"date":"2026-10-15","top_id":1,"bottom_id":2}]`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if len(env.events.inserted) != 0 {
		t.Errorf("inserted events = %d, want 0", len(env.events.inserted))
	}
}

func TestIntegration_WithdrawRemovesData(t *testing.T) {
	env := createIntegrationRouter(t)

	env.do(t, "alice", http.MethodPost, "/clothing-items", `{"item_type":"top","color":"red"}`)

	w := env.do(t, "alice", http.MethodDelete, "/users/me", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if len(env.state.items) != 0 {
		t.Errorf("items remaining = %d, want 0", len(env.state.items))
	}

	// 退会後のトークンは認証に失敗する
	w = env.do(t, "alice", http.MethodGet, "/clothing-items", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status after withdraw = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
