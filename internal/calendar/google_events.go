package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const primaryCalendarID = "primary"

// GoogleEventsConfig はGoogle Calendar APIクライアントの設定。
type GoogleEventsConfig struct {
	// OAuth2Config はリフレッシュトークンからアクセストークンを取得するために使う。
	OAuth2Config *oauth2.Config
	Timeout      time.Duration
	// Endpoint はテスト用にAPIのベースURLを差し替える。空の場合は既定値。
	Endpoint string
}

// NewGoogleEventsFactory はGoogle Calendar APIを使うEventsAPIFactoryを返す。
// トークンはキャッシュせず、呼び出しごとにクライアントを生成する。
func NewGoogleEventsFactory(cfg GoogleEventsConfig) EventsAPIFactory {
	return func(ctx context.Context, refreshToken string) (EventsAPI, error) {
		base := &http.Client{Timeout: cfg.Timeout}
		tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, base)
		ts := cfg.OAuth2Config.TokenSource(tokenCtx, &oauth2.Token{RefreshToken: refreshToken})

		httpClient := oauth2.NewClient(tokenCtx, ts)
		httpClient.Timeout = cfg.Timeout

		opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
		if cfg.Endpoint != "" {
			opts = append(opts, option.WithEndpoint(cfg.Endpoint))
		}

		svc, err := gcal.NewService(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create calendar service: %w", err)
		}
		return &googleEvents{svc: svc}, nil
	}
}

// googleEvents はプライマリカレンダーに対するEventsAPIの実装。
type googleEvents struct {
	svc *gcal.Service
}

func (g *googleEvents) ListDay(ctx context.Context, date string) ([]*gcal.Event, error) {
	var items []*gcal.Event
	err := g.svc.Events.List(primaryCalendarID).
		TimeMin(date+"T00:00:00Z").
		TimeMax(date+"T23:59:59Z").
		SingleEvents(true).
		Pages(ctx, func(page *gcal.Events) error {
			items = append(items, page.Items...)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (g *googleEvents) Delete(ctx context.Context, eventID string) error {
	return g.svc.Events.Delete(primaryCalendarID, eventID).Context(ctx).Do()
}

func (g *googleEvents) Insert(ctx context.Context, event *gcal.Event) error {
	_, err := g.svc.Events.Insert(primaryCalendarID, event).Context(ctx).Do()
	return err
}

var _ EventsAPI = (*googleEvents)(nil)
