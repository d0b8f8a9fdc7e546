// Package calendar は確定したコーディネートをGoogleカレンダーへ同期する。
package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/hitoshi/wardrobe/internal/model"
)

const (
	// summaryPrefix はこのサービスが作成するイベントのタイトル接頭辞。
	// 同期時はこの接頭辞を持つ終日イベントのみを置き換える。
	summaryPrefix = "Outfit:"
	description   = "Outfit recommendation for the day"
)

// Entry は1日分の同期内容。
type Entry struct {
	Date        time.Time
	TopLabel    string
	BottomLabel string
}

// EventsAPI はプライマリカレンダーのイベント操作インターフェース。
type EventsAPI interface {
	// ListDay はdate（YYYY-MM-DD）の00:00:00Z〜23:59:59Zにかかるイベントを返す。
	ListDay(ctx context.Context, date string) ([]*gcal.Event, error)
	Delete(ctx context.Context, eventID string) error
	Insert(ctx context.Context, event *gcal.Event) error
}

// EventsAPIFactory はリフレッシュトークンからEventsAPIを生成する。
type EventsAPIFactory func(ctx context.Context, refreshToken string) (EventsAPI, error)

// Syncer はカレンダー同期を行う。
type Syncer struct {
	newEvents EventsAPIFactory
	logger    *slog.Logger
}

// NewSyncer はSyncerの新しいインスタンスを生成する。
func NewSyncer(newEvents EventsAPIFactory, logger *slog.Logger) *Syncer {
	return &Syncer{newEvents: newEvents, logger: logger}
}

// Sync はentriesを順に同期し、全件成功した場合にtrueを返す。
// リフレッシュトークンを持たないユーザーはAPIを呼ばずにfalseを返す。
// 途中でエラーが発生した場合は残りを中断する。反映済みの日付は戻さない。
func (s *Syncer) Sync(ctx context.Context, user *model.User, entries []Entry) bool {
	if !user.HasCalendarAccess() {
		return false
	}

	events, err := s.newEvents(ctx, user.GoogleRefreshToken)
	if err != nil {
		s.logger.Error("failed to create calendar client",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return false
	}

	for _, e := range entries {
		if err := syncDay(ctx, events, e); err != nil {
			s.logger.Error("calendar sync failed",
				slog.String("user_id", user.ID),
				slog.String("date", e.Date.Format(model.DateLayout)),
				slog.String("error", err.Error()),
			)
			return false
		}
	}

	s.logger.Info("calendar synced",
		slog.String("user_id", user.ID),
		slog.Int("days", len(entries)),
	)
	return true
}

// syncDay は既存のOutfitイベントを削除し、新しい終日イベントを作成する。
func syncDay(ctx context.Context, events EventsAPI, e Entry) error {
	date := e.Date.Format(model.DateLayout)

	existing, err := events.ListDay(ctx, date)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	for _, ev := range existing {
		if !isOutfitEvent(ev, date) {
			continue
		}
		if err := events.Delete(ctx, ev.Id); err != nil {
			return fmt.Errorf("delete event %s: %w", ev.Id, err)
		}
	}

	if err := events.Insert(ctx, NewOutfitEvent(e)); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func isOutfitEvent(ev *gcal.Event, date string) bool {
	if ev == nil || ev.Start == nil {
		return false
	}
	return ev.Start.Date == date && strings.HasPrefix(ev.Summary, summaryPrefix)
}

// NewOutfitEvent はEntryから終日イベントを生成する。終了日は翌日（排他）。
func NewOutfitEvent(e Entry) *gcal.Event {
	return &gcal.Event{
		Summary:     fmt.Sprintf("%s %s + %s", summaryPrefix, e.TopLabel, e.BottomLabel),
		Description: description,
		Start:       &gcal.EventDateTime{Date: e.Date.Format(model.DateLayout)},
		End:         &gcal.EventDateTime{Date: e.Date.AddDate(0, 0, 1).Format(model.DateLayout)},
	}
}
