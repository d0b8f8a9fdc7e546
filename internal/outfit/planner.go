// Package outfit はコーディネートの保存と週間表示のドメインロジックを提供する。
package outfit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/wardrobe/internal/calendar"
	"github.com/hitoshi/wardrobe/internal/metrics"
	"github.com/hitoshi/wardrobe/internal/model"
	"github.com/hitoshi/wardrobe/internal/repository"
)

// weekDays は週間表示の日数（今日を含む）。
const weekDays = 7

// OwnedClothingFinder はユーザーが所有する衣類を取得するインターフェース。
type OwnedClothingFinder interface {
	FindOwned(ctx context.Context, userID string, ids []int64) (map[int64]*model.ClothingItem, error)
}

// CalendarSyncer はカレンダー同期のインターフェース。
type CalendarSyncer interface {
	Sync(ctx context.Context, user *model.User, entries []calendar.Entry) bool
}

// Planner はコーディネートの保存と取得を行う。
type Planner struct {
	clothing OwnedClothingFinder
	outfits  repository.OutfitRepository
	calendar CalendarSyncer
	metrics  metrics.MetricsCollector
	logger   *slog.Logger
	location *time.Location
	now      func() time.Time
}

// NewPlanner はPlannerの新しいインスタンスを生成する。
func NewPlanner(
	clothing OwnedClothingFinder,
	outfits repository.OutfitRepository,
	syncer CalendarSyncer,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	location *time.Location,
) *Planner {
	return &Planner{
		clothing: clothing,
		outfits:  outfits,
		calendar: syncer,
		metrics:  collector,
		logger:   logger,
		location: location,
		now:      time.Now,
	}
}

// Save はコーディネート案を一括保存する。
// 参照する衣類が全てユーザーの所有物でなければ何も書き込まずにエラーを返す。
// 保存後、カレンダー連携済みのユーザーであれば同期する。同期の失敗は返さない。
func (p *Planner) Save(ctx context.Context, user *model.User, proposals []model.OutfitProposal) error {
	if len(proposals) == 0 {
		return nil
	}

	ids := referencedIDs(proposals)
	owned, err := p.clothing.FindOwned(ctx, user.ID, ids)
	if err != nil {
		return fmt.Errorf("衣類の取得に失敗しました: %w", err)
	}
	if len(owned) != len(ids) {
		p.logger.Warn("outfit references clothing not owned by user",
			slog.String("user_id", user.ID),
			slog.Int("referenced", len(ids)),
			slog.Int("owned", len(owned)),
		)
		return model.NewInvalidClothingError()
	}

	if err := p.outfits.UpsertBatch(ctx, user.ID, proposals); err != nil {
		return fmt.Errorf("コーディネートの保存に失敗しました: %w", err)
	}
	p.metrics.RecordOutfitsSaved(len(proposals))

	if user.HasCalendarAccess() {
		entries := make([]calendar.Entry, len(proposals))
		for i, pr := range proposals {
			entries[i] = calendar.Entry{
				Date:        pr.Date,
				TopLabel:    owned[pr.TopID].Label(),
				BottomLabel: owned[pr.BottomID].Label(),
			}
		}
		ok := p.calendar.Sync(ctx, user, entries)
		p.metrics.RecordCalendarSync(ok)
		if !ok {
			p.logger.Warn("calendar sync did not complete",
				slog.String("user_id", user.ID),
			)
		}
	}

	return nil
}

// Week は今日から6日後までのコーディネートを日付昇順で返す。
func (p *Planner) Week(ctx context.Context, userID string) ([]model.OutfitWithItems, error) {
	from := model.Today(p.now(), p.location)
	to := from.AddDate(0, 0, weekDays-1)

	outfits, err := p.outfits.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("週間コーディネートの取得に失敗しました: %w", err)
	}
	return outfits, nil
}

// referencedIDs は提案が参照する衣類IDを重複なく返す。
func referencedIDs(proposals []model.OutfitProposal) []int64 {
	seen := make(map[int64]struct{}, len(proposals)*2)
	ids := make([]int64, 0, len(proposals)*2)
	for _, pr := range proposals {
		for _, id := range []int64{pr.TopID, pr.BottomID} {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
