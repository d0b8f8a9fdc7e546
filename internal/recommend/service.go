// Package recommend は衣類一覧と天気から7日間のコーディネート案を生成する。
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/wardrobe/internal/metrics"
	"github.com/hitoshi/wardrobe/internal/model"
	"github.com/hitoshi/wardrobe/internal/weather"
)

// Request はプラン生成の入力。
type Request struct {
	// City が空でない場合のみ天気を取得する。
	City         string
	PreviousPlan []PreviousDay
}

// ClothingLister はユーザーの衣類一覧を取得するインターフェース。
type ClothingLister interface {
	ListByUser(ctx context.Context, userID string) ([]*model.ClothingItem, error)
}

// WeatherProvider は都市の週平均気温を取得するインターフェース。
type WeatherProvider interface {
	WeeklyAverage(ctx context.Context, city string) (string, error)
}

// generatedEntry はモデルが返すプランの1日分。
type generatedEntry struct {
	Date     string `json:"date"`
	TopID    int64  `json:"top_id"`
	BottomID int64  `json:"bottom_id"`
}

// Service はプラン生成のビジネスロジックを提供する。結果は保存しない。
type Service struct {
	clothing  ClothingLister
	weather   WeatherProvider
	generator Generator
	metrics   metrics.MetricsCollector
	logger    *slog.Logger
	location  *time.Location
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// locationは「今日」を決めるタイムゾーン。
func NewService(
	clothing ClothingLister,
	weather WeatherProvider,
	generator Generator,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	location *time.Location,
) *Service {
	return &Service{
		clothing:  clothing,
		weather:   weather,
		generator: generator,
		metrics:   collector,
		logger:    logger,
		location:  location,
		now:       time.Now,
	}
}

// Generate は7日分のコーディネート案を返す。日付は今日から順に振り直す。
func (s *Service) Generate(ctx context.Context, userID string, req Request) ([]model.OutfitWithItems, error) {
	wardrobe, err := s.clothing.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list clothing items: %w", err)
	}
	if len(wardrobe) == 0 {
		return nil, model.NewEmptyWardrobeError()
	}

	var averageTemperature string
	if city := strings.TrimSpace(req.City); city != "" {
		averageTemperature, err = s.weather.WeeklyAverage(ctx, city)
		if err != nil {
			s.metrics.RecordWeatherFailure()
			s.logger.Warn("weather lookup failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			if errors.Is(err, weather.ErrMalformed) {
				return nil, model.NewWeatherParseError()
			}
			return nil, model.NewWeatherFailedError()
		}
	}

	prompt := BuildPrompt(wardrobe, averageTemperature, req.PreviousPlan)

	start := time.Now()
	raw, err := s.generator.GenerateJSON(ctx, prompt)
	s.metrics.RecordGenerationLatency(time.Since(start))
	if err != nil {
		return nil, s.fail(userID, "call", err)
	}

	var entries []generatedEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, s.fail(userID, "invalid_json", fmt.Errorf("invalid JSON response: %w", err))
	}
	if len(entries) != PlanDays {
		return nil, s.fail(userID, "entry_count", fmt.Errorf("expected %d entries, got %d", PlanDays, len(entries)))
	}

	byID := make(map[int64]*model.ClothingItem, len(wardrobe))
	for _, item := range wardrobe {
		byID[item.ID] = item
	}

	today := model.Today(s.now(), s.location)
	plan := make([]model.OutfitWithItems, 0, PlanDays)
	for i, e := range entries {
		top, ok := byID[e.TopID]
		if !ok {
			return nil, s.fail(userID, "unknown_item", fmt.Errorf("unknown top_id %d", e.TopID))
		}
		bottom, ok := byID[e.BottomID]
		if !ok {
			return nil, s.fail(userID, "unknown_item", fmt.Errorf("unknown bottom_id %d", e.BottomID))
		}
		plan = append(plan, model.OutfitWithItems{
			Date:   today.AddDate(0, 0, i),
			Top:    *top,
			Bottom: *bottom,
		})
	}

	s.metrics.RecordGenerationSuccess()
	s.logger.Info("outfit plan generated",
		slog.String("user_id", userID),
		slog.Int("wardrobe_size", len(wardrobe)),
		slog.Bool("with_weather", averageTemperature != ""),
		slog.Bool("regeneration", len(req.PreviousPlan) > 0),
	)
	return plan, nil
}

func (s *Service) fail(userID, reason string, err error) error {
	s.metrics.RecordGenerationFailure(reason)
	s.logger.Error("outfit generation failed",
		slog.String("user_id", userID),
		slog.String("reason", reason),
		slog.String("error", err.Error()),
	)
	return model.NewGenerationFailedError(err.Error())
}
