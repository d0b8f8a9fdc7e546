// Package wardrobe は衣類カタログ（登録・一覧・着用可否・削除）のドメインロジックを提供する。
package wardrobe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/wardrobe/internal/model"
	"github.com/hitoshi/wardrobe/internal/repository"
	"github.com/hitoshi/wardrobe/internal/security"
	"github.com/hitoshi/wardrobe/internal/validation"
)

// CreateInput は衣類登録の入力。
type CreateInput struct {
	ItemType string `json:"item_type" validate:"required,max=50,excludesall=<>"`
	Color    string `json:"color" validate:"required,max=30,excludesall=<>"`
	ImageURL string `json:"image_url" validate:"omitempty,max=500,http_url"`
	// IsAvailable が未指定の場合は着用可能として登録する。
	IsAvailable *bool `json:"is_available"`
}

// URLValidator は画像URLの静的検証インターフェース。
type URLValidator interface {
	ValidateURL(rawURL string) error
}

// Service は衣類カタログのサービス層。
type Service struct {
	repo      repository.ClothingRepository
	sanitizer security.LabelSanitizer
	urlGuard  URLValidator
	validator *validation.Validator
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ClothingRepository, sanitizer security.LabelSanitizer, urlGuard URLValidator) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		urlGuard:  urlGuard,
		validator: validation.New(),
	}
}

// List はユーザーの衣類をID昇順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.ClothingItem, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("衣類一覧の取得に失敗しました: %w", err)
	}
	if items == nil {
		items = []*model.ClothingItem{}
	}
	return items, nil
}

// Create は衣類を登録する。
// 種類と色はHTMLを除去して小文字に正規化する。画像URLは内部ネットワーク宛てを拒否する。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*model.ClothingItem, error) {
	in.ItemType = strings.ToLower(s.sanitizer.PlainText(in.ItemType))
	in.Color = strings.ToLower(s.sanitizer.PlainText(in.Color))
	in.ImageURL = strings.TrimSpace(in.ImageURL)

	if err := s.validator.Validate(in); err != nil {
		return nil, model.NewInvalidClothingFieldError(err.Error())
	}
	if in.ImageURL != "" {
		if err := s.urlGuard.ValidateURL(in.ImageURL); err != nil {
			slog.Warn("rejected clothing image URL",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			return nil, model.NewInvalidClothingFieldError("image_url is not allowed")
		}
	}

	item := &model.ClothingItem{
		UserID:      userID,
		ItemType:    in.ItemType,
		Color:       in.Color,
		ImageURL:    in.ImageURL,
		IsAvailable: in.IsAvailable == nil || *in.IsAvailable,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("衣類の登録に失敗しました: %w", err)
	}
	return item, nil
}

// SetAvailability は衣類の着用可否を更新する。
func (s *Service) SetAvailability(ctx context.Context, userID string, itemID int64, available bool) (*model.ClothingItem, error) {
	item, err := s.repo.SetAvailability(ctx, userID, itemID, available)
	if err != nil {
		return nil, fmt.Errorf("着用可否の更新に失敗しました: %w", err)
	}
	if item == nil {
		return nil, model.NewClothingNotFoundError(itemID)
	}
	return item, nil
}

// Delete は衣類を削除する。参照しているコーディネートも削除される。
func (s *Service) Delete(ctx context.Context, userID string, itemID int64) error {
	deleted, err := s.repo.Delete(ctx, userID, itemID)
	if err != nil {
		return fmt.Errorf("衣類の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewClothingNotFoundError(itemID)
	}

	slog.Info("clothing item deleted",
		slog.String("user_id", userID),
		slog.Int64("item_id", itemID),
	)
	return nil
}
