package handler

import (
	"context"

	"github.com/hitoshi/wardrobe/internal/auth"
	"github.com/hitoshi/wardrobe/internal/model"
	"github.com/hitoshi/wardrobe/internal/outfit"
	"github.com/hitoshi/wardrobe/internal/recommend"
	"github.com/hitoshi/wardrobe/internal/user"
	"github.com/hitoshi/wardrobe/internal/wardrobe"
)

// OutfitServiceAdapter は outfit.Planner と recommend.Service を OutfitServiceInterface に適合させるアダプタ。
type OutfitServiceAdapter struct {
	planner     *outfit.Planner
	recommender *recommend.Service
}

// NewOutfitServiceAdapter はOutfitServiceAdapterを生成する。
func NewOutfitServiceAdapter(planner *outfit.Planner, recommender *recommend.Service) *OutfitServiceAdapter {
	return &OutfitServiceAdapter{planner: planner, recommender: recommender}
}

// SaveOutfits はコーディネートを保存し、連携済みならカレンダーへ同期する。
func (a *OutfitServiceAdapter) SaveOutfits(ctx context.Context, user *model.User, proposals []model.OutfitProposal) error {
	return a.planner.Save(ctx, user, proposals)
}

// WeekOutfits は今日から7日分のコーディネートを返す。
func (a *OutfitServiceAdapter) WeekOutfits(ctx context.Context, userID string) ([]model.OutfitWithItems, error) {
	return a.planner.Week(ctx, userID)
}

// GeneratePlan は7日分のコーディネート案を生成する。
func (a *OutfitServiceAdapter) GeneratePlan(ctx context.Context, userID string, req recommend.Request) ([]model.OutfitWithItems, error) {
	return a.recommender.Generate(ctx, userID, req)
}

// --- compile-time interface checks ---

var _ OutfitServiceInterface = (*OutfitServiceAdapter)(nil)
var _ AuthServiceInterface = (*auth.Service)(nil)
var _ ClothingServiceInterface = (*wardrobe.Service)(nil)
var _ UserServiceInterface = (*user.Service)(nil)
