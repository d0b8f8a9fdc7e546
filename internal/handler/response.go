package handler

import "github.com/hitoshi/wardrobe/internal/model"

// clothingItemResponse は衣類アイテムのAPIレスポンス。
type clothingItemResponse struct {
	ID          int64   `json:"id"`
	ItemType    string  `json:"item_type"`
	Color       string  `json:"color"`
	ImageURL    *string `json:"image_url"`
	IsAvailable bool    `json:"is_available"`
}

// outfitResponse は1日分のコーディネートのAPIレスポンス。
type outfitResponse struct {
	Date   string               `json:"date"`
	Top    clothingItemResponse `json:"top"`
	Bottom clothingItemResponse `json:"bottom"`
}

func toClothingItemResponse(item *model.ClothingItem) clothingItemResponse {
	resp := clothingItemResponse{
		ID:          item.ID,
		ItemType:    item.ItemType,
		Color:       item.Color,
		IsAvailable: item.IsAvailable,
	}
	if item.ImageURL != "" {
		u := item.ImageURL
		resp.ImageURL = &u
	}
	return resp
}

func toClothingItemResponses(items []*model.ClothingItem) []clothingItemResponse {
	out := make([]clothingItemResponse, len(items))
	for i, item := range items {
		out[i] = toClothingItemResponse(item)
	}
	return out
}

func toOutfitResponses(outfits []model.OutfitWithItems) []outfitResponse {
	out := make([]outfitResponse, len(outfits))
	for i := range outfits {
		out[i] = outfitResponse{
			Date:   outfits[i].Date.Format(model.DateLayout),
			Top:    toClothingItemResponse(&outfits[i].Top),
			Bottom: toClothingItemResponse(&outfits[i].Bottom),
		}
	}
	return out
}
