package model

import (
	"fmt"
	"time"
)

// ClothingItem はユーザーが所有する衣類アイテムを表す。
type ClothingItem struct {
	ID          int64
	UserID      string
	ItemType    string // top, bottom 等のカテゴリ
	Color       string
	ImageURL    string
	IsAvailable bool
	CreatedAt   time.Time
}

// Label はカレンダーのイベント名などに使う表示用ラベルを返す。
// 例: "navy top"
func (c *ClothingItem) Label() string {
	return fmt.Sprintf("%s %s", c.Color, c.ItemType)
}
