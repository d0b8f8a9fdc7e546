package model

import "time"

// DateLayout は日付の文字列表現（API・カレンダー共通）。
const DateLayout = "2006-01-02"

// Outfit は特定の日付に割り当てられたトップスとボトムスの組み合わせを表す。
// (Date, UserID) が主キーで、1ユーザー1日につき1件のみ存在する。
type Outfit struct {
	Date      time.Time
	UserID    string
	TopID     int64
	BottomID  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OutfitWithItems はOutfitにトップス・ボトムスの詳細を結合した読み取りモデル。
type OutfitWithItems struct {
	Date   time.Time
	Top    ClothingItem
	Bottom ClothingItem
}

// OutfitProposal は保存前のコーディネート案（日付とアイテムIDの組）を表す。
type OutfitProposal struct {
	Date     time.Time
	TopID    int64
	BottomID int64
}

// Today はlocにおける現在の暦日を、UTCの0時として返す。
// DATE型カラムとの比較や日付の加算に使う。
func Today(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
