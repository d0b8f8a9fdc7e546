// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hitoshi/wardrobe/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdateProfile は名前・アイコンURLを更新する。
	// refreshTokenが空でない場合はリフレッシュトークンも置き換える。
	UpdateProfile(ctx context.Context, user *model.User, refreshToken string) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するclothing_items、outfitsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// ClothingRepository は衣類アイテムの永続化インターフェース。
type ClothingRepository interface {
	// ListByUser はユーザーの全衣類アイテムをID昇順で返す。
	ListByUser(ctx context.Context, userID string) ([]*model.ClothingItem, error)

	// FindOwned は指定IDのうちユーザーが所有するアイテムをIDをキーに返す。
	FindOwned(ctx context.Context, userID string, ids []int64) (map[int64]*model.ClothingItem, error)

	// Create は衣類アイテムを作成し、採番されたIDと作成日時を設定する。
	Create(ctx context.Context, item *model.ClothingItem) error

	// SetAvailability は着用可否を更新する。
	// ユーザーが所有するアイテムが見つからない場合はnilを返す。
	SetAvailability(ctx context.Context, userID string, id int64, available bool) (*model.ClothingItem, error)

	// Delete は衣類アイテムを削除する。削除した場合にtrueを返す。
	// 参照しているoutfitsはCASCADE削除される。
	Delete(ctx context.Context, userID string, id int64) (bool, error)
}

// OutfitRepository はコーディネートの永続化インターフェース。
type OutfitRepository interface {
	// UpsertBatch は(date, user_id)をキーに全件を単一トランザクションでUPSERTする。
	// 入力順に適用するため、同一日付が重複した場合は後勝ちとなる。
	UpsertBatch(ctx context.Context, userID string, proposals []model.OutfitProposal) error

	// ListRange はfrom〜to（両端含む）のコーディネートを日付昇順で
	// トップス・ボトムスの詳細付きで返す。
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]model.OutfitWithItems, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// nullString は空文字列をNULLとして扱う。
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
