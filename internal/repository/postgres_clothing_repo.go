package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/wardrobe/internal/model"
)

// PostgresClothingRepo はPostgreSQLを使用した衣類アイテムリポジトリ。
type PostgresClothingRepo struct {
	db *sql.DB
}

// NewPostgresClothingRepo はPostgresClothingRepoを生成する。
func NewPostgresClothingRepo(db *sql.DB) *PostgresClothingRepo {
	return &PostgresClothingRepo{db: db}
}

const clothingColumns = `id, user_id, item_type, color, image_url, is_available, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClothing(s rowScanner) (*model.ClothingItem, error) {
	item := &model.ClothingItem{}
	var imageURL sql.NullString
	if err := s.Scan(&item.ID, &item.UserID, &item.ItemType, &item.Color, &imageURL, &item.IsAvailable, &item.CreatedAt); err != nil {
		return nil, err
	}
	item.ImageURL = imageURL.String
	return item, nil
}

// ListByUser はユーザーの全衣類アイテムをID昇順で返す。
func (r *PostgresClothingRepo) ListByUser(ctx context.Context, userID string) ([]*model.ClothingItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clothingColumns+` FROM clothing_items WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list clothing items: %w", err)
	}
	defer rows.Close()

	var items []*model.ClothingItem
	for rows.Next() {
		item, err := scanClothing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clothing item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clothing items: %w", err)
	}
	return items, nil
}

// FindOwned は指定IDのうちユーザーが所有するアイテムをIDをキーに返す。
func (r *PostgresClothingRepo) FindOwned(ctx context.Context, userID string, ids []int64) (map[int64]*model.ClothingItem, error) {
	owned := make(map[int64]*model.ClothingItem, len(ids))
	if len(ids) == 0 {
		return owned, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clothingColumns+` FROM clothing_items WHERE user_id = $1 AND id = ANY($2)`,
		userID, pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find owned clothing items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanClothing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clothing item: %w", err)
		}
		owned[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clothing items: %w", err)
	}
	return owned, nil
}

// Create は衣類アイテムを作成し、採番されたIDと作成日時を設定する。
func (r *PostgresClothingRepo) Create(ctx context.Context, item *model.ClothingItem) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO clothing_items (user_id, item_type, color, image_url, is_available)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		item.UserID, item.ItemType, item.Color, nullString(item.ImageURL), item.IsAvailable,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert clothing item: %w", err)
	}
	return nil
}

// SetAvailability は着用可否を更新する。
// ユーザーが所有するアイテムが見つからない場合はnilを返す。
func (r *PostgresClothingRepo) SetAvailability(ctx context.Context, userID string, id int64, available bool) (*model.ClothingItem, error) {
	item, err := scanClothing(r.db.QueryRowContext(ctx,
		`UPDATE clothing_items SET is_available = $3
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+clothingColumns,
		id, userID, available,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update clothing availability: %w", err)
	}
	return item, nil
}

// Delete は衣類アイテムを削除する。削除した場合にtrueを返す。
func (r *PostgresClothingRepo) Delete(ctx context.Context, userID string, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM clothing_items WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete clothing item: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

var _ ClothingRepository = (*PostgresClothingRepo)(nil)
