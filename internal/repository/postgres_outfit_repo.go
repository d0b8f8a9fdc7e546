package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/wardrobe/internal/model"
)

// PostgresOutfitRepo はPostgreSQLを使用したコーディネートリポジトリ。
type PostgresOutfitRepo struct {
	db *sql.DB
}

// NewPostgresOutfitRepo はPostgresOutfitRepoを生成する。
func NewPostgresOutfitRepo(db *sql.DB) *PostgresOutfitRepo {
	return &PostgresOutfitRepo{db: db}
}

// UpsertBatch は(date, user_id)をキーに全件を単一トランザクションでUPSERTする。
// いずれかの書き込みに失敗した場合は全件ロールバックする。
func (r *PostgresOutfitRepo) UpsertBatch(ctx context.Context, userID string, proposals []model.OutfitProposal) error {
	if len(proposals) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO outfits (date, user_id, top_id, bottom_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, now(), now())
		 ON CONFLICT (date, user_id) DO UPDATE SET
		     top_id = EXCLUDED.top_id,
		     bottom_id = EXCLUDED.bottom_id,
		     updated_at = now()`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare outfit upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range proposals {
		if _, err := stmt.ExecContext(ctx, p.Date.Format(model.DateLayout), userID, p.TopID, p.BottomID); err != nil {
			return fmt.Errorf("failed to upsert outfit for %s: %w", p.Date.Format(model.DateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListRange はfrom〜to（両端含む）のコーディネートを日付昇順で返す。
func (r *PostgresOutfitRepo) ListRange(ctx context.Context, userID string, from, to time.Time) ([]model.OutfitWithItems, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT o.date,
		        t.id, t.user_id, t.item_type, t.color, t.image_url, t.is_available, t.created_at,
		        b.id, b.user_id, b.item_type, b.color, b.image_url, b.is_available, b.created_at
		 FROM outfits o
		 JOIN clothing_items t ON t.id = o.top_id
		 JOIN clothing_items b ON b.id = o.bottom_id
		 WHERE o.user_id = $1 AND o.date >= $2 AND o.date <= $3
		 ORDER BY o.date ASC`,
		userID, from.Format(model.DateLayout), to.Format(model.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list outfits: %w", err)
	}
	defer rows.Close()

	var outfits []model.OutfitWithItems
	for rows.Next() {
		var o model.OutfitWithItems
		var topImage, bottomImage sql.NullString
		err := rows.Scan(&o.Date,
			&o.Top.ID, &o.Top.UserID, &o.Top.ItemType, &o.Top.Color, &topImage, &o.Top.IsAvailable, &o.Top.CreatedAt,
			&o.Bottom.ID, &o.Bottom.UserID, &o.Bottom.ItemType, &o.Bottom.Color, &bottomImage, &o.Bottom.IsAvailable, &o.Bottom.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outfit: %w", err)
		}
		o.Top.ImageURL = topImage.String
		o.Bottom.ImageURL = bottomImage.String
		outfits = append(outfits, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outfits: %w", err)
	}
	return outfits, nil
}

var _ OutfitRepository = (*PostgresOutfitRepo)(nil)
