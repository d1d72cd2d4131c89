package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
)

const holdingColumns = `id, user_id, ticker, shares, avg_price_cents, notes, created_at, updated_at`

func scanHolding(row interface{ Scan(...any) error }) (core.Holding, error) {
	var (
		h         core.Holding
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(&h.ID, &h.UserID, &h.Ticker, &h.Shares, &h.AvgPrice.Cents,
		&h.Notes, &createdAt, &updatedAt)
	if err != nil {
		return core.Holding{}, err
	}
	h.CreatedAt = time.Unix(createdAt, 0).UTC()
	h.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return h, nil
}

// UpsertHolding keeps at most one position per (user, ticker); a second write
// for the same ticker replaces shares, average price and notes.
func (q *Queries) UpsertHolding(ctx context.Context, h core.Holding) (core.Holding, error) {
	now := time.Now().UTC()
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO holdings (user_id, ticker, shares, avg_price_cents, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, ticker) DO UPDATE SET
			shares = excluded.shares,
			avg_price_cents = excluded.avg_price_cents,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		h.UserID, h.Ticker, h.Shares, h.AvgPrice.Cents, h.Notes, now.Unix(), now.Unix())
	if err != nil {
		return core.Holding{}, fmt.Errorf("upsert holding: %w", err)
	}

	row := q.db.QueryRowContext(ctx,
		`SELECT `+holdingColumns+` FROM holdings WHERE user_id = ? AND ticker = ?`,
		h.UserID, h.Ticker)
	out, err := scanHolding(row)
	if err != nil {
		return core.Holding{}, fmt.Errorf("resolve holding: %w", err)
	}
	return out, nil
}

func (q *Queries) ListHoldings(ctx context.Context, userID int64) ([]core.Holding, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+holdingColumns+` FROM holdings WHERE user_id = ? ORDER BY ticker`, userID)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	defer rows.Close()

	var out []core.Holding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (q *Queries) GetHolding(ctx context.Context, userID, id int64) (core.Holding, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+holdingColumns+` FROM holdings WHERE id = ? AND user_id = ?`, id, userID)
	h, err := scanHolding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Holding{}, fmt.Errorf("holding %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Holding{}, fmt.Errorf("get holding: %w", err)
	}
	return h, nil
}

func (q *Queries) DeleteHolding(ctx context.Context, userID, id int64) error {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM holdings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete holding: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete holding rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("holding %d: %w", id, core.ErrNotFound)
	}
	return nil
}
