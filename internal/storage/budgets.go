package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

// UpsertBudget keeps at most one budget per (user, category); a second write
// for the same pair replaces the amount.
func (q *Queries) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, category_id, amount_cents)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, category_id) DO UPDATE SET amount_cents = excluded.amount_cents`,
		b.UserID, b.CategoryID, b.Amount.Cents)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget insert id: %w", err)
	}
	// On conflict SQLite reports the updated row's id as last insert id only
	// for true inserts; resolve it explicitly to stay correct on updates.
	if err := q.db.QueryRowContext(ctx,
		`SELECT id FROM budgets WHERE user_id = ? AND category_id = ?`,
		b.UserID, b.CategoryID).Scan(&id); err != nil {
		return core.Budget{}, fmt.Errorf("resolve budget id: %w", err)
	}
	b.ID = id
	return b, nil
}

func (q *Queries) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, amount_cents FROM budgets WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteBudget(ctx context.Context, userID, id int64) error {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("budget %d: %w", id, core.ErrNotFound)
	}
	return nil
}
