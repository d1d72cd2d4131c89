package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

func (q *Queries) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.Color == "" {
		c.Color = "#8c8c8c"
	}
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO categories (user_id, name, type, color, icon)
		VALUES (?, ?, ?, ?, ?)`,
		c.UserID, c.Name, string(c.Type), c.Color, c.Icon)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	c.ID = id
	return c, nil
}

func (q *Queries) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	var (
		c       core.Category
		catType string
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, color, icon FROM categories WHERE id = ? AND user_id = ?`,
		id, userID).Scan(&c.ID, &c.UserID, &c.Name, &catType, &c.Color, &c.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.Type = core.TransactionType(catType)
	return c, nil
}

func (q *Queries) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, color, icon FROM categories WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c       core.Category
			catType string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &catType, &c.Color, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TransactionType(catType)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	return nil
}
