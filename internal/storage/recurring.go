package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

const ruleColumns = `id, user_id, account_id, category_id, description, amount_cents, type, day_of_month, active`

func scanRule(row interface{ Scan(...any) error }) (core.RecurringRule, error) {
	var (
		r        core.RecurringRule
		account  sql.NullInt64
		category sql.NullInt64
		ruleType string
		active   int64
	)
	err := row.Scan(&r.ID, &r.UserID, &account, &category, &r.Description,
		&r.Amount.Cents, &ruleType, &r.DayOfMonth, &active)
	if err != nil {
		return core.RecurringRule{}, err
	}
	r.AccountID = account.Int64
	r.CategoryID = category.Int64
	r.Type = core.TransactionType(ruleType)
	r.Active = active != 0
	return r, nil
}

func (q *Queries) CreateRecurringRule(ctx context.Context, r core.RecurringRule) (core.RecurringRule, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO recurring_rules (user_id, account_id, category_id, description,
			amount_cents, type, day_of_month, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.UserID, nullIfZero(r.AccountID), nullIfZero(r.CategoryID), r.Description,
		r.Amount.Cents, string(r.Type), r.DayOfMonth, r.Active)
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("insert recurring rule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("recurring rule insert id: %w", err)
	}
	r.ID = id
	return r, nil
}

func (q *Queries) GetRecurringRule(ctx context.Context, userID, id int64) (core.RecurringRule, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM recurring_rules WHERE id = ? AND user_id = ?`, id, userID)
	r, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringRule{}, fmt.Errorf("recurring rule %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("get recurring rule: %w", err)
	}
	return r, nil
}

func (q *Queries) collectRules(rows *sql.Rows) ([]core.RecurringRule, error) {
	defer rows.Close()
	var out []core.RecurringRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring rule: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) ListRecurringRules(ctx context.Context, userID int64) ([]core.RecurringRule, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+ruleColumns+` FROM recurring_rules WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring rules: %w", err)
	}
	return q.collectRules(rows)
}

func (q *Queries) ListActiveRecurringRules(ctx context.Context, userID int64) ([]core.RecurringRule, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+ruleColumns+` FROM recurring_rules WHERE user_id = ? AND active = 1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active recurring rules: %w", err)
	}
	return q.collectRules(rows)
}

// ListUsersWithActiveRules feeds the recurring worker: every owner with at
// least one active rule.
func (q *Queries) ListUsersWithActiveRules(ctx context.Context) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM recurring_rules WHERE active = 1 ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users with active rules: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (q *Queries) SetRecurringRuleActive(ctx context.Context, userID, id int64, active bool) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE recurring_rules SET active = ? WHERE id = ? AND user_id = ?`, active, id, userID)
	if err != nil {
		return fmt.Errorf("set recurring rule active: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set recurring rule active rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("recurring rule %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (q *Queries) DeleteRecurringRule(ctx context.Context, userID, id int64) error {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM recurring_rules WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete recurring rule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recurring rule rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("recurring rule %d: %w", id, core.ErrNotFound)
	}
	return nil
}
