package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
)

const transactionColumns = `id, user_id, account_id, category_id, description,
	amount_cents, date, type, paid, installment_id, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t           core.Transaction
		category    sql.NullInt64
		txType      string
		paid        int64
		installment sql.NullString
		date        int64
		createdAt   int64
	)
	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &category, &t.Description,
		&t.Amount.Cents, &date, &txType, &paid, &installment, &createdAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.CategoryID = category.Int64
	t.Type = core.TransactionType(txType)
	t.Paid = paid != 0
	t.InstallmentID = installment.String
	t.Date = time.Unix(date, 0).UTC()
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	return t, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (q *Queries) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, account_id, category_id, description,
			amount_cents, date, type, paid, installment_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.AccountID, nullIfZero(t.CategoryID), t.Description,
		t.Amount.Cents, t.Date.UTC().Unix(), string(t.Type), t.Paid,
		nullIfEmpty(t.InstallmentID), now.Unix())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	t.ID = id
	t.CreatedAt = now
	return t, nil
}

func (q *Queries) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (q *Queries) collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListTransactions returns the user's transactions newest first.
func (q *Queries) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return q.collectTransactions(rows)
}

// ListTransactionsInRange returns transactions with from <= date <= to,
// newest first.
func (q *Queries) ListTransactionsInRange(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC, id DESC`,
		userID, from.UTC().Unix(), to.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("list transactions in range: %w", err)
	}
	return q.collectTransactions(rows)
}

// ListStatementTransactions returns one account's transactions inside a
// billing window, newest first.
func (q *Queries) ListStatementTransactions(ctx context.Context, userID, accountID int64, from, to time.Time) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = ? AND account_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC, id DESC`,
		userID, accountID, from.UTC().Unix(), to.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("list statement transactions: %w", err)
	}
	return q.collectTransactions(rows)
}

// ListInstallmentGroup returns every sibling of one installment purchase.
func (q *Queries) ListInstallmentGroup(ctx context.Context, userID int64, installmentID string) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = ? AND installment_id = ?
		ORDER BY date, id`,
		userID, installmentID)
	if err != nil {
		return nil, fmt.Errorf("list installment group: %w", err)
	}
	return q.collectTransactions(rows)
}

func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE transactions
		SET account_id = ?, category_id = ?, description = ?, amount_cents = ?,
			date = ?, type = ?, paid = ?
		WHERE id = ? AND user_id = ?`,
		t.AccountID, nullIfZero(t.CategoryID), t.Description, t.Amount.Cents,
		t.Date.UTC().Unix(), string(t.Type), t.Paid, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", t.ID, core.ErrNotFound)
	}
	return nil
}

func (q *Queries) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// DeleteAccountTransactions removes every transaction of one account; used by
// the account delete cascade.
func (q *Queries) DeleteAccountTransactions(ctx context.Context, userID, accountID int64) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE account_id = ? AND user_id = ?`, accountID, userID)
	if err != nil {
		return fmt.Errorf("delete account transactions: %w", err)
	}
	return nil
}

// MaterializedKey identifies one recurring materialization. The duplicate
// check matches every field so that editing a rule after a partial run
// neither suppresses nor duplicates incorrectly.
type MaterializedKey struct {
	UserID      int64
	AccountID   int64
	CategoryID  int64
	Description string
	AmountCents int64
	Type        core.TransactionType
	MonthStart  time.Time
	MonthEnd    time.Time // exclusive
}

func (q *Queries) MaterializedExists(ctx context.Context, k MaterializedKey) (bool, error) {
	var exists int64
	err := q.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE user_id = ? AND account_id = ? AND category_id IS ?
				AND description = ? AND amount_cents = ? AND type = ?
				AND date >= ? AND date < ?
		)`,
		k.UserID, k.AccountID, nullIfZero(k.CategoryID), k.Description,
		k.AmountCents, string(k.Type), k.MonthStart.UTC().Unix(), k.MonthEnd.UTC().Unix()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("materialized exists: %w", err)
	}
	return exists != 0, nil
}

// ImportedExists is the CSV import dedup check: same account, same calendar
// day, same absolute amount, same description.
func (q *Queries) ImportedExists(ctx context.Context, userID, accountID int64, dayStart, dayEnd time.Time, amountCents int64, description string) (bool, error) {
	var exists int64
	err := q.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE user_id = ? AND account_id = ? AND date >= ? AND date < ?
				AND amount_cents = ? AND description = ?
		)`,
		userID, accountID, dayStart.UTC().Unix(), dayEnd.UTC().Unix(),
		amountCents, description).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("imported exists: %w", err)
	}
	return exists != 0, nil
}

// CategoryReferenced reports whether any transaction still points at the
// category; deletion is blocked while it does.
func (q *Queries) CategoryReferenced(ctx context.Context, categoryID int64) (bool, error) {
	var exists int64
	err := q.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE category_id = ?)`, categoryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("category referenced: %w", err)
	}
	return exists != 0, nil
}
