package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
)

const accountColumns = `id, user_id, name, type, is_credit_card, initial_balance_cents,
	current_balance_cents, closing_day, due_day, credit_limit_cents, created_at`

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var (
		a          core.Account
		acctType   string
		closing    sql.NullInt64
		due        sql.NullInt64
		limit      sql.NullInt64
		createdAt  int64
		creditCard int64
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &acctType, &creditCard,
		&a.InitialBalance.Cents, &a.CurrentBalance.Cents, &closing, &due, &limit, &createdAt)
	if err != nil {
		return core.Account{}, err
	}
	a.Type = core.AccountType(acctType)
	a.IsCreditCard = creditCard != 0
	a.ClosingDay = int(closing.Int64)
	a.DueDay = int(due.Int64)
	a.CreditLimit = core.Money{Cents: limit.Int64}
	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	return a, nil
}

func nullIfZero(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

// CreateAccount inserts the account with current balance equal to the initial
// balance; from then on only ledger deltas move it.
func (q *Queries) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO accounts (user_id, name, type, is_credit_card, initial_balance_cents,
			current_balance_cents, closing_day, due_day, credit_limit_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Name, string(a.Type), a.IsCreditCard, a.InitialBalance.Cents,
		a.InitialBalance.Cents, nullIfZero(int64(a.ClosingDay)), nullIfZero(int64(a.DueDay)),
		nullIfZero(a.CreditLimit.Cents), now.Unix())
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account insert id: %w", err)
	}
	a.ID = id
	a.CurrentBalance = a.InitialBalance
	a.CreatedAt = now
	return a, nil
}

func (q *Queries) GetAccount(ctx context.Context, userID, id int64) (core.Account, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (q *Queries) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateAccount changes account metadata and billing configuration. Balances
// are never written here; they belong to the ledger.
func (q *Queries) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, type = ?, is_credit_card = ?, closing_day = ?, due_day = ?, credit_limit_cents = ?
		WHERE id = ? AND user_id = ?`,
		a.Name, string(a.Type), a.IsCreditCard, nullIfZero(int64(a.ClosingDay)),
		nullIfZero(int64(a.DueDay)), nullIfZero(a.CreditLimit.Cents), a.ID, a.UserID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", a.ID, core.ErrNotFound)
	}
	return nil
}

func (q *Queries) DeleteAccount(ctx context.Context, userID, id int64) error {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// ApplyBalanceDelta moves the running balance by delta as a single atomic
// UPDATE keyed by account id, so concurrent mutations never lose updates.
func (q *Queries) ApplyBalanceDelta(ctx context.Context, userID, accountID, deltaCents int64) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE accounts SET current_balance_cents = current_balance_cents + ?
		WHERE id = ? AND user_id = ?`,
		deltaCents, accountID, userID)
	if err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply balance delta rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", accountID, core.ErrNotFound)
	}
	return nil
}

// SumCashBalances totals current balances over non-credit-card accounts; the
// projection uses it as the cash-flow base.
func (q *Queries) SumCashBalances(ctx context.Context, userID int64) (int64, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(current_balance_cents), 0)
		FROM accounts WHERE user_id = ? AND is_credit_card = 0`, userID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum cash balances: %w", err)
	}
	return sum, nil
}
