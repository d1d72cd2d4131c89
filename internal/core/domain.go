package core

import (
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Checking   AccountType = "checking"
	Investment AccountType = "investment"
)

type (
	TransactionType string

	AccountType string

	Money struct {
		Cents int64
	}

	// Account is a money container. CurrentBalance is a running total kept in
	// lockstep with the account's non-deleted transactions; for credit cards it
	// tracks accumulated debt rather than cash.
	Account struct {
		ID             int64
		UserID         int64
		Name           string
		Type           AccountType
		IsCreditCard   bool
		InitialBalance Money
		CurrentBalance Money
		ClosingDay     int // 1-31, credit cards only; 0 when unset
		DueDay         int // 1-31, credit cards only; 0 when unset
		CreditLimit    Money
		CreatedAt      time.Time
	}

	// Transaction is one money movement. Amount is always non-negative; the
	// sign is carried by Type. InstallmentID links sibling rows of one
	// multi-installment purchase.
	Transaction struct {
		ID            int64
		UserID        int64
		AccountID     int64
		CategoryID    int64 // 0 = uncategorized
		Description   string
		Amount        Money
		Date          time.Time
		Type          TransactionType
		Paid          bool
		InstallmentID string
		CreatedAt     time.Time
	}

	Category struct {
		ID     int64
		UserID int64
		Name   string
		Type   TransactionType
		Color  string
		Icon   string
	}

	// RecurringRule is a monthly transaction template. DayOfMonth is clamped
	// to shorter months when materialized.
	RecurringRule struct {
		ID          int64
		UserID      int64
		AccountID   int64 // required to materialize; rules without one are skipped
		CategoryID  int64
		Description string
		Amount      Money
		Type        TransactionType
		DayOfMonth  int
		Active      bool
	}

	// Budget is a per-category monthly ceiling; at most one per (user, category).
	Budget struct {
		ID         int64
		UserID     int64
		CategoryID int64
		Amount     Money
	}

	// Holding is a position in a listed fund, tracked alongside the ledger but
	// outside it: buying shares does not move any account balance. At most one
	// per (user, ticker); AvgPrice is the average cost per share.
	Holding struct {
		ID        int64
		UserID    int64
		Ticker    string
		Shares    int64
		AvgPrice  Money
		Notes     string
		CreatedAt time.Time
		UpdatedAt time.Time
	}
)

// DeltaCents is the signed effect of the transaction on its account's running
// balance: +amount for income, -amount for expense.
func (t Transaction) DeltaCents() int64 {
	if t.Type == Income {
		return t.Amount.Cents
	}
	return -t.Amount.Cents
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t AccountType) Valid() bool {
	return t == Checking || t == Investment
}

// BillingConfigured reports whether the account has a complete credit-card
// billing cycle configuration.
func (a Account) BillingConfigured() bool {
	return a.IsCreditCard && a.ClosingDay > 0 && a.DueDay > 0
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}
	if a.IsCreditCard {
		if a.ClosingDay != 0 && (a.ClosingDay < 1 || a.ClosingDay > 31) {
			return ErrInvalidDayOfMonth
		}
		if a.DueDay != 0 && (a.DueDay < 1 || a.DueDay > 31) {
			return ErrInvalidDayOfMonth
		}
	}
	return nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.AccountID == 0 {
		return ErrMissingAccount
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (r RecurringRule) Validate() error {
	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(r.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if !r.Type.Valid() {
		return ErrInvalidType
	}
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return ErrInvalidDayOfMonth
	}
	if r.AccountID == 0 {
		return ErrMissingAccount
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.CategoryID == 0 {
		return ErrMissingCategory
	}
	return nil
}

func (h Holding) Validate() error {
	if strings.TrimSpace(h.Ticker) == "" {
		return ErrEmptyTicker
	}
	if h.Shares <= 0 {
		return ErrInvalidShares
	}
	return h.AvgPrice.Validate()
}
