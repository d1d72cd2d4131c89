package http

import (
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type accountRequest struct {
	Name             string `json:"name"`
	Type             string `json:"type"`
	IsCreditCard     bool   `json:"is_credit_card"`
	InitialBalance   int64  `json:"initial_balance_cents"`
	ClosingDay       int    `json:"closing_day"`
	DueDay           int    `json:"due_day"`
	CreditLimitCents int64  `json:"credit_limit_cents"`
}

type accountResponse struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	IsCreditCard     bool      `json:"is_credit_card"`
	InitialBalance   int64     `json:"initial_balance_cents"`
	CurrentBalance   int64     `json:"current_balance_cents"`
	ClosingDay       int       `json:"closing_day,omitempty"`
	DueDay           int       `json:"due_day,omitempty"`
	CreditLimitCents int64     `json:"credit_limit_cents,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:               a.ID,
		Name:             a.Name,
		Type:             string(a.Type),
		IsCreditCard:     a.IsCreditCard,
		InitialBalance:   a.InitialBalance.Cents,
		CurrentBalance:   a.CurrentBalance.Cents,
		ClosingDay:       a.ClosingDay,
		DueDay:           a.DueDay,
		CreditLimitCents: a.CreditLimit.Cents,
		CreatedAt:        a.CreatedAt,
	}
}

type transactionRequest struct {
	AccountID    int64  `json:"account_id"`
	CategoryID   int64  `json:"category_id,omitempty"`
	Description  string `json:"description"`
	AmountCents  int64  `json:"amount_cents"`
	Date         string `json:"date"`
	Type         string `json:"type"`
	Paid         bool   `json:"paid"`
	Installments int    `json:"installments,omitempty"`
}

type transactionResponse struct {
	ID            int64     `json:"id"`
	AccountID     int64     `json:"account_id"`
	CategoryID    int64     `json:"category_id,omitempty"`
	Description   string    `json:"description"`
	AmountCents   int64     `json:"amount_cents"`
	Date          time.Time `json:"date"`
	Type          string    `json:"type"`
	Paid          bool      `json:"paid"`
	InstallmentID string    `json:"installment_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		AccountID:     t.AccountID,
		CategoryID:    t.CategoryID,
		Description:   t.Description,
		AmountCents:   t.Amount.Cents,
		Date:          t.Date,
		Type:          string(t.Type),
		Paid:          t.Paid,
		InstallmentID: t.InstallmentID,
		CreatedAt:     t.CreatedAt,
	}
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

type transferRequest struct {
	FromAccountID int64  `json:"from_account_id"`
	ToAccountID   int64  `json:"to_account_id"`
	AmountCents   int64  `json:"amount_cents"`
	Date          string `json:"date"`
	Description   string `json:"description,omitempty"`
}

type adjustBalanceRequest struct {
	TargetBalanceCents int64 `json:"target_balance_cents"`
}

type categoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

type categoryResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
	Icon  string `json:"icon,omitempty"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Type: string(c.Type), Color: c.Color, Icon: c.Icon}
}

type budgetRequest struct {
	CategoryID  int64 `json:"category_id"`
	AmountCents int64 `json:"amount_cents"`
}

type budgetResponse struct {
	ID          int64 `json:"id"`
	CategoryID  int64 `json:"category_id"`
	AmountCents int64 `json:"amount_cents"`
}

type recurringRuleRequest struct {
	AccountID   int64  `json:"account_id"`
	CategoryID  int64  `json:"category_id,omitempty"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Type        string `json:"type"`
	DayOfMonth  int    `json:"day_of_month"`
	Active      *bool  `json:"active,omitempty"`
}

type recurringRuleResponse struct {
	ID          int64  `json:"id"`
	AccountID   int64  `json:"account_id"`
	CategoryID  int64  `json:"category_id,omitempty"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Type        string `json:"type"`
	DayOfMonth  int    `json:"day_of_month"`
	Active      bool   `json:"active"`
}

func toRecurringRuleResponse(r core.RecurringRule) recurringRuleResponse {
	return recurringRuleResponse{
		ID:          r.ID,
		AccountID:   r.AccountID,
		CategoryID:  r.CategoryID,
		Description: r.Description,
		AmountCents: r.Amount.Cents,
		Type:        string(r.Type),
		DayOfMonth:  r.DayOfMonth,
		Active:      r.Active,
	}
}

type holdingRequest struct {
	Ticker        string `json:"ticker"`
	Shares        int64  `json:"shares"`
	AvgPriceCents int64  `json:"avg_price_cents"`
	Notes         string `json:"notes,omitempty"`
}

type holdingResponse struct {
	ID            int64     `json:"id"`
	Ticker        string    `json:"ticker"`
	Shares        int64     `json:"shares"`
	AvgPriceCents int64     `json:"avg_price_cents"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toHoldingResponse(h core.Holding) holdingResponse {
	return holdingResponse{
		ID:            h.ID,
		Ticker:        h.Ticker,
		Shares:        h.Shares,
		AvgPriceCents: h.AvgPrice.Cents,
		Notes:         h.Notes,
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
	}
}

type generateRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type invoiceResponse struct {
	AccountID    int64                 `json:"account_id"`
	PeriodStart  time.Time             `json:"period_start"`
	PeriodClose  time.Time             `json:"period_close"`
	PaymentDue   time.Time             `json:"payment_due"`
	TotalCents   int64                 `json:"total_cents"`
	Status       string                `json:"status"`
	Transactions []transactionResponse `json:"transactions"`
}

func toInvoiceResponse(inv services.Invoice) invoiceResponse {
	return invoiceResponse{
		AccountID:    inv.AccountID,
		PeriodStart:  inv.Period.Start,
		PeriodClose:  inv.Period.Close,
		PaymentDue:   inv.Period.Due,
		TotalCents:   inv.Total.Cents,
		Status:       inv.Status,
		Transactions: toTransactionResponses(inv.Transactions),
	}
}

type projectionItemResponse struct {
	Year             int   `json:"year"`
	Month            int   `json:"month"`
	IncomeCents      int64 `json:"income_cents"`
	ExpenseCents     int64 `json:"expense_cents"`
	NetCents         int64 `json:"net_cents"`
	ProjectedBalance int64 `json:"projected_balance_cents"`
}

type projectionResponse struct {
	StartBalanceCents int64                    `json:"start_balance_cents"`
	Items             []projectionItemResponse `json:"items"`
}

func toProjectionResponse(p core.Projection) projectionResponse {
	out := projectionResponse{StartBalanceCents: p.StartBalance.Cents}
	for _, item := range p.Items {
		out.Items = append(out.Items, projectionItemResponse{
			Year:             item.Year,
			Month:            int(item.Month),
			IncomeCents:      item.Income.Cents,
			ExpenseCents:     item.Expense.Cents,
			NetCents:         item.Net.Cents,
			ProjectedBalance: item.ProjectedBalance.Cents,
		})
	}
	return out
}
