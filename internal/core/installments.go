package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// postingHourUTC is the fixed time-of-day generated transactions are dated at.
const postingHourUTC = 12

// InstallmentPlan is a user-submitted purchase. Amount is the per-installment
// value (the caller divides the total), Count the number of installments.
type InstallmentPlan struct {
	Description string
	Amount      Money
	Count       int
	Type        TransactionType
	Paid        bool
	CategoryID  int64
	AccountID   int64
	Date        time.Time
}

func (p InstallmentPlan) Validate() error {
	if p.Count < 1 {
		return ErrInvalidInstallments
	}
	draft := Transaction{
		Description: p.Description,
		Amount:      p.Amount,
		Date:        p.Date,
		Type:        p.Type,
		AccountID:   p.AccountID,
	}
	return draft.Validate()
}

// ExpandInstallments turns one purchase into 1..N dated transaction drafts.
// For a configured credit card the base date first moves to the due day of the
// open statement: a purchase on or after the closing day rolls one month
// forward, then the day is forced to the due day (clamped to the month).
// Installment i adds i clamped calendar months to that base. Plans with more
// than one installment share a generated group id and get a " (i/N)"
// description suffix.
func ExpandInstallments(plan InstallmentPlan, account Account) []Transaction {
	base := plan.Date.UTC()
	if account.BillingConfigured() {
		if base.Day() >= account.ClosingDay {
			base = AddMonthsClamped(base, 1)
		}
		day := ClampDay(account.DueDay, base.Year(), base.Month())
		base = time.Date(base.Year(), base.Month(), day, postingHourUTC, 0, 0, 0, time.UTC)
	}

	groupID := ""
	if plan.Count > 1 {
		groupID = uuid.NewString()
	}

	out := make([]Transaction, 0, plan.Count)
	for i := 0; i < plan.Count; i++ {
		desc := plan.Description
		if plan.Count > 1 {
			desc = fmt.Sprintf("%s (%d/%d)", plan.Description, i+1, plan.Count)
		}
		out = append(out, Transaction{
			UserID:        account.UserID,
			AccountID:     plan.AccountID,
			CategoryID:    plan.CategoryID,
			Description:   desc,
			Amount:        plan.Amount,
			Date:          AddMonthsClamped(base, i),
			Type:          plan.Type,
			Paid:          plan.Paid,
			InstallmentID: groupID,
		})
	}
	return out
}

// MaterializationDate is where a recurring rule posts in the target month:
// the rule's day clamped to the month, at the fixed posting hour UTC.
func MaterializationDate(dayOfMonth, year int, month time.Month) time.Time {
	return time.Date(year, month, ClampDay(dayOfMonth, year, month), postingHourUTC, 0, 0, 0, time.UTC)
}
