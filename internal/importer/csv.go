// Package importer loads bank CSV exports into the ledger with duplicate
// detection and keyword-based category guessing.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

const dateLayout = "02/01/2006"

// Row is one parsed CSV line before it becomes a transaction.
type Row struct {
	Date        time.Time
	Description string
	Amount      core.Money
	Type        core.TransactionType
}

// Result summarizes one import run.
type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

type Importer struct {
	repo   *storage.Repository
	ledger *services.LedgerService
}

func New(repo *storage.Repository, ledger *services.LedgerService) *Importer {
	return &Importer{repo: repo, ledger: ledger}
}

// ParseRow turns one CSV record into a Row. Expected columns: date
// (dd/mm/yyyy), description, signed amount (negative = expense, decimal
// comma or dot accepted).
func ParseRow(record []string) (Row, error) {
	if len(record) < 3 {
		return Row{}, fmt.Errorf("expected 3 columns, got %d", len(record))
	}

	date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(record[0]), time.UTC)
	if err != nil {
		return Row{}, fmt.Errorf("parse date %q: %w", record[0], err)
	}

	description := strings.TrimSpace(record[1])
	if description == "" {
		return Row{}, core.ErrEmptyDescription
	}

	raw := strings.TrimSpace(record[2])
	raw = strings.ReplaceAll(raw, ",", ".")
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return Row{}, fmt.Errorf("parse amount %q: %w", record[2], err)
	}
	if amount.IsZero() {
		return Row{}, core.ErrInvalidAmount
	}

	txType := core.Income
	if amount.IsNegative() {
		txType = core.Expense
		amount = amount.Neg()
	}

	cents := amount.Shift(2).Round(0).IntPart()
	return Row{
		Date:        date,
		Description: description,
		Amount:      core.Money{Cents: cents},
		Type:        txType,
	}, nil
}

// ImportCSV reads the whole CSV stream and loads each row into the account.
// Rows already present (same account, day, amount and description) are
// skipped; malformed rows are counted and logged, never fatal.
func (i *Importer) ImportCSV(ctx context.Context, userID, accountID int64, r io.Reader, classifier Classifier) (Result, error) {
	if _, err := i.repo.Queries().GetAccount(ctx, userID, accountID); err != nil {
		return Result{}, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var result Result
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("read csv: %w", err)
		}
		line++

		row, err := ParseRow(record)
		if err != nil {
			// first line is often a header
			if line == 1 {
				continue
			}
			slog.WarnContext(ctx, "Skipping malformed import row",
				"line", line, log.FieldError, err)
			result.Failed++
			continue
		}

		dayStart := time.Date(row.Date.Year(), row.Date.Month(), row.Date.Day(), 0, 0, 0, 0, time.UTC)
		exists, err := i.repo.Queries().ImportedExists(ctx, userID, accountID,
			dayStart, dayStart.AddDate(0, 0, 1), row.Amount.Cents, row.Description)
		if err != nil {
			return result, err
		}
		if exists {
			result.Skipped++
			continue
		}

		var categoryID int64
		if classifier != nil {
			categoryID = classifier.Classify(row.Description)
		}

		if _, err := i.ledger.CreateTransaction(ctx, userID, core.InstallmentPlan{
			Description: row.Description,
			Amount:      row.Amount,
			Count:       1,
			Type:        row.Type,
			Paid:        true,
			CategoryID:  categoryID,
			AccountID:   accountID,
			Date:        row.Date,
		}); err != nil {
			slog.WarnContext(ctx, "Failed to import row",
				"line", line, log.FieldAccountID, accountID,
				"description", row.Description, log.FieldError, err)
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}
