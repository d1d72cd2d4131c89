package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	count := req.Installments
	if count == 0 {
		count = 1
	}

	inserted, err := s.ledger.CreateTransaction(r.Context(), userID(r), core.InstallmentPlan{
		Description: req.Description,
		Amount:      core.Money{Cents: req.AmountCents},
		Count:       count,
		Type:        core.TransactionType(req.Type),
		Paid:        req.Paid,
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
		Date:        date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateUser(userID(r))
	writeJSON(w, http.StatusCreated, toTransactionResponses(inserted))
}

// handleListTransactions returns the user's transactions, optionally filtered
// to one calendar month with ?year=&month=.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	year := queryInt(r, "year", 0)
	month := queryInt(r, "month", 0)

	var (
		txs []core.Transaction
		err error
	)
	if year > 0 && month >= 1 && month <= 12 {
		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0).Add(-time.Second)
		txs, err = s.ledger.ListTransactionsInRange(r.Context(), uid, from, to)
	} else {
		txs, err = s.ledger.ListTransactions(r.Context(), uid)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	tx, err := s.ledger.GetTransaction(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.ledger.UpdateTransaction(r.Context(), core.Transaction{
		ID:          id,
		UserID:      userID(r),
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Amount:      core.Money{Cents: req.AmountCents},
		Date:        date,
		Type:        core.TransactionType(req.Type),
		Paid:        req.Paid,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateUser(userID(r))
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

// handleDeleteTransaction removes one transaction; ?all=true takes the whole
// installment group with it.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), userID(r), id, queryBool(r, "all")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateUser(userID(r))
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		var err error
		if date, err = parseDate(req.Date); err != nil {
			writeError(w, r, err)
			return
		}
	}

	inserted, err := s.ledger.Transfer(r.Context(), userID(r),
		req.FromAccountID, req.ToAccountID,
		core.Money{Cents: req.AmountCents}, date, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateUser(userID(r))
	writeJSON(w, http.StatusCreated, toTransactionResponses(inserted))
}
