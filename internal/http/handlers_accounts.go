package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := s.catalog.CreateAccount(r.Context(), core.Account{
		UserID:         userID(r),
		Name:           req.Name,
		Type:           core.AccountType(req.Type),
		IsCreditCard:   req.IsCreditCard,
		InitialBalance: core.Money{Cents: req.InitialBalance},
		ClosingDay:     req.ClosingDay,
		DueDay:         req.DueDay,
		CreditLimit:    core.Money{Cents: req.CreditLimitCents},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.catalog.ListAccounts(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	account, err := s.catalog.GetAccount(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	var req accountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := s.catalog.UpdateAccount(r.Context(), core.Account{
		ID:           id,
		UserID:       userID(r),
		Name:         req.Name,
		Type:         core.AccountType(req.Type),
		IsCreditCard: req.IsCreditCard,
		ClosingDay:   req.ClosingDay,
		DueDay:       req.DueDay,
		CreditLimit:  core.Money{Cents: req.CreditLimitCents},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateUser(userID(r))
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.catalog.DeleteAccount(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateUser(userID(r))
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAdjustBalance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	var req adjustBalanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tx, err := s.ledger.AdjustBalance(r.Context(), userID(r), id, req.TargetBalanceCents)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateUser(userID(r))
	if tx == nil {
		// already at the target, nothing recorded
		writeJSON(w, http.StatusNoContent, nil)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(*tx))
}
