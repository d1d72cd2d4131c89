package http

import (
	"net/http"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := s.catalog.CreateCategory(r.Context(), core.Category{
		UserID: userID(r),
		Name:   req.Name,
		Type:   core.TransactionType(req.Type),
		Color:  req.Color,
		Icon:   req.Icon,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.catalog.ListCategories(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.catalog.DeleteCategory(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// handleSetBudget creates or replaces the caller's monthly ceiling for a
// category, so PUT is idempotent.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	budget, err := s.catalog.SetBudget(r.Context(), core.Budget{
		UserID:     userID(r),
		CategoryID: req.CategoryID,
		Amount:     core.Money{Cents: req.AmountCents},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetResponse{
		ID:          budget.ID,
		CategoryID:  budget.CategoryID,
		AmountCents: budget.Amount.Cents,
	})
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.catalog.ListBudgets(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, budgetResponse{ID: b.ID, CategoryID: b.CategoryID, AmountCents: b.Amount.Cents})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.catalog.DeleteBudget(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleCreateRecurringRule(w http.ResponseWriter, r *http.Request) {
	var req recurringRuleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	rule, err := s.catalog.CreateRecurringRule(r.Context(), core.RecurringRule{
		UserID:      userID(r),
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Amount:      core.Money{Cents: req.AmountCents},
		Type:        core.TransactionType(req.Type),
		DayOfMonth:  req.DayOfMonth,
		Active:      active,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateUser(userID(r))
	writeJSON(w, http.StatusCreated, toRecurringRuleResponse(rule))
}

func (s *Server) handleListRecurringRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.catalog.ListRecurringRules(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]recurringRuleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, toRecurringRuleResponse(rule))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSetRecurringRuleActive toggles a rule on or off. Inactive rules stay
// listed but never materialize.
func (s *Server) handleSetRecurringRuleActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.catalog.SetRecurringRuleActive(r.Context(), userID(r), id, req.Active); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateUser(userID(r))
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteRecurringRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.catalog.DeleteRecurringRule(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateUser(userID(r))
	writeJSON(w, http.StatusNoContent, nil)
}

// handleUpsertHolding creates or replaces the caller's position in a ticker,
// so posting the same ticker twice updates it instead of duplicating.
func (s *Server) handleUpsertHolding(w http.ResponseWriter, r *http.Request) {
	var req holdingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	holding, err := s.catalog.UpsertHolding(r.Context(), core.Holding{
		UserID:   userID(r),
		Ticker:   req.Ticker,
		Shares:   req.Shares,
		AvgPrice: core.Money{Cents: req.AvgPriceCents},
		Notes:    req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHoldingResponse(holding))
}

func (s *Server) handleListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := s.catalog.ListHoldings(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]holdingResponse, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, toHoldingResponse(h))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.catalog.DeleteHolding(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// handleGenerate materializes the caller's active rules into a month,
// defaulting to the current one. Safe to call repeatedly.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	// Empty body means "the current month".
	var req generateRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	if req.Year == 0 {
		req.Year = now.Year()
	}
	if req.Month == 0 {
		req.Month = int(now.Month())
	}
	if req.Month < 1 || req.Month > 12 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "month must be between 1 and 12"})
		return
	}

	result, err := s.recurring.Generate(r.Context(), userID(r), req.Year, time.Month(req.Month))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateUser(userID(r))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	months := queryInt(r, "months", 12)

	// Optional explicit starting month; defaults to today.
	start := time.Now().UTC()
	startYear := queryInt(r, "start_year", 0)
	startMonth := queryInt(r, "start_month", 0)
	if startYear > 0 && startMonth >= 1 && startMonth <= 12 {
		start = time.Date(startYear, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
	}

	key := cache.UserKey(uid, "projection", months, start.Year(), int(start.Month()))
	if cached, ok := s.projectionCache.Get(key); ok {
		writeJSON(w, http.StatusOK, toProjectionResponse(cached))
		return
	}

	projection, err := s.recurring.Projection(r.Context(), uid, months, start)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.projectionCache.Set(key, projection)
	writeJSON(w, http.StatusOK, toProjectionResponse(projection))
}
