package http

import (
	"net/http"

	"fintrack/internal/importer"
)

// handleImport loads a bank CSV export, sent as the raw request body, into the
// account. Category guesses come from the caller's category names.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	uid := userID(r)

	categories, err := s.catalog.ListCategories(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var classifier importer.Classifier
	if len(categories) > 0 {
		classifier = importer.NewKeywordClassifier(categories)
	}

	result, err := s.importer.ImportCSV(r.Context(), uid, accountID, r.Body, classifier)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateUser(uid)
	writeJSON(w, http.StatusOK, result)
}
