package http

import (
	"net/http"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

// handleInvoice returns a credit-card statement. With ?year=&month= it is the
// statement closing in that month; without, the one currently open. The cache
// key always carries the resolved statement month, so an entry cached before
// the closing day cannot be served for the next cycle after the rollover.
func (s *Server) handleInvoice(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	uid := userID(r)

	year := queryInt(r, "year", 0)
	month := queryInt(r, "month", 0)
	explicit := year > 0 && month >= 1 && month <= 12

	now := time.Now().UTC()
	if !explicit {
		account, err := s.catalog.GetAccount(r.Context(), uid, accountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !account.IsCreditCard {
			writeError(w, r, core.ErrNotCreditCard)
			return
		}
		y, m := core.OpenStatementMonth(account.ClosingDay, now)
		year, month = y, int(m)
	}

	key := cache.UserKey(uid, "invoice", accountID, year, month)
	if cached, ok := s.invoiceCache.Get(key); ok {
		writeJSON(w, http.StatusOK, toInvoiceResponse(cached))
		return
	}

	var invoice services.Invoice
	if explicit {
		invoice, err = s.invoices.InvoiceForMonth(r.Context(), uid, accountID, year, time.Month(month))
	} else {
		invoice, err = s.invoices.CurrentOpenInvoice(r.Context(), uid, accountID, now)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invoiceCache.Set(key, invoice)
	writeJSON(w, http.StatusOK, toInvoiceResponse(invoice))
}
