package http

import (
	"log/slog"
	"net/http"

	"finbook/internal/core"
)

// page carries the fields every template's header needs.
type page struct {
	Title     string
	Username  string
	Flash     string
	FlashKind string
}

type txView struct {
	Date        string
	Type        string
	Category    string
	Description string
	Amount      string
}

type summaryView struct {
	Income          string
	Expense         string
	Balance         string
	BalanceNegative bool
}

func newTxViews(txs []core.Transaction) []txView {
	views := make([]txView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, txView{
			Date:        tx.Date.String(),
			Type:        string(tx.Type),
			Category:    tx.Category,
			Description: tx.Description,
			Amount:      tx.Amount.String(),
		})
	}
	return views
}

func newSummaryView(sum core.Summary) summaryView {
	return summaryView{
		Income:          sum.Income.String(),
		Expense:         sum.Expense.String(),
		Balance:         sum.Balance.String(),
		BalanceNegative: sum.Balance.Cents < 0,
	}
}

// render writes a page template with the given status. Template failures
// after the header has gone out can only be logged.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "template", name, "error", err)
	}
}

// renderFailure is the generic failure page. Unexpected errors never
// surface raw technical detail to the user.
func (s *Server) renderFailure(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusInternalServerError, "error_page", page{Title: "Error"})
}

// handleDashboard shows the aggregate totals and the 10 most recent
// transactions.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ident, _ := identityFromRequest(r)

	sum, err := s.reporter.ComputeSummary(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary computation failed", "error", err)
		s.renderFailure(w, r)
		return
	}
	recent, err := s.ledger.ListRecentTransactions(r.Context(), 10)
	if err != nil {
		slog.ErrorContext(r.Context(), "Recent transactions fetch failed", "error", err)
		s.renderFailure(w, r)
		return
	}

	data := struct {
		page
		Summary      summaryView
		Transactions []txView
	}{
		page:         page{Title: "Dashboard", Username: ident.Username},
		Summary:      newSummaryView(sum),
		Transactions: newTxViews(recent),
	}
	if r.URL.Query().Get("added") == "1" {
		data.Flash = "Transaction added successfully!"
		data.FlashKind = "success"
	}

	s.render(w, r, http.StatusOK, "dashboard_page", data)
}

// handleTransactions lists every transaction, most recent first.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ident, _ := identityFromRequest(r)

	txs, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction list failed", "error", err)
		s.renderFailure(w, r)
		return
	}

	data := struct {
		page
		Transactions []txView
	}{
		page:         page{Title: "Transactions", Username: ident.Username},
		Transactions: newTxViews(txs),
	}
	s.render(w, r, http.StatusOK, "transactions_page", data)
}
