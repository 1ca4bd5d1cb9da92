package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"finbook/internal/core"
)

// addForm holds the raw form values so a failed submission can be
// redisplayed with everything the user typed still in place.
type addForm struct {
	Date        string
	Type        string
	Category    string
	Description string
	Amount      string
}

func defaultAddForm() addForm {
	return addForm{
		Date: time.Now().Format(core.DateLayout),
		Type: string(core.Expense),
	}
}

// handleAddTransaction serves the add form and records submissions.
// Validation failures redisplay the form with a warning and perform no
// write.
func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ident, _ := identityFromRequest(r)
		s.renderAddForm(w, r, http.StatusOK, defaultAddForm(), "", ident.Username)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	ident, _ := identityFromRequest(r)

	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		s.renderAddForm(w, r, http.StatusBadRequest, defaultAddForm(), "Invalid request format.", ident.Username)
		return
	}

	form := addForm{
		Date:        sanitizeInput(r.Form.Get("date")),
		Type:        sanitizeInput(r.Form.Get("type")),
		Category:    sanitizeInput(r.Form.Get("category")),
		Description: sanitizeInput(r.Form.Get("description")),
		Amount:      sanitizeInput(r.Form.Get("amount")),
	}

	date, err := core.ParseDate(form.Date)
	if err != nil {
		s.renderAddForm(w, r, http.StatusUnprocessableEntity, form, "Date must be a valid date in YYYY-MM-DD format.", ident.Username)
		return
	}

	cents, err := core.ParseDecimalToCents(form.Amount)
	if err != nil {
		s.renderAddForm(w, r, http.StatusUnprocessableEntity, form, "Amount must be a positive number.", ident.Username)
		return
	}

	tx := core.Transaction{
		Date:        date,
		Type:        core.TxType(form.Type),
		Category:    form.Category,
		Description: form.Description,
		Amount:      core.Money{Cents: cents},
		UserID:      ident.UserID,
	}
	if err := tx.Validate(); err != nil {
		s.renderAddForm(w, r, http.StatusUnprocessableEntity, form, validationMessage(err), ident.Username)
		return
	}

	created, err := s.ledger.CreateTransaction(r.Context(), tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save transaction",
			"error", err,
			"type", form.Type,
			"category", form.Category,
			"amount_cents", cents)
		s.renderFailure(w, r)
		return
	}

	slog.InfoContext(r.Context(), "Transaction created",
		"id", created.ID,
		"type", string(created.Type),
		"category", created.Category,
		"amount_cents", created.Amount.Cents,
		"user_id", created.UserID)

	http.Redirect(w, r, "/?added=1", http.StatusSeeOther)
}

func (s *Server) renderAddForm(w http.ResponseWriter, r *http.Request, status int, form addForm, warning, username string) {
	data := struct {
		page
		Form addForm
	}{
		page: page{Title: "Add transaction", Username: username},
		Form: form,
	}
	if warning != "" {
		data.Flash = warning
		data.FlashKind = "warning"
	}
	s.render(w, r, status, "add_page", data)
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amount must be a positive number."
	case errors.Is(err, core.ErrInvalidType):
		return "Transaction type must be Income or Expense."
	case errors.Is(err, core.ErrInvalidDate):
		return "Date must be a valid date in YYYY-MM-DD format."
	case errors.Is(err, core.ErrEmptyCategory):
		return "Category is required."
	default:
		return "Invalid data provided. Please check your inputs."
	}
}
