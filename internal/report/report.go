// Package report computes dashboard totals and renders the CSV export.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"finbook/internal/core"
)

// Ledger is the slice of the repository the reporter reads from.
type Ledger interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	SumByType(ctx context.Context, t core.TxType) (int64, error)
}

type Reporter struct {
	ledger    Ledger
	orgPrefix string
}

func New(ledger Ledger, orgPrefix string) *Reporter {
	return &Reporter{ledger: ledger, orgPrefix: orgPrefix}
}

// ComputeSummary returns total income, total expense and their
// difference. An empty ledger yields all zeros.
func (r *Reporter) ComputeSummary(ctx context.Context) (core.Summary, error) {
	income, err := r.ledger.SumByType(ctx, core.Income)
	if err != nil {
		return core.Summary{}, fmt.Errorf("sum income: %w", err)
	}
	expense, err := r.ledger.SumByType(ctx, core.Expense)
	if err != nil {
		return core.Summary{}, fmt.Errorf("sum expense: %w", err)
	}
	return core.Summary{
		Income:  core.Money{Cents: income},
		Expense: core.Money{Cents: expense},
		Balance: core.Money{Cents: income - expense},
	}, nil
}

// csvHeader is the exact header row of every export.
var csvHeader = []string{"Date", "Type", "Category", "Description", "Amount"}

// ExportCSV serializes every transaction as UTF-8 CSV, most recent date
// first, amounts with exactly two decimals. Embedded commas, quotes and
// newlines get standard CSV quoting from encoding/csv.
func (r *Reporter) ExportCSV(ctx context.Context) ([]byte, error) {
	txs, err := r.ledger.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions for export: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range txs {
		row := []string{
			tx.Date.String(),
			string(tx.Type),
			tx.Category,
			tx.Description,
			tx.Amount.String(),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename returns the download name for an export taken at the given
// moment, e.g. "finbook_transactions_2026-08-24.csv".
func (r *Reporter) Filename(now time.Time) string {
	return fmt.Sprintf("%s_transactions_%s.csv", r.orgPrefix, now.Format(core.DateLayout))
}
