package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TxType = "Income"
	Expense TxType = "Expense"
)

// DateLayout is the only accepted textual form for transaction dates.
const DateLayout = "2006-01-02"

type (
	TxType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single financial event. Records are write-once:
	// there is no update or delete path anywhere in the system.
	Transaction struct {
		ID          int64
		Date        Date
		Type        TxType
		Category    string
		Description string
		Amount      Money
		UserID      int64
	}

	// Summary holds the aggregate totals shown on the dashboard.
	// Balance is always Income minus Expense.
	Summary struct {
		Income  Money
		Expense Money
		Balance Money
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyCategory = errors.New("empty category")
)

// ParseDate parses a calendar date in YYYY-MM-DD form. Anything else,
// including values with a time component, fails with ErrInvalidDate.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// String renders the date back in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (t TxType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (tx Transaction) Validate() error {
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrEmptyCategory
	}
	if len(tx.Category) > 50 {
		return errors.New("category too long (max 50 characters)")
	}
	if len(tx.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return tx.Amount.Validate()
}
