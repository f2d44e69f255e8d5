package view

import (
	"context"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

const dbTimeout = 5 * time.Second

// FormatAmount formats a minor-unit amount with its currency symbol.
func FormatAmount(minor int64, currency string) string {
	return ledger.FormatMinor(minor, currency)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for database operations.
// The logger in parent, if any, is carried over.
func DbCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, dbTimeout)
}
