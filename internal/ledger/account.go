package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidAccountID = errors.New("invalid account id")
	ErrUnknownAccount   = errors.New("unknown account")
)

// AccountType classifies a chart account.
type AccountType string

const (
	TypeAsset     AccountType = "asset"
	TypeLiability AccountType = "liability"
	TypeEquity    AccountType = "equity"
	TypeIncome    AccountType = "income"
	TypeExpense   AccountType = "expense"
)

var rootTypes = map[string]AccountType{
	"Assets":      TypeAsset,
	"Liabilities": TypeLiability,
	"Equity":      TypeEquity,
	"Income":      TypeIncome,
	"Expenses":    TypeExpense,
}

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeIncome, TypeExpense:
		return true
	}

	return false
}

// AccountID is a validated colon-delimited chart path such as "Assets:Personal:Monzo".
// The first segment is always one of the five roots.
type AccountID string

// ParseAccountID validates s and returns it as an AccountID.
func ParseAccountID(s string) (AccountID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidAccountID)
	}

	segments := strings.Split(s, ":")
	if _, ok := rootTypes[segments[0]]; !ok {
		return "", fmt.Errorf("%w: %q has no known root", ErrInvalidAccountID, s)
	}

	for _, seg := range segments {
		if strings.TrimSpace(seg) == "" || seg != strings.TrimSpace(seg) {
			return "", fmt.Errorf("%w: %q has an empty or padded segment", ErrInvalidAccountID, s)
		}
	}

	return AccountID(s), nil
}

// MustAccountID is ParseAccountID for static definitions; it panics on bad input.
func MustAccountID(s string) AccountID {
	id, err := ParseAccountID(s)
	if err != nil {
		panic(err)
	}

	return id
}

func (id AccountID) String() string { return string(id) }

// Parent returns the id up to the last colon, or false for a root.
func (id AccountID) Parent() (AccountID, bool) {
	i := strings.LastIndex(string(id), ":")
	if i < 0 {
		return "", false
	}

	return id[:i], true
}

// Name returns the last path segment.
func (id AccountID) Name() string {
	s := string(id)
	return s[strings.LastIndex(s, ":")+1:]
}

// Type derives the account type from the root segment.
func (id AccountID) Type() AccountType {
	root, _, _ := strings.Cut(string(id), ":")
	return rootTypes[root]
}

// Ancestors lists every proper prefix of id, root first.
func (id AccountID) Ancestors() []AccountID {
	var out []AccountID

	s := string(id)
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			out = append(out, AccountID(s[:i]))
		}
	}

	return out
}

// ChartAccount is one node of the chart of accounts.
type ChartAccount struct {
	ID            AccountID
	Name          string
	Type          AccountType
	ParentID      *AccountID
	Currency      string
	IsPlaceholder bool
	Active        bool
	CreatedAt     time.Time
}
