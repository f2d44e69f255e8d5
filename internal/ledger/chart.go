package ledger

import (
	"fmt"
	"slices"
)

// Chart is the in-memory lookup table of chart accounts, built once at startup.
type Chart struct {
	accounts map[AccountID]*ChartAccount
}

// NewChart builds a chart and checks that every non-root account has its parent present.
func NewChart(accounts []*ChartAccount) (*Chart, error) {
	c := &Chart{accounts: make(map[AccountID]*ChartAccount, len(accounts))}
	for _, a := range accounts {
		c.accounts[a.ID] = a
	}

	for _, a := range accounts {
		parent, ok := a.ID.Parent()
		if !ok {
			continue
		}

		if _, found := c.accounts[parent]; !found {
			return nil, fmt.Errorf("account %s: parent %s missing", a.ID, parent)
		}
	}

	return c, nil
}

// BuildChart merges the static definitions with leaf accounts derived from
// settings, generating placeholder parents for every intermediate path.
func BuildChart(currency string, leaves []*ChartAccount) (*Chart, error) {
	byID := make(map[AccountID]*ChartAccount)

	add := func(a *ChartAccount) {
		if existing, ok := byID[a.ID]; ok {
			if !a.IsPlaceholder {
				existing.IsPlaceholder = false
				existing.Name = a.Name
				existing.Active = a.Active
				existing.Currency = a.Currency
			}

			return
		}

		byID[a.ID] = a
	}

	for _, a := range append(StaticAccounts(currency), leaves...) {
		for _, anc := range a.ID.Ancestors() {
			add(placeholder(anc, currency))
		}

		add(a)
	}

	all := make([]*ChartAccount, 0, len(byID))
	for _, a := range byID {
		all = append(all, a)
	}

	return NewChart(all)
}

// Get returns the account with the given id.
func (c *Chart) Get(id AccountID) (*ChartAccount, bool) {
	a, ok := c.accounts[id]
	return a, ok
}

// Resolve validates s against the chart.
func (c *Chart) Resolve(s string) (AccountID, error) {
	id, err := ParseAccountID(s)
	if err != nil {
		return "", err
	}

	if _, ok := c.accounts[id]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAccount, id)
	}

	return id, nil
}

// Accounts returns every account sorted by id, so parents precede children.
func (c *Chart) Accounts() []*ChartAccount {
	out := make([]*ChartAccount, 0, len(c.accounts))
	for _, a := range c.accounts {
		out = append(out, a)
	}

	slices.SortFunc(out, func(a, b *ChartAccount) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}

		return 0
	})

	return out
}

func (c *Chart) Len() int { return len(c.accounts) }

func placeholder(id AccountID, currency string) *ChartAccount {
	a := &ChartAccount{
		ID:            id,
		Name:          id.Name(),
		Type:          id.Type(),
		Currency:      currency,
		IsPlaceholder: true,
		Active:        true,
	}

	if p, ok := id.Parent(); ok {
		a.ParentID = &p
	}

	return a
}

// Leaf builds a postable account for id.
func Leaf(id AccountID, name, currency string, active bool) *ChartAccount {
	a := placeholder(id, currency)
	a.IsPlaceholder = false
	a.Active = active

	if name != "" {
		a.Name = name
	}

	return a
}
