package journal

import (
	"slices"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

// Rollup adds every account's own balance to each of its ancestors, so
// placeholders show the total of their subtree. The result is sorted by id.
func Rollup(balances []Balance) []Balance {
	out := make([]Balance, len(balances))
	copy(out, balances)

	index := make(map[ledger.AccountID]int, len(out))
	for i, b := range out {
		index[b.AccountID] = i
	}

	for _, b := range balances {
		for _, anc := range b.AccountID.Ancestors() {
			if i, ok := index[anc]; ok {
				out[i].BalanceMinor += b.BalanceMinor
				out[i].Postings += b.Postings
			}
		}
	}

	slices.SortFunc(out, func(a, b Balance) int {
		switch {
		case a.AccountID < b.AccountID:
			return -1
		case a.AccountID > b.AccountID:
			return 1
		}

		return 0
	})

	return out
}
