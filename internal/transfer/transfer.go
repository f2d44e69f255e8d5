package transfer

import (
	"slices"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

const (
	// DefaultWindowDays is how far apart, in calendar days, two legs of a
	// transfer may post.
	DefaultWindowDays = 5
	// MinAmountMinor is the smallest absolute amount considered for pairing.
	// Card verification holds and rounding movements fall below it.
	MinAmountMinor = 100
)

// Method records which pass paired a transfer.
type Method string

const (
	MethodWindow   Method = "window"
	MethodCategory Method = "category"
)

// Pair is one movement between two of the owner's accounts. From is the
// negative leg.
type Pair struct {
	From   *transaction.Canonical
	To     *transaction.Canonical
	Method Method
}

// PostedAt is the earlier of the two legs.
func (p Pair) PostedAt() time.Time {
	if p.To.PostedAt.Before(p.From.PostedAt) {
		return p.To.PostedAt
	}

	return p.From.PostedAt
}

type Result struct {
	Pairs        []Pair
	NonTransfers []*transaction.Canonical
}

// Detector pairs opposite-amount transactions across accounts.
//
// Matching is first-fit in date order, not best-fit: among several candidates
// the earliest unmatched one wins. Two unrelated transactions sharing an amount
// inside the window can be paired by mistake.
type Detector struct {
	WindowDays int
	MinAmount  int64
}

func NewDetector(windowDays int) *Detector {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	return &Detector{WindowDays: windowDays, MinAmount: MinAmountMinor}
}

// Detect partitions txs into transfer pairs and everything else, with the
// default window.
func Detect(txs []*transaction.Canonical) *Result {
	return NewDetector(DefaultWindowDays).Detect(txs)
}

func (d *Detector) Detect(txs []*transaction.Canonical) *Result {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b *transaction.Canonical) int {
		return a.PostedAt.Compare(b.PostedAt)
	})

	byAmount := make(map[int64][]int)

	for i, t := range sorted {
		if t.Abs() >= d.MinAmount {
			byAmount[t.AmountMinor] = append(byAmount[t.AmountMinor], i)
		}
	}

	matched := make([]bool, len(sorted))
	res := &Result{}

	pass := func(method Method, eligible func(t *transaction.Canonical) bool, inWindow func(a, b *transaction.Canonical) bool) {
		for i, t := range sorted {
			if matched[i] || t.Abs() < d.MinAmount || !eligible(t) {
				continue
			}

			for _, j := range byAmount[-t.AmountMinor] {
				c := sorted[j]
				if matched[j] || j == i || c.ChartAccountID == t.ChartAccountID || !inWindow(t, c) {
					continue
				}

				matched[i], matched[j] = true, true
				res.Pairs = append(res.Pairs, orient(t, c, method))

				break
			}
		}
	}

	pass(MethodWindow,
		func(*transaction.Canonical) bool { return true },
		func(a, b *transaction.Canonical) bool { return dayDiff(a.PostedAt, b.PostedAt) <= d.WindowDays })

	// An explicit transfer label overrides temporal proximity: pot and
	// round-up sweeps can post days after the card payment.
	pass(MethodCategory,
		func(t *transaction.Canonical) bool { return t.IsTransferCategory() },
		func(_, _ *transaction.Canonical) bool { return true })

	for i, t := range sorted {
		if !matched[i] {
			res.NonTransfers = append(res.NonTransfers, t)
		}
	}

	return res
}

func orient(a, b *transaction.Canonical, method Method) Pair {
	if a.AmountMinor < 0 {
		return Pair{From: a, To: b, Method: method}
	}

	return Pair{From: b, To: a, Method: method}
}

// dayDiff counts calendar days between a and b, ignoring time of day.
func dayDiff(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)

	days := int(da.Sub(db).Hours() / 24)
	if days < 0 {
		return -days
	}

	return days
}
