package canonical

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/logger"
	"github.com/MrJamesThe3rd/tally/internal/sanitize"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// Sanitizer maps a raw description to a clean label.
type Sanitizer interface {
	Sanitize(raw string) sanitize.Match
}

type Result struct {
	Transactions []*transaction.Canonical
	// UnmappedDescriptions are the distinct raw descriptions no rule matched, sorted.
	UnmappedDescriptions []string
}

// Canonicalize sanitizes every parsed transaction and assigns it a local id.
//
// When the description matches no rule but the row carries a counterparty,
// the counterparty is tried next: direct debits often have a reference code
// as narrative and the real payee in the counterparty field. Only a rule sets
// Category; the provider's own label stays on Parsed.ProviderCategory.
func Canonicalize(ctx context.Context, parsed []*transaction.Parsed, s Sanitizer) *Result {
	res := &Result{Transactions: make([]*transaction.Canonical, 0, len(parsed))}
	unmapped := make(map[string]struct{})

	for _, p := range parsed {
		m := s.Sanitize(p.RawDescription)
		if !m.Matched && p.Counterparty != nil && *p.Counterparty != "" {
			if byCounterparty := s.Sanitize(*p.Counterparty); byCounterparty.Matched {
				m = byCounterparty
			}
		}

		if !m.Matched {
			unmapped[p.RawDescription] = struct{}{}
		}

		res.Transactions = append(res.Transactions, &transaction.Canonical{
			Parsed:           *p,
			ID:               uuid.New(),
			CleanDescription: m.Clean,
			Category:         m.Category,
		})
	}

	for d := range unmapped {
		res.UnmappedDescriptions = append(res.UnmappedDescriptions, d)
	}

	slices.Sort(res.UnmappedDescriptions)

	log := logger.FromContext(ctx)
	log.Debug().Int("transactions", len(res.Transactions)).Int("unmapped", len(res.UnmappedDescriptions)).Msg("canonicalized")

	return res
}
