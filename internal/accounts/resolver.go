package accounts

import (
	"conciliador/internal/domain"
)

// FuzzyThreshold is the minimum similarity ratio for an approximate name match.
const FuzzyThreshold = 0.85

// categoryIndex holds one category's lookup structures. The key slice keeps
// chart order so tie-breaks and first-account picks stay deterministic.
type categoryIndex struct {
	entries map[string]domain.ChartEntry
	keys    []string
	matcher Matcher
}

// Resolver answers name-to-account lookups against the chart of accounts.
// It is built once per run and is read-only afterwards.
type Resolver struct {
	categories map[domain.AccountCategory]*categoryIndex
	histories  map[string]string
}

var allCategories = []domain.AccountCategory{
	domain.CategorySupplier,
	domain.CategoryCustomer,
	domain.CategoryCashEquivalent,
	domain.CategoryPenaltyInterest,
	domain.CategoryDiscount,
}

// NewResolver builds the category maps, the code-to-history map and the fuzzy
// indexes from the chart of accounts. Duplicate display names keep the last
// chart occurrence; entries with empty names are skipped.
func NewResolver(chart []domain.ChartEntry, strategy string) *Resolver {
	r := &Resolver{
		categories: make(map[domain.AccountCategory]*categoryIndex, len(allCategories)),
		histories:  make(map[string]string, len(chart)),
	}
	for _, cat := range allCategories {
		r.categories[cat] = &categoryIndex{entries: make(map[string]domain.ChartEntry)}
	}

	for _, entry := range chart {
		code := FormatCode(entry.AccountCode)
		hist := FormatHistory(entry.HistoryCode)
		if code != "" {
			r.histories[code] = hist
		}

		idx, ok := r.categories[entry.Category]
		if !ok {
			continue
		}
		key := Normalize(entry.DisplayName)
		if key == "" {
			continue
		}
		if _, seen := idx.entries[key]; !seen {
			idx.keys = append(idx.keys, key)
		}
		idx.entries[key] = domain.ChartEntry{
			AccountCode: code,
			DisplayName: entry.DisplayName,
			Category:    entry.Category,
			HistoryCode: hist,
		}
	}

	for _, idx := range r.categories {
		idx.matcher = NewMatcher(strategy, idx.keys)
	}
	return r
}

// Lookup resolves a free-text name against the given categories, exact matches
// first, then fuzzy. Categories are tried in the order given, so the caller
// fixes the priority; a fuzzy ratio tie keeps the earlier category's hit.
func (r *Resolver) Lookup(name string, categories ...domain.AccountCategory) domain.ResolvedAccount {
	key := Normalize(name)
	if key == "" {
		return domain.ResolvedAccount{}
	}

	for _, cat := range categories {
		idx := r.categories[cat]
		if idx == nil {
			continue
		}
		if entry, ok := idx.entries[key]; ok {
			return asResolved(entry)
		}
	}

	var best domain.ResolvedAccount
	bestRatio := 0.0
	for _, cat := range categories {
		idx := r.categories[cat]
		if idx == nil || idx.matcher == nil {
			continue
		}
		candidate, ratio := idx.matcher.Nearest(key)
		if candidate == "" || ratio < FuzzyThreshold {
			continue
		}
		if ratio > bestRatio {
			best = asResolved(idx.entries[candidate])
			bestRatio = ratio
		}
	}
	return best
}

// HistoryForCode returns the history code registered for an account code.
func (r *Resolver) HistoryForCode(code string) string {
	return r.histories[FormatCode(code)]
}

// HasAccountCode reports whether an account code exists anywhere in the chart.
func (r *Resolver) HasAccountCode(code string) bool {
	_, ok := r.histories[FormatCode(code)]
	return ok
}

// HasCategory reports whether the chart has at least one entry in a category.
func (r *Resolver) HasCategory(cat domain.AccountCategory) bool {
	idx := r.categories[cat]
	return idx != nil && len(idx.keys) > 0
}

// FirstAccount returns the first chart entry of a category, in chart order.
// Adjustment rows (penalty, discount) book against this account.
func (r *Resolver) FirstAccount(cat domain.AccountCategory) (domain.ResolvedAccount, bool) {
	idx := r.categories[cat]
	if idx == nil || len(idx.keys) == 0 {
		return domain.ResolvedAccount{}, false
	}
	return asResolved(idx.entries[idx.keys[0]]), true
}

func asResolved(entry domain.ChartEntry) domain.ResolvedAccount {
	return domain.ResolvedAccount{
		AccountCode: entry.AccountCode,
		HistoryCode: entry.HistoryCode,
		Category:    entry.Category,
	}
}
