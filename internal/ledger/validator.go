package ledger

import (
	"fmt"
	"sort"
	"strings"

	"conciliador/internal/accounts"
	"conciliador/internal/config"
	"conciliador/internal/domain"
)

// Validator runs the pre-flight account checks that gate synthesis. It applies
// the same lookups the synthesizer will use, so a clean report guarantees
// synthesis cannot hit an unresolved account.
type Validator struct {
	resolver *accounts.Resolver
	cfg      config.Config
}

func NewValidator(resolver *accounts.Resolver, cfg config.Config) *Validator {
	return &Validator{resolver: resolver, cfg: cfg}
}

// Validate resolves every name the batch will need and itemizes what is
// missing. The report is plain data; the caller decides whether to stop.
// Pending outflows are the bank outflows the matcher could not pair.
func (v *Validator) Validate(payments []domain.PaymentRecord, pendingOutflows, inflows []domain.BankRecord) domain.ValidationReport {
	var report domain.ValidationReport
	var missingSuppliers []string

	needsPenalty := false
	needsDiscount := false
	needsFeeOnly := false

	supplierByName := make(map[string]domain.ResolvedAccount)
	for _, p := range payments {
		name := strings.TrimSpace(p.SupplierName)
		if _, seen := supplierByName[name]; !seen {
			resolved := v.resolver.Lookup(name, domain.CategorySupplier, domain.CategoryCustomer)
			if !resolved.Resolved() || resolved.Category != domain.CategorySupplier {
				missingSuppliers = append(missingSuppliers, name)
			}
			supplierByName[name] = resolved
		}

		if !p.Penalty.IsZero() {
			needsPenalty = true
		}
		if _, _, discount := ensureValues(p, v.cfg.InferDiscount); !discount.IsZero() {
			needsDiscount = true
		}
		supplier := supplierByName[name]
		if supplier.Resolved() && supplier.Category == domain.CategorySupplier && p.Penalty.IsZero() {
			if fee, ok := v.cfg.Fees.FeeFor(supplier.AccountCode); ok && fee.IsPositive() {
				needsFeeOnly = true
			}
		}
	}

	// Unmatched outflows debit the matched supplier account, or fall back to
	// the first penalty/interest account. They only block when neither exists.
	seenOutflow := make(map[string]bool)
	for _, b := range pendingOutflows {
		desc := strings.TrimSpace(b.Description)
		key := accounts.Normalize(desc)
		if seenOutflow[key] {
			continue
		}
		seenOutflow[key] = true
		if key != "" && v.resolver.Lookup(desc, domain.CategorySupplier).Resolved() {
			continue
		}
		if v.resolver.HasCategory(domain.CategoryPenaltyInterest) {
			continue
		}
		missingSuppliers = append(missingSuppliers, labelForDescription(desc))
	}

	var missingCustomers []string
	seenInflow := make(map[string]bool)
	for _, b := range inflows {
		desc := strings.TrimSpace(b.Description)
		key := accounts.Normalize(desc)
		if seenInflow[key] {
			continue
		}
		seenInflow[key] = true
		if key != "" && v.resolver.Lookup(desc, domain.CategoryCustomer).Resolved() {
			continue
		}
		missingCustomers = append(missingCustomers, labelForDescription(desc))
	}

	var special []string
	if !v.resolver.Lookup(v.cfg.DefaultBankName, domain.CategoryCashEquivalent).Resolved() {
		special = append(special, fmt.Sprintf("default bank account %q not found under cash equivalents", v.cfg.DefaultBankName))
	}
	if !v.resolver.Lookup(v.cfg.DefaultCashTillName, domain.CategoryCashEquivalent).Resolved() {
		special = append(special, fmt.Sprintf("cash till account %q not found under cash equivalents", v.cfg.DefaultCashTillName))
	}
	if needsPenalty && !v.resolver.HasCategory(domain.CategoryPenaltyInterest) {
		special = append(special, "payments carry penalty values but the chart has no penalty/interest account")
	}
	if needsDiscount && !v.resolver.HasCategory(domain.CategoryDiscount) {
		special = append(special, "payments carry discount values but the chart has no discount account")
	}
	if needsFeeOnly && !v.resolver.HasAccountCode(v.cfg.Fees.FeeOnlyAccount) {
		special = append(special, fmt.Sprintf("fee-only rows require account %s in the chart", v.cfg.Fees.FeeOnlyAccount))
	}

	report.MissingSuppliers = sortedUnique(missingSuppliers)
	report.MissingCustomers = sortedUnique(missingCustomers)
	report.MissingSpecialAccounts = special
	report.HasBlockers = len(report.MissingSuppliers) > 0 ||
		len(report.MissingCustomers) > 0 ||
		len(report.MissingSpecialAccounts) > 0
	return report
}

func labelForDescription(desc string) string {
	if desc == "" {
		return "(no description)"
	}
	return desc
}

func sortedUnique(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	sort.Strings(values)
	out := make([]string, 0, len(values))
	for i, v := range values {
		if i == 0 || v != values[i-1] {
			out = append(out, v)
		}
	}
	return out
}
