package match

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"conciliador/internal/domain"
)

// Params controls the pairing rules.
//
// StrictDateMatching pairs on exact date plus amount (the default rule).
// When it is off, amounts still match exactly but dates may drift up to
// ToleranceDays in either direction.
type Params struct {
	StrictDateMatching bool
	ToleranceDays      int
}

// DefaultParams returns the strict pairing used when nothing is configured.
func DefaultParams() Params {
	return Params{StrictDateMatching: true}
}

// unmatchableDays marks an unparseable date as far outside any tolerance.
const unmatchableDays = 999

// Match pairs payment records against bank outflows and reports pendencies for
// whatever could not be paired. It never fails; absence of a match is a normal
// outcome carried in the result.
func Match(payments []domain.PaymentRecord, outflows []domain.BankRecord, params Params) domain.MatchResult {
	matchedPay := make(map[int]bool)
	matchedBank := make(map[int]bool)

	var groups []domain.MatchGroup
	if params.StrictDateMatching {
		groups = matchStrict(payments, outflows, matchedPay, matchedBank)
	} else {
		groups = matchWithTolerance(payments, outflows, params.ToleranceDays, matchedPay, matchedBank)
	}

	result := domain.MatchResult{Groups: groups}
	for i, p := range payments {
		if matchedPay[i] {
			continue
		}
		result.PendingPayments = append(result.PendingPayments, domain.Pendency{
			Side:     domain.PendencySidePayment,
			RecordID: p.ID,
			Reason:   explainPayment(p, outflows, params),
		})
	}
	for j, b := range outflows {
		if matchedBank[j] {
			continue
		}
		result.PendingBankOutflows = append(result.PendingBankOutflows, domain.Pendency{
			Side:     domain.PendencySideBankOutflow,
			RecordID: b.ID,
			Reason:   explainOutflow(b, payments, params),
		})
	}

	total := len(payments)
	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(len(groups))/float64(total)*1000) / 10
	}
	result.Stats = domain.MatchStats{
		MatchedPayments:     len(groups),
		PendingPayments:     len(result.PendingPayments),
		PendingBankOutflows: len(result.PendingBankOutflows),
		ReconciliationRate:  rate,
		QualityAlert:        rate < 85,
	}
	return result
}

// matchStrict pairs on a composite (day, amount) key. Within each key group
// records carry an ordinal following input order, and payment ordinal k pairs
// with bank ordinal k, which realizes FIFO for duplicated (date, amount) pairs.
func matchStrict(payments []domain.PaymentRecord, outflows []domain.BankRecord, matchedPay, matchedBank map[int]bool) []domain.MatchGroup {
	bankByKey := make(map[string][]int)
	for j, b := range outflows {
		if b.Date.IsZero() || b.Amount.IsZero() {
			continue
		}
		key := groupKey(b.Date, b.Amount)
		bankByKey[key] = append(bankByKey[key], j)
	}

	var groups []domain.MatchGroup
	ordinals := make(map[string]int)
	for i, p := range payments {
		if p.Date.IsZero() || p.PaidAmount.IsZero() {
			continue
		}
		key := groupKey(p.Date, p.PaidAmount)
		ord := ordinals[key]
		ordinals[key]++

		slots := bankByKey[key]
		if ord >= len(slots) {
			continue
		}
		j := slots[ord]
		groups = append(groups, domain.MatchGroup{
			ReferenceDate:   p.Date,
			ReferenceAmount: p.PaidAmount,
			PaymentIDs:      []int{p.ID},
			BankIDs:         []int{outflows[j].ID},
			RuleLabel:       domain.RuleExactDateAmount,
		})
		matchedPay[i] = true
		matchedBank[j] = true
	}
	return groups
}

// matchWithTolerance greedily assigns, for each payment in input order, the
// unused outflow with an exactly equal amount and the smallest day difference
// within the window. Ties keep the outflow listed first. Assignments are
// permanent; there is no backtracking.
func matchWithTolerance(payments []domain.PaymentRecord, outflows []domain.BankRecord, toleranceDays int, matchedPay, matchedBank map[int]bool) []domain.MatchGroup {
	var groups []domain.MatchGroup
	for i, p := range payments {
		if p.Date.IsZero() || p.PaidAmount.IsZero() {
			continue
		}
		amount := p.PaidAmount.Round(2)

		bestPos := -1
		bestDiff := 0
		for j, b := range outflows {
			if matchedBank[j] || b.Date.IsZero() || b.Amount.IsZero() {
				continue
			}
			if !b.Amount.Round(2).Equal(amount) {
				continue
			}
			diff := dayDiff(p.Date, b.Date)
			if diff > toleranceDays {
				continue
			}
			if bestPos == -1 || diff < bestDiff {
				bestPos = j
				bestDiff = diff
			}
		}
		if bestPos == -1 {
			continue
		}
		groups = append(groups, domain.MatchGroup{
			ReferenceDate:   p.Date,
			ReferenceAmount: p.PaidAmount,
			PaymentIDs:      []int{p.ID},
			BankIDs:         []int{outflows[bestPos].ID},
			RuleLabel:       domain.RuleAmountWithinTolerance,
		})
		matchedPay[i] = true
		matchedBank[bestPos] = true
	}
	return groups
}

func groupKey(date time.Time, amount decimal.Decimal) string {
	return fmt.Sprintf("%s|%s", dayOf(date).Format(time.DateOnly), amount.Round(2).StringFixed(2))
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayDiff(a, b time.Time) int {
	if a.IsZero() || b.IsZero() {
		return unmatchableDays
	}
	d := dayOf(a).Sub(dayOf(b)) / (24 * time.Hour)
	if d < 0 {
		d = -d
	}
	return int(d)
}

// explainPayment builds the human-readable reason an unmatched payment found
// no counterpart. It only annotates; it never blocks the run.
func explainPayment(p domain.PaymentRecord, outflows []domain.BankRecord, params Params) string {
	if len(outflows) == 0 {
		return "bank statement has no outflows"
	}
	if p.Date.IsZero() || p.PaidAmount.IsZero() {
		return "payment is missing a parseable date or amount"
	}

	amount := p.PaidAmount.Round(2)
	var sameValue []domain.BankRecord
	for _, b := range outflows {
		if b.Amount.Round(2).Equal(amount) {
			sameValue = append(sameValue, b)
		}
	}
	if len(sameValue) == 0 {
		reasons := []string{fmt.Sprintf("no bank outflow with the exact amount %s", amount.StringFixed(2))}
		if near := countWithinOnePercent(amount, outflows); near > 0 {
			reasons = append(reasons, fmt.Sprintf("%d outflow(s) are within 1%% of the amount", near))
		}
		return strings.Join(reasons, "; ")
	}

	day := dayOf(p.Date)
	for _, b := range sameValue {
		if dayOf(b.Date).Equal(day) {
			return "an outflow with this date and amount exists but was consumed by an earlier payment (FIFO)"
		}
	}

	if params.StrictDateMatching {
		return fmt.Sprintf("amount found but not on %s; available dates for this amount: %s",
			day.Format("02/01/2006"), availableDates(sameValue))
	}
	for _, b := range sameValue {
		if dayDiff(p.Date, b.Date) <= params.ToleranceDays {
			return "outflows with this amount exist inside the tolerance window but were consumed by earlier payments"
		}
	}
	return fmt.Sprintf("amount found but outside the ±%d day tolerance window", params.ToleranceDays)
}

// explainOutflow is the bank-side twin of explainPayment.
func explainOutflow(b domain.BankRecord, payments []domain.PaymentRecord, params Params) string {
	if len(payments) == 0 {
		return "payment sheet has no records"
	}
	if b.Date.IsZero() || b.Amount.IsZero() {
		return "bank record is missing a parseable date or amount"
	}

	amount := b.Amount.Round(2)
	var sameValue []domain.PaymentRecord
	for _, p := range payments {
		if p.PaidAmount.Round(2).Equal(amount) {
			sameValue = append(sameValue, p)
		}
	}
	if len(sameValue) == 0 {
		return fmt.Sprintf("no payment with the exact amount %s", amount.StringFixed(2))
	}

	day := dayOf(b.Date)
	for _, p := range sameValue {
		if dayOf(p.Date).Equal(day) {
			return "a payment with this date and amount exists but was paired with an earlier outflow (FIFO)"
		}
	}
	if params.StrictDateMatching {
		return fmt.Sprintf("amount found among payments but not on %s", day.Format("02/01/2006"))
	}
	return fmt.Sprintf("amount found among payments but outside the ±%d day tolerance window", params.ToleranceDays)
}

func countWithinOnePercent(amount decimal.Decimal, outflows []domain.BankRecord) int {
	lo := amount.Mul(decimal.NewFromFloat(0.99))
	hi := amount.Mul(decimal.NewFromFloat(1.01))
	n := 0
	for _, b := range outflows {
		v := b.Amount.Round(2)
		if v.GreaterThanOrEqual(lo) && v.LessThanOrEqual(hi) {
			n++
		}
	}
	return n
}

func availableDates(records []domain.BankRecord) string {
	seen := make(map[string]bool)
	var dates []string
	for _, b := range records {
		d := dayOf(b.Date).Format("02/01/2006")
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)
	return strings.Join(dates, ", ")
}
