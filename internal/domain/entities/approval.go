package entities

import (
	"sort"
	"strings"
	"time"
)

// approvalExpiryWindowDays is the window before an approval end date in
// which the approval is flagged for visual urgency.
const approvalExpiryWindowDays = 90

// ApprovalMeta is one business-approval entry from the external ledger.
// Dates keep their raw text alongside the parsed value so unparseable
// ledger cells are still rendered verbatim.
type ApprovalMeta struct {
	ID         string
	Status     string
	Created    *time.Time
	CreatedRaw string
	EndDate    *time.Time
	EndDateRaw string
	EndAction  string
}

// Approved reports whether the entry carries an "approved" status.
func (m ApprovalMeta) Approved() bool {
	return strings.EqualFold(strings.TrimSpace(m.Status), "approved")
}

// ApproachingExpiry reports whether the approval end date falls within the
// urgency window, today inclusive. Approvals without a parsed end date are
// never approaching expiry.
func (m ApprovalMeta) ApproachingExpiry(today time.Time) bool {
	if m.EndDate == nil {
		return false
	}
	days := DaysBetween(today, *m.EndDate)
	return days >= 0 && days <= approvalExpiryWindowDays
}

// ApprovalKey identifies a ledger entry set: lowercased package name plus
// the exact resolved version.
type ApprovalKey struct {
	Name    string
	Version string
}

// NewApprovalKey lowercases the name so lookups are case-insensitive.
func NewApprovalKey(name, version string) ApprovalKey {
	return ApprovalKey{Name: strings.ToLower(name), Version: version}
}

// ApprovalLedger maps (name, version) to the approvals recorded for it,
// keyed by approval ID. Loaded once per run, read-only afterwards.
type ApprovalLedger map[ApprovalKey]map[string]ApprovalMeta

// Add records an approval entry; the first entry seen for an approval ID
// wins on duplicates.
func (l ApprovalLedger) Add(name, version string, meta ApprovalMeta) {
	key := NewApprovalKey(name, version)
	if l[key] == nil {
		l[key] = make(map[string]ApprovalMeta)
	}
	if _, exists := l[key][meta.ID]; !exists {
		l[key][meta.ID] = meta
	}
}

// Lookup returns the approvals matching the given package name and resolved
// version, ordered for presentation. The order is descending by
// (has-end-date, end-date, status-priority, approval-ID): dated approvals
// surface before undated ones, farther-future end dates before nearer ones,
// and non-approved statuses before approved ones so entries needing
// attention come first. An empty version never matches.
func (l ApprovalLedger) Lookup(name, version string) []ApprovalMeta {
	if version == "" {
		return nil
	}

	byID := l[NewApprovalKey(name, version)]
	if len(byID) == 0 {
		return nil
	}

	entries := make([]ApprovalMeta, 0, len(byID))
	for _, meta := range byID {
		entries = append(entries, meta)
	}

	sort.Slice(entries, func(i, j int) bool {
		return approvalSortKeyLess(entries[j], entries[i])
	})
	return entries
}

// approvalSortKeyLess compares two approvals by the ascending composite key;
// Lookup swaps the arguments to sort descending.
func approvalSortKeyLess(a, b ApprovalMeta) bool {
	aHasEnd, bHasEnd := a.EndDate != nil, b.EndDate != nil
	if aHasEnd != bHasEnd {
		return !aHasEnd
	}

	aEnd, bEnd := approvalEndOrMax(a), approvalEndOrMax(b)
	if !aEnd.Equal(bEnd) {
		return aEnd.Before(bEnd)
	}

	aPrio, bPrio := approvalStatusPriority(a), approvalStatusPriority(b)
	if aPrio != bPrio {
		return aPrio < bPrio
	}

	return a.ID < b.ID
}

// approvalEndOrMax substitutes a far-future sentinel when the end date is
// missing so undated entries compare equal among themselves.
func approvalEndOrMax(m ApprovalMeta) time.Time {
	if m.EndDate != nil {
		return *m.EndDate
	}
	return time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// approvalStatusPriority ranks non-approved statuses above approved ones so
// rejected or pending approvals surface first within equal dates.
func approvalStatusPriority(m ApprovalMeta) int {
	if m.Approved() {
		return 0
	}
	return 1
}
