package entities

import "sort"

// ReportRow is a StalenessRow expanded with at most one approval entry.
// A row whose registry key matched several approvals is emitted once per
// approval; all expansions of the same underlying row share a Group so the
// rendering sink can visually merge the shared columns.
type ReportRow struct {
	Folder   string
	Group    int // unique per underlying StalenessRow across the whole run
	Row      StalenessRow
	Approval *ApprovalMeta // nil when no ledger entry matched
}

// Unapproved reports whether no ledger entry matched this row.
func (r ReportRow) Unapproved() bool {
	return r.Approval == nil
}

// ExpandRow produces the presentation rows for one staleness row: a single
// unapproved row when no approvals matched, otherwise one row per approval
// in ledger order.
func ExpandRow(folder string, group int, row StalenessRow, approvals []ApprovalMeta) []ReportRow {
	if len(approvals) == 0 {
		return []ReportRow{{Folder: folder, Group: group, Row: row, Approval: nil}}
	}

	expanded := make([]ReportRow, 0, len(approvals))
	for i := range approvals {
		expanded = append(expanded, ReportRow{
			Folder:   folder,
			Group:    group,
			Row:      row,
			Approval: &approvals[i],
		})
	}
	return expanded
}

// FolderGroup is the ordered row set of one source folder.
type FolderGroup struct {
	Folder string
	Rows   []ReportRow
}

// Report is the complete output of one run: per-folder row groups plus the
// two cross-folder summary views collected from the configured folder
// subset.
type Report struct {
	Folders  []FolderGroup // alphabetical by folder name
	Flagged  []ReportRow   // expansions of alert rows ("Upgradation" view)
	ZeroDiff []ReportRow   // expansions of zero-diff stale rows ("Replace-Remove" view)
}

// SortReportRows orders expanded rows descending by DaysSinceLatest with
// nil-valued rows last, keeping the existing order between equals.
func SortReportRows(rows []ReportRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return lessDaysNilFirst(rows[j].Row.DaysSinceLatest, rows[i].Row.DaysSinceLatest)
	})
}
