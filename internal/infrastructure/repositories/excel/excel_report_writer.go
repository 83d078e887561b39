// Package excel renders the staleness report as a styled XLSX workbook:
// one sheet per source folder plus the cross-folder Upgradation and
// Replace-Remove summary sheets.
package excel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rios0rios0/pinreport/internal/domain/entities"
	"github.com/rios0rios0/pinreport/internal/domain/repositories"
)

const (
	maxSheetNameLen  = 31
	fallbackSheet    = "Sheet"
	defaultSheetName = "Sheet1" // excelize's initial sheet, renamed on first use

	upgradationSheet   = "Upgradation"
	replaceRemoveSheet = "Replace-Remove Libs"

	dateNumberFormat = "DD-MMM-YYYY"
	dateWidthSample  = "02-Jan-2006"
)

// Workbook fill colors.
const (
	headerColor  = "1F4E78"
	evenColor    = "F2F6FA"
	oddColor     = "FFFFFF"
	alertColor   = "F8D7DA"
	warningColor = "FFF3CD"
	baOkColor    = "D4EDDA"
	baBadColor   = "F8D7DA"
	linkColor    = "0563C1"
)

var sheetHeaders = []string{
	"package",
	"current_version",
	"current_release_date",
	"latest_version",
	"latest_release_date",
	"days_difference",
	"days_since_latest_release",
	"days_since_current_release",
	"business_approval_ids",
	"business_approval_status",
	"business_approval_created_date",
	"business_approval_end_date",
	"business_approval_end_date_action",
}

// illegalSheetChars are characters a sheet title may not contain.
var illegalSheetChars = regexp.MustCompile(`[\\/*?:\[\]]`)

// ExcelReportWriter implements repositories.ReportWriter on top of excelize.
type ExcelReportWriter struct{}

// NewExcelReportWriter creates a new workbook writer.
func NewExcelReportWriter() *ExcelReportWriter {
	return &ExcelReportWriter{}
}

var _ repositories.ReportWriter = (*ExcelReportWriter)(nil)

// Write renders the report and saves it to opts.Path.
func (w *ExcelReportWriter) Write(report *entities.Report, opts repositories.WriteOptions) error {
	file := excelize.NewFile()
	defer file.Close()

	styles, err := newStyleSet(file)
	if err != nil {
		return fmt.Errorf("failed to create styles: %w", err)
	}

	today := entities.DateOnly(time.Now())
	renderers := w.orderSheets(report, opts)

	usedNames := map[string]bool{}
	for i, spec := range renderers {
		sheet := uniqueSheetName(usedNames, SanitizeSheetName(spec.title))
		if i == 0 {
			if renameErr := file.SetSheetName(defaultSheetName, sheet); renameErr != nil {
				return fmt.Errorf("failed to rename sheet: %w", renameErr)
			}
		} else {
			if _, newErr := file.NewSheet(sheet); newErr != nil {
				return fmt.Errorf("failed to create sheet %q: %w", sheet, newErr)
			}
		}
		if renderErr := spec.render(file, styles, sheet, today); renderErr != nil {
			return fmt.Errorf("failed to render sheet %q: %w", sheet, renderErr)
		}
	}

	if saveErr := file.SaveAs(opts.Path); saveErr != nil {
		return fmt.Errorf("failed to save workbook %q: %w", opts.Path, saveErr)
	}
	return nil
}

// sheetSpec pairs a sheet title with its renderer so sheets can be created
// in the preferred order up front (excelize keeps creation order).
type sheetSpec struct {
	title  string
	render func(f *excelize.File, styles *styleSet, sheet string, today time.Time) error
}

// orderSheets lays out the workbook: preferred titles first (when present),
// then every remaining folder sheet alphabetically, then any remaining
// summary sheet.
func (w *ExcelReportWriter) orderSheets(report *entities.Report, opts repositories.WriteOptions) []sheetSpec {
	specs := make(map[string]sheetSpec)
	natural := make([]string, 0, len(report.Folders)+2)
	for _, group := range report.Folders {
		group := group
		specs[group.Folder] = sheetSpec{
			title: group.Folder,
			render: func(f *excelize.File, styles *styleSet, sheet string, today time.Time) error {
				return w.renderFolderSheet(f, styles, sheet, group.Rows, opts.LinkTemplate, today)
			},
		}
		natural = append(natural, group.Folder)
	}
	if opts.IncludeSummaries {
		specs[upgradationSheet] = sheetSpec{
			title: upgradationSheet,
			render: func(f *excelize.File, styles *styleSet, sheet string, today time.Time) error {
				return w.renderSummarySheet(f, styles, sheet, report.Flagged, opts.LinkTemplate, today, false)
			},
		}
		specs[replaceRemoveSheet] = sheetSpec{
			title: replaceRemoveSheet,
			render: func(f *excelize.File, styles *styleSet, sheet string, today time.Time) error {
				return w.renderSummarySheet(f, styles, sheet, report.ZeroDiff, opts.LinkTemplate, today, true)
			},
		}
		natural = append(natural, upgradationSheet, replaceRemoveSheet)
	}

	ordered := make([]sheetSpec, 0, len(specs))
	taken := map[string]bool{}
	for _, title := range opts.SheetOrder {
		if spec, ok := specs[title]; ok && !taken[title] {
			ordered = append(ordered, spec)
			taken[title] = true
		}
	}
	for _, title := range natural {
		if !taken[title] {
			ordered = append(ordered, specs[title])
			taken[title] = true
		}
	}
	return ordered
}

// SanitizeSheetName strips characters illegal in a sheet title and truncates
// to the workbook limit, defaulting when nothing survives. The limit counts
// runes, never bytes, so multibyte titles stay valid UTF-8.
func SanitizeSheetName(name string) string {
	cleaned := illegalSheetChars.ReplaceAllString(name, "_")
	if cleaned == "" {
		return fallbackSheet
	}
	if runes := []rune(cleaned); len(runes) > maxSheetNameLen {
		cleaned = string(runes[:maxSheetNameLen])
	}
	return cleaned
}

// uniqueSheetName suffixes a counter when sanitization collapses two
// distinct folder names onto the same title.
func uniqueSheetName(used map[string]bool, name string) string {
	runes := []rune(name)
	candidate := name
	for i := 1; used[candidate]; i++ {
		suffix := strconv.Itoa(i)
		if len(runes)+len(suffix) > maxSheetNameLen {
			candidate = string(runes[:maxSheetNameLen-len(suffix)]) + suffix
		} else {
			candidate = name + suffix
		}
	}
	used[candidate] = true
	return candidate
}

// cellValue is one rendered cell: the value plus whether it is a date (and
// should receive the date number format).
type cellValue struct {
	value  any
	isDate bool
}

func dateCell(t *time.Time, raw string) cellValue {
	if t != nil {
		return cellValue{value: *t, isDate: true}
	}
	if raw != "" {
		return cellValue{value: raw}
	}
	return cellValue{}
}

func intCell(v *int) cellValue {
	if v == nil {
		return cellValue{}
	}
	return cellValue{value: *v}
}

func stringCell(v string) cellValue {
	if v == "" {
		return cellValue{}
	}
	return cellValue{value: v}
}

// rowCells builds the 13 data cells for one expanded report row.
func rowCells(row entities.ReportRow) []cellValue {
	cells := []cellValue{
		stringCell(row.Row.Name),
		stringCell(row.Row.CurrentVersion),
		dateCell(row.Row.CurrentReleaseDate, ""),
		stringCell(row.Row.LatestVersion),
		dateCell(row.Row.LatestReleaseDate, ""),
		intCell(row.Row.DaysDifference),
		intCell(row.Row.DaysSinceLatest),
		intCell(row.Row.DaysSinceCurrent),
	}

	if row.Approval == nil {
		return append(cells, cellValue{}, cellValue{}, cellValue{}, cellValue{}, cellValue{})
	}
	return append(cells,
		stringCell(row.Approval.ID),
		stringCell(row.Approval.Status),
		dateCell(row.Approval.Created, row.Approval.CreatedRaw),
		dateCell(row.Approval.EndDate, row.Approval.EndDateRaw),
		stringCell(row.Approval.EndAction),
	)
}

// renderFolderSheet writes one per-folder sheet: header, expanded rows with
// approval-block merges, classification fills, and column sizing.
func (w *ExcelReportWriter) renderFolderSheet(
	f *excelize.File,
	styles *styleSet,
	sheet string,
	rows []entities.ReportRow,
	linkTemplate string,
	today time.Time,
) error {
	if err := writeHeader(f, styles, sheet, sheetHeaders); err != nil {
		return err
	}

	widths := newWidthTracker(sheetHeaders)
	blocks := groupBlocks(rows)

	rowIdx := 2
	for _, block := range blocks {
		blockStart := rowIdx
		for _, row := range block {
			cells := rowCells(row)
			styleFor := folderCellStyle(row, rowIdx, block[0], today)
			if err := writeRow(f, styles, sheet, rowIdx, 1, cells, styleFor); err != nil {
				return err
			}
			if link := approvalLink(row, linkTemplate); link != "" {
				if err := setLink(f, styles, sheet, 9, rowIdx, link, styleFor(9, cells[8])); err != nil {
					return err
				}
			}
			widths.observe(1, cells)
			rowIdx++
		}
		// Shared columns merge across the approval expansion; approval
		// columns stay per-row.
		if len(block) > 1 {
			for col := 1; col <= 8; col++ {
				if err := mergeColumn(f, sheet, col, blockStart, rowIdx-1); err != nil {
					return err
				}
			}
		}
	}

	return widths.apply(f, sheet)
}

// renderSummarySheet writes one cross-folder view. Upgradation rows are all
// alert-filled; Replace-Remove rows are warning-filled when the latest
// release itself is past the staleness threshold.
func (w *ExcelReportWriter) renderSummarySheet(
	f *excelize.File,
	styles *styleSet,
	sheet string,
	rows []entities.ReportRow,
	linkTemplate string,
	today time.Time,
	zeroDiff bool,
) error {
	headers := append([]string{"section"}, sheetHeaders...)
	if err := writeHeader(f, styles, sheet, headers); err != nil {
		return err
	}

	widths := newWidthTracker(headers)
	blocks := groupBlocks(rows)

	rowIdx := 2
	for _, block := range blocks {
		blockStart := rowIdx
		for _, row := range block {
			cells := append([]cellValue{stringCell(row.Folder)}, rowCells(row)...)
			styleFor := summaryCellStyle(row, rowIdx, blockStart, block[0], today, zeroDiff)
			if err := writeRow(f, styles, sheet, rowIdx, 1, cells, styleFor); err != nil {
				return err
			}
			if link := approvalLink(row, linkTemplate); link != "" {
				if err := setLink(f, styles, sheet, 10, rowIdx, link, styleFor(10, cells[9])); err != nil {
					return err
				}
			}
			widths.observe(1, cells)
			rowIdx++
		}
		if len(block) > 1 {
			for col := 1; col <= 9; col++ {
				if err := mergeColumn(f, sheet, col, blockStart, rowIdx-1); err != nil {
					return err
				}
			}
		}
	}

	return widths.apply(f, sheet)
}

// groupBlocks splits the expanded rows into runs sharing the same
// underlying staleness row.
func groupBlocks(rows []entities.ReportRow) [][]entities.ReportRow {
	var blocks [][]entities.ReportRow
	for i := 0; i < len(rows); {
		j := i + 1
		for j < len(rows) && rows[j].Group == rows[i].Group {
			j++
		}
		blocks = append(blocks, rows[i:j])
		i = j
	}
	return blocks
}

// cellStyleFn decides the (fill, alignment, date) combination of one cell.
type cellStyleFn func(col int, cell cellValue) styleKey

// folderCellStyle reproduces the per-folder styling policy: alert rows get
// the alert fill, others alternate stripes; the days-since-latest column
// gets a warning fill past the threshold; approval columns are colored by
// approval status (unapproved and non-approved surface red, the block's
// first approved entry green); end dates near expiry surface the alert fill.
func folderCellStyle(row entities.ReportRow, rowIdx int, blockTop entities.ReportRow, today time.Time) cellStyleFn {
	base := oddColor
	if rowIdx%2 == 0 {
		base = evenColor
	}
	if row.Row.IsAlert() {
		base = alertColor
	}

	return func(col int, cell cellValue) styleKey {
		key := styleKey{fill: base, horizontal: "center", date: cell.isDate}
		switch {
		case col == 1:
			key.horizontal = "left"
		case col == 7 && overThreshold(row.Row.DaysSinceLatest):
			key.fill = warningColor
		case col >= 9:
			if row.Unapproved() {
				key.fill = baBadColor
			} else if row.Group == blockTop.Group && row.Approval == blockTop.Approval {
				key.fill = approvalFill(blockTop)
			}
			if col == 12 && approachingExpiry(row, today) {
				key.fill = alertColor
			}
		}
		return key
	}
}

// summaryCellStyle reproduces the summary styling policy.
func summaryCellStyle(
	row entities.ReportRow,
	rowIdx, blockStart int,
	blockTop entities.ReportRow,
	today time.Time,
	zeroDiff bool,
) cellStyleFn {
	base := alertColor
	if zeroDiff && overThreshold(row.Row.DaysSinceLatest) {
		base = warningColor
	}

	return func(col int, cell cellValue) styleKey {
		key := styleKey{fill: base, horizontal: "center", date: cell.isDate}
		switch {
		case col == 2:
			key.horizontal = "left"
		case col == 8 && !zeroDiff && overThreshold(row.Row.DaysSinceLatest):
			key.fill = warningColor
		case col >= 10:
			if row.Unapproved() {
				key.fill = baBadColor
			} else if rowIdx == blockStart {
				key.fill = approvalFill(blockTop)
			}
			if col == 13 && approachingExpiry(row, today) {
				key.fill = alertColor
			}
		}
		return key
	}
}

func approvalFill(top entities.ReportRow) string {
	if top.Approval != nil && top.Approval.Approved() {
		return baOkColor
	}
	return baBadColor
}

func approachingExpiry(row entities.ReportRow, today time.Time) bool {
	return row.Approval != nil && row.Approval.ApproachingExpiry(today)
}

func overThreshold(days *int) bool {
	return days != nil && *days > entities.StalenessThresholdDays
}

func approvalLink(row entities.ReportRow, template string) string {
	if template == "" || row.Approval == nil || row.Approval.ID == "" {
		return ""
	}
	return strings.ReplaceAll(template, "{ba_id}", row.Approval.ID)
}

// writeHeader writes the styled header row.
func writeHeader(f *excelize.File, styles *styleSet, sheet string, headers []string) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("invalid header coordinates: %w", err)
		}
		if setErr := f.SetCellValue(sheet, cell, header); setErr != nil {
			return fmt.Errorf("failed to write header: %w", setErr)
		}
		styleID, styleErr := styles.header()
		if styleErr != nil {
			return styleErr
		}
		if applyErr := f.SetCellStyle(sheet, cell, cell, styleID); applyErr != nil {
			return fmt.Errorf("failed to style header: %w", applyErr)
		}
	}
	return nil
}

// writeRow writes one data row starting at startCol, applying the style
// decided per cell.
func writeRow(
	f *excelize.File,
	styles *styleSet,
	sheet string,
	rowIdx, startCol int,
	cells []cellValue,
	styleFor cellStyleFn,
) error {
	for i, cell := range cells {
		col := startCol + i
		name, err := excelize.CoordinatesToCellName(col, rowIdx)
		if err != nil {
			return fmt.Errorf("invalid cell coordinates: %w", err)
		}
		if cell.value != nil {
			if setErr := f.SetCellValue(sheet, name, cell.value); setErr != nil {
				return fmt.Errorf("failed to write cell %s: %w", name, setErr)
			}
		}
		styleID, styleErr := styles.bodyStyle(styleFor(col, cell))
		if styleErr != nil {
			return styleErr
		}
		if applyErr := f.SetCellStyle(sheet, name, name, styleID); applyErr != nil {
			return fmt.Errorf("failed to style cell %s: %w", name, applyErr)
		}
	}
	return nil
}

// setLink attaches the approval deep link to a cell, restyling it with the
// link font over its existing fill.
func setLink(f *excelize.File, styles *styleSet, sheet string, col, rowIdx int, link string, key styleKey) error {
	name, err := excelize.CoordinatesToCellName(col, rowIdx)
	if err != nil {
		return fmt.Errorf("invalid cell coordinates: %w", err)
	}
	if linkErr := f.SetCellHyperLink(sheet, name, link, "External"); linkErr != nil {
		return fmt.Errorf("failed to set hyperlink: %w", linkErr)
	}
	styleID, styleErr := styles.linkStyle(key)
	if styleErr != nil {
		return styleErr
	}
	if applyErr := f.SetCellStyle(sheet, name, name, styleID); applyErr != nil {
		return fmt.Errorf("failed to style link cell: %w", applyErr)
	}
	return nil
}

// mergeColumn merges one column vertically across a block.
func mergeColumn(f *excelize.File, sheet string, col, startRow, endRow int) error {
	top, err := excelize.CoordinatesToCellName(col, startRow)
	if err != nil {
		return fmt.Errorf("invalid merge coordinates: %w", err)
	}
	bottom, err := excelize.CoordinatesToCellName(col, endRow)
	if err != nil {
		return fmt.Errorf("invalid merge coordinates: %w", err)
	}
	if mergeErr := f.MergeCell(sheet, top, bottom); mergeErr != nil {
		return fmt.Errorf("failed to merge %s:%s: %w", top, bottom, mergeErr)
	}
	return nil
}

// widthTracker accumulates the widest rendered value per column and applies
// the resulting column widths.
type widthTracker struct {
	headers []string
	maxLens []int
}

func newWidthTracker(headers []string) *widthTracker {
	return &widthTracker{headers: headers, maxLens: make([]int, len(headers))}
}

func (t *widthTracker) observe(startCol int, cells []cellValue) {
	for i, cell := range cells {
		idx := startCol - 1 + i
		if idx >= len(t.maxLens) {
			continue
		}
		if l := len(displayText(cell)); l > t.maxLens[idx] {
			t.maxLens[idx] = l
		}
	}
}

func (t *widthTracker) apply(f *excelize.File, sheet string) error {
	for i, header := range t.headers {
		width := t.maxLens[i] + 2
		if headerWidth := int(float64(len(header))*1.25) + 4; headerWidth > width {
			width = headerWidth
		}
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("invalid column number: %w", err)
		}
		if widthErr := f.SetColWidth(sheet, colName, colName, float64(width)); widthErr != nil {
			return fmt.Errorf("failed to set column width: %w", widthErr)
		}
	}
	return nil
}

func displayText(cell cellValue) string {
	switch v := cell.value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case time.Time:
		return dateWidthSample
	default:
		return fmt.Sprint(v)
	}
}
