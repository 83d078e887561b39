package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pinreport/internal/domain/entities"
)

// Ledger column headers as produced by the approval-system export.
const (
	colName      = "Licensed Item Name"
	colVersion   = "Licensed Item Version"
	colID        = "Business Approval ID"
	colCreated   = "Created Date"
	colEndDate   = "BA End Date"
	colEndAction = "BA End Date Action"
	colStatus    = "Status"
)

// CSVLedgerRepository loads the business-approval ledger from a CSV export.
type CSVLedgerRepository struct{}

// NewCSVLedgerRepository creates a new ledger loader.
func NewCSVLedgerRepository() *CSVLedgerRepository {
	return &CSVLedgerRepository{}
}

// Load reads the ledger at path. A missing file yields an empty ledger;
// rows missing name, version, or approval ID are skipped; the first entry
// seen for an approval ID wins on duplicates.
func (r *CSVLedgerRepository) Load(path string) (entities.ApprovalLedger, error) {
	ledger := make(entities.ApprovalLedger)

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debugf("No approval ledger at %q", path)
			return ledger, nil
		}
		return nil, fmt.Errorf("failed to open ledger %q: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return ledger, nil
		}
		return nil, fmt.Errorf("failed to read ledger header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			logger.Warnf("Skipping malformed ledger row: %v", readErr)
			continue
		}

		field := func(column string) string {
			idx, ok := columns[column]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		name := field(colName)
		version := field(colVersion)
		id := field(colID)
		if name == "" || version == "" || id == "" {
			continue
		}

		created, createdRaw := parseLedgerDate(field(colCreated))
		endDate, endDateRaw := parseLedgerDate(field(colEndDate))

		ledger.Add(name, version, entities.ApprovalMeta{
			ID:         id,
			Status:     field(colStatus),
			Created:    created,
			CreatedRaw: createdRaw,
			EndDate:    endDate,
			EndDateRaw: endDateRaw,
			EndAction:  field(colEndAction),
		})
	}

	logger.Debugf("Loaded %d approval keys from %q", len(ledger), path)
	return ledger, nil
}

// parseLedgerDate parses an ISO-8601 date cell. Unparseable non-empty cells
// keep their raw text so they can still be rendered verbatim.
func parseLedgerDate(raw string) (*time.Time, string) {
	if raw == "" {
		return nil, ""
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, raw
	}
	date := entities.DateOnly(parsed)
	return &date, raw
}
