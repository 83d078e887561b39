package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pinreport/config"
	"github.com/rios0rios0/pinreport/internal/domain/entities"
	"github.com/rios0rios0/pinreport/internal/domain/repositories"
	"github.com/rios0rios0/pinreport/internal/scanner"
	"github.com/rios0rios0/pinreport/internal/versionpolicy"
)

// ErrNoManifests signals that the scan root contained nothing to audit.
var ErrNoManifests = errors.New("no .pip or package.json manifests found")

// ReportOptions holds the runtime options of a single report run.
type ReportOptions struct {
	Root    string // directory tree to scan
	Output  string // report artifact path
	Verbose bool
}

// Report executes the full audit pipeline.
type Report interface {
	Execute(ctx context.Context, cfg *config.Config, opts ReportOptions) error
}

// ReportCommand wires the pipeline together: scan manifests, resolve each
// record against the registries, derive staleness metrics, merge the
// approval ledger, aggregate folder and summary views, and hand the result
// to the rendering sink. Execution is single-threaded and synchronous; the
// only bound on a run is the per-fetch timeout of the registry clients.
type ReportCommand struct {
	registry repositories.RegistryRepository
	ledger   repositories.LedgerRepository
	writer   repositories.ReportWriter
}

// NewReportCommand creates the report command.
func NewReportCommand(
	registry repositories.RegistryRepository,
	ledger repositories.LedgerRepository,
	writer repositories.ReportWriter,
) Report {
	return &ReportCommand{registry: registry, ledger: ledger, writer: writer}
}

// Execute runs one full audit.
func (c *ReportCommand) Execute(ctx context.Context, cfg *config.Config, opts ReportOptions) error {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	grouped, err := scanner.Scan(opts.Root, scanner.Options{
		NpmExcludedPrefixes: cfg.NpmExcludedPrefixes,
	})
	if err != nil {
		return err
	}
	if len(grouped) == 0 {
		return fmt.Errorf("%w under %q", ErrNoManifests, opts.Root)
	}

	ledger := c.loadLedger(cfg, opts.Root)
	sel := versionpolicy.NewSelector(cfg.VersionPolicy)
	if !sel.CanCompare() {
		logger.Warn("Version comparison disabled: reporting registry-declared versions without stability filtering")
	}

	excluded := lowerSet(cfg.ExcludedPackages)
	sameMajor := lowerSet(cfg.SameMajorPackages)
	summaryFolders := exactSet(cfg.SummaryFolders)
	today := entities.DateOnly(time.Now())

	report := &entities.Report{}
	groupSeq := 0
	for _, folder := range scanner.SortedFolders(grouped) {
		rows := c.resolveFolder(ctx, grouped[folder], excluded, sel, sameMajor, today)
		entities.SortStalenessRows(rows)

		folderGroup := entities.FolderGroup{Folder: folder}
		for _, row := range rows {
			groupSeq++
			approvals := ledger.Lookup(row.Name, row.LookupVersion)
			expanded := entities.ExpandRow(folder, groupSeq, row, approvals)
			folderGroup.Rows = append(folderGroup.Rows, expanded...)

			if summaryFolders[folder] {
				if row.IsAlert() {
					report.Flagged = append(report.Flagged, expanded...)
				}
				if row.IsZeroDiff() {
					report.ZeroDiff = append(report.ZeroDiff, expanded...)
				}
			}
		}
		report.Folders = append(report.Folders, folderGroup)

		logger.Infof("Processed folder %q: %d dependencies", folder, len(rows))
	}

	entities.SortReportRows(report.Flagged)
	entities.SortReportRows(report.ZeroDiff)

	writeErr := c.writer.Write(report, repositories.WriteOptions{
		Path:             opts.Output,
		LinkTemplate:     cfg.ApprovalLinkTemplate,
		SheetOrder:       cfg.SheetOrder,
		IncludeSummaries: len(cfg.SummaryFolders) > 0,
	})
	if writeErr != nil {
		return fmt.Errorf("failed to write report: %w", writeErr)
	}

	logger.Infof("Wrote %s", opts.Output)
	return nil
}

// resolveFolder turns one folder's records into staleness rows. Records are
// never dropped on resolution failure; excluded packages are the only skip.
func (c *ReportCommand) resolveFolder(
	ctx context.Context,
	records []entities.DependencyRecord,
	excluded map[string]bool,
	sel versionpolicy.Selector,
	sameMajor map[string]bool,
	today time.Time,
) []entities.StalenessRow {
	var rows []entities.StalenessRow
	for _, record := range records {
		if excluded[strings.ToLower(record.Name)] {
			continue
		}

		meta, fetchErr := c.registry.Fetch(ctx, record.Name, record.Ecosystem)
		if fetchErr != nil {
			logger.Warnf("Failed to resolve %s (%s): %v", record.Name, record.Ecosystem, fetchErr)
			meta = nil
		}

		info := resolveVersionInfo(record, meta, sel, sameMajor)
		rows = append(rows, entities.NewStalenessRow(record, info, today))
	}
	return rows
}

// loadLedger loads the approval ledger relative to the scan root; a broken
// ledger degrades to no approvals rather than failing the run.
func (c *ReportCommand) loadLedger(cfg *config.Config, root string) entities.ApprovalLedger {
	path := cfg.LedgerPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	ledger, err := c.ledger.Load(path)
	if err != nil {
		logger.Warnf("Failed to load approval ledger %q: %v (continuing without approvals)", path, err)
		return make(entities.ApprovalLedger)
	}
	return ledger
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}

func exactSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
