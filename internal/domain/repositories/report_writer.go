package repositories

import (
	"github.com/rios0rios0/pinreport/internal/domain/entities"
)

// WriteOptions carries the presentation settings for one report artifact.
type WriteOptions struct {
	Path             string   // output file path
	LinkTemplate     string   // approval deep-link template ("{ba_id}" placeholder), empty disables links
	SheetOrder       []string // preferred sheet order; unlisted sheets appended afterward
	IncludeSummaries bool     // render the cross-folder Upgradation / Replace-Remove sheets
}

// ReportWriter renders the final report to its output artifact. Writer
// failures are fatal and surfaced to the caller.
type ReportWriter interface {
	Write(report *entities.Report, opts WriteOptions) error
}
