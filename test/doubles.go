// Package testdoubles provides test doubles (spies, stubs, dummies) for domain
// interfaces. These are hand-crafted implementations — no mock frameworks.
package testdoubles

import (
	"context"
	"fmt"

	"github.com/rios0rios0/pinreport/internal/domain/entities"
	"github.com/rios0rios0/pinreport/internal/domain/repositories"
)

// ---------------------------------------------------------------------------
// SpyRegistryRepository
// ---------------------------------------------------------------------------

// SpyRegistryRepository implements repositories.RegistryRepository as a
// configurable spy. Seed Metadata (and optionally Errs) per package name,
// then inspect Fetched to verify which lookups happened.
type SpyRegistryRepository struct {
	// --- Fetch ---
	Metadata map[string]*entities.RegistryMetadata // name -> document
	Errs     map[string]error                      // name -> forced error
	// spy: "ecosystem/name" keys in call order
	Fetched []string
}

var _ repositories.RegistryRepository = (*SpyRegistryRepository)(nil)

func (r *SpyRegistryRepository) Fetch(
	_ context.Context,
	name string,
	ecosystem entities.Ecosystem,
) (*entities.RegistryMetadata, error) {
	r.Fetched = append(r.Fetched, fmt.Sprintf("%s/%s", ecosystem, name))
	if err, ok := r.Errs[name]; ok {
		return nil, err
	}
	if meta, ok := r.Metadata[name]; ok {
		return meta, nil
	}
	return nil, fmt.Errorf("package not found: %s", name)
}

// ---------------------------------------------------------------------------
// StubLedgerRepository
// ---------------------------------------------------------------------------

// StubLedgerRepository implements repositories.LedgerRepository returning a
// canned ledger (or error) and recording the paths it was asked for.
type StubLedgerRepository struct {
	Ledger  entities.ApprovalLedger
	LoadErr error
	// spy: paths received
	Paths []string
}

var _ repositories.LedgerRepository = (*StubLedgerRepository)(nil)

func (r *StubLedgerRepository) Load(path string) (entities.ApprovalLedger, error) {
	r.Paths = append(r.Paths, path)
	if r.LoadErr != nil {
		return nil, r.LoadErr
	}
	if r.Ledger != nil {
		return r.Ledger, nil
	}
	return make(entities.ApprovalLedger), nil
}

// ---------------------------------------------------------------------------
// SpyReportWriter
// ---------------------------------------------------------------------------

// SpyReportWriter implements repositories.ReportWriter, capturing the report
// and options it was handed instead of rendering anything.
type SpyReportWriter struct {
	WriteErr error
	// spy: last invocation
	Report *entities.Report
	Opts   repositories.WriteOptions
	Calls  int
}

var _ repositories.ReportWriter = (*SpyReportWriter)(nil)

func (w *SpyReportWriter) Write(report *entities.Report, opts repositories.WriteOptions) error {
	w.Calls++
	w.Report = report
	w.Opts = opts
	return w.WriteErr
}
