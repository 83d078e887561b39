package repositories

import (
	"go.uber.org/dig"

	domainrepos "github.com/rios0rios0/pinreport/internal/domain/repositories"
	"github.com/rios0rios0/pinreport/internal/infrastructure/repositories/excel"
	"github.com/rios0rios0/pinreport/internal/infrastructure/repositories/ledger"
	"github.com/rios0rios0/pinreport/internal/infrastructure/repositories/npm"
	"github.com/rios0rios0/pinreport/internal/infrastructure/repositories/pypi"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Registry clients and the memoizing decorator that fronts them
	if err := container.Provide(pypi.NewPyPIRegistryRepository); err != nil {
		return err
	}
	if err := container.Provide(npm.NewNpmRegistryRepository); err != nil {
		return err
	}
	if err := container.Provide(NewRegistryRouter); err != nil {
		return err
	}
	if err := container.Provide(func(cached *CachedRegistryRepository) domainrepos.RegistryRepository {
		return cached
	}); err != nil {
		return err
	}
	if err := container.Provide(NewCachedRegistryRepository); err != nil {
		return err
	}

	// Approval ledger
	if err := container.Provide(func() domainrepos.LedgerRepository {
		return ledger.NewCSVLedgerRepository()
	}); err != nil {
		return err
	}

	// Rendering sink
	if err := container.Provide(func() domainrepos.ReportWriter {
		return excel.NewExcelReportWriter()
	}); err != nil {
		return err
	}

	return nil
}
