package repositories

import (
	"context"
	"fmt"

	"github.com/rios0rios0/pinreport/internal/domain/entities"
	"github.com/rios0rios0/pinreport/internal/domain/repositories"
	"github.com/rios0rios0/pinreport/internal/infrastructure/repositories/npm"
	"github.com/rios0rios0/pinreport/internal/infrastructure/repositories/pypi"
)

// RegistryRouter dispatches metadata fetches to the client of the record's
// ecosystem.
type RegistryRouter struct {
	pypi *pypi.PyPIRegistryRepository
	npm  *npm.NpmRegistryRepository
}

// NewRegistryRouter creates a router over the two registry clients.
func NewRegistryRouter(
	pypiRepo *pypi.PyPIRegistryRepository,
	npmRepo *npm.NpmRegistryRepository,
) *RegistryRouter {
	return &RegistryRouter{pypi: pypiRepo, npm: npmRepo}
}

// Fetch delegates to the ecosystem's client.
func (r *RegistryRouter) Fetch(
	ctx context.Context,
	name string,
	ecosystem entities.Ecosystem,
) (*entities.RegistryMetadata, error) {
	switch ecosystem {
	case entities.EcosystemPyPI:
		return r.pypi.Fetch(ctx, name, ecosystem)
	case entities.EcosystemNpm:
		return r.npm.Fetch(ctx, name, ecosystem)
	default:
		return nil, fmt.Errorf("unknown ecosystem %q", ecosystem)
	}
}

var _ repositories.RegistryRepository = (*RegistryRouter)(nil)
