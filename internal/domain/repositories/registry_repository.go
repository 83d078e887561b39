package repositories

import (
	"context"

	"github.com/rios0rios0/pinreport/internal/domain/entities"
)

// RegistryRepository resolves package metadata from a registry. A fetch
// failure (timeout, non-success response, malformed document) is reported as
// nil metadata so a single broken package degrades to unresolved fields
// without aborting the run. Implementations memoize per (name, ecosystem)
// for the duration of one run.
type RegistryRepository interface {
	Fetch(ctx context.Context, name string, ecosystem entities.Ecosystem) (*entities.RegistryMetadata, error)
}
