package repositories

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pinreport/internal/domain/entities"
	"github.com/rios0rios0/pinreport/internal/domain/repositories"
)

// cacheSize bounds the per-run metadata cache; far above any realistic
// distinct-package count in one tree.
const cacheSize = 4096

// CachedRegistryRepository memoizes registry fetches per (ecosystem, name)
// for the lifetime of one run. Failures are cached too, so a broken package
// costs exactly one network call no matter how many manifests pin it.
type CachedRegistryRepository struct {
	upstream repositories.RegistryRepository
	cache    *lru.Cache[string, *entities.RegistryMetadata]
}

// NewCachedRegistryRepository wraps the router with the run-scoped cache.
func NewCachedRegistryRepository(upstream *RegistryRouter) (*CachedRegistryRepository, error) {
	cache, err := lru.New[string, *entities.RegistryMetadata](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry cache: %w", err)
	}
	return &CachedRegistryRepository{upstream: upstream, cache: cache}, nil
}

// Fetch returns the cached metadata when present; otherwise it fetches once
// and caches the outcome. A fetch failure is stored as nil metadata and
// reported without an error so the row degrades instead of aborting.
func (r *CachedRegistryRepository) Fetch(
	ctx context.Context,
	name string,
	ecosystem entities.Ecosystem,
) (*entities.RegistryMetadata, error) {
	key := string(ecosystem) + "/" + name
	if meta, ok := r.cache.Get(key); ok {
		return meta, nil
	}

	meta, err := r.upstream.Fetch(ctx, name, ecosystem)
	if err != nil {
		logger.Warnf("Registry fetch failed for %s: %v", key, err)
		meta = nil
	}
	r.cache.Add(key, meta)
	return meta, nil
}

var _ repositories.RegistryRepository = (*CachedRegistryRepository)(nil)
