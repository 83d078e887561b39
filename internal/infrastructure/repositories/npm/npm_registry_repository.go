package npm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pinreport/internal/domain/entities"
)

const (
	defaultBaseURL = "https://registry.npmjs.org"
	fetchTimeout   = 20 * time.Second
	userAgent      = "pinreport/1.0"
)

// NpmRegistryRepository fetches package metadata from the npm module
// registry.
type NpmRegistryRepository struct {
	client  *http.Client
	baseURL string
}

// NewNpmRegistryRepository creates a client against the public registry.
func NewNpmRegistryRepository() *NpmRegistryRepository {
	return &NpmRegistryRepository{
		client:  &http.Client{Timeout: fetchTimeout},
		baseURL: defaultBaseURL,
	}
}

// NewNpmRegistryRepositoryWithBaseURL creates a client against a custom
// registry endpoint (used by tests).
func NewNpmRegistryRepositoryWithBaseURL(baseURL string) *NpmRegistryRepository {
	repo := NewNpmRegistryRepository()
	repo.baseURL = baseURL
	return repo
}

// npmDocument mirrors the subset of the registry response the report needs:
// the dist-tags and the per-version publish timestamps.
type npmDocument struct {
	DistTags map[string]string `json:"dist-tags"`
	Time     map[string]string `json:"time"`
}

// Fetch retrieves and normalizes the metadata document for one package.
// Scoped names keep their '@' and '/' in the request path, matching how the
// registry expects them.
func (r *NpmRegistryRepository) Fetch(
	ctx context.Context,
	name string,
	_ entities.Ecosystem,
) (*entities.RegistryMetadata, error) {
	escaped := (&url.URL{Path: name}).EscapedPath()
	endpoint := fmt.Sprintf("%s/%s", r.baseURL, escaped)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch npm metadata for %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code for %q: %d", name, resp.StatusCode)
	}

	var doc npmDocument
	if decodeErr := json.NewDecoder(resp.Body).Decode(&doc); decodeErr != nil {
		return nil, fmt.Errorf("failed to parse npm metadata for %q: %w", name, decodeErr)
	}

	return normalize(&doc), nil
}

// normalize reduces the registry document to the shared metadata shape.
// The "created" and "modified" bookkeeping keys of the time map are not
// versions and are dropped; a version with an unparseable timestamp keeps
// its key so it still counts as a release.
func normalize(doc *npmDocument) *entities.RegistryMetadata {
	releases := make(map[string][]time.Time, len(doc.Time))
	for version, raw := range doc.Time {
		if version == "created" || version == "modified" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			logger.Debugf("Unparseable npm timestamp %q for version %q", raw, version)
			releases[version] = nil
			continue
		}
		releases[version] = []time.Time{ts}
	}

	return &entities.RegistryMetadata{
		Ecosystem:      entities.EcosystemNpm,
		DeclaredLatest: doc.DistTags["latest"],
		Releases:       releases,
	}
}
