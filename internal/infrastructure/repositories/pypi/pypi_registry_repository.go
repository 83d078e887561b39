package pypi

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
	defaultBaseURL = "https://pypi.org/pypi"
	fetchTimeout   = 20 * time.Second
	userAgent      = "pinreport/1.0"
)

// PyPIRegistryRepository fetches package metadata from the Python package
// index JSON API.
type PyPIRegistryRepository struct {
	client  *http.Client
	baseURL string
}

// NewPyPIRegistryRepository creates a client against the public index.
func NewPyPIRegistryRepository() *PyPIRegistryRepository {
	return &PyPIRegistryRepository{
		client:  &http.Client{Timeout: fetchTimeout},
		baseURL: defaultBaseURL,
	}
}

// NewPyPIRegistryRepositoryWithBaseURL creates a client against a custom
// index endpoint (used by tests).
func NewPyPIRegistryRepositoryWithBaseURL(baseURL string) *PyPIRegistryRepository {
	repo := NewPyPIRegistryRepository()
	repo.baseURL = baseURL
	return repo
}

// pypiDocument mirrors the subset of the index response the report needs:
// the declared current version and the artifact upload timestamps of every
// release.
type pypiDocument struct {
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
	Releases map[string][]pypiArtifact `json:"releases"`
}

type pypiArtifact struct {
	UploadTimeISO string `json:"upload_time_iso_8601"`
	UploadTime    string `json:"upload_time"`
}

// Fetch retrieves and normalizes the metadata document for one package.
func (r *PyPIRegistryRepository) Fetch(
	ctx context.Context,
	name string,
	_ entities.Ecosystem,
) (*entities.RegistryMetadata, error) {
	endpoint := fmt.Sprintf("%s/%s/json", r.baseURL, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pypi metadata for %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code for %q: %d", name, resp.StatusCode)
	}

	var doc pypiDocument
	if decodeErr := json.NewDecoder(resp.Body).Decode(&doc); decodeErr != nil {
		return nil, fmt.Errorf("failed to parse pypi metadata for %q: %w", name, decodeErr)
	}

	return normalize(&doc), nil
}

// normalize reduces the index document to the shared metadata shape. Every
// release keeps its key even when no artifact carries a usable timestamp.
func normalize(doc *pypiDocument) *entities.RegistryMetadata {
	releases := make(map[string][]time.Time, len(doc.Releases))
	for version, artifacts := range doc.Releases {
		timestamps := make([]time.Time, 0, len(artifacts))
		for _, artifact := range artifacts {
			if ts, ok := parseUploadTime(artifact); ok {
				timestamps = append(timestamps, ts)
			}
		}
		releases[version] = timestamps
	}

	return &entities.RegistryMetadata{
		Ecosystem:      entities.EcosystemPyPI,
		DeclaredLatest: doc.Info.Version,
		Releases:       releases,
	}
}

// parseUploadTime reads an artifact timestamp, preferring the ISO-8601
// field and falling back to the legacy naive format.
func parseUploadTime(artifact pypiArtifact) (time.Time, bool) {
	if artifact.UploadTimeISO != "" {
		if ts, err := time.Parse(time.RFC3339, artifact.UploadTimeISO); err == nil {
			return ts, true
		}
		logger.Debugf("Unparseable upload_time_iso_8601 %q", artifact.UploadTimeISO)
	}
	if artifact.UploadTime != "" {
		if ts, err := time.Parse("2006-01-02T15:04:05", artifact.UploadTime); err == nil {
			return ts, true
		}
		logger.Debugf("Unparseable upload_time %q", artifact.UploadTime)
	}
	return time.Time{}, false
}
