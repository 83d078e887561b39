package entities

// Ecosystem identifies the package registry a dependency belongs to.
type Ecosystem string

const (
	// EcosystemPyPI is the Python package index (pip "==" pins).
	EcosystemPyPI Ecosystem = "pypi"
	// EcosystemNpm is the npm module registry (package.json dependencies).
	EcosystemNpm Ecosystem = "npm"
)

// DependencyRecord is one pinned dependency occurrence in one manifest.
// The same package may appear once per manifest per folder; records are
// never deduplicated.
type DependencyRecord struct {
	Name        string    // Package name as written in the manifest
	VersionSpec string    // Pinned version (pypi) or version-range spec (npm)
	Ecosystem   Ecosystem // Registry the record belongs to
	Folder      string    // Name of the directory containing the manifest
	FilePath    string    // Manifest file this record was parsed from
}
