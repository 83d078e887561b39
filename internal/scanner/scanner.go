// Package scanner discovers dependency manifests under a project tree and
// turns them into normalized dependency records grouped by source folder.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pinreport/internal/domain/entities"
	"github.com/rios0rios0/pinreport/internal/manifest"
)

const (
	pipManifestExt  = ".pip"
	npmManifestName = "package.json"
)

// skippedDirs are directory names never descended into.
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// Options controls how manifests are parsed during the scan.
type Options struct {
	NpmExcludedPrefixes []string // package-name prefixes dropped from package.json
}

// Scan walks the tree rooted at root, parses every .pip and package.json
// manifest, and returns the records grouped by the name of the directory
// containing the manifest. Unreadable or unparseable files are skipped with
// a warning, never fatal.
func Scan(root string, opts Options) (map[string][]entities.DependencyRecord, error) {
	grouped := make(map[string][]entities.DependencyRecord)

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			logger.Warnf("Skipping %q: %v", path, err)
			return nil
		}
		if entry.IsDir() {
			if skippedDirs[entry.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		switch {
		case strings.EqualFold(filepath.Ext(entry.Name()), pipManifestExt):
			collect(grouped, path, entities.EcosystemPyPI, opts)
		case entry.Name() == npmManifestName:
			collect(grouped, path, entities.EcosystemNpm, opts)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to scan %q: %w", root, walkErr)
	}

	return grouped, nil
}

// collect parses one manifest file and appends its records to the group of
// its containing folder.
func collect(
	grouped map[string][]entities.DependencyRecord,
	path string,
	ecosystem entities.Ecosystem,
	opts Options,
) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warnf("Failed to read manifest %q: %v", path, err)
		return
	}

	var pins []manifest.Pin
	if ecosystem == entities.EcosystemPyPI {
		pins = manifest.ParsePip(string(data))
	} else {
		pins = manifest.ParseNpm(data, opts.NpmExcludedPrefixes)
	}
	if len(pins) == 0 {
		return
	}

	folder := folderName(path)
	for _, pin := range pins {
		grouped[folder] = append(grouped[folder], entities.DependencyRecord{
			Name:        pin.Name,
			VersionSpec: pin.Spec,
			Ecosystem:   ecosystem,
			Folder:      folder,
			FilePath:    path,
		})
	}

	logger.Debugf("Parsed %d records from %q", len(pins), path)
}

// folderName derives the source-folder label for a manifest: the name of
// its containing directory, falling back to the full directory path when
// the name is empty (manifest at the filesystem root).
func folderName(path string) string {
	dir := filepath.Dir(path)
	if name := filepath.Base(dir); name != "." && name != string(filepath.Separator) && name != "" {
		return name
	}
	return dir
}

// SortedFolders returns the group keys in alphabetical order for stable
// report output.
func SortedFolders(grouped map[string][]entities.DependencyRecord) []string {
	folders := make([]string, 0, len(grouped))
	for folder := range grouped {
		folders = append(folders, folder)
	}
	sort.Strings(folders)
	return folders
}
