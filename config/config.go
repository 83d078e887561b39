package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for pinreport. Every field has a
// default mirroring the original report tool, so running without a config
// file is fully supported.
type Config struct {
	// ExcludedPackages are package names (case-insensitive) never reported.
	ExcludedPackages []string `yaml:"excluded_packages"`
	// NpmExcludedPrefixes drops package.json dependencies whose name starts
	// with one of these prefixes.
	NpmExcludedPrefixes []string `yaml:"npm_excluded_prefixes"`
	// SameMajorPackages lists registry packages whose "latest" is resolved
	// within the pinned major version first (global latest as fallback).
	SameMajorPackages []string `yaml:"same_major_packages"`
	// SummaryFolders is the folder allow-list feeding the cross-folder
	// Upgradation and Replace-Remove summary sheets. Empty disables both.
	SummaryFolders []string `yaml:"summary_folders"`
	// LedgerPath locates the business-approval CSV, relative to the scan
	// root unless absolute.
	LedgerPath string `yaml:"ledger_path"`
	// ApprovalLinkTemplate builds the approval deep link; "{ba_id}" is
	// replaced with the approval ID. Empty disables hyperlinks.
	ApprovalLinkTemplate string `yaml:"approval_link_template"`
	// SheetOrder is the preferred workbook sheet order; sheets not listed
	// are appended afterward.
	SheetOrder []string `yaml:"sheet_order"`
	// VersionPolicy selects the version-comparison capability: "semver"
	// (default) or "registry" (degraded, no stability filtering).
	VersionPolicy string `yaml:"version_policy"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// ErrConfigNotFound is returned by FindConfigFile when no configuration file
// exists in any default location.
var ErrConfigNotFound = errors.New("config file not found in default locations")

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ExcludedPackages:     []string{"colorlog", "django-extensions", "redis", "setuptools", "wheel"},
		NpmExcludedPrefixes:  []string{"@angular/"},
		SameMajorPackages:    []string{"django"},
		SummaryFolders:       []string{"sources", "tipcms", "collection"},
		LedgerPath:           "ba_list.csv",
		ApprovalLinkTemplate: "",
		SheetOrder:           []string{"tipcms", "sources", "collection", "Upgradation", "Replace-Remove Libs"},
		VersionPolicy:        "semver",
	}
}

// Load reads and parses a configuration file on top of the defaults,
// expanding environment variables in path-like values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	cfg := Default()
	if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	cfg.LedgerPath = expandEnv(cfg.LedgerPath)
	cfg.ApprovalLinkTemplate = expandEnv(cfg.ApprovalLinkTemplate)

	if validateErr := validate(cfg); validateErr != nil {
		return nil, validateErr
	}

	return cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".pinreport.yaml",
		".pinreport.yml",
		"pinreport.yaml",
		"pinreport.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", ErrConfigNotFound
}

// expandEnv expands environment variable references (${VAR}) in a value.
func expandEnv(raw string) string {
	if raw == "" {
		return raw
	}

	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

// validate checks for configuration values the run cannot recover from.
func validate(cfg *Config) error {
	switch strings.ToLower(cfg.VersionPolicy) {
	case "", "semver", "registry":
	default:
		return fmt.Errorf("version_policy must be %q or %q, got %q", "semver", "registry", cfg.VersionPolicy)
	}

	if cfg.LedgerPath == "" {
		return errors.New("ledger_path must not be empty (set it to the approval CSV location)")
	}

	if cfg.ApprovalLinkTemplate != "" && !strings.Contains(cfg.ApprovalLinkTemplate, "{ba_id}") {
		return errors.New("approval_link_template must contain the {ba_id} placeholder")
	}

	return nil
}
