package controllers

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	appconfig "github.com/rios0rios0/pinreport/config"
	"github.com/rios0rios0/pinreport/internal/domain/commands"
	"github.com/rios0rios0/pinreport/internal/domain/entities"
)

// ReportController handles the root command: one full audit run.
type ReportController struct {
	command commands.Report
}

// NewReportController creates a new ReportController.
func NewReportController(command commands.Report) *ReportController {
	return &ReportController{command: command}
}

var _ entities.Controller = (*ReportController)(nil)

// GetBind returns the Cobra command metadata for the report controller.
func (it *ReportController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "pinreport",
		Short: "Audit pinned dependencies against their registries",
		Long: `Scan a project tree for .pip and package.json manifests, compare every
pinned dependency against the latest stable release on PyPI or npm,
cross-reference the business-approval ledger, and write a styled Excel
report with per-folder sheets plus cross-folder summary views.`,
	}
}

// Execute runs the audit. The returned error drives the process exit code:
// a tree with no manifests is reported as a failure.
func (it *ReportController) Execute(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	root, _ := cmd.Flags().GetString("root")
	output, _ := cmd.Flags().GetString("output")
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := it.loadConfig(configPath)
	if err != nil {
		return err
	}

	return it.command.Execute(ctx, cfg, commands.ReportOptions{
		Root:    root,
		Output:  output,
		Verbose: verbose,
	})
}

// loadConfig resolves the effective configuration: an explicit --config path
// is required to load, an auto-detected file is used when present, and the
// built-in defaults cover everything else.
func (it *ReportController) loadConfig(path string) (*appconfig.Config, error) {
	if path != "" {
		cfg, err := appconfig.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		logger.Infof("Using config file: %s", path)
		return cfg, nil
	}

	found, findErr := appconfig.FindConfigFile()
	if findErr != nil {
		if !errors.Is(findErr, appconfig.ErrConfigNotFound) {
			logger.Warnf("Config lookup failed: %v", findErr)
		}
		return appconfig.Default(), nil
	}

	cfg, err := appconfig.Load(found)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", found, err)
	}
	logger.Infof("Using config file: %s", found)
	return cfg, nil
}
