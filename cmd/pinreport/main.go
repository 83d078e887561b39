package main

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/pinreport/internal/infrastructure/controllers"
)

func buildRootCommand(reportController *controllers.ReportController) *cobra.Command {
	bind := reportController.GetBind()
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   bind.Use,
		Short: bind.Short,
		Long:  bind.Long,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return reportController.Execute(command, arguments)
		},
	}

	cmd.Flags().StringP("root", "r", ".",
		"Root directory to scan for .pip and package.json manifests")
	cmd.Flags().StringP("output", "o", "pin_release_report.xlsx",
		"Path of the Excel report to write")
	cmd.Flags().StringP("config", "c", "",
		"Path to config file (default: auto-detect)")
	cmd.Flags().BoolP("verbose", "v", false,
		"Enable verbose output")

	return cmd
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	reportController := injectReportController()
	cobraRoot := buildRootCommand(reportController)

	if err := cobraRoot.Execute(); err != nil {
		logger.Errorf("Error executing 'pinreport': %s", err)
		os.Exit(1)
	}
}
