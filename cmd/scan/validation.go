package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/scan-io-git/a11yscan/internal/config"
	"github.com/scan-io-git/a11yscan/internal/report"
)

// validateScanArgs validates the arguments provided to the scan command.
func validateScanArgs(options *RunOptionsScan, args []string) error {
	for _, path := range args {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("the target path does not exist: %v", path)
		}
	}

	if options.Format != "" {
		if _, err := report.ParseFormat(options.Format); err != nil {
			return err
		}
	}

	if options.FailOn != "" && !slices.Contains(config.Thresholds, options.FailOn) {
		return fmt.Errorf("the 'fail-on' flag must be one of %v", config.Thresholds)
	}

	if options.Threads < 0 {
		return fmt.Errorf("the 'threads' flag must be a positive integer")
	}

	if options.Base != "" && !options.Changed {
		return fmt.Errorf("the 'base' flag requires the 'changed' flag")
	}

	if options.OutputPath != "" && options.Format == "" {
		options.Format = formatFromExtension(options.OutputPath)
	}
	return nil
}

// formatFromExtension guesses the report format from the output file name.
func formatFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return string(report.FormatJSON)
	case ".sarif":
		return string(report.FormatSARIF)
	case ".html", ".htm":
		return string(report.FormatHTML)
	}
	return ""
}
