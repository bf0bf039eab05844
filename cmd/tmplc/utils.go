package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/tmpl-lang/tmplc/internal/config"
	"github.com/tmpl-lang/tmplc/service"
)

// reportCommandError categorizes a failed command's error and prints
// recovery suggestions to stderr before handing the error back to cobra.
func reportCommandError(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	categorizer := service.NewErrorCategorizer()
	categorized := categorizer.Categorize(err)
	suggestions := categorizer.GetRecoverySuggestions(categorized.Category)
	if len(suggestions) > 0 {
		cmd.PrintErrf("\n%s - suggestions:\n", categorized.Category)
		for _, s := range suggestions {
			cmd.PrintErrf("  - %s\n", s)
		}
	}
	return err
}

// generateTimestampedFileName generates a filename with timestamp suffix
func generateTimestampedFileName(command, extension string) string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", command, timestamp, extension)
}

// resolveOutputDirectory determines the report directory from configuration
func resolveOutputDirectory(targetPath string) (string, error) {
	cfg, err := config.LoadConfigWithTarget("", targetPath)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg != nil && cfg.Output.Directory != "" {
		return cfg.Output.Directory, nil
	}

	// Default to a tool-specific hidden directory under the current
	// working directory, so reports never land in analyzed source trees.
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".tmplc", "reports"), nil
	}
	return filepath.Join(cwd, ".tmplc", "reports"), nil
}

// generateOutputFilePath combines filename generation and directory resolution
func generateOutputFilePath(command, extension, targetPath string) (string, error) {
	filename := generateTimestampedFileName(command, extension)
	outputDir, err := resolveOutputDirectory(targetPath)
	if err != nil {
		return "", err
	}

	if mkErr := os.MkdirAll(outputDir, 0o755); mkErr != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, mkErr)
	}
	return filepath.Join(outputDir, filename), nil
}

// getTargetPathFromArgs extracts the first argument as target path, or returns empty string
func getTargetPathFromArgs(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// expandAndValidatePaths resolves arguments to absolute, existing paths
func expandAndValidatePaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		expanded, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", arg, err)
		}
		if _, err := os.Stat(expanded); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("path does not exist: %s", arg)
			}
			return nil, fmt.Errorf("cannot access path %s: %w", arg, err)
		}
		paths = append(paths, expanded)
	}
	return paths, nil
}

// resolveOutputFormat maps the mutually exclusive format flags to one format name
func resolveOutputFormat(json, yaml bool) (string, error) {
	if json && yaml {
		return "", fmt.Errorf("only one of --json, --yaml can be specified")
	}
	switch {
	case json:
		return "json", nil
	case yaml:
		return "yaml", nil
	}
	return "text", nil
}
