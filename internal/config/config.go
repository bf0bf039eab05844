package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/viper"
)

// Default lowering settings
const (
	// DefaultNamePrefix seeds the fresh identifier generator. Source
	// identifiers must not start with it.
	DefaultNamePrefix = "_t"

	// DefaultOutputFormat is used when no format is configured
	DefaultOutputFormat = "text"
)

// Config represents the main configuration structure
type Config struct {
	// Lowering holds lowering stage configuration
	Lowering LoweringConfig `mapstructure:"lowering" yaml:"lowering"`

	// Analysis holds file collection configuration
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`

	// Output holds output formatting configuration
	Output OutputConfig `mapstructure:"output" yaml:"output"`
}

// LoweringConfig holds configuration for the lowering stage
type LoweringConfig struct {
	// NamePrefix is the prefix for synthesized continuation names
	NamePrefix string `mapstructure:"name_prefix" yaml:"name_prefix"`

	// OutputDir receives lowered unit files
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

// AnalysisConfig holds file collection configuration
type AnalysisConfig struct {
	// IncludePatterns specifies file patterns to include
	IncludePatterns []string `mapstructure:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns specifies file patterns to exclude
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// Recursive controls whether to collect directories recursively
	Recursive bool `mapstructure:"recursive" yaml:"recursive"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the report format: text, json, yaml
	Format string `mapstructure:"format" yaml:"format"`

	// Directory receives generated report files
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Lowering: LoweringConfig{
			NamePrefix: DefaultNamePrefix,
		},
		Analysis: AnalysisConfig{
			IncludePatterns: []string{"*.tmplu"},
			Recursive:       true,
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
	}
}

// LoadConfig loads configuration from the given path, falling back to
// discovered config files and finally to defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		configPath = findDefaultConfig()
	}
	if configPath == "" {
		return config, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if filepath.Ext(configPath) == "" || filepath.Base(configPath)[0] == '.' {
		v.SetConfigType("toml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigWithTarget loads configuration, preferring config files
// discovered near the target path over the working directory.
func LoadConfigWithTarget(configPath, targetPath string) (*Config, error) {
	if configPath != "" {
		return LoadConfig(configPath)
	}
	if targetPath != "" {
		startDir := targetPath
		if info, err := os.Stat(targetPath); err == nil && !info.IsDir() {
			startDir = filepath.Dir(targetPath)
		}
		if found := findTmplcToml(startDir); found != "" {
			return LoadConfig(found)
		}
	}
	return LoadConfig("")
}

// findDefaultConfig looks for configuration files in common locations
func findDefaultConfig() string {
	if cwd, err := os.Getwd(); err == nil {
		if found := findTmplcToml(cwd); found != "" {
			return found
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".tmplc.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findTmplcToml walks up the directory tree to find .tmplc.toml
func findTmplcToml(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".tmplc.toml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

var namePrefixPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Lowering.NamePrefix == "" {
		return fmt.Errorf("lowering.name_prefix must not be empty")
	}
	if !namePrefixPattern.MatchString(c.Lowering.NamePrefix) {
		return fmt.Errorf("lowering.name_prefix %q is not a valid identifier prefix", c.Lowering.NamePrefix)
	}

	switch c.Output.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("output.format must be one of text, json, yaml; got %q", c.Output.Format)
	}

	return nil
}
