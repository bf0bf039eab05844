package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// TmplcTomlConfig represents the structure of .tmplc.toml. Boolean
// fields are pointers so an unset value can be told apart from false.
type TmplcTomlConfig struct {
	Lowering TomlLoweringConfig `toml:"lowering"`
	Analysis TomlAnalysisConfig `toml:"analysis"`
	Output   TomlOutputConfig   `toml:"output"`
}

type TomlLoweringConfig struct {
	NamePrefix string `toml:"name_prefix"`
	OutputDir  string `toml:"output_dir"`
}

type TomlAnalysisConfig struct {
	IncludePatterns []string `toml:"include_patterns"`
	ExcludePatterns []string `toml:"exclude_patterns"`
	Recursive       *bool    `toml:"recursive"`
}

type TomlOutputConfig struct {
	Format    string `toml:"format"`
	Directory string `toml:"directory"`
}

// TomlConfigLoader handles TOML-only configuration loading
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a new TOML configuration loader
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// LoadConfig loads configuration from .tmplc.toml, searching upward
// from startDir, and returns defaults when no file is found.
func (l *TomlConfigLoader) LoadConfig(startDir string) (*Config, error) {
	configPath := findTmplcToml(startDir)
	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var fileConfig TmplcTomlConfig
	if err := toml.Unmarshal(data, &fileConfig); err != nil {
		return nil, err
	}

	defaults := DefaultConfig()
	l.merge(defaults, &fileConfig)

	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	return defaults, nil
}

// merge applies set values from the TOML file over the defaults
func (l *TomlConfigLoader) merge(defaults *Config, fileConfig *TmplcTomlConfig) {
	if fileConfig.Lowering.NamePrefix != "" {
		defaults.Lowering.NamePrefix = fileConfig.Lowering.NamePrefix
	}
	if fileConfig.Lowering.OutputDir != "" {
		defaults.Lowering.OutputDir = fileConfig.Lowering.OutputDir
	}

	if len(fileConfig.Analysis.IncludePatterns) > 0 {
		defaults.Analysis.IncludePatterns = fileConfig.Analysis.IncludePatterns
	}
	if len(fileConfig.Analysis.ExcludePatterns) > 0 {
		defaults.Analysis.ExcludePatterns = fileConfig.Analysis.ExcludePatterns
	}
	if fileConfig.Analysis.Recursive != nil {
		defaults.Analysis.Recursive = *fileConfig.Analysis.Recursive
	}

	if fileConfig.Output.Format != "" {
		defaults.Output.Format = fileConfig.Output.Format
	}
	if fileConfig.Output.Directory != "" {
		defaults.Output.Directory = fileConfig.Output.Directory
	}
}

// GetSupportedConfigFiles returns the supported config file names in
// order of precedence
func (l *TomlConfigLoader) GetSupportedConfigFiles() []string {
	return []string{".tmplc.toml"}
}
