// Package config loads cmnorm defaults from YAML configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/cmnorm/internal/normalize"
	"github.com/temirov/cmnorm/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds configuration defaults for every command.
type ApplicationConfiguration struct {
	Normalize NormalizeConfiguration `mapstructure:"normalize"`
}

// NormalizeConfiguration defines options shared by the normalize, spans and message commands.
type NormalizeConfiguration struct {
	Format      string             `mapstructure:"format"`
	Concurrency *int               `mapstructure:"concurrency"`
	Humanize    *bool              `mapstructure:"humanize"`
	Summary     *bool              `mapstructure:"summary"`
	Stages      StageConfiguration `mapstructure:"stages"`
	Tables      TableConfiguration `mapstructure:"tables"`
	Tokens      TokenConfiguration `mapstructure:"tokens"`
	Clipboard   *bool              `mapstructure:"clipboard"`
}

// StageConfiguration enables or disables individual auxiliary passes.
type StageConfiguration struct {
	CodeBlocks *bool `mapstructure:"code_blocks"`
	SignOff    *bool `mapstructure:"sign_off"`
	URLs       *bool `mapstructure:"urls"`
	Versions   *bool `mapstructure:"versions"`
	Issues     *bool `mapstructure:"issues"`
}

// TableConfiguration replaces the default lookup lists. Empty lists keep the defaults.
type TableConfiguration struct {
	SkipWords               []string `mapstructure:"skip_words"`
	AmbiguousWords          []string `mapstructure:"ambiguous_words"`
	Punctuation             []string `mapstructure:"punctuation"`
	DocumentationExtensions []string `mapstructure:"documentation_extensions"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
	Max     *int   `mapstructure:"max"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		if options.ExplicitFilePath != "" {
			if _, statErr := os.Stat(localPath); statErr != nil {
				return ApplicationConfiguration{}, fmt.Errorf("configuration file %s: %w", localPath, statErr)
			}
		}
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.LocalConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Normalize = result.Normalize.merge(override.Normalize)
	return result
}

func (config NormalizeConfiguration) merge(override NormalizeConfiguration) NormalizeConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Concurrency != nil {
		result.Concurrency = cloneInt(override.Concurrency)
	}
	if override.Humanize != nil {
		result.Humanize = cloneBool(override.Humanize)
	}
	if override.Summary != nil {
		result.Summary = cloneBool(override.Summary)
	}
	result.Stages = result.Stages.merge(override.Stages)
	result.Tables = result.Tables.merge(override.Tables)
	result.Tokens = result.Tokens.merge(override.Tokens)
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (config StageConfiguration) merge(override StageConfiguration) StageConfiguration {
	result := config
	if override.CodeBlocks != nil {
		result.CodeBlocks = cloneBool(override.CodeBlocks)
	}
	if override.SignOff != nil {
		result.SignOff = cloneBool(override.SignOff)
	}
	if override.URLs != nil {
		result.URLs = cloneBool(override.URLs)
	}
	if override.Versions != nil {
		result.Versions = cloneBool(override.Versions)
	}
	if override.Issues != nil {
		result.Issues = cloneBool(override.Issues)
	}
	return result
}

func (config TableConfiguration) merge(override TableConfiguration) TableConfiguration {
	result := config
	if len(override.SkipWords) > 0 {
		result.SkipWords = utils.DeduplicateStrings(override.SkipWords)
	}
	if len(override.AmbiguousWords) > 0 {
		result.AmbiguousWords = utils.DeduplicateStrings(override.AmbiguousWords)
	}
	if len(override.Punctuation) > 0 {
		result.Punctuation = utils.DeduplicateStrings(override.Punctuation)
	}
	if len(override.DocumentationExtensions) > 0 {
		result.DocumentationExtensions = utils.DeduplicateStrings(override.DocumentationExtensions)
	}
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	if override.Max != nil {
		result.Max = cloneInt(override.Max)
	}
	return result
}

// Settings converts the configuration into pipeline settings. Unset values
// keep the pipeline defaults.
func (config NormalizeConfiguration) Settings() normalize.Settings {
	settings := normalize.DefaultSettings()
	if config.Concurrency != nil {
		settings.Concurrency = *config.Concurrency
	}
	if len(config.Tables.SkipWords) > 0 {
		settings.Tables.SkipWords = append([]string(nil), config.Tables.SkipWords...)
	}
	if len(config.Tables.AmbiguousWords) > 0 {
		settings.Tables.AmbiguousWords = append([]string(nil), config.Tables.AmbiguousWords...)
	}
	if len(config.Tables.Punctuation) > 0 {
		settings.Tables.Punctuation = append([]string(nil), config.Tables.Punctuation...)
	}
	if len(config.Tables.DocumentationExtensions) > 0 {
		settings.Tables.DocumentationExtensions = append([]string(nil), config.Tables.DocumentationExtensions...)
	}
	settings.Stages = normalize.StageToggles{
		DisableCodeBlocks: isDisabled(config.Stages.CodeBlocks),
		DisableSignOff:    isDisabled(config.Stages.SignOff),
		DisableURLs:       isDisabled(config.Stages.URLs),
		DisableVersions:   isDisabled(config.Stages.Versions),
		DisableIssues:     isDisabled(config.Stages.Issues),
	}
	return settings
}

func isDisabled(enabled *bool) bool {
	return enabled != nil && !*enabled
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
