package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/repodump/internal/utils"
)

const (
	// ConfigFileName is the name of the local configuration file discovered in the working directory.
	ConfigFileName = ".repodump.yaml"
	// GlobalConfigDirectoryName is the directory below the user configuration root holding the global file.
	GlobalConfigDirectoryName = "repodump"
	// globalConfigFileName is the name of the global configuration file.
	globalConfigFileName = "config.yaml"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Dump    DumpConfiguration    `mapstructure:"dump"`
	Restore RestoreConfiguration `mapstructure:"restore"`
}

// DumpConfiguration defines defaults for the dump command.
type DumpConfiguration struct {
	Output    string             `mapstructure:"output"`
	Clipboard *bool              `mapstructure:"clipboard"`
	Tokens    TokenConfiguration `mapstructure:"tokens"`
	Paths     PathConfiguration  `mapstructure:"paths"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// PathConfiguration configures inclusion and exclusion rules for path traversal.
type PathConfiguration struct {
	Include      []string `mapstructure:"include"`
	Exclude      []string `mapstructure:"exclude"`
	UseGitignore *bool    `mapstructure:"use_gitignore"`
}

// RestoreConfiguration defines defaults for the restore command.
type RestoreConfiguration struct {
	Destination string `mapstructure:"destination"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
// Local values override global values; callers overlay flag values on top.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if userConfigDirectory, userConfigError := os.UserConfigDir(); userConfigError == nil && userConfigDirectory != "" {
		globalPath := filepath.Join(userConfigDirectory, GlobalConfigDirectoryName, globalConfigFileName)
		globalConfig, loadError := loadConfigurationFromPath(globalPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveError := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveError != nil {
		return ApplicationConfiguration{}, resolveError
	}
	if localPath != "" {
		localConfig, loadError := loadConfigurationFromPath(localPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(localConfig)
	}

	merged.Dump.Paths.Include = utils.DeduplicatePatterns(merged.Dump.Paths.Include)
	merged.Dump.Paths.Exclude = utils.DeduplicatePatterns(merged.Dump.Paths.Exclude)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	return filepath.Join(workingDirectory, ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	pathInfo, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statError)
	}
	if pathInfo.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readError := reader.ReadInConfig(); readError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readError)
	}
	var loadedConfiguration ApplicationConfiguration
	if decodeError := reader.Unmarshal(&loadedConfiguration); decodeError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeError)
	}
	return loadedConfiguration, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Dump = result.Dump.merge(override.Dump)
	result.Restore = result.Restore.merge(override.Restore)
	return result
}

func (config DumpConfiguration) merge(override DumpConfiguration) DumpConfiguration {
	result := config
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	result.Paths = result.Paths.merge(override.Paths)
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
	return result
}

func (config PathConfiguration) merge(override PathConfiguration) PathConfiguration {
	result := config
	if len(override.Include) > 0 {
		result.Include = append([]string{}, utils.DeduplicatePatterns(override.Include)...)
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicatePatterns(override.Exclude)...)
	}
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	return result
}

func (config RestoreConfiguration) merge(override RestoreConfiguration) RestoreConfiguration {
	result := config
	if override.Destination != "" {
		result.Destination = override.Destination
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
