package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// configName is the base name of the configuration file.
const configName = "sofisoft"

// InitViper initializes Viper with the configuration file and environment variables.
// If configFile is empty, it searches for sofisoft.yaml/.yml in standard locations.
// The search requires an explicit YAML extension so the binary itself never matches.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// ReadInConfig then returns ConfigFileNotFoundError, which callers tolerate.
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	// Environment variable support: SOFISOFT_API_BASE_URL
	viper.SetEnvPrefix("SOFISOFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindEnvKeys()
}

// findConfigFile searches standard locations for a sofisoft config file.
func findConfigFile() string {
	paths := []string{".", DefaultStateDir()}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, configName))
		}
	} else {
		paths = append(paths, "/etc/sofisoft")
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths returns the first sofisoft.yaml or .yml in paths, or "".
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, configName+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindEnvKeys binds every config key so nested values can be overridden from the environment.
// Example: SOFISOFT_STORE_DRIVER overrides store.driver.
func bindEnvKeys() {
	_ = viper.BindEnv("api.base_url")
	_ = viper.BindEnv("api.http_timeout")

	_ = viper.BindEnv("store.driver")
	_ = viper.BindEnv("store.path")

	_ = viper.BindEnv("log_level")
	_ = viper.BindEnv("output")

	_ = viper.BindEnv("tracing.enabled")
	_ = viper.BindEnv("metrics.textfile")
}

// LoadConfig reads the configuration file, applies environment overrides,
// sets defaults, validates, and returns the Config.
func LoadConfig() (*Config, error) {
	cfg, err := LoadConfigRaw()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigRaw reads the configuration and applies defaults without validating.
// Use this when CLI flags still need to be applied.
func LoadConfigRaw() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was loaded, or "".
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
