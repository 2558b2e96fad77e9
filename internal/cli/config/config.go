// Package config stores the cardfeed CLI settings in a TOML file under the
// user's config directory.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Keys understood by the CLI
const (
	KeyBaseURL = "api.base_url"
	KeyTimeout = "api.timeout"
	KeyToken   = "auth.token"
	KeyEmail   = "auth.email"
	KeyOutput  = "output.format"
	KeyLogFile = "log.file"
)

var configDir string

// getConfigDir returns platform-specific config directory
func getConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "cardfeed", "cli"), nil
	}

	// Unix-like (macOS, Linux): ~/.config/cardfeed/cli
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cardfeed", "cli"), nil
}

// Init loads configPath, or ~/.config/cardfeed/cli/config.toml when empty.
// A missing file is not an error; defaults apply and SetString creates it.
func Init(configPath string) error {
	var (
		configFilePath string
		err            error
	)
	if configPath != "" {
		configDir = filepath.Dir(configPath)
		configFilePath = configPath
	} else {
		configDir, err = getConfigDir()
		if err != nil {
			return err
		}
		configFilePath = filepath.Join(configDir, "config.toml")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	viper.Reset()
	viper.SetConfigType("toml")
	viper.SetConfigFile(configFilePath)
	// CARDFEED_API_BASE_URL overrides api.base_url and so on
	viper.SetEnvPrefix("CARDFEED")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if _, err := os.Stat(configFilePath); err == nil {
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	}
	return nil
}

func setDefaults() {
	viper.SetDefault(KeyBaseURL, "http://localhost:8787")
	viper.SetDefault(KeyTimeout, 30)
	viper.SetDefault(KeyOutput, "text")
	viper.SetDefault(KeyLogFile, filepath.Join(configDir, "cardfeed-cli.log"))
}

// GetString returns a string configuration value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int configuration value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// SetString sets a value and persists the config file
func SetString(key string, value string) error {
	viper.Set(key, value)
	return viper.WriteConfigAs(viper.ConfigFileUsed())
}

// Dir returns the configuration directory path
func Dir() string {
	return configDir
}
