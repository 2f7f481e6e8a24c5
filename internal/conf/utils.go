// conf/utils.go
package conf

import (
	"os"
	"path/filepath"

	"github.com/smartfarm/smartfarm-go/internal/errors"
)

// AppName is used for configuration directories.
const AppName = "smartfarm"

// GetDefaultConfigPaths returns the directories searched for config.yaml.
// When a config.yaml exists in one of them only that directory is returned.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategorySystem).
			Context("operation", "get-home-directory").
			Build()
	}

	configPaths := []string{
		".",
		filepath.Join(homeDir, ".config", AppName),
	}

	for _, path := range configPaths {
		configFile := filepath.Join(path, "config.yaml")
		if _, err := os.Stat(configFile); err == nil {
			return []string{path}, nil
		}
	}

	return configPaths, nil
}

// FindConfigFile locates the configuration file.
func FindConfigFile() (string, error) {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return "", errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "find-config-paths").
			Build()
	}

	for _, path := range configPaths {
		configFilePath := filepath.Join(path, "config.yaml")
		if _, err := os.Stat(configFilePath); err == nil {
			return configFilePath, nil
		}
	}

	return "", errors.Newf("config file not found").
		Category(errors.CategoryFileIO).
		Context("operation", "find-config-file").
		Build()
}

// GetBasePath expands environment variables in path and ensures the directory exists.
func GetBasePath(path string) (string, error) {
	basePath := filepath.Clean(os.ExpandEnv(path))

	if err := os.MkdirAll(basePath, 0o750); err != nil {
		return "", errors.New(err).
			Component("configuration").
			Category(errors.CategoryFileIO).
			Context("path", basePath).
			Context("operation", "create-directory").
			Build()
	}

	return basePath, nil
}
