package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/loggo/v2"
	"gopkg.in/yaml.v3"

	"github.com/authguard/authguard-terminal/pkg/models"
)

var logger = loggo.GetLogger("authguard.store")

const (
	DataDirName  = ".authguard"
	DataDirEnv   = "AUTHGUARD_DIR"
	StateFile    = "state.yaml"
	ServicesFile = "services.yaml"
	ConfigFile   = "config.yaml"
)

// ResolveDataDir picks the data directory: an explicit path wins, then the
// AUTHGUARD_DIR environment variable, then ~/.authguard.
func ResolveDataDir(explicit string) (string, error) {
	dir := explicit
	if dir == "" {
		dir = os.Getenv(DataDirEnv)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine home directory: %w", err)
		}
		return filepath.Join(home, DataDirName), nil
	}
	return ExpandPath(dir), nil
}

// ExpandPath resolves a leading ~/ against the home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Init creates the data directory and a default config file
func Init(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if _, err := os.Stat(filepath.Join(dir, ConfigFile)); errors.Is(err, os.ErrNotExist) {
		if err := WriteConfig(dir, models.DefaultConfig()); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether dir has been initialised
func Exists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// ReadConfig loads config.yaml, filling unset fields from the defaults
func ReadConfig(dir string) (*models.Config, error) {
	cfg := models.DefaultConfig()
	found, err := readYAML(filepath.Join(dir, ConfigFile), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if !found {
		return cfg, nil
	}

	defaults := models.DefaultConfig()
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.File == "" {
		cfg.Log.File = defaults.Log.File
	}
	if cfg.UI.KeepAlive <= 0 {
		cfg.UI.KeepAlive = defaults.UI.KeepAlive
	}
	if cfg.UI.RevealDelay <= 0 {
		cfg.UI.RevealDelay = defaults.UI.RevealDelay
	}
	return cfg, nil
}

// WriteConfig saves cfg to config.yaml
func WriteConfig(dir string, cfg *models.Config) error {
	if err := writeYAML(filepath.Join(dir, ConfigFile), cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// readYAML decodes path into out. A missing file is not an error and
// reports found=false.
func readYAML(path string, out interface{}) (found bool, err error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := yaml.Unmarshal(content, out); err != nil {
		return true, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// writeYAML replaces path atomically so that readers and the watcher never
// see a half-written file.
func writeYAML(path string, in interface{}) error {
	content, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
