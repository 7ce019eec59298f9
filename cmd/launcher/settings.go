package main

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
)

// Settings is the local launcher configuration, kept as a JSON file in the
// user's config dir.
type Settings struct {
	// ServerURL is the base URL of the launcher server.
	ServerURL string `json:"serverUrl"`

	// Token is the access token from the last login.
	Token string `json:"token"`

	// InstallDir is where games are downloaded and installed.
	InstallDir string `json:"installDir"`
}

const settingsFile = "settings.json"

// settingsPath returns the location of the settings file, creating its
// directory if needed.
func settingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "finding config dir")
	}
	dir = filepath.Join(dir, "mlx-launcher")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "creating config dir")
	}
	return filepath.Join(dir, settingsFile), nil
}

// loadSettings reads the settings file. Missing files yield defaults.
func loadSettings() (*Settings, error) {
	s := &Settings{
		ServerURL:  "http://localhost:8000",
		InstallDir: defaultInstallDir(),
	}

	p, err := settingsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading settings")
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, "parsing settings")
	}
	return s, nil
}

// save writes the settings file.
func (s *Settings) save() error {
	p, err := settingsPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding settings")
	}
	return errors.Wrap(os.WriteFile(p, data, 0600), "writing settings")
}

// defaultInstallDir mirrors the server side default install location.
func defaultInstallDir() string {
	base := os.Getenv("APPDATA")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = home
	}
	return path.Join(base, "MLXGames")
}
