// Package prefs keeps small UI preferences next to the state database.
package prefs

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

const fileName = "prefs.json"

// Prefs are remembered between runs. They never hold secrets.
type Prefs struct {
	LastUsername string `json:"last_username,omitempty"`
}

// PathFor returns the prefs file kept beside the state database.
func PathFor(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), fileName)
}

func Save(path string, p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := sonic.ConfigStd.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load returns zero Prefs when the file does not exist.
func Load(path string) (Prefs, error) {
	var p Prefs
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return p, err
	}
	if err := sonic.ConfigStd.Unmarshal(data, &p); err != nil {
		return Prefs{}, err
	}
	return p, nil
}

// Remove deletes the prefs file if present.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
