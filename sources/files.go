package sources

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// fileExists reports whether path names a non-empty regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// readSourceFile reads a downloaded file, mapping a missing file to
// ErrSourceMissing.
func readSourceFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
	}
	return data, err
}

// writeJSONFile writes v as indented JSON, replacing path atomically.
func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
