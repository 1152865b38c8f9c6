// Package store provides JSON-file-backed repositories for Work-Flow-zen.
//
// Each logical collection is one JSON document rewritten wholesale on every
// mutation. Every store guards its load/mutate/save sequence with a single
// mutex, so concurrent handlers cannot interleave a read-modify-write on the
// same collection.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// readJSONFile decodes path into v. A missing or malformed file leaves v at
// its caller-supplied default and reports no error: stores always start from a
// safe default rather than failing the process.
func readJSONFile(path string, v any) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	_ = json.Unmarshal(data, v)
}

// writeJSONFile rewrites path with the full snapshot of v
func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
