// Package config loads JSONC side-config files shared by the pipeline's
// CLI stages. A stage's effective configuration is always: built-in
// defaults, overridden by whatever the config file sets, overridden by
// whatever CLI flags the user actually passed — the same precedence order
// the teacher's own config layering uses, just flattened to one file
// instead of a global/project pair, since nothing here needs a per-user
// config directory.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Load reads the JSONC file at path into dst, tolerating // and /* */
// comments and trailing commas. An empty path is not an error: dst is left
// untouched so defaults and CLI flags remain authoritative.
func Load(path string, dst any) error {
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}

	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}

	if err := json.Unmarshal(standardized, dst); err != nil {
		return fmt.Errorf("decode config file %q: %w", path, err)
	}

	return nil
}
