package rule

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"github.com/praetorian-inc/policyscan/pkg/types"
)

// embeddedBundle is the detector bundle shipped with the binary, used when
// local-bundle mode is on but no bundle path is configured.
//
//go:embed detectors.json
var embeddedBundle []byte

// ParseBundle parses a local bundle: a JSON array of
// {"Name", "Check_ID", "Regex"} objects. Entries are already normalized
// rules; only the structural ID is computed.
func ParseBundle(data []byte) ([]*types.Rule, error) {
	var rules []*types.Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse bundle: %w", err)
	}

	out := make([]*types.Rule, 0, len(rules))
	for _, r := range rules {
		if r == nil {
			continue
		}
		r.StructuralID = r.ComputeStructuralID()
		out = append(out, r)
	}
	return out, nil
}

// LoadBundleFile loads a bundle from a file path.
func LoadBundleFile(path string) ([]*types.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle %s: %w", path, err)
	}
	return ParseBundle(data)
}

// LoadBundleFS loads a bundle from a filesystem.
func LoadBundleFS(fsys fs.FS, name string) ([]*types.Rule, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle %s: %w", name, err)
	}
	return ParseBundle(data)
}

// LoadEmbeddedBundle loads the bundle compiled into the binary.
func LoadEmbeddedBundle() ([]*types.Rule, error) {
	return ParseBundle(embeddedBundle)
}
