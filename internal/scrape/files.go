// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/opa-api/internal/fsutil"
	"github.com/pdiddy/opa-api/pkg/types"
)

// LoadIDs reads a JSON array of account ids, as written by tolist.
func LoadIDs(path string) ([]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading id list: %w", err)
	}
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parsing id list %s: %w", path, err)
	}
	return ids, nil
}

// WriteSummary saves a run summary as YAML.
func WriteSummary(path string, s types.RunSummary) error {
	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	return fsutil.WriteFile(path, data, 0o644)
}

// ReadSummary loads a run summary written by WriteSummary.
func ReadSummary(path string) (*types.RunSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading summary: %w", err)
	}
	var s types.RunSummary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing summary: %w", err)
	}
	return &s, nil
}
