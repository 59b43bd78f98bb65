package batch

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/dossier/pkg/automation"
	"github.com/entrhq/dossier/pkg/types"
)

// recordEntry is one item of a records file. Decision is free text.
type recordEntry struct {
	Identifier string `yaml:"identifier"`
	Programme  string `yaml:"programme"`
	Decision   string `yaml:"decision"`
	Forename   string `yaml:"forename"`
	Surname    string `yaml:"surname"`
}

// LoadRecords reads a YAML (or JSON) list of records, in order:
//
//	- identifier: "12345678"
//	  programme: AIBH
//	  decision: Accept
//
// Decisions other than accept or reject become unknown. Identifiers must
// be present and unique.
func LoadRecords(path string) ([]*types.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}
	return ParseRecords(data)
}

// ParseRecords is LoadRecords on raw bytes.
func ParseRecords(data []byte) ([]*types.Record, error) {
	var entries []recordEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: records: %v", automation.ErrInvalidInput, err)
	}

	seen := make(map[string]int, len(entries))
	records := make([]*types.Record, 0, len(entries))
	for i, e := range entries {
		id := strings.TrimSpace(e.Identifier)
		if id == "" {
			return nil, fmt.Errorf("%w: record %d has no identifier", automation.ErrInvalidInput, i+1)
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: identifier %s appears in records %d and %d", automation.ErrInvalidInput, id, prev, i+1)
		}
		seen[id] = i + 1

		r := types.NewRecord(id, strings.TrimSpace(e.Programme), types.ParseDecision(e.Decision))
		r.Forename = strings.TrimSpace(e.Forename)
		r.Surname = strings.TrimSpace(e.Surname)
		records = append(records, r)
	}
	return records, nil
}
