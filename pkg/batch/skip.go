package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/gobwas/glob"
)

// OutputIndex is a snapshot of the file names in a merge output folder,
// used to skip records whose document was saved by an earlier run.
type OutputIndex struct {
	names []string
}

// ScanOutput lists dir once. A folder that does not exist yet is empty.
func ScanOutput(dir string) (*OutputIndex, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &OutputIndex{}, nil
		}
		return nil, fmt.Errorf("failed to scan output folder: %w", err)
	}

	idx := &OutputIndex{names: make([]string, 0, len(entries))}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		idx.names = append(idx.names, strings.ToLower(e.Name()))
	}
	return idx, nil
}

// Find returns the first file name containing identifier, ignoring case.
func (x *OutputIndex) Find(identifier string) (string, bool) {
	identifier = strings.TrimSpace(identifier)
	if x == nil || identifier == "" {
		return "", false
	}

	g, err := glob.Compile("*" + glob.QuoteMeta(strings.ToLower(identifier)) + "*")
	if err != nil {
		return "", false
	}
	for _, name := range x.names {
		if g.Match(name) {
			return name, true
		}
	}
	return "", false
}

// Len is the number of files indexed.
func (x *OutputIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.names)
}
