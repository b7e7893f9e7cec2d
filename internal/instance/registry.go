package instance

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mcpsolve/internal/common/fsutil"
)

// Entry is one instance file found on disk.
type Entry struct {
	Name string // file stem, e.g. "inst07"
	Path string // absolute path
}

// LoadDir scans dir for *.dat files (case-insensitive) and returns them
// sorted by name. A leading '~' is expanded.
func LoadDir(dir string) ([]Entry, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	if !fsutil.PathExists(abs) {
		return nil, fmt.Errorf("instances dir %s: %w", abs, os.ErrNotExist)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []Entry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ".dat") {
			continue
		}
		out = append(out, Entry{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(abs, name),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// FileForNumber maps an instance number to its conventional file name
// (7 -> "inst07.dat").
func FileForNumber(k int) string {
	return fmt.Sprintf("inst%02d.dat", k)
}

// LoadAll parses every entry. The first parse failure aborts the load.
func LoadAll(entries []Entry) ([]*Instance, error) {
	out := make([]*Instance, 0, len(entries))
	for _, e := range entries {
		in, err := ParseFile(e.Path)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}
