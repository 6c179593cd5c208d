// internal/batchcli/manifest.go
package batchcli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Entry is one sample row of the batch manifest.
type Entry struct {
	ID      string
	Formula string
	Adduct  string // "-" or empty inherits the command-line default
	File    string
	Cutoff  string // optional, "-" or empty inherits
}

// LoadManifest reads a tab-separated manifest: id, formula, adduct, datafile
// and an optional cutoff column. '#' lines and blank lines are skipped.
// Data file paths are resolved by the caller, not here.
func LoadManifest(path string) ([]Entry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()

	var list []Entry
	seen := map[string]int{}
	sc := bufio.NewScanner(fh)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		f := strings.Split(line, "\t")
		for i := range f {
			f[i] = strings.TrimSpace(f[i])
		}
		if len(f) < 4 || len(f) > 5 {
			return nil, fmt.Errorf("%s:%d bad field count %d, want 4 or 5", path, ln, len(f))
		}
		e := Entry{ID: f[0], Formula: f[1], Adduct: f[2], File: f[3]}
		if len(f) == 5 {
			e.Cutoff = f[4]
		}
		if e.ID == "" || e.Formula == "" || e.File == "" {
			return nil, fmt.Errorf("%s:%d id, formula and datafile must not be empty", path, ln)
		}
		if prev, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("%s:%d duplicate id %q (first on line %d)", path, ln, e.ID, prev)
		}
		seen[e.ID] = ln
		list = append(list, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%s: no samples", path)
	}
	return list, nil
}
