package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	migrationFile = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)
	unsafeChars   = regexp.MustCompile(`[^a-z0-9]+`)
)

// Migration is one numbered up/down pair
type Migration struct {
	Version uint64
	Name    string
	HasDown bool
}

// List returns the migrations found in source ordered by version. A version
// without an up file is an error.
func List(source fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(source, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	byVersion := make(map[uint64]*Migration)
	ups := make(map[uint64]bool)
	for _, e := range entries {
		match := migrationFile.FindStringSubmatch(e.Name())
		if e.IsDir() || match == nil {
			continue
		}
		v, _ := strconv.ParseUint(match[1], 10, 64)
		m, ok := byVersion[v]
		if !ok {
			m = &Migration{Version: v, Name: match[2]}
			byVersion[v] = m
		}
		if match[3] == "up" {
			ups[v] = true
		} else {
			m.HasDown = true
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for v, m := range byVersion {
		if !ups[v] {
			return nil, fmt.Errorf("migration %06d has no up file", v)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Create writes an empty up/down pair in dir numbered after the highest
// existing version and returns the up file path
func Create(dir, name string) (string, error) {
	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("invalid migration name %q", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create migrations directory: %w", err)
	}
	existing, err := List(os.DirFS(dir))
	if err != nil {
		return "", err
	}
	next := uint64(1)
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	base := fmt.Sprintf("%06d_%s", next, slug)
	up := filepath.Join(dir, base+".up.sql")
	down := filepath.Join(dir, base+".down.sql")
	if err := os.WriteFile(up, []byte("-- "+name+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", up, err)
	}
	if err := os.WriteFile(down, []byte("-- rollback "+name+"\n"), 0o644); err != nil {
		_ = os.Remove(up)
		return "", fmt.Errorf("failed to write %s: %w", down, err)
	}
	return up, nil
}
