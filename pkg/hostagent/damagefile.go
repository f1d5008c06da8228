package hostagent

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DamageFile is the persistent, one-name-per-line record of nodes pinned to
// 100% loss until an explicit recovery.
type DamageFile struct {
	path  string
	names map[string]bool
}

// LoadDamageFile reads the damage file, or returns an empty set if absent.
func LoadDamageFile(path string) (*DamageFile, error) {
	df := &DamageFile{path: path, names: make(map[string]bool)}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return df, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hostagent: open damage file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name != "" {
			df.names[name] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("hostagent: scan damage file %s: %w", path, err)
	}
	return df, nil
}

// Add marks names as damaged and persists the file.
func (df *DamageFile) Add(names ...string) error {
	for _, n := range names {
		df.names[n] = true
	}
	return df.save()
}

// Contains reports whether name is currently damaged.
func (df *DamageFile) Contains(name string) bool {
	return df.names[name]
}

// Names returns every damaged node name.
func (df *DamageFile) Names() []string {
	names := make([]string, 0, len(df.names))
	for n := range df.names {
		names = append(names, n)
	}
	return names
}

// Clear removes the damage file entirely, part of recovery.
func (df *DamageFile) Clear() error {
	df.names = make(map[string]bool)
	if err := os.Remove(df.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("hostagent: remove damage file %s: %w", df.path, err)
	}
	return nil
}

func (df *DamageFile) save() error {
	var b strings.Builder
	for _, n := range df.Names() {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(df.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("hostagent: write damage file %s: %w", df.path, err)
	}
	return nil
}
