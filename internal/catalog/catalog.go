// Package catalog stores named targets in a JSON file.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	pwerrors "pingwatch/internal/errors"
)

// Entry is a named target.
type Entry struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// Defaults seed a catalog file that does not exist yet.
var Defaults = []Entry{
	{Name: "Google DNS", Target: "8.8.8.8"},
	{Name: "Cloudflare DNS", Target: "1.1.1.1"},
	{Name: "Default Gateway", Target: "192.168.1.1"},
}

// Catalog maps names to targets. Every mutation rewrites the whole file.
// Only one process is expected to write the file.
type Catalog struct {
	path string
	log  *slog.Logger

	mu      sync.RWMutex
	entries map[string]string
}

// Open loads the catalog at path. A missing file is created with Defaults;
// a file that cannot be parsed is reported and replaced by an empty
// catalog in memory.
func Open(path string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{
		path:    path,
		log:     logger.With("catalog", path),
		entries: make(map[string]string),
	}

	entries, err := c.read()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		for _, e := range Defaults {
			c.entries[e.Name] = e.Target
		}
		if err := c.save(); err != nil {
			return c, err
		}
		c.log.Info("created catalog with defaults", "entries", len(Defaults))
	case err != nil:
		c.log.Error("failed to load catalog, starting empty", "error", err)
	default:
		c.entries = entries
	}

	return c, nil
}

func (c *Catalog) read() (map[string]string, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, pwerrors.WrapWithCode(err, pwerrors.ErrCatalog, "catalog file is not a JSON object of name to target", "fix or delete "+c.path)
	}
	// A literal null decodes to a nil map.
	if entries == nil {
		entries = make(map[string]string)
	}
	return entries, nil
}

// save writes the catalog atomically. Callers hold mu.
func (c *Catalog) save() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return pwerrors.WrapWithCode(err, pwerrors.ErrCatalog, "failed to create catalog directory", "")
		}
	}

	tmpFile := c.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return pwerrors.WrapWithCode(err, pwerrors.ErrCatalog, "failed to write catalog", "check permissions on "+filepath.Dir(c.path))
	}
	if err := os.Rename(tmpFile, c.path); err != nil {
		return pwerrors.WrapWithCode(err, pwerrors.ErrCatalog, "failed to replace catalog", "")
	}
	return nil
}

// Path returns the backing file.
func (c *Catalog) Path() string { return c.path }

// Add stores target under name. It returns false, leaving the catalog
// untouched, if the name is already taken. A save error is returned but the
// entry stays in memory.
func (c *Catalog) Add(name, target string) (bool, error) {
	name = strings.TrimSpace(name)
	target = strings.TrimSpace(target)
	if name == "" || target == "" {
		return false, pwerrors.New(pwerrors.ErrCatalog, "name and target are required", "")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[name]; exists {
		return false, nil
	}
	c.entries[name] = target
	return true, c.save()
}

// Remove deletes name. It returns false if the name is unknown.
func (c *Catalog) Remove(name string) (bool, error) {
	name = strings.TrimSpace(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[name]; !exists {
		return false, nil
	}
	delete(c.entries, name)
	return true, c.save()
}

// Lookup returns the target stored under name.
func (c *Catalog) Lookup(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	target, ok := c.entries[strings.TrimSpace(name)]
	return target, ok
}

// Resolve returns the target stored under nameOrTarget, or nameOrTarget
// itself when it is not a catalog name.
func (c *Catalog) Resolve(nameOrTarget string) string {
	if target, ok := c.Lookup(nameOrTarget); ok {
		return target
	}
	return strings.TrimSpace(nameOrTarget)
}

// List returns all entries sorted by name.
func (c *Catalog) List() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, len(c.entries))
	for name, target := range c.entries {
		out = append(out, Entry{Name: name, Target: target})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the sorted entry names.
func (c *Catalog) Names() []string {
	entries := c.List()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reload re-reads the file. On error the in-memory catalog is kept.
func (c *Catalog) Reload() error {
	entries, err := c.read()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
	return nil
}
