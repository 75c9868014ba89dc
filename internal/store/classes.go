package store

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// ClassRegistry is the explicit list of known classes. It is loaded once at
// startup and persisted after every mutation, replacing the ambient global
// the legacy server kept.
type ClassRegistry struct {
	path string

	mu      sync.RWMutex
	classes []string
}

// LoadClassRegistry reads the class list file; a missing file yields an
// empty registry.
func LoadClassRegistry(path string) (*ClassRegistry, error) {
	r := &ClassRegistry{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("load class registry: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		name := strings.TrimSpace(line)
		if name != "" {
			r.classes = append(r.classes, name)
		}
	}
	return r, nil
}

// List returns the known class names sorted for stable output.
func (r *ClassRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.classes))
	copy(out, r.classes)
	sort.Strings(out)
	return out
}

// Contains reports whether the class is registered.
func (r *ClassRegistry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(name) >= 0
}

// Add registers a class name and persists the list. Adding a name twice is
// a no-op.
func (r *ClassRegistry) Add(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(name) >= 0 {
		return nil
	}
	r.classes = append(r.classes, name)
	return r.persist()
}

func (r *ClassRegistry) indexOf(name string) int {
	for i, c := range r.classes {
		if c == name {
			return i
		}
	}
	return -1
}

func (r *ClassRegistry) persist() error {
	var b strings.Builder
	for _, c := range r.classes {
		b.WriteString(c)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(r.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("persist class registry: %w", err)
	}
	return nil
}
