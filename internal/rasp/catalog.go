package rasp

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/san-kum/spinsim/internal/motor"
)

//go:embed catalog/*.eng
var catalogFS embed.FS

const catalogPrefix = "catalog:"

// Catalog lists the names of the bundled motors.
func Catalog() []string {
	entries, err := catalogFS.ReadDir("catalog")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".eng"))
	}
	sort.Strings(names)
	return names
}

// Builtin parses a bundled motor by name.
func Builtin(name string) (*motor.Motor, error) {
	f, err := catalogFS.Open(path.Join("catalog", name+".eng"))
	if err != nil {
		return nil, fmt.Errorf("unknown catalog motor: %s (available: %v)", name, Catalog())
	}
	defer f.Close()
	return Parse(f)
}

// Open resolves a motor source: "catalog:NAME", an http(s) URL, or a path to
// a local .eng file.
func Open(ctx context.Context, source string) (*motor.Motor, error) {
	switch {
	case strings.HasPrefix(source, catalogPrefix):
		return Builtin(strings.TrimPrefix(source, catalogPrefix))
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return Fetch(ctx, nil, source)
	default:
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		m, err := Parse(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		return m, nil
	}
}
