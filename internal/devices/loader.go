package devices

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/KevinKickass/OpenSitePlanner/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed seed/default-catalog.yaml
var defaultCatalogYAML []byte

const defaultCatalogName = "builtin:default-catalog.yaml"

type catalogFile struct {
	Devices []types.Device `json:"devices"`
}

// CatalogLoader reads device catalog files (YAML or JSON), validates them and
// caches the parsed result per path.
type CatalogLoader struct {
	cache       sync.Map
	validator   *Validator
	searchPaths []string
}

func NewCatalogLoader(searchPaths []string) (*CatalogLoader, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	return &CatalogLoader{
		validator:   validator,
		searchPaths: searchPaths,
	}, nil
}

func (l *CatalogLoader) Validator() *Validator {
	return l.validator
}

// LoadDefault parses the catalog compiled into the binary.
func (l *CatalogLoader) LoadDefault() ([]types.Device, error) {
	return l.parse(defaultCatalogName, defaultCatalogYAML)
}

// Load parses a single catalog file.
func (l *CatalogLoader) Load(path string) ([]types.Device, error) {
	// Cache-Check
	if cached, ok := l.cache.Load(path); ok {
		return slices.Clone(cached.([]types.Device)), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	return l.parse(path, data)
}

// LoadAll returns the built-in catalog followed by every *.yaml, *.yml and
// *.json file in the search paths. Later entries replace earlier ones with
// the same name.
func (l *CatalogLoader) LoadAll() ([]types.Device, error) {
	devices, err := l.LoadDefault()
	if err != nil {
		return nil, err
	}

	for _, searchPath := range l.searchPaths {
		entries, err := os.ReadDir(searchPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog dir %s: %w", searchPath, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !isCatalogFile(entry.Name()) {
				continue
			}
			loaded, err := l.Load(filepath.Join(searchPath, entry.Name()))
			if err != nil {
				return nil, err
			}
			devices = merge(devices, loaded)
		}
	}

	return devices, nil
}

func (l *CatalogLoader) ClearCache() {
	l.cache.Range(func(key, value interface{}) bool {
		l.cache.Delete(key)
		return true
	})
}

func (l *CatalogLoader) parse(name string, data []byte) ([]types.Device, error) {
	if cached, ok := l.cache.Load(name); ok {
		return slices.Clone(cached.([]types.Device)), nil
	}

	jsonData := data
	if !strings.EqualFold(filepath.Ext(name), ".json") {
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse catalog %s: %w", name, err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert catalog %s: %w", name, err)
		}
		jsonData = converted
	}

	if err := l.validator.ValidateCatalog(jsonData); err != nil {
		return nil, fmt.Errorf("validation failed for %s: %w", name, err)
	}

	var file catalogFile
	if err := json.Unmarshal(jsonData, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog %s: %w", name, err)
	}

	l.cache.Store(name, file.Devices)

	return slices.Clone(file.Devices), nil
}

func isCatalogFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func merge(base, overrides []types.Device) []types.Device {
	out := slices.Clone(base)
	for _, d := range overrides {
		idx := slices.IndexFunc(out, func(existing types.Device) bool { return existing.Name == d.Name })
		if idx >= 0 {
			out[idx] = d
		} else {
			out = append(out, d)
		}
	}
	return out
}
