// Package toml reads Gradle version catalogs (gradle/libs.versions.toml).
package toml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hivemq/sdkpub/internal/domain/entities"
	"github.com/pelletier/go-toml/v2"
)

// DefaultCatalogPath is the catalog location relative to the project directory
const DefaultCatalogPath = "gradle/libs.versions.toml"

// ErrUnknownAlias is returned for aliases the catalog does not declare
var ErrUnknownAlias = errors.New("unknown catalog alias")

// catalogFile represents the raw TOML structure. Entries are decoded loosely because
// libraries and versions each have several accepted shapes.
type catalogFile struct {
	Versions  map[string]any `toml:"versions"`
	Libraries map[string]any `toml:"libraries"`
	Plugins   map[string]any `toml:"plugins"`
}

// Library is a resolved catalog library
type Library struct {
	Group   string
	Name    string
	Version string
}

// Catalog is a parsed version catalog
type Catalog struct {
	versions  map[string]string
	libraries map[string]Library
	plugins   map[string]string
}

// Load reads the catalog of projectDir. A missing catalog returns (nil, nil).
func Load(projectDir string) (*Catalog, error) {
	path := filepath.Join(projectDir, DefaultCatalogPath)
	//nolint:gosec // G304: catalog path is fixed below the project directory
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read version catalog: %w", err)
	}
	return Parse(data)
}

// Parse parses catalog TOML
func Parse(data []byte) (*Catalog, error) {
	var raw catalogFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse version catalog: %w", err)
	}

	c := &Catalog{
		versions:  make(map[string]string, len(raw.Versions)),
		libraries: make(map[string]Library, len(raw.Libraries)),
		plugins:   make(map[string]string, len(raw.Plugins)),
	}

	for name, v := range raw.Versions {
		version, err := versionValue(v)
		if err != nil {
			return nil, fmt.Errorf("versions.%s: %w", name, err)
		}
		c.versions[name] = version
	}

	for alias, v := range raw.Libraries {
		lib, err := c.library(v)
		if err != nil {
			return nil, fmt.Errorf("libraries.%s: %w", alias, err)
		}
		c.libraries[NormalizeAlias(alias)] = lib
	}

	for alias, v := range raw.Plugins {
		table, ok := v.(map[string]any)
		if !ok {
			continue
		}
		id, _ := table["id"].(string)
		c.plugins[NormalizeAlias(alias)] = id
	}

	return c, nil
}

// NormalizeAlias maps the separators Gradle treats as equivalent ('-', '_', '.') to '.'
func NormalizeAlias(alias string) string {
	return strings.NewReplacer("-", ".", "_", ".").Replace(alias)
}

// Library resolves a libs.<alias> reference (without the "libs." prefix)
func (c *Catalog) Library(alias string) (entities.Dependency, error) {
	lib, ok := c.libraries[NormalizeAlias(alias)]
	if !ok {
		return entities.Dependency{}, fmt.Errorf("%w: %s", ErrUnknownAlias, alias)
	}
	return entities.Dependency{Group: lib.Group, Name: lib.Name, Version: lib.Version}, nil
}

// Aliases returns every library alias in sorted order
func (c *Catalog) Aliases() []string {
	out := make([]string, 0, len(c.libraries))
	for alias := range c.libraries {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

// Plugin returns the plugin id registered under alias
func (c *Catalog) Plugin(alias string) (string, bool) {
	id, ok := c.plugins[NormalizeAlias(alias)]
	return id, ok
}

// library accepts "g:a:v", {module, version}, {module, version.ref} and {group, name, version}
func (c *Catalog) library(v any) (Library, error) {
	switch entry := v.(type) {
	case string:
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return Library{}, fmt.Errorf("invalid library notation %q", entry)
		}
		return Library{Group: parts[0], Name: parts[1], Version: parts[2]}, nil

	case map[string]any:
		var lib Library
		if module, ok := entry["module"].(string); ok {
			group, name, found := strings.Cut(module, ":")
			if !found {
				return Library{}, fmt.Errorf("invalid module %q", module)
			}
			lib.Group, lib.Name = group, name
		} else {
			lib.Group, _ = entry["group"].(string)
			lib.Name, _ = entry["name"].(string)
		}
		if lib.Group == "" || lib.Name == "" {
			return Library{}, fmt.Errorf("library needs module or group and name")
		}

		switch version := entry["version"].(type) {
		case nil:
		case string:
			lib.Version = version
		case map[string]any:
			if ref, ok := version["ref"].(string); ok {
				resolved, ok := c.versions[ref]
				if !ok {
					return Library{}, fmt.Errorf("unknown version reference %q", ref)
				}
				lib.Version = resolved
				break
			}
			resolved, err := versionValue(version)
			if err != nil {
				return Library{}, err
			}
			lib.Version = resolved
		default:
			return Library{}, fmt.Errorf("unsupported version type %T", version)
		}
		return lib, nil

	default:
		return Library{}, fmt.Errorf("unsupported library type %T", v)
	}
}

// versionValue accepts a plain string or a rich version {strictly, require, prefer}
func versionValue(v any) (string, error) {
	switch version := v.(type) {
	case string:
		return version, nil
	case map[string]any:
		for _, key := range []string{"strictly", "require", "prefer"} {
			if s, ok := version[key].(string); ok && s != "" {
				return s, nil
			}
		}
		return "", fmt.Errorf("rich version needs strictly, require or prefer")
	default:
		return "", fmt.Errorf("unsupported version type %T", v)
	}
}
