package matching

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Category is one nomenclature group with its keyword hints.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type catalogFile struct {
	Version    int        `yaml:"version"`
	Categories []Category `yaml:"categories"`
}

// Catalog is the versioned category -> keywords table. It is built once and
// never mutated, so it is safe to share between goroutines.
type Catalog struct {
	version    int
	categories []Category
	byName     map[string]int
}

// LoadCatalog reads the catalog from path, or the embedded default when path
// is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if f.Version <= 0 {
		return nil, fmt.Errorf("catalog version must be positive")
	}

	c := &Catalog{version: f.Version, byName: make(map[string]int, len(f.Categories))}
	for _, cat := range f.Categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog category without name")
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("duplicate catalog category %q", name)
		}
		kws := make([]string, 0, len(cat.Keywords))
		for _, kw := range cat.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		c.byName[name] = len(c.categories)
		c.categories = append(c.categories, Category{Name: name, Keywords: kws})
	}
	return c, nil
}

func (c *Catalog) Version() int { return c.version }

// Names lists the categories in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.categories))
	for _, cat := range c.categories {
		names = append(names, cat.Name)
	}
	return names
}

// Keywords returns a copy of the keywords for name; nil for unknown names.
func (c *Catalog) Keywords(name string) []string {
	i, ok := c.byName[name]
	if !ok {
		return nil
	}
	return append([]string(nil), c.categories[i].Keywords...)
}

// Lookup resolves selected names to categories. Unknown names are kept with
// no keywords so a classifier still sees the label.
func (c *Catalog) Lookup(names []string) []Category {
	out := make([]Category, 0, len(names))
	for _, n := range names {
		out = append(out, Category{Name: n, Keywords: c.Keywords(n)})
	}
	return out
}

// KeywordMatch reports whether title contains any keyword of the selected
// categories, case-insensitively.
func (c *Catalog) KeywordMatch(title string, selected []string) bool {
	lower := strings.ToLower(title)
	for _, name := range selected {
		i, ok := c.byName[name]
		if !ok {
			continue
		}
		for _, kw := range c.categories[i].Keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
