package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is an immutable template registry. Build once at startup, read
// from any number of concurrent generation calls.
type Catalog struct {
	templates map[string]*MetricTemplate
	order     []string
}

// New builds a catalog from the given templates, compiling each one's
// expected-table list. Duplicate ids are rejected.
func New(templates []*MetricTemplate) (*Catalog, error) {
	c := &Catalog{templates: make(map[string]*MetricTemplate, len(templates))}
	for _, t := range templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template without id")
		}
		if _, dup := c.templates[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		if t.SQLTemplate == "" {
			return nil, fmt.Errorf("template %q has no sql_template", t.ID)
		}
		if t.EstimatedComplexity == "" {
			t.EstimatedComplexity = ComplexityLow
		}
		t.compile()
		if len(t.expectedTables) == 0 {
			return nil, fmt.Errorf("template %q references no tables", t.ID)
		}
		c.templates[t.ID] = t
		c.order = append(c.order, t.ID)
	}
	return c, nil
}

// Get returns the template for id, or false if unknown
func (c *Catalog) Get(id string) (*MetricTemplate, bool) {
	t, ok := c.templates[id]
	return t, ok
}

// List returns all templates in load order
func (c *Catalog) List() []*MetricTemplate {
	out := make([]*MetricTemplate, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.templates[id])
	}
	return out
}

// Len returns the number of registered templates
func (c *Catalog) Len() int {
	return len(c.templates)
}

type catalogFile struct {
	Templates []*MetricTemplate `yaml:"templates"`
}

// Load reads a YAML catalog file and builds a Catalog from it
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a Catalog from YAML bytes
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Templates) == 0 {
		return nil, fmt.Errorf("catalog contains no templates")
	}
	return New(f.Templates)
}
