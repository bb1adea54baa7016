// Package page models the pages under test. Each page couples a
// borrowed driver, an element accessor and a locator table loaded
// from configuration; pages never own or close the session.
package page

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"digital.vasic.webaccept/pkg/locator"
)

//go:embed sites.yaml
var defaultSites []byte

// Definition describes one page: its canonical URL, the locators
// whose visibility proves it loaded, its locator table and any
// expected values used by verifications.
type Definition struct {
	URL       string            `yaml:"url"`
	Landmarks []string          `yaml:"landmarks,omitempty"`
	Locators  locator.Table     `yaml:"locators"`
	Expect    map[string]string `yaml:"expect,omitempty"`
}

// Validate checks that the URL is set and every landmark names a
// locator.
func (d Definition) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("url is required")
	}
	for _, lm := range d.Landmarks {
		if !d.Locators.Has(lm) {
			return fmt.Errorf("landmark %q has no locator", lm)
		}
	}
	return d.Locators.Validate()
}

// Catalog holds the definitions of every known page.
type Catalog struct {
	Pages map[string]Definition `yaml:"pages"`
}

// Page returns the named definition.
func (c *Catalog) Page(name string) (Definition, error) {
	def, ok := c.Pages[name]
	if !ok {
		return Definition{}, fmt.Errorf("page %q not defined", name)
	}
	return def, nil
}

// Names returns the page names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Pages))
	for name := range c.Pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks every page.
func (c *Catalog) Validate() error {
	if len(c.Pages) == 0 {
		return fmt.Errorf("catalog defines no pages")
	}
	for _, name := range c.Names() {
		if err := c.Pages[name].Validate(); err != nil {
			return fmt.Errorf("page %q: %w", name, err)
		}
	}
	return nil
}

// Merge overlays other onto c. For pages present in both, a
// non-empty URL or landmark list replaces the original and locators
// and expectations are merged key by key.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	merged := &Catalog{Pages: make(map[string]Definition, len(c.Pages))}
	for name, def := range c.Pages {
		merged.Pages[name] = def
	}
	for name, over := range other.Pages {
		base, ok := merged.Pages[name]
		if !ok {
			merged.Pages[name] = over
			continue
		}
		if over.URL != "" {
			base.URL = over.URL
		}
		if len(over.Landmarks) > 0 {
			base.Landmarks = over.Landmarks
		}
		base.Locators = base.Locators.Merge(over.Locators)
		expect := make(map[string]string, len(base.Expect)+len(over.Expect))
		for k, v := range base.Expect {
			expect[k] = v
		}
		for k, v := range over.Expect {
			expect[k] = v
		}
		base.Expect = expect
		merged.Pages[name] = base
	}
	return merged
}

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse page catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid page catalog: %w", err)
	}
	return &c, nil
}

// DefaultCatalog returns the embedded Insider page definitions.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultSites)
	if err != nil {
		panic(fmt.Sprintf("embedded sites.yaml: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog file and overlays it onto the
// embedded defaults. An empty path returns the defaults.
func LoadCatalog(path string) (*Catalog, error) {
	base := DefaultCatalog()
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page catalog: %w", err)
	}
	var over Catalog
	if err := yaml.Unmarshal(data, &over); err != nil {
		return nil, fmt.Errorf("failed to parse page catalog: %w", err)
	}
	merged := base.Merge(&over)
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("invalid page catalog: %w", err)
	}
	return merged, nil
}
