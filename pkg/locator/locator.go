// Package locator models how page elements are found: a strategy
// paired with a selector string, and tables of named locators that
// pages load from configuration.
package locator

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"digital.vasic.webaccept/pkg/failure"
)

// Strategy identifies the selector language of a Locator.
type Strategy string

const (
	// ClassName matches a single CSS class name.
	ClassName Strategy = "class name"
	// CSS matches a CSS selector.
	CSS Strategy = "css selector"
	// XPath matches a structural XPath expression.
	XPath Strategy = "xpath"
	// Attribute matches an element attribute written name=value.
	Attribute Strategy = "attribute"
)

// ParseStrategy accepts a strategy name or one of its short aliases.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "class name", "class", "classname":
		return ClassName, nil
	case "css selector", "css":
		return CSS, nil
	case "xpath":
		return XPath, nil
	case "attribute", "attr":
		return Attribute, nil
	default:
		return "", fmt.Errorf("unknown locator strategy %q", s)
	}
}

// Locator is an immutable (strategy, selector) pair.
type Locator struct {
	Strategy Strategy `yaml:"by"`
	Selector string   `yaml:"selector"`
}

// ByClass returns a class-name locator.
func ByClass(name string) Locator { return Locator{ClassName, name} }

// ByCSS returns a CSS-selector locator.
func ByCSS(sel string) Locator { return Locator{CSS, sel} }

// ByXPath returns an XPath locator.
func ByXPath(expr string) Locator { return Locator{XPath, expr} }

// ByAttribute returns an attribute-match locator.
func ByAttribute(name, value string) Locator {
	return Locator{Attribute, name + "=" + value}
}

// String renders the locator as "strategy=selector".
func (l Locator) String() string {
	return string(l.Strategy) + "=" + l.Selector
}

// Validate checks that the strategy is known and the selector is
// non-empty and well formed for its strategy.
func (l Locator) Validate() error {
	if _, err := ParseStrategy(string(l.Strategy)); err != nil {
		return err
	}
	if strings.TrimSpace(l.Selector) == "" {
		return fmt.Errorf("locator %s: empty selector", l.Strategy)
	}
	if l.Strategy == Attribute {
		name, _, ok := strings.Cut(l.Selector, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf(
				"attribute locator %q: want name=value",
				l.Selector,
			)
		}
	}
	return nil
}

// Using returns the W3C WebDriver strategy and value for l. Class
// names and attribute matches are compiled to CSS selectors.
func (l Locator) Using() (using, value string) {
	switch l.Strategy {
	case ClassName:
		return string(CSS), "." + l.Selector
	case Attribute:
		name, val, _ := strings.Cut(l.Selector, "=")
		return string(CSS), fmt.Sprintf(
			`[%s="%s"]`, strings.TrimSpace(name),
			strings.ReplaceAll(strings.TrimSpace(val), `"`, `\"`),
		)
	default:
		return string(l.Strategy), l.Selector
	}
}

// Within returns a locator matching child elements inside parent.
// Both must compile to CSS.
func Within(parent, child Locator) (Locator, error) {
	pu, pv := parent.Using()
	cu, cv := child.Using()
	if pu != string(CSS) || cu != string(CSS) {
		return Locator{}, fmt.Errorf(
			"cannot nest %s inside %s", child, parent,
		)
	}
	return ByCSS(pv + " " + cv), nil
}

// UnmarshalYAML accepts either the mapping form
// {by: xpath, selector: //a} or the scalar form "xpath=//a".
func (l *Locator) UnmarshalYAML(node *yaml.Node) error {
	var parsed Locator
	switch node.Kind {
	case yaml.ScalarNode:
		by, sel, ok := strings.Cut(node.Value, "=")
		if !ok {
			return fmt.Errorf(
				"line %d: locator %q: want strategy=selector",
				node.Line, node.Value,
			)
		}
		parsed.Strategy, parsed.Selector = Strategy(by), sel
	case yaml.MappingNode:
		var raw struct {
			By       string `yaml:"by"`
			Selector string `yaml:"selector"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		parsed.Strategy, parsed.Selector = Strategy(raw.By), raw.Selector
	default:
		return fmt.Errorf("line %d: locator must be a mapping or string",
			node.Line)
	}

	strategy, err := ParseStrategy(string(parsed.Strategy))
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	parsed.Strategy = strategy
	if err := parsed.Validate(); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*l = parsed
	return nil
}

// Table maps symbolic element names to locators.
type Table map[string]Locator

// Get returns the named locator, or a NotFound failure when the
// table has no such entry.
func (t Table) Get(name string) (Locator, error) {
	loc, ok := t[name]
	if !ok {
		return Locator{}, failure.New(
			failure.KindNotFound, "locator lookup", name,
		)
	}
	return loc, nil
}

// Has reports whether name is defined.
func (t Table) Has(name string) bool {
	_, ok := t[name]
	return ok
}

// Names returns the table's names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a new table holding t's entries overlaid with
// other's.
func (t Table) Merge(other Table) Table {
	merged := make(Table, len(t)+len(other))
	for k, v := range t {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// Validate checks every entry, reporting the first invalid name.
func (t Table) Validate() error {
	for _, name := range t.Names() {
		if err := t[name].Validate(); err != nil {
			return fmt.Errorf("locator %q: %w", name, err)
		}
	}
	return nil
}
