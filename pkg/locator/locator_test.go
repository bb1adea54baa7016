package locator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"digital.vasic.webaccept/pkg/failure"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"class name", ClassName, false},
		{"class", ClassName, false},
		{"CSS", CSS, false},
		{"css selector", CSS, false},
		{"xpath", XPath, false},
		{"attr", Attribute, false},
		{"link text", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocator_Using(t *testing.T) {
	tests := []struct {
		name      string
		loc       Locator
		wantUsing string
		wantValue string
	}{
		{"class", ByClass("navbar-brand"), "css selector", ".navbar-brand"},
		{"css", ByCSS(".nav-link"), "css selector", ".nav-link"},
		{"xpath", ByXPath("//a"), "xpath", "//a"},
		{
			"attribute", ByAttribute("data-id", "role"),
			"css selector", `[data-id="role"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			using, value := tt.loc.Using()
			assert.Equal(t, tt.wantUsing, using)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestLocator_Validate(t *testing.T) {
	assert.NoError(t, ByXPath("//h3").Validate())
	assert.Error(t, Locator{Strategy: "tag", Selector: "a"}.Validate())
	assert.Error(t, ByCSS("  ").Validate())
	assert.Error(t, Locator{Attribute, "novalue"}.Validate())
	assert.Error(t, Locator{Attribute, "=x"}.Validate())
}

func TestLocator_String(t *testing.T) {
	assert.Equal(t, "xpath=//a", ByXPath("//a").String())
}

func TestWithin(t *testing.T) {
	loc, err := Within(
		ByCSS("#navbarDropdownMenuLink + .dropdown-menu"),
		ByClass("nav-link"),
	)
	require.NoError(t, err)
	assert.Equal(t,
		ByCSS("#navbarDropdownMenuLink + .dropdown-menu .nav-link"),
		loc,
	)

	_, err = Within(ByXPath("//div"), ByCSS("a"))
	assert.Error(t, err)
}

func TestLocator_UnmarshalYAML(t *testing.T) {
	doc := `
logo: {by: class, selector: navbar-brand}
careers: "xpath=//a[contains(text(), 'Careers')]"
`
	var table Table
	require.NoError(t, yaml.Unmarshal([]byte(doc), &table))

	assert.Equal(t, ByClass("navbar-brand"), table["logo"])
	assert.Equal(t,
		ByXPath("//a[contains(text(), 'Careers')]"),
		table["careers"],
	)
}

func TestLocator_UnmarshalYAML_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown strategy", "x: {by: tag, selector: a}"},
		{"empty selector", "x: {by: css, selector: ''}"},
		{"scalar without strategy", "x: navbar"},
		{"sequence", "x: [a, b]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var table Table
			assert.Error(t, yaml.Unmarshal([]byte(tt.doc), &table))
		})
	}
}

func TestTable_Get(t *testing.T) {
	table := Table{"logo": ByClass("navbar-brand")}

	loc, err := table.Get("logo")
	require.NoError(t, err)
	assert.Equal(t, ByClass("navbar-brand"), loc)

	_, err = table.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrNotFound))
	assert.Contains(t, err.Error(), "missing")
}

func TestTable_MergeAndNames(t *testing.T) {
	base := Table{"a": ByCSS("a"), "b": ByCSS("b")}
	merged := base.Merge(Table{"b": ByCSS("bb"), "c": ByCSS("c")})

	assert.Equal(t, []string{"a", "b", "c"}, merged.Names())
	assert.Equal(t, ByCSS("bb"), merged["b"])
	assert.Equal(t, ByCSS("b"), base["b"])
	assert.True(t, merged.Has("c"))
	assert.False(t, base.Has("c"))
}

func TestTable_Validate(t *testing.T) {
	assert.NoError(t, Table{"a": ByCSS("a")}.Validate())

	err := Table{"bad": ByCSS("")}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bad"`)
}
