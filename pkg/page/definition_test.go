package page

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.webaccept/pkg/locator"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, []string{"careers", "home"}, c.Names())

	home, err := c.Page("home")
	require.NoError(t, err)
	assert.Equal(t, "https://useinsider.com/", home.URL)
	assert.Equal(t, []string{"logo"}, home.Landmarks)
	assert.Equal(t, locator.ByClass("navbar-brand"), home.Locators["logo"])
	assert.Equal(t,
		locator.ByCSS("#navbarDropdownMenuLink + .dropdown-menu"),
		home.Locators["company_submenu"],
	)

	careers, err := c.Page("careers")
	require.NoError(t, err)
	assert.Equal(t, "https://useinsider.com/careers/quality-assurance/", careers.URL)
	assert.Equal(t, "jobs.lever.co", careers.Expect["role_url_fragment"])
	assert.Equal(t,
		locator.ByXPath("//li[contains(text(), 'Istanbul, Turkey')]"),
		careers.Locators["istanbul_option"],
	)
}

func TestCatalog_PageMissing(t *testing.T) {
	_, err := DefaultCatalog().Page("checkout")
	assert.Error(t, err)
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", "pages: {}"},
		{"missing url", "pages: {home: {locators: {logo: 'css=.x'}}}"},
		{"dangling landmark", "pages: {home: {url: 'https://x', landmarks: [logo]}}"},
		{"bad locator", "pages: {home: {url: 'https://x', locators: {logo: {by: tag, selector: a}}}}"},
		{"not yaml", "pages: ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.yaml")
	doc := `
pages:
  home:
    url: https://staging.useinsider.com/
    locators:
      logo: {by: css, selector: .brand}
  blog:
    url: https://useinsider.com/blog/
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)

	home, _ := c.Page("home")
	assert.Equal(t, "https://staging.useinsider.com/", home.URL)
	assert.Equal(t, locator.ByCSS(".brand"), home.Locators["logo"])
	assert.True(t, home.Locators.Has("careers_link"))
	assert.Equal(t, []string{"logo"}, home.Landmarks)

	_, err = c.Page("blog")
	assert.NoError(t, err)

	orig, _ := DefaultCatalog().Page("home")
	assert.Equal(t, locator.ByClass("navbar-brand"), orig.Locators["logo"])
}

func TestLoadCatalog_EmptyPath(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Len(t, c.Pages, 2)
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
