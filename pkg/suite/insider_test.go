package suite

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.webaccept/pkg/config"
	"digital.vasic.webaccept/pkg/driver"
	"digital.vasic.webaccept/pkg/driver/drivertest"
	"digital.vasic.webaccept/pkg/page"
	"digital.vasic.webaccept/pkg/runner"
	"digital.vasic.webaccept/pkg/scenario"
)

func fastConfig() config.Config {
	cfg := config.Default()
	cfg.DefaultTimeout = 30 * time.Millisecond
	cfg.PollInterval = time.Millisecond
	cfg.ClickAttempts = 2
	cfg.ClickDelay = 0
	cfg.SettleTimeout = 30 * time.Millisecond
	cfg.ContextTimeout = 30 * time.Millisecond
	return cfg
}

func add(t *testing.T, d *drivertest.Driver, pageName, locName string, els ...*drivertest.Element) {
	t.Helper()
	def, err := page.DefaultCatalog().Page(pageName)
	require.NoError(t, err)
	loc, err := def.Locators.Get(locName)
	require.NoError(t, err)
	if len(els) == 0 {
		els = []*drivertest.Element{{Visible: true}}
	}
	d.Add(loc, els...)
}

// happySite populates d with every element both cases touch.
func happySite(t *testing.T, d *drivertest.Driver) {
	add(t, d, "home", "logo")
	add(t, d, "home", "company_dropdown")
	add(t, d, "home", "careers_link")
	careersSite(t, d)
}

func careersSite(t *testing.T, d *drivertest.Driver) {
	for _, name := range []string{
		"cookie_accept", "see_all_qa_jobs",
		"location_filter", "location_filter_ready", "istanbul_option",
		"department_filter", "department_filter_ready", "qa_option",
	} {
		add(t, d, "careers", name)
	}
	add(t, d, "careers", "view_role", &drivertest.Element{
		Visible: true,
		Opens: &drivertest.Popup{
			Handle: "lever",
			URL:    "https://jobs.lever.co/useinsider/1",
		},
	})
}

func TestInsider_BuildsCases(t *testing.T) {
	factory := Insider(fastConfig(), page.DefaultCatalog(), nil, nil)

	s, err := factory(drivertest.New())
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	assert.Equal(t, Name, s.Name)
	require.Len(t, s.Cases, 2)
	assert.Equal(t, HomepageTest, s.Cases[0].Name)
	assert.Equal(t, QAJobsTest, s.Cases[1].Name)

	var home, jobs []string
	for _, st := range s.Cases[0].Steps {
		home = append(home, st.Name)
		assert.NotEmpty(t, st.Description)
	}
	for _, st := range s.Cases[1].Steps {
		jobs = append(jobs, st.Name)
	}
	assert.Equal(t, []string{"navigate", "verify", "company_menu", "careers_menu"}, home)
	assert.Equal(t, []string{
		"navigate", "cookies", "qa_jobs", "location", "department", "view_role",
	}, jobs)
}

func TestInsider_NilCatalog(t *testing.T) {
	_, err := Insider(fastConfig(), nil, nil, nil)(drivertest.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no page catalog")
}

func TestInsider_MissingPage(t *testing.T) {
	catalog := &page.Catalog{Pages: map[string]page.Definition{}}
	_, err := Insider(fastConfig(), catalog, nil, nil)(drivertest.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suite insider")
}

func TestInsider_HappyPath(t *testing.T) {
	d := drivertest.New()
	happySite(t, d)

	var out bytes.Buffer
	c := runner.New(fastConfig(),
		runner.WithSessionOpener(func(context.Context, driver.Options) (driver.Session, error) {
			return d, nil
		}),
		runner.WithSuite(Insider(fastConfig(), page.DefaultCatalog(), nil, nil)),
		runner.WithOutput(&out, false),
	)

	run, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Homepage Test: PASSED ✅\nQA Jobs Test: PASSED ✅\n", out.String())
	assert.Equal(t, []string{
		"https://useinsider.com/",
		"https://useinsider.com/careers/quality-assurance/",
	}, d.Navigated())
	assert.Equal(t, "main", d.Current())
	assert.Equal(t, []string{"lever"}, d.Closed())
	assert.Equal(t, 1, d.Quits())
	assert.False(t, run.Failed())
}

func TestInsider_MissingCookieBannerFailsOnlyJobs(t *testing.T) {
	d := drivertest.New()
	add(t, d, "home", "logo")
	add(t, d, "home", "company_dropdown")
	add(t, d, "home", "careers_link")

	var out bytes.Buffer
	c := runner.New(fastConfig(),
		runner.WithSessionOpener(func(context.Context, driver.Options) (driver.Session, error) {
			return d, nil
		}),
		runner.WithSuite(Insider(fastConfig(), page.DefaultCatalog(), nil, nil)),
		runner.WithOutput(&out, false),
	)

	run, err := c.Run(context.Background())
	require.NoError(t, err)

	v, _ := run.Verdicts.Get(HomepageTest)
	assert.Equal(t, scenario.Passed, v)
	v, _ = run.Verdicts.Get(QAJobsTest)
	assert.Equal(t, scenario.Failed, v)

	require.Len(t, run.Cases, 2)
	failed := run.Cases[1]
	require.NotNil(t, failed.Failure)
	assert.Equal(t, "cookies", failed.Failure.Step)
	assert.Equal(t, 2, failed.StepsRun)
	assert.Equal(t, 1, d.Quits())
}

func TestInsider_HiddenLogoFailsHomepageOnFirstStep(t *testing.T) {
	d := drivertest.New()
	add(t, d, "home", "logo", &drivertest.Element{Visible: false})
	add(t, d, "home", "company_dropdown")
	add(t, d, "home", "careers_link")
	careersSite(t, d)

	var out bytes.Buffer
	c := runner.New(fastConfig(),
		runner.WithSessionOpener(func(context.Context, driver.Options) (driver.Session, error) {
			return d, nil
		}),
		runner.WithSuite(Insider(fastConfig(), page.DefaultCatalog(), nil, nil)),
		runner.WithOutput(&out, false),
	)

	run, err := c.Run(context.Background())
	require.NoError(t, err)

	v, _ := run.Verdicts.Get(HomepageTest)
	assert.Equal(t, scenario.Failed, v)
	v, _ = run.Verdicts.Get(QAJobsTest)
	assert.Equal(t, scenario.Passed, v)

	require.Len(t, run.Cases, 2)
	home := run.Cases[0]
	assert.Equal(t, HomepageTest, home.Name)
	assert.Equal(t, scenario.Failed, home.Verdict)
	assert.Equal(t, 1, home.StepsRun)
	require.NotNil(t, home.Failure)
	assert.Equal(t, "navigate", home.Failure.Step)
	assert.Equal(t, "Homepage Test: FAILED ❌\nQA Jobs Test: PASSED ✅\n", out.String())
	assert.Equal(t, 1, d.Quits())
}
