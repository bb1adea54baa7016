// Package suite assembles the Insider acceptance cases from the page
// objects. The cases and their step names are fixed; site URLs and
// locators come from the page catalog.
package suite

import (
	"fmt"

	"digital.vasic.webaccept/pkg/config"
	"digital.vasic.webaccept/pkg/driver"
	"digital.vasic.webaccept/pkg/element"
	"digital.vasic.webaccept/pkg/logging"
	"digital.vasic.webaccept/pkg/metrics"
	"digital.vasic.webaccept/pkg/page"
	"digital.vasic.webaccept/pkg/scenario"
)

// Name is the suite name reported in summaries and JUnit output.
const Name = "insider"

// Case names as printed in the verdict lines.
const (
	HomepageTest = "Homepage Test"
	QAJobsTest   = "QA Jobs Test"
)

// Insider returns a factory that builds the suite against a borrowed
// session. The result is assignable to runner.SuiteFactory.
func Insider(
	cfg config.Config,
	catalog *page.Catalog,
	logger logging.Logger,
	rec metrics.Recorder,
) func(drv driver.Driver) (scenario.Suite, error) {
	if logger == nil {
		logger = logging.NullLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return func(drv driver.Driver) (scenario.Suite, error) {
		if catalog == nil {
			return scenario.Suite{}, fmt.Errorf("suite %s: no page catalog", Name)
		}
		clickDelay := cfg.ClickDelay
		if clickDelay == 0 {
			// zero in config means no pause between clicks
			clickDelay = -1
		}
		acc := element.New(drv,
			element.WithTimeout(cfg.DefaultTimeout),
			element.WithInterval(cfg.PollInterval),
			element.WithClickRetry(cfg.ClickAttempts, clickDelay),
			element.WithLogger(logger),
			element.WithMetrics(rec),
		)
		timing := page.Timing{
			SettleTimeout:  cfg.SettleTimeout,
			SettleDelay:    cfg.SettleDelay,
			ContextTimeout: cfg.ContextTimeout,
		}
		pages, err := page.NewSet(catalog, acc, logger, timing)
		if err != nil {
			return scenario.Suite{}, fmt.Errorf("suite %s: %w", Name, err)
		}
		return Build(pages), nil
	}
}

// Build returns the suite for an existing page set.
func Build(pages *page.Set) scenario.Suite {
	return scenario.Suite{
		Name: Name,
		Cases: []scenario.Case{
			HomepageCase(pages.Home),
			QAJobsCase(pages.Careers),
		},
	}
}

// HomepageCase loads the homepage and walks the Company menu to
// Careers.
func HomepageCase(home *page.HomePage) scenario.Case {
	return scenario.NewCase(HomepageTest,
		scenario.NewStep("navigate", home.Navigate, "Navigating to homepage"),
		scenario.NewStep("verify", home.Verify, "Verifying homepage loaded"),
		scenario.NewStep("company_menu", home.ClickCompanyMenu, "Clicking 'Company' menu"),
		scenario.NewStep("careers_menu", home.ClickCareersMenu, "Clicking 'Careers' menu"),
	)
}

// QAJobsCase filters the QA job listing and opens the first role.
func QAJobsCase(careers *page.CareersPage) scenario.Case {
	return scenario.NewCase(QAJobsTest,
		scenario.NewStep("navigate", careers.Navigate, "Navigating to careers page"),
		scenario.NewStep("cookies", careers.AcceptCookies, "Accepting cookies"),
		scenario.NewStep("qa_jobs", careers.ClickSeeAllQAJobs, "Clicking 'See all QA jobs'"),
		scenario.NewStep("location", careers.SelectLocation, "Selecting location"),
		scenario.NewStep("department", careers.SelectDepartment, "Selecting department"),
		scenario.NewStep("view_role", careers.ViewFirstRole, "Viewing first role"),
	)
}
