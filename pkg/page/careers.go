package page

import (
	"context"
	"fmt"
	"strings"

	"digital.vasic.webaccept/pkg/element"
	"digital.vasic.webaccept/pkg/failure"
	"digital.vasic.webaccept/pkg/locator"
	"digital.vasic.webaccept/pkg/logging"
)

// DefaultRoleFragment is expected in the URL a role opens when the
// definition sets no role_url_fragment.
const DefaultRoleFragment = "jobs.lever.co"

// CareersPage is the QA careers page with its job filters.
type CareersPage struct {
	*Base
}

// NewCareersPage creates the careers page from its definition.
func NewCareersPage(
	def Definition,
	acc *element.Accessor,
	logger logging.Logger,
	timing Timing,
) *CareersPage {
	return &CareersPage{Base: NewBase("careers", def, acc, logger, timing)}
}

// Navigate loads the careers page and verifies the catalog's
// landmarks, none by default.
func (p *CareersPage) Navigate(ctx context.Context) error {
	return p.Load(ctx)
}

// AcceptCookies dismisses the cookie banner.
func (p *CareersPage) AcceptCookies(ctx context.Context) error {
	return p.Click(ctx, "cookie_accept")
}

// ClickSeeAllQAJobs opens the QA job listing.
func (p *CareersPage) ClickSeeAllQAJobs(ctx context.Context) error {
	return p.Click(ctx, "see_all_qa_jobs")
}

// SelectLocation picks the default location option.
func (p *CareersPage) SelectLocation(ctx context.Context) error {
	option, err := p.Locator("istanbul_option")
	if err != nil {
		return err
	}
	return p.SelectFilter(ctx, "location_filter", option)
}

// SelectLocationNamed picks the location option whose text contains
// label.
func (p *CareersPage) SelectLocationNamed(
	ctx context.Context, label string,
) error {
	return p.SelectFilter(ctx, "location_filter", OptionWithText(label))
}

// SelectDepartment picks the Quality Assurance department.
func (p *CareersPage) SelectDepartment(ctx context.Context) error {
	option, err := p.Locator("qa_option")
	if err != nil {
		return err
	}
	return p.SelectFilter(ctx, "department_filter", option)
}

// JobCount returns the number of listed positions.
func (p *CareersPage) JobCount(ctx context.Context) (int, error) {
	loc, err := p.Locator("position_items")
	if err != nil {
		return 0, err
	}
	els, err := p.acc.ResolveAll(
		ctx, loc, element.Timeout(p.timing.SettleTimeout),
	)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

// ViewFirstRole opens the first listed role and checks that it lands
// on the external application form in a new context.
func (p *CareersPage) ViewFirstRole(ctx context.Context) error {
	loc, err := p.Locator("view_role")
	if err != nil {
		return err
	}
	buttons, err := p.acc.ResolveAll(
		ctx, loc, element.Timeout(p.timing.SettleTimeout),
	)
	if err != nil {
		p.logger.Error("no role buttons found", logging.ErrorField(err))
		return err
	}
	if len(buttons) == 0 {
		return failure.New(failure.KindNotFound, "view role", loc.String())
	}
	return p.VerifyNewContext(ctx, buttons[0], p.roleFragment())
}

func (p *CareersPage) roleFragment() string {
	if f := p.def.Expect["role_url_fragment"]; f != "" {
		return f
	}
	return DefaultRoleFragment
}

// OptionWithText builds a locator for a filter option by its text.
func OptionWithText(label string) locator.Locator {
	return locator.ByXPath(fmt.Sprintf(
		"//li[contains(text(), %s)]", xpathLiteral(label),
	))
}

func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}
