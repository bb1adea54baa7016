package page

import (
	"context"

	"digital.vasic.webaccept/pkg/element"
	"digital.vasic.webaccept/pkg/locator"
	"digital.vasic.webaccept/pkg/logging"
)

// HomePage is the site's landing page.
type HomePage struct {
	*Base
}

// NewHomePage creates the home page from its definition.
func NewHomePage(
	def Definition,
	acc *element.Accessor,
	logger logging.Logger,
	timing Timing,
) *HomePage {
	return &HomePage{Base: NewBase("home", def, acc, logger, timing)}
}

// Navigate loads the home page and verifies its landmarks.
func (p *HomePage) Navigate(ctx context.Context) error {
	return p.Load(ctx)
}

// ClickCompanyMenu opens the Company dropdown.
func (p *HomePage) ClickCompanyMenu(ctx context.Context) error {
	return p.Click(ctx, "company_dropdown")
}

// ClickCareersMenu follows the Careers link.
func (p *HomePage) ClickCareersMenu(ctx context.Context) error {
	return p.Click(ctx, "careers_link")
}

// IsCompanyDropdownExpanded reports whether the Company dropdown is
// open according to its aria-expanded attribute.
func (p *HomePage) IsCompanyDropdownExpanded(ctx context.Context) bool {
	loc, err := p.Locator("company_dropdown")
	if err != nil {
		return false
	}
	v, err := p.acc.Attribute(ctx, loc, "aria-expanded")
	if err != nil {
		p.logger.Warn("dropdown state unavailable", logging.ErrorField(err))
		return false
	}
	return v == "true"
}

// CompanySubmenuItems returns the link texts under the Company
// dropdown.
func (p *HomePage) CompanySubmenuItems(ctx context.Context) ([]string, error) {
	menu, err := p.Locator("company_submenu")
	if err != nil {
		return nil, err
	}
	items, err := p.Locator("menu_items")
	if err != nil {
		return nil, err
	}
	loc, err := locator.Within(menu, items)
	if err != nil {
		return nil, err
	}
	texts, err := p.acc.Texts(ctx, loc)
	if err != nil {
		p.logger.Error("submenu items not found", logging.ErrorField(err))
		return nil, err
	}
	return texts, nil
}

// VerifyCareerBlocks requires the locations, teams and life-at
// blocks of the careers landing page to be visible.
func (p *HomePage) VerifyCareerBlocks(ctx context.Context) error {
	return p.Visible(ctx,
		"locations_block", "teams_block", "life_at_insider_block",
	)
}
