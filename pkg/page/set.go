package page

import (
	"digital.vasic.webaccept/pkg/element"
	"digital.vasic.webaccept/pkg/logging"
)

// Set groups the pages of the Insider suite, all borrowing the same
// accessor.
type Set struct {
	Home    *HomePage
	Careers *CareersPage
}

// NewSet builds the home and careers pages from catalog.
func NewSet(
	catalog *Catalog,
	acc *element.Accessor,
	logger logging.Logger,
	timing Timing,
) (*Set, error) {
	home, err := catalog.Page("home")
	if err != nil {
		return nil, err
	}
	careers, err := catalog.Page("careers")
	if err != nil {
		return nil, err
	}
	return &Set{
		Home:    NewHomePage(home, acc, logger, timing),
		Careers: NewCareersPage(careers, acc, logger, timing),
	}, nil
}
