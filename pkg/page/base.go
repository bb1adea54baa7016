package page

import (
	"context"
	"fmt"
	"strings"
	"time"

	"digital.vasic.webaccept/pkg/driver"
	"digital.vasic.webaccept/pkg/element"
	"digital.vasic.webaccept/pkg/failure"
	"digital.vasic.webaccept/pkg/locator"
	"digital.vasic.webaccept/pkg/logging"
	"digital.vasic.webaccept/pkg/wait"
)

// readySuffix marks the optional locator that proves a filter
// control's option list is populated.
const readySuffix = "_ready"

// Timing bounds the page-level waits that are not plain element
// resolutions.
type Timing struct {
	// SettleTimeout bounds waiting for a filter to become usable.
	SettleTimeout time.Duration
	// SettleDelay is an optional fixed pause before settling.
	SettleDelay time.Duration
	// ContextTimeout bounds waiting for a new browsing context.
	ContextTimeout time.Duration
}

// DefaultTiming returns the timing used when none is configured.
func DefaultTiming() Timing {
	return Timing{
		SettleTimeout:  10 * time.Second,
		ContextTimeout: element.DefaultTimeout,
	}
}

// Base implements the operations shared by every page.
type Base struct {
	name   string
	def    Definition
	acc    *element.Accessor
	logger logging.Logger
	timing Timing
}

// NewBase creates a page named name over acc.
func NewBase(
	name string,
	def Definition,
	acc *element.Accessor,
	logger logging.Logger,
	timing Timing,
) *Base {
	if logger == nil {
		logger = logging.NullLogger{}
	}
	return &Base{
		name:   name,
		def:    def,
		acc:    acc,
		logger: logger.WithFields(logging.StringField("page", name)),
		timing: timing,
	}
}

// Name returns the page name.
func (b *Base) Name() string { return b.name }

// URL returns the page's canonical URL.
func (b *Base) URL() string { return b.def.URL }

// Locator looks up a named locator in the page table.
func (b *Base) Locator(name string) (locator.Locator, error) {
	return b.def.Locators.Get(name)
}

// Open navigates to the canonical URL.
func (b *Base) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return failure.Wrap(failure.KindNavigation, "open", b.def.URL, err)
	}
	b.logger.Info("navigating", logging.StringField("url", b.def.URL))
	if err := b.acc.Driver().Navigate(b.def.URL); err != nil {
		b.logger.Error("navigation failed",
			logging.StringField("url", b.def.URL),
			logging.ErrorField(err),
		)
		return failure.Wrap(failure.KindNavigation, "open", b.def.URL, err)
	}
	return nil
}

// Load opens the page and verifies its landmarks.
func (b *Base) Load(ctx context.Context) error {
	if err := b.Open(ctx); err != nil {
		return err
	}
	return b.Verify(ctx)
}

// IsLoaded reports whether every landmark is visible.
func (b *Base) IsLoaded(ctx context.Context) bool {
	return b.Verify(ctx) == nil
}

// Verify returns a NotFound failure naming the first landmark that
// is not visible.
func (b *Base) Verify(ctx context.Context) error {
	return b.Visible(ctx, b.def.Landmarks...)
}

// Visible requires every named element to become visible.
func (b *Base) Visible(ctx context.Context, names ...string) error {
	for _, name := range names {
		loc, err := b.Locator(name)
		if err != nil {
			return err
		}
		if !b.acc.IsVisible(ctx, loc) {
			b.logger.Error("element not visible",
				logging.StringField("element", name),
				logging.StringField("locator", loc.String()),
			)
			return failure.New(failure.KindNotFound, "verify visible", name)
		}
	}
	return nil
}

// Click resolves the named element as clickable and activates it.
func (b *Base) Click(ctx context.Context, name string) error {
	loc, err := b.Locator(name)
	if err != nil {
		return err
	}
	return b.ClickLocator(ctx, name, loc)
}

// ClickLocator is Click for a locator outside the page table.
func (b *Base) ClickLocator(
	ctx context.Context, name string, loc locator.Locator,
	opts ...element.CallOption,
) error {
	el, err := b.acc.ResolveClickable(ctx, loc, opts...)
	if err != nil {
		b.logger.Error("element not clickable",
			logging.StringField("element", name),
			logging.ErrorField(err),
		)
		return err
	}
	if err := b.acc.Activate(ctx, el); err != nil {
		b.logger.Error("click failed",
			logging.StringField("element", name),
			logging.ErrorField(err),
		)
		return err
	}
	b.logger.Debug("clicked", logging.StringField("element", name))
	return nil
}

// SelectFilter waits for the named filter control to settle, opens
// it and picks option.
func (b *Base) SelectFilter(
	ctx context.Context, control string, option locator.Locator,
) error {
	loc, err := b.Locator(control)
	if err != nil {
		return err
	}
	b.settle(ctx, control)
	if err := b.ClickLocator(
		ctx, control, loc, element.Timeout(b.timing.SettleTimeout),
	); err != nil {
		return fmt.Errorf("open filter %s: %w", control, err)
	}
	if err := b.ClickLocator(ctx, control+" option", option); err != nil {
		return fmt.Errorf("select %s: %w", option.Selector, err)
	}
	b.logger.Info("filter selected",
		logging.StringField("filter", control),
		logging.StringField("option", option.String()),
	)
	return nil
}

// settle waits, bounded by SettleTimeout, for the control's
// "<name>_ready" locator to appear. A missing ready locator or an
// unsatisfied wait is not an error; the control resolution that
// follows decides.
func (b *Base) settle(ctx context.Context, control string) {
	if b.timing.SettleDelay > 0 {
		wait.Sleep(ctx, b.timing.SettleDelay)
	}
	ready, err := b.Locator(control + readySuffix)
	if err != nil {
		return
	}
	start := time.Now()
	if _, err := b.acc.ResolvePresent(
		ctx, ready, element.Timeout(b.timing.SettleTimeout),
	); err != nil {
		b.logger.Warn("filter did not settle",
			logging.StringField("filter", control),
			logging.DurationField("waited", time.Since(start)),
		)
	}
}

// VerifyNewContext activates trigger, which must open exactly one
// new browsing context, switches to it and requires its URL to
// contain fragment. The original context is focused again and all
// others are closed on every return path.
func (b *Base) VerifyNewContext(
	ctx context.Context, trigger driver.Element, fragment string,
) (err error) {
	drv := b.acc.Driver()

	original, err := drv.WindowHandle()
	if err != nil {
		return failure.Wrap(
			failure.KindContextSwitch, "current context", "", err,
		)
	}
	handles, err := drv.WindowHandles()
	if err != nil {
		return failure.Wrap(
			failure.KindContextSwitch, "list contexts", "", err,
		)
	}
	if len(handles) != 1 {
		b.logger.Warn("multiple contexts open before switching",
			logging.IntField("contexts", len(handles)),
		)
		return failure.New(
			failure.KindContextSwitch, "precondition",
			fmt.Sprintf("%d contexts open, want 1", len(handles)),
		)
	}

	defer func() {
		if rerr := b.restore(original); rerr != nil && err == nil {
			err = rerr
		}
	}()

	if err := b.acc.Activate(ctx, trigger); err != nil {
		return err
	}

	opened, ok := wait.Poll(ctx, func() (string, bool, error) {
		hs, err := drv.WindowHandles()
		if err != nil {
			return "", false, err
		}
		for _, h := range hs {
			if h != original {
				return h, true, nil
			}
		}
		return "", false, nil
	}, b.timing.ContextTimeout, b.acc.Interval())
	if !ok {
		return failure.New(
			failure.KindContextSwitch, "await context", "no new context opened",
		)
	}

	if err := drv.SwitchToWindow(opened); err != nil {
		return failure.Wrap(
			failure.KindContextSwitch, "switch context", opened, err,
		)
	}
	if !b.acc.URLContains(
		ctx, fragment, element.Timeout(b.timing.ContextTimeout),
	) {
		url, _ := drv.CurrentURL()
		b.logger.Error("unexpected destination",
			logging.StringField("want", fragment),
			logging.StringField("url", url),
		)
		return failure.New(
			failure.KindNavigation, "verify destination",
			fmt.Sprintf("%q not in %q", fragment, url),
		)
	}
	b.logger.Info("verified new context",
		logging.StringField("fragment", fragment),
	)
	return nil
}

// restore closes every context other than original and focuses it.
func (b *Base) restore(original string) error {
	drv := b.acc.Driver()
	handles, err := drv.WindowHandles()
	if err != nil {
		return failure.Wrap(
			failure.KindContextSwitch, "restore context", original, err,
		)
	}
	var errs []string
	for _, h := range handles {
		if h == original {
			continue
		}
		if err := drv.SwitchToWindow(h); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if err := drv.CloseWindow(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := drv.SwitchToWindow(original); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		b.logger.Error("failed to restore original context",
			logging.StringField("errors", strings.Join(errs, "; ")),
		)
		return failure.New(
			failure.KindContextSwitch, "restore context",
			strings.Join(errs, "; "),
		)
	}
	return nil
}
