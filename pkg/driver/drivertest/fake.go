// Package drivertest provides an in-memory browser for exercising
// pages and accessors without a WebDriver endpoint.
package drivertest

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"digital.vasic.webaccept/pkg/driver"
	"digital.vasic.webaccept/pkg/failure"
	"digital.vasic.webaccept/pkg/locator"
)

// Intercepted returns the error the WebDriver adapter produces when
// another element receives a click.
func Intercepted() error {
	return failure.Wrap(
		failure.KindObstructed, "click", "",
		errors.New("element click intercepted"),
	)
}

// Popup describes a browsing context opened by clicking an element.
type Popup struct {
	Handle string
	URL    string
}

// Element is a scripted element. Zero value is a hidden, enabled
// element; set Visible for a clickable one.
type Element struct {
	Handle    string
	Visible   bool
	Disabled  bool
	Attrs     map[string]string
	TextValue string

	// VisibleAfter makes Displayed report false for that many calls
	// before reporting Visible.
	VisibleAfter int
	// ClickErrs are returned by successive clicks, one per call,
	// before clicks start succeeding.
	ClickErrs []error
	// Opens, when set, is opened as a new context on a successful
	// click.
	Opens *Popup
	// OnClick runs after a successful click.
	OnClick func()

	mu        sync.Mutex
	drv       *Driver
	clicks    int
	displayed int
}

// ID returns the element handle.
func (e *Element) ID() string { return e.Handle }

// Click consumes the next scripted error or succeeds.
func (e *Element) Click() error {
	e.mu.Lock()
	e.clicks++
	if len(e.ClickErrs) > 0 {
		err := e.ClickErrs[0]
		e.ClickErrs = e.ClickErrs[1:]
		e.mu.Unlock()
		return err
	}
	popup, onClick := e.Opens, e.OnClick
	e.mu.Unlock()

	if popup != nil && e.drv != nil {
		e.drv.OpenWindow(popup.Handle, popup.URL)
	}
	if onClick != nil {
		onClick()
	}
	return nil
}

// Clicks returns the number of click attempts.
func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

// Displayed reports visibility, honouring VisibleAfter.
func (e *Element) Displayed() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.displayed++
	if e.displayed <= e.VisibleAfter {
		return false, nil
	}
	return e.Visible, nil
}

// Enabled reports !Disabled.
func (e *Element) Enabled() (bool, error) {
	return !e.Disabled, nil
}

// Attribute returns the named attribute, or "" when unset.
func (e *Element) Attribute(name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Attrs[name], nil
}

// SetAttribute changes an attribute value.
func (e *Element) SetAttribute(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Attrs == nil {
		e.Attrs = make(map[string]string)
	}
	e.Attrs[name] = value
}

// Text returns TextValue.
func (e *Element) Text() (string, error) {
	return e.TextValue, nil
}

// Driver is an in-memory driver.Session.
type Driver struct {
	// NavigateErr fails every navigation when set.
	NavigateErr error
	// FindErr fails every element lookup when set.
	FindErr error
	// QuitErr is returned by Quit.
	QuitErr error

	mu          sync.Mutex
	elements    map[string][]*Element
	appearAfter map[string]int
	finds       map[string]int
	handles     []string
	current     string
	urls        map[string]string
	navigated   []string
	scripts     []string
	closed      []string
	quits       int
}

// New returns a driver with a single context "main" at about:blank.
func New() *Driver {
	return &Driver{
		elements:    make(map[string][]*Element),
		appearAfter: make(map[string]int),
		finds:       make(map[string]int),
		handles:     []string{"main"},
		current:     "main",
		urls:        map[string]string{"main": "about:blank"},
	}
}

// Add registers elements matched by loc.
func (d *Driver) Add(loc locator.Locator, els ...*Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := loc.String()
	for i, el := range els {
		el.drv = d
		if el.Handle == "" {
			el.Handle = fmt.Sprintf("%s#%d", key, len(d.elements[key])+i)
		}
	}
	d.elements[key] = append(d.elements[key], els...)
}

// AppearAfter makes lookups of loc return nothing for n calls.
func (d *Driver) AppearAfter(loc locator.Locator, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.appearAfter[loc.String()] = n
}

// Finds returns how many times loc was looked up.
func (d *Driver) Finds(loc locator.Locator) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.finds[loc.String()]
}

// Navigate records url as the current context's location.
func (d *Driver) Navigate(url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.NavigateErr != nil {
		return d.NavigateErr
	}
	d.navigated = append(d.navigated, url)
	d.urls[d.current] = url
	return nil
}

// FindElements returns the registered elements for loc.
func (d *Driver) FindElements(
	loc locator.Locator,
) ([]driver.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FindErr != nil {
		return nil, d.FindErr
	}
	key := loc.String()
	d.finds[key]++
	if d.finds[key] <= d.appearAfter[key] {
		return nil, nil
	}
	found := make([]driver.Element, 0, len(d.elements[key]))
	for _, el := range d.elements[key] {
		found = append(found, el)
	}
	return found, nil
}

// CurrentURL returns the current context's URL.
func (d *Driver) CurrentURL() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == "" {
		return "", errors.New("no such window")
	}
	return d.urls[d.current], nil
}

// WindowHandle returns the current handle.
func (d *Driver) WindowHandle() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == "" {
		return "", errors.New("no such window")
	}
	return d.current, nil
}

// WindowHandles returns all open handles in opening order.
func (d *Driver) WindowHandles() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.handles...), nil
}

// SwitchToWindow focuses handle.
func (d *Driver) SwitchToWindow(handle string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, h := range d.handles {
		if h == handle {
			d.current = handle
			return nil
		}
	}
	return fmt.Errorf("no such window: %s", handle)
}

// CloseWindow closes the current context, leaving none focused.
func (d *Driver) CloseWindow() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == "" {
		return errors.New("no such window")
	}
	for i, h := range d.handles {
		if h == d.current {
			d.handles = append(d.handles[:i], d.handles[i+1:]...)
			break
		}
	}
	d.closed = append(d.closed, d.current)
	d.current = ""
	return nil
}

// ExecuteScript records the script and its element argument.
func (d *Driver) ExecuteScript(script string, el driver.Element) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry := script
	if el != nil {
		entry = el.ID() + ": " + script
	}
	d.scripts = append(d.scripts, entry)
	return nil
}

// Quit counts session teardown calls.
func (d *Driver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quits++
	return d.QuitErr
}

// OpenWindow adds a context without focusing it.
func (d *Driver) OpenWindow(handle, url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handles = append(d.handles, handle)
	d.urls[handle] = url
}

// Current returns the focused handle, "" when none.
func (d *Driver) Current() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Navigated returns every URL passed to Navigate.
func (d *Driver) Navigated() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.navigated...)
}

// Scripts returns executed scripts, prefixed by element handle.
func (d *Driver) Scripts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.scripts...)
}

// ScrollCount returns how many scrollIntoView scripts ran.
func (d *Driver) ScrollCount() int {
	n := 0
	for _, s := range d.Scripts() {
		if strings.Contains(s, "scrollIntoView") {
			n++
		}
	}
	return n
}

// Closed returns closed handles in closing order.
func (d *Driver) Closed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.closed...)
}

// Quits returns the number of Quit calls.
func (d *Driver) Quits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quits
}

var _ driver.Session = (*Driver)(nil)
