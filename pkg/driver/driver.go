// Package driver defines the remote browser-control surface used by
// pages and element accessors, and adapts a WebDriver endpoint to it.
package driver

import (
	"digital.vasic.webaccept/pkg/locator"
)

// Element is a handle to a live element in the remote browser.
// Handles may go stale; callers re-resolve rather than cache them.
type Element interface {
	// ID returns the remote element reference.
	ID() string

	// Click activates the element.
	Click() error

	// Displayed reports whether the element is rendered visibly.
	Displayed() (bool, error)

	// Enabled reports whether the element accepts interaction.
	Enabled() (bool, error)

	// Attribute returns the named attribute value.
	Attribute(name string) (string, error)

	// Text returns the element's visible text.
	Text() (string, error)
}

// Driver is the browser-control surface borrowed by pages. It never
// exposes session teardown.
type Driver interface {
	// Navigate loads url in the current browsing context.
	Navigate(url string) error

	// FindElements returns every element matching loc. No match is
	// an empty slice, not an error.
	FindElements(loc locator.Locator) ([]Element, error)

	// CurrentURL returns the current context's URL.
	CurrentURL() (string, error)

	// WindowHandle returns the current browsing context's handle.
	WindowHandle() (string, error)

	// WindowHandles returns every open browsing context's handle.
	WindowHandles() ([]string, error)

	// SwitchToWindow makes handle the current browsing context.
	SwitchToWindow(handle string) error

	// CloseWindow closes the current browsing context.
	CloseWindow() error

	// ExecuteScript runs script with el bound to arguments[0].
	ExecuteScript(script string, el Element) error
}

// Session is a Driver owned by the run controller, which is the only
// component allowed to Quit it.
type Session interface {
	Driver

	// Quit ends the remote session.
	Quit() error
}
