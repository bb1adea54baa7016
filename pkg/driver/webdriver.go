package driver

import (
	"fmt"
	"strings"

	"github.com/sclevine/agouti/api"

	"digital.vasic.webaccept/pkg/failure"
	"digital.vasic.webaccept/pkg/locator"
)

// DefaultEndpoint is the remote WebDriver hub of the provisioned
// browser service.
const DefaultEndpoint = "http://chrome:4444/wd/hub"

// w3cElementKey is the W3C element reference key.
const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// Options configures a remote browser session.
type Options struct {
	// Endpoint is the WebDriver hub URL.
	Endpoint string
	// Headless adds --headless to the browser arguments.
	Headless bool
	// Args are extra browser arguments.
	Args []string
}

// ChromeArgs returns the browser arguments for o.
func (o Options) ChromeArgs() []string {
	args := []string{
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--start-maximized",
	}
	if o.Headless {
		args = append(args, "--headless")
	}
	return append(args, o.Args...)
}

// WebDriver is a Session backed by a remote W3C WebDriver endpoint.
type WebDriver struct {
	session *api.Session
}

type newSessionRequest struct {
	Capabilities struct {
		AlwaysMatch map[string]interface{} `json:"alwaysMatch"`
	} `json:"capabilities"`
}

// elementRef is a web element reference as returned by find
// commands. The legacy key is read when the W3C key is absent.
type elementRef map[string]string

func (r elementRef) id() string {
	if id := r[w3cElementKey]; id != "" {
		return id
	}
	return r["ELEMENT"]
}

// Open starts a Chrome session at opts.Endpoint.
func Open(opts Options) (*WebDriver, error) {
	endpoint := strings.TrimSuffix(opts.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	var req newSessionRequest
	req.Capabilities.AlwaysMatch = map[string]interface{}{
		"browserName":        "chrome",
		"goog:chromeOptions": map[string]interface{}{
			"args": opts.ChromeArgs(),
		},
	}
	var resp struct {
		SessionID string `json:"sessionId"`
	}
	if err := api.New(endpoint).Send("POST", "session", req, &resp); err != nil {
		return nil, fmt.Errorf(
			"failed to open session at %s: %w", endpoint, err,
		)
	}
	if resp.SessionID == "" {
		return nil, fmt.Errorf(
			"failed to open session at %s: no session id", endpoint,
		)
	}
	return &WebDriver{session: api.New(endpoint + "/session/" + resp.SessionID)}, nil
}

// Navigate loads url.
func (w *WebDriver) Navigate(url string) error {
	return w.session.SetURL(url)
}

// FindElements returns all elements matching loc.
func (w *WebDriver) FindElements(
	loc locator.Locator,
) ([]Element, error) {
	using, value := loc.Using()
	var refs []elementRef
	err := w.session.Send("POST", "elements",
		api.Selector{Using: using, Value: value}, &refs,
	)
	if err != nil {
		if isNoSuchElement(err) {
			return nil, nil
		}
		return nil, err
	}
	elements := make([]Element, 0, len(refs))
	for _, ref := range refs {
		id := ref.id()
		if id == "" {
			return nil, fmt.Errorf("element reference without id for %s", loc)
		}
		elements = append(elements, &webElement{
			el: &api.Element{ID: id, Session: w.session},
		})
	}
	return elements, nil
}

// CurrentURL returns the current URL.
func (w *WebDriver) CurrentURL() (string, error) {
	return w.session.GetURL()
}

// WindowHandle returns the current window handle.
func (w *WebDriver) WindowHandle() (string, error) {
	var handle string
	if err := w.session.Send("GET", "window", nil, &handle); err != nil {
		return "", err
	}
	return handle, nil
}

// WindowHandles returns all window handles.
func (w *WebDriver) WindowHandles() ([]string, error) {
	var handles []string
	if err := w.session.Send("GET", "window/handles", nil, &handles); err != nil {
		return nil, err
	}
	return handles, nil
}

// SwitchToWindow focuses the window with the given handle.
func (w *WebDriver) SwitchToWindow(handle string) error {
	body := struct {
		Handle string `json:"handle"`
	}{handle}
	return w.session.Send("POST", "window", body, nil)
}

// CloseWindow closes the current window.
func (w *WebDriver) CloseWindow() error {
	return w.session.DeleteWindow()
}

// ExecuteScript runs script synchronously with el as its first
// argument.
func (w *WebDriver) ExecuteScript(script string, el Element) error {
	args := []interface{}{}
	if el != nil {
		args = append(args, map[string]string{w3cElementKey: el.ID()})
	}
	body := struct {
		Script string        `json:"script"`
		Args   []interface{} `json:"args"`
	}{script, args}
	var result interface{}
	return w.session.Send("POST", "execute/sync", body, &result)
}

// Quit ends the remote session.
func (w *WebDriver) Quit() error {
	return w.session.Delete()
}

type webElement struct {
	el *api.Element
}

func (e *webElement) ID() string { return e.el.ID }

func (e *webElement) Click() error {
	if err := e.el.Send("POST", "click", struct{}{}, nil); err != nil {
		if IsInterception(err) {
			return failure.Wrap(
				failure.KindObstructed, "click", e.el.ID, err,
			)
		}
		return err
	}
	return nil
}

func (e *webElement) Displayed() (bool, error) {
	return e.el.IsDisplayed()
}

func (e *webElement) Enabled() (bool, error) {
	return e.el.IsEnabled()
}

func (e *webElement) Attribute(name string) (string, error) {
	return e.el.GetAttribute(name)
}

func (e *webElement) Text() (string, error) {
	return e.el.GetText()
}

var interceptionMarkers = []string{
	"element click intercepted",
	"is not clickable at point",
	"other element would receive the click",
}

// IsInterception reports whether err is a WebDriver click
// interception.
func IsInterception(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range interceptionMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func isNoSuchElement(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such element") ||
		strings.Contains(msg, "unable to locate element")
}

var _ Session = (*WebDriver)(nil)
