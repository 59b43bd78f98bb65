package browser

import (
	"regexp"
	"strconv"
	"time"
)

// Default values for browser sessions.
const (
	DefaultTimeout  = 30 * time.Second // DefaultTimeout applies to every Playwright call without an explicit timeout.
	DefaultChannel  = "msedge"         // DefaultChannel is the installed browser build to drive.
	DefaultSlowMo   = 500 * time.Millisecond
	profileDirPerms = 0o755
)

// SessionOptions configures the single persistent browser session.
type SessionOptions struct {
	// ProfileDir is the on-disk user-data directory. Reusing it keeps
	// cookies between runs, so the operator rarely has to sign in twice.
	ProfileDir string

	// Channel selects the browser build, e.g. "msedge" or "chrome".
	// Empty means Playwright's bundled Chromium.
	Channel string

	Headless bool

	// SlowMo is the delay Playwright inserts between every action.
	SlowMo time.Duration

	// Timeout is the default for all page operations. Zero uses DefaultTimeout.
	Timeout time.Duration

	// SkipInstall skips downloading the Playwright driver on start.
	SkipInstall bool
}

// Target identifies one element on the page.
//
// Selector is a Playwright selector. Text, when set, narrows the selector's
// matches to those whose text matches. Label, when set, locates a form
// control by its accessible label instead of Selector. Nth picks among the
// remaining matches (zero is the first).
type Target struct {
	Selector string
	Text     *regexp.Regexp
	Label    string
	Nth      int
}

// Sel is shorthand for the first element matching selector.
func Sel(selector string) Target {
	return Target{Selector: selector}
}

// String returns a short description for log lines and errors.
func (t Target) String() string {
	s := t.Selector
	if t.Label != "" {
		s = "label=" + t.Label
	}
	if t.Text != nil {
		s += " /" + t.Text.String() + "/"
	}
	if t.Nth > 0 {
		s += " nth=" + strconv.Itoa(t.Nth)
	}
	return s
}

// TextScan looks for clickable elements by their visible text or value,
// case-insensitively. Tags is a CSS selector list of candidate elements.
// Exact requires the whole trimmed text to equal a needle; otherwise a
// substring match is enough. Needles are tried per element in order, and
// elements in document order.
type TextScan struct {
	Tags    string
	Needles []string
	Exact   bool
}

// Download is a file the page handed to the browser.
type Download interface {
	SuggestedFilename() string
	SaveAs(path string) error
}

// Page is everything the automation engine needs from a browser tab.
//
// The Playwright-backed implementation lives in this package; tests supply
// their own.
type Page interface {
	Goto(url string) error
	URL() string

	// WaitForLoad waits for the network to go idle.
	WaitForLoad(timeout time.Duration) error

	// WaitFor waits until selector is attached and visible.
	WaitFor(selector string, timeout time.Duration) error

	Visible(t Target) (bool, error)
	Count(selector string) (int, error)
	Click(t Target) error

	// Fill clears the target input, then types value into it.
	Fill(t Target, value string) error

	// RowTexts returns, for every element matching linkSelector, the inner
	// text of its nearest enclosing table row. Elements outside a row yield
	// an empty string, so indexes line up with the selector's matches.
	RowTexts(linkSelector string) ([]string, error)

	// OptionTexts returns the option labels of the nth select matching
	// selectSelector.
	OptionTexts(selectSelector string, nth int) ([]string, error)

	// SelectOption sets the nth select's selected index and fires a
	// bubbling change event, as a user selection would.
	SelectOption(selectSelector string, nth, index int) error

	// ClickText clicks the first element matching scan and returns the text
	// it matched on. It returns ErrNotFound when nothing matches.
	ClickText(scan TextScan) (string, error)

	// TextPresent reports whether an element matching scan exists. A
	// document that has not finished loading counts as present.
	TextPresent(scan TextScan) (bool, error)

	// Download clicks t and waits for the resulting download.
	Download(t Target, timeout time.Duration) (Download, error)

	// Content returns the serialized DOM.
	Content() (string, error)

	Close() error
}
