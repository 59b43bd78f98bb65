// Package browsertest provides an in-memory browser.Page for testing code
// that drives pages, in the spirit of net/http/httptest.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/dossier/pkg/browser"
)

// ErrTimeout is returned by WaitFor when the selector is not visible.
var ErrTimeout = errors.New("fake page: timeout")

// Page is a scriptable browser.Page. Configure the exported fields before
// use; they are keyed by Target.String() unless noted otherwise. Fields may
// also be changed from an OnClick hook.
//
// Rows and Options are keyed by the last value typed into any input, so a
// single Page can serve a whole batch of searches. The "" key is the
// fallback.
type Page struct {
	mu sync.Mutex

	// Shown lists targets that are visible. Targets carrying a text
	// filter are visible when one of Links matches the filter.
	Shown map[string]bool

	// Counts overrides Count per selector. Missing selectors count 1 when
	// visible and 0 otherwise.
	Counts map[string]int

	Rows    map[string][]string
	Options map[string][]string
	Links   []string

	// Texts drives text scans, keyed by needle. A needle that is present
	// can be clicked; its value is how many more TextPresent calls report
	// it present before it disappears.
	Texts map[string]int

	// ScanErrors makes the next N TextPresent calls fail, as a page in the
	// middle of navigating would.
	ScanErrors int

	// ClickErrors fails clicks on the given targets.
	ClickErrors map[string]error

	// FillPanics makes Fill panic with the mapped value when the given
	// text is typed, like an adapter crashing mid-record.
	FillPanics map[string]any

	// OnClick runs after every successful click with the target string. It
	// runs with the page locked, so it may touch fields but must not call
	// methods.
	OnClick func(p *Page, target string)

	HTML string

	// File is returned by Download. Nil makes Download fail.
	File *Download

	url        string
	term       string
	clicks     []string
	fills      []string
	selections []int
	gotos      []string
	closed     bool
}

// NewPage returns an empty page with all maps allocated.
func NewPage() *Page {
	return &Page{
		Shown:       map[string]bool{},
		Counts:      map[string]int{},
		Rows:        map[string][]string{},
		Options:     map[string][]string{},
		Texts:       map[string]int{},
		ClickErrors: map[string]error{},
		url:         "about:blank",
	}
}

var _ browser.Page = (*Page)(nil)

func key(t browser.Target) string {
	return t.String()
}

// Clicks returns every clicked target in order. Text-scan clicks are
// recorded as "text=<needle>" and downloads as "download <target>".
func (p *Page) Clicks() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.clicks...)
}

// Clicked reports whether any recorded click contains substr.
func (p *Page) Clicked(substr string) bool {
	for _, c := range p.Clicks() {
		if strings.Contains(c, substr) {
			return true
		}
	}
	return false
}

// Fills returns every "target=value" fill in order.
func (p *Page) Fills() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.fills...)
}

// Selections returns the option indexes chosen through SelectOption.
func (p *Page) Selections() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.selections...)
}

// Gotos returns every URL navigated to.
func (p *Page) Gotos() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.gotos...)
}

// IsClosed reports whether Close was called.
func (p *Page) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) Goto(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gotos = append(p.gotos, url)
	p.url = url
	return nil
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) WaitForLoad(time.Duration) error {
	return nil
}

func (p *Page) WaitFor(selector string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Shown[selector] {
		return nil
	}
	return fmt.Errorf("%w: %s after %s", ErrTimeout, selector, timeout)
}

func (p *Page) visible(t browser.Target) bool {
	if t.Text != nil {
		for _, l := range p.Links {
			if t.Text.MatchString(l) {
				return true
			}
		}
		return false
	}
	return p.Shown[key(t)]
}

func (p *Page) Visible(t browser.Target) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible(t), nil
}

func (p *Page) Count(selector string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n, ok := p.Counts[selector]; ok {
		return n, nil
	}
	if p.Shown[selector] {
		return 1, nil
	}
	return 0, nil
}

func (p *Page) click(k string) error {
	if err := p.ClickErrors[k]; err != nil {
		return err
	}
	p.clicks = append(p.clicks, k)
	if p.OnClick != nil {
		p.OnClick(p, k)
	}
	return nil
}

func (p *Page) Click(t browser.Target) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.click(key(t))
}

func (p *Page) Fill(t browser.Target, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.FillPanics[value]; ok {
		panic(v)
	}
	p.fills = append(p.fills, key(t)+"="+value)
	p.term = value
	return nil
}

func (p *Page) forTerm(m map[string][]string) []string {
	if v, ok := m[p.term]; ok {
		return v
	}
	return m[""]
}

func (p *Page) RowTexts(string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.forTerm(p.Rows)...), nil
}

func (p *Page) OptionTexts(selectSelector string, nth int) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := p.Counts[selectSelector]; n <= nth {
		return nil, fmt.Errorf("%w: %s #%d", browser.ErrNotFound, selectSelector, nth)
	}
	return append([]string(nil), p.forTerm(p.Options)...), nil
}

func (p *Page) SelectOption(selectSelector string, nth, index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if options := p.forTerm(p.Options); index < 0 || index >= len(options) {
		return fmt.Errorf("%w: option %d", browser.ErrNotFound, index)
	}
	p.selections = append(p.selections, index)
	return nil
}

func (p *Page) ClickText(scan browser.TextScan) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, needle := range scan.Needles {
		if _, ok := p.Texts[needle]; ok {
			return needle, p.click("text=" + needle)
		}
	}
	return "", fmt.Errorf("%w: %v", browser.ErrNotFound, scan.Needles)
}

func (p *Page) TextPresent(scan browser.TextScan) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ScanErrors > 0 {
		p.ScanErrors--
		return false, errors.New("fake page: execution context was destroyed")
	}
	for _, needle := range scan.Needles {
		if n := p.Texts[needle]; n > 0 {
			p.Texts[needle] = n - 1
			return true, nil
		}
	}
	return false, nil
}

func (p *Page) Download(t browser.Target, _ time.Duration) (browser.Download, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.click("download " + key(t)); err != nil {
		return nil, err
	}
	if p.File == nil {
		return nil, fmt.Errorf("%w: no download", ErrTimeout)
	}
	return p.File, nil
}

func (p *Page) Content() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.HTML, nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Download is a canned download.
type Download struct {
	Name string
	Data []byte
}

func (d *Download) SuggestedFilename() string {
	return d.Name
}

func (d *Download) SaveAs(path string) error {
	return os.WriteFile(path, d.Data, 0o644)
}

// Launcher hands out a fixed Page.
type Launcher struct {
	Page *Page
	Err  error

	mu       sync.Mutex
	launches int
	closes   int
	opts     browser.SessionOptions
}

func (l *Launcher) Launch(ctx context.Context, opts browser.SessionOptions) (browser.Page, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	l.launches++
	l.opts = opts
	return l.Page, nil
}

func (l *Launcher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closes++
	if l.Page == nil {
		return nil
	}
	return l.Page.Close()
}

// Launches returns how often Launch succeeded.
func (l *Launcher) Launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches
}

// Closes returns how often Close was called.
func (l *Launcher) Closes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closes
}

// Options returns the options of the last launch.
func (l *Launcher) Options() browser.SessionOptions {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opts
}
