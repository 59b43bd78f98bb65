package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ErrNotFound is returned when a lookup matches no element.
var ErrNotFound = errors.New("element not found")

// pwPage adapts a Playwright page to Page.
type pwPage struct {
	page playwright.Page
}

// NewPage wraps an existing Playwright page.
func NewPage(page playwright.Page) Page {
	return &pwPage{page: page}
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func (p *pwPage) locator(t Target) playwright.Locator {
	var loc playwright.Locator
	if t.Label != "" {
		loc = p.page.GetByLabel(t.Label)
	} else {
		loc = p.page.Locator(t.Selector)
	}
	if t.Text != nil {
		loc = loc.Filter(playwright.LocatorFilterOptions{HasText: t.Text})
	}
	return loc.Nth(t.Nth)
}

func (p *pwPage) Goto(url string) error {
	if _, err := p.page.Goto(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (p *pwPage) URL() string {
	return p.page.URL()
}

func (p *pwPage) WaitForLoad(timeout time.Duration) error {
	return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: ms(timeout),
	})
}

func (p *pwPage) WaitFor(selector string, timeout time.Duration) error {
	_, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(timeout),
	})
	if err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (p *pwPage) Visible(t Target) (bool, error) {
	return p.locator(t).IsVisible()
}

func (p *pwPage) Count(selector string) (int, error) {
	return p.page.Locator(selector).Count()
}

func (p *pwPage) Click(t Target) error {
	if err := p.locator(t).Click(); err != nil {
		return fmt.Errorf("click %s: %w", t, err)
	}
	return nil
}

func (p *pwPage) Fill(t Target, value string) error {
	loc := p.locator(t)
	if err := loc.Clear(); err != nil {
		return fmt.Errorf("clear %s: %w", t, err)
	}
	if err := loc.Fill(value); err != nil {
		return fmt.Errorf("fill %s: %w", t, err)
	}
	return nil
}

func (p *pwPage) RowTexts(linkSelector string) ([]string, error) {
	links, err := p.page.Locator(linkSelector).All()
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", linkSelector, err)
	}

	rows := make([]string, len(links))
	for i, link := range links {
		row := link.Locator("xpath=ancestor::tr[1]")
		if n, err := row.Count(); err != nil || n == 0 {
			continue
		}
		text, err := row.InnerText()
		if err != nil {
			continue
		}
		rows[i] = text
	}
	return rows, nil
}

func (p *pwPage) OptionTexts(selectSelector string, nth int) ([]string, error) {
	sel := p.page.Locator(selectSelector).Nth(nth)
	if n, err := p.page.Locator(selectSelector).Count(); err != nil {
		return nil, err
	} else if n <= nth {
		return nil, fmt.Errorf("%w: %s #%d (found %d)", ErrNotFound, selectSelector, nth, n)
	}
	return sel.Locator("option").AllTextContents()
}

func (p *pwPage) SelectOption(selectSelector string, nth, index int) error {
	ok, err := p.page.Evaluate(selectOptionJS, map[string]interface{}{
		"selector": selectSelector,
		"nth":      nth,
		"index":    index,
	})
	if err != nil {
		return fmt.Errorf("select option: %w", err)
	}
	if b, _ := ok.(bool); !b {
		return fmt.Errorf("%w: option %d of %s #%d", ErrNotFound, index, selectSelector, nth)
	}
	return nil
}

func scanArg(scan TextScan) map[string]interface{} {
	return map[string]interface{}{
		"tags":    scan.Tags,
		"needles": scan.Needles,
		"exact":   scan.Exact,
	}
}

func (p *pwPage) ClickText(scan TextScan) (string, error) {
	res, err := p.page.Evaluate(clickTextJS, scanArg(scan))
	if err != nil {
		return "", fmt.Errorf("text scan: %w", err)
	}
	text, _ := res.(string)
	if text == "" {
		return "", fmt.Errorf("%w: %v in %s", ErrNotFound, scan.Needles, scan.Tags)
	}
	return text, nil
}

func (p *pwPage) TextPresent(scan TextScan) (bool, error) {
	res, err := p.page.Evaluate(textPresentJS, scanArg(scan))
	if err != nil {
		return false, fmt.Errorf("text scan: %w", err)
	}
	present, _ := res.(bool)
	return present, nil
}

func (p *pwPage) Download(t Target, timeout time.Duration) (Download, error) {
	dl, err := p.page.ExpectDownload(func() error {
		return p.locator(t).Click()
	}, playwright.PageExpectDownloadOptions{Timeout: ms(timeout)})
	if err != nil {
		return nil, fmt.Errorf("download via %s: %w", t, err)
	}
	return dl, nil
}

func (p *pwPage) Content() (string, error) {
	return p.page.Content()
}

func (p *pwPage) Close() error {
	if p.page.IsClosed() {
		return nil
	}
	return p.page.Close()
}
