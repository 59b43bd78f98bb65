package automation

import (
	"context"
	"fmt"
	"strings"

	"github.com/entrhq/dossier/pkg/browser"
	"github.com/entrhq/dossier/pkg/types"
)

// Locate searches for the record and opens the matching result.
func (e *Engine) Locate(ctx context.Context, rec *types.Record) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := requireProgramme(rec); err != nil {
		return err
	}
	if err := e.Search(ctx, rec.Identifier); err != nil {
		return err
	}
	return e.SelectResult(ctx, rec)
}

func requireProgramme(rec *types.Record) error {
	if strings.TrimSpace(rec.Programme) == "" {
		return fmt.Errorf("%w: programme is empty for %s", ErrInvalidInput, rec.Identifier)
	}
	return nil
}

// Search runs an identifier search from the search screen.
func (e *Engine) Search(ctx context.Context, identifier string) error {
	if err := e.ready(); err != nil {
		return err
	}
	sel := e.profile.Selectors
	e.bus.Logf("Searching: %s", identifier)

	if sel.SearchMode != "" {
		if err := e.clickIfVisibleNoWait(browser.Sel(sel.SearchMode)); err != nil {
			return err
		}
	}

	input, ok := e.firstVisible(sel.SearchInputs)
	if !ok {
		return fmt.Errorf("%w: could not find search input field", ErrNotFound)
	}
	if err := e.page.Fill(input, identifier); err != nil {
		return err
	}

	button, ok := e.firstVisible(sel.SearchButtons)
	if !ok {
		// The last candidate is the most generic; let the click report it.
		button = browser.Sel(sel.SearchButtons[len(sel.SearchButtons)-1])
	}
	if err := e.page.Click(button); err != nil {
		return err
	}
	if err := e.page.WaitForLoad(e.timings.NetworkIdle); err != nil {
		return err
	}
	return sleep(ctx, e.timings.Settle)
}

func (e *Engine) clickIfVisibleNoWait(t browser.Target) error {
	if visible, err := e.page.Visible(t); err != nil || !visible {
		return nil
	}
	return e.page.Click(t)
}

// SelectResult opens the result row that belongs to rec. A row qualifies
// when its text contains both the identifier and the programme code after
// alias resolution; the first qualifying row in document order wins.
func (e *Engine) SelectResult(ctx context.Context, rec *types.Record) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := requireProgramme(rec); err != nil {
		return err
	}
	sel := e.profile.Selectors

	e.bus.Logf("Looking for %s with Prog '%s'", rec.Identifier, rec.Programme)
	if err := e.page.WaitFor(sel.ResultsTable, e.timings.ResultsWait); err != nil {
		return fmt.Errorf("%w: search results table did not appear", ErrTimeout)
	}
	if err := sleep(ctx, e.timings.Settle); err != nil {
		return err
	}

	programme := strings.TrimSpace(rec.Programme)
	code := e.profile.ResolveAlias(programme)
	if code != programme {
		e.bus.Logf("Mapped '%s' -> '%s'", programme, code)
	}

	rows, err := e.page.RowTexts(sel.ResultLinks)
	if err != nil {
		return err
	}
	e.bus.Logf("Found %d links in result rows", len(rows))

	index, matches := MatchRow(rows, rec.Identifier, code)
	if index < 0 {
		return &MatchError{Identifier: rec.Identifier, Code: code}
	}
	if matches > 1 {
		e.bus.Logf("WARNING: %d rows match %s / %s; using the first", matches, rec.Identifier, code)
	}

	e.bus.Logf("Clicking the matched link (row %d)...", index)
	if err := e.page.Click(browser.Target{Selector: sel.ResultLinks, Nth: index}); err != nil {
		return err
	}
	return e.page.WaitForLoad(e.timings.NetworkIdle)
}
