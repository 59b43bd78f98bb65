package automation

import (
	"context"
	"fmt"
	"strings"

	"github.com/entrhq/dossier/pkg/browser"
	"github.com/entrhq/dossier/pkg/types"
)

// ProcessAccept records an offer recommendation for rec.
func (e *Engine) ProcessAccept(ctx context.Context, rec *types.Record) error {
	return e.process(ctx, rec, "OFFER", func(ctx context.Context) error {
		if err := e.Locate(ctx, rec); err != nil {
			return err
		}
		if err := e.openRecommendation(ctx); err != nil {
			return err
		}

		e.bus.Logf("Selecting 'Offer recommendation'...")
		if err := e.page.Click(browser.Sel(e.profile.Selectors.OfferChoice)); err != nil {
			return err
		}
		if err := sleep(ctx, e.timings.Settle); err != nil {
			return err
		}

		if err := e.pause("clicking Process; verify 'Offer recommendation' is selected"); err != nil {
			return err
		}
		return e.submit(ctx)
	})
}

// ProcessReject records a reject recommendation with the configured reason.
func (e *Engine) ProcessReject(ctx context.Context, rec *types.Record) error {
	return e.process(ctx, rec, "REJECT", func(ctx context.Context) error {
		if err := e.Locate(ctx, rec); err != nil {
			return err
		}
		if err := e.openRecommendation(ctx); err != nil {
			return err
		}
		if err := e.chooseReject(ctx); err != nil {
			return err
		}
		if err := e.chooseReason(ctx); err != nil {
			return err
		}

		if err := e.pause("clicking Process; verify 'Reject' and the reason are selected"); err != nil {
			return err
		}
		return e.submit(ctx)
	})
}

// openRecommendation goes to the actions view and opens the recommendation
// form.
func (e *Engine) openRecommendation(ctx context.Context) error {
	sel := e.profile.Selectors

	e.bus.Logf("Clicking Actions tab...")
	if err := e.page.Click(browser.Sel(sel.ActionsTab)); err != nil {
		return err
	}
	if err := e.page.WaitForLoad(e.timings.NetworkIdle); err != nil {
		return err
	}
	if err := sleep(ctx, e.timings.Settle); err != nil {
		return err
	}

	e.bus.Logf("Opening the recommendation form...")
	link, ok := e.firstVisible(sel.RecommendLinks)
	if !ok {
		link = browser.Sel(sel.RecommendLinks[len(sel.RecommendLinks)-1])
	}
	if err := e.page.Click(link); err != nil {
		return err
	}
	if err := e.page.WaitForLoad(e.timings.NetworkIdle); err != nil {
		return err
	}
	return sleep(ctx, e.timings.FormSettle)
}

// chooseReject picks the second decision radio. Radio labels are not
// reliable on this form, so position is used; the label lookup is only a
// fallback for forms with fewer radios.
func (e *Engine) chooseReject(ctx context.Context) error {
	sel := e.profile.Selectors

	e.bus.Logf("Selecting 'Reject' radio button...")
	n, err := e.page.Count(sel.DecisionRadios)
	if err != nil {
		return err
	}

	target := browser.Target{Selector: sel.DecisionRadios, Nth: 1}
	if n < 2 {
		if sel.RejectLabel == "" {
			return fmt.Errorf("%w: expected 2 decision radios, found %d", ErrNotFound, n)
		}
		target = browser.Target{Label: sel.RejectLabel}
	}
	if err := e.page.Click(target); err != nil {
		return err
	}
	return sleep(ctx, e.timings.ChoiceSettle)
}

// chooseReason selects the reject reason in the reason dropdown, setting
// the value and firing a change event for the page's listeners.
func (e *Engine) chooseReason(ctx context.Context) error {
	sel := e.profile.Selectors
	idx := sel.ReasonSelectIndex

	e.bus.Logf("Selecting the reject reason...")
	n, err := e.page.Count(sel.ReasonSelects)
	if err != nil {
		return err
	}
	if n <= idx {
		return fmt.Errorf("%w: expected at least %d dropdowns, found %d", ErrNotFound, idx+1, n)
	}

	options, err := e.page.OptionTexts(sel.ReasonSelects, idx)
	if err != nil {
		return err
	}

	choice := MatchReason(options, e.profile.ReasonRules)
	if choice < 0 {
		e.bus.Logf("Reason options:\n%s", formatOptions(options))
		return ErrReasonNotFound
	}

	if err := e.page.SelectOption(sel.ReasonSelects, idx, choice); err != nil {
		return err
	}
	e.bus.Logf("Selected option %d: %s", choice, strings.TrimSpace(options[choice]))
	return sleep(ctx, e.timings.FormSettle)
}

// submit presses Process and waits for the page to settle.
func (e *Engine) submit(ctx context.Context) error {
	e.bus.Logf("Clicking Process...")
	buttons := e.profile.Selectors.ProcessButtons
	button, ok := e.firstVisible(buttons)
	if !ok {
		button = browser.Sel(buttons[len(buttons)-1])
	}
	if err := e.page.Click(button); err != nil {
		return err
	}
	if err := e.page.WaitForLoad(e.timings.NetworkIdle); err != nil {
		return err
	}
	return sleep(ctx, e.timings.Settle)
}

func formatOptions(options []string) string {
	var b strings.Builder
	for i, o := range options {
		fmt.Fprintf(&b, "  %d: %s\n", i, strings.TrimSpace(o))
	}
	return strings.TrimRight(b.String(), "\n")
}
