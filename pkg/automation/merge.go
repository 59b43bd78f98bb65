package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/dossier/pkg/browser"
	"github.com/entrhq/dossier/pkg/poll"
	"github.com/entrhq/dossier/pkg/types"
)

const outputDirPerms = 0o755

// ProcessMerge builds the record's overview document on the remote side,
// merges the record's documents into it and downloads the result into
// outputDir.
func (e *Engine) ProcessMerge(ctx context.Context, rec *types.Record, outputDir string) error {
	return e.process(ctx, rec, "MERGE", func(ctx context.Context) error {
		return e.merge(ctx, rec, outputDir)
	})
}

func (e *Engine) merge(ctx context.Context, rec *types.Record, outputDir string) error {
	sel := e.profile.Selectors
	step := func(n int, format string, args ...interface{}) {
		e.bus.Logf("[Step %d] %s", n, fmt.Sprintf(format, args...))
	}

	// 1. Locate the record.
	step(1, "Searching for record...")
	if err := e.Locate(ctx, rec); err != nil {
		return err
	}
	step(1, "Entered record.")

	// 2. Documents view.
	step(2, "Opening documents tab...")
	if err := e.page.Click(browser.Sel(sel.DocumentsTab)); err != nil {
		return err
	}
	if err := e.page.WaitForLoad(e.timings.NetworkIdle); err != nil {
		return err
	}
	if err := sleep(ctx, e.timings.FormSettle); err != nil {
		return err
	}

	// 3. Create or amend the overview.
	step(3, "Looking for Create/Amend Overview control...")
	e.logControls()
	scan := e.profile.overviewScan()
	clicked, err := e.page.ClickText(scan)
	if err != nil {
		if errors.Is(err, browser.ErrNotFound) {
			return fmt.Errorf("%w: no Create/Amend Overview control on the page", ErrNotFound)
		}
		return err
	}
	step(3, "Clicked '%s'", clicked)

	// 4. First asynchronous phase: the trigger disappears once the page
	// has been rebuilt with the new overview.
	step(4, "Waiting for overview creation (up to %s)...", e.timings.PollDeadline)
	if err := e.awaitGone(ctx, 4, scan); err != nil {
		return err
	}
	step(4, "Page loaded after overview creation.")

	// 5. Merge.
	step(5, "Looking for 'Merge Documents' control...")
	merge, ok := e.firstVisible(sel.MergeButtons)
	if !ok {
		return fmt.Errorf("%w: could not find 'Merge Documents' control", ErrNotFound)
	}
	step(5, "Found with selector: %s", merge.Selector)
	if err := e.page.Click(merge); err != nil {
		return err
	}
	if err := sleep(ctx, e.timings.ChoiceSettle); err != nil {
		return err
	}

	// 6. Confirmation modal, then the second asynchronous phase.
	step(6, "Waiting for confirmation modal...")
	if err := e.awaitModal(ctx); err != nil {
		return err
	}
	if err := e.pause("confirming the merge; confirm it manually if the documents look right"); err != nil {
		return err
	}
	step(6, "Confirming and waiting for merge processing...")
	if _, err := e.page.ClickText(e.profile.confirmClickScan()); err != nil {
		return fmt.Errorf("confirm merge: %w", err)
	}
	if err := e.awaitGone(ctx, 6, e.profile.confirmWatchScan()); err != nil {
		return err
	}
	step(6, "Merge processing complete.")

	// 7. Download.
	step(7, "Looking for overview PDF link...")
	if err := e.download(ctx, rec, outputDir); err != nil {
		return err
	}

	// 8. Back to search.
	step(8, "Exiting record...")
	return e.exitRecord(ctx)
}

// awaitGone polls until nothing matches scan, then lets the page settle.
func (e *Engine) awaitGone(ctx context.Context, n int, scan browser.TextScan) error {
	err := poll.UntilGone(ctx, poll.Options{
		Interval: e.timings.PollInterval,
		Deadline: e.timings.PollDeadline,
		OnTick: func(elapsed time.Duration) {
			e.bus.Logf("[Step %d] Still processing... (%ds)", n, int(elapsed.Seconds()))
		},
	}, func(context.Context) (bool, error) {
		return e.page.TextPresent(scan)
	})
	if err != nil {
		if errors.Is(err, poll.ErrTimeout) {
			return fmt.Errorf("step %d: %w after %s", n, err, e.timings.PollDeadline)
		}
		return err
	}

	if err := e.page.WaitForLoad(e.timings.PostPollIdle); err != nil {
		return err
	}
	return sleep(ctx, e.timings.PostPollSettle)
}

// awaitModal waits a bounded number of attempts for the confirmation
// control to become visible.
func (e *Engine) awaitModal(ctx context.Context) error {
	for attempt := 0; attempt < e.timings.ModalAttempts; attempt++ {
		if _, ok := e.firstVisible(e.profile.Selectors.ConfirmButtons); ok {
			return nil
		}
		if err := sleep(ctx, e.timings.ModalInterval); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: confirmation modal did not appear", ErrNotFound)
}

// download saves the record's overview document into outputDir. A missing
// link is logged and tolerated.
func (e *Engine) download(ctx context.Context, rec *types.Record, outputDir string) error {
	link := browser.Target{
		Selector: e.profile.Selectors.DownloadLinks,
		Text:     e.profile.DownloadPattern(rec.Identifier),
	}
	if visible, err := e.page.Visible(link); err != nil || !visible {
		e.bus.Logf("[Step 7] WARNING: Overview PDF link not found. Continuing...")
		return nil
	}

	if err := os.MkdirAll(outputDir, outputDirPerms); err != nil {
		return fmt.Errorf("create output folder: %w", err)
	}

	e.bus.Logf("[Step 7] Downloading PDF...")
	dl, err := e.page.Download(link, e.timings.DownloadWait)
	if err != nil {
		return err
	}

	name := filepath.Base(strings.TrimSpace(dl.SuggestedFilename()))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = e.profile.FallbackFilename(rec.Identifier)
	}
	path := filepath.Join(outputDir, name)
	if err := dl.SaveAs(path); err != nil {
		return fmt.Errorf("save download: %w", err)
	}
	e.bus.Logf("[Step 7] PDF saved: %s", path)

	pages, checked, err := inspectPDF(path)
	switch {
	case err != nil:
		e.bus.Logf("[Step 7] WARNING: %s: %v", name, err)
	case checked:
		e.bus.Logf("[Step 7] %s has %d pages", name, pages)
	}
	return nil
}

// exitRecord leaves the record view and returns to the search screen.
func (e *Engine) exitRecord(ctx context.Context) error {
	sel := e.profile.Selectors

	exit, ok := e.firstVisible(sel.ExitButtons)
	if !ok {
		exit = browser.Sel(sel.ExitButtons[len(sel.ExitButtons)-1])
	}
	if err := e.page.Click(exit); err != nil {
		return err
	}
	if err := e.page.WaitForLoad(e.timings.NetworkIdle); err != nil {
		return err
	}
	if err := sleep(ctx, e.timings.Settle); err != nil {
		return err
	}

	e.bus.Logf("[Step 8] Returning to search screen...")
	if err := e.page.Click(browser.Sel(sel.SearchTab)); err != nil {
		return err
	}
	if err := e.page.WaitForLoad(e.timings.NetworkIdle); err != nil {
		return err
	}
	if err := sleep(ctx, e.timings.Settle); err != nil {
		return err
	}
	e.bus.Logf("[Step 8] Back on search screen.")
	return nil
}
