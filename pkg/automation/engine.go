// Package automation drives the remote records system through its web UI.
//
// An Engine owns one browser session. Initialise opens it, Login
// authenticates (reusing a signed-in profile when it can) and
// NavigateToEntry brings the page to the search screen. Each Process*
// method then runs one workflow for one record: it locates the record,
// applies a decision or merges its documents, and leaves the record in a
// terminal status. Failures never escape a Process* call; they are written
// to the record and followed by a best-effort navigation back to the entry
// point so the next record starts clean.
//
// Every step is reported as a log line on the engine's event bus, and every
// status change as a status event, in the order they happen.
package automation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/dossier/pkg/browser"
	"github.com/entrhq/dossier/pkg/events"
	"github.com/entrhq/dossier/pkg/types"
)

// maxControlsLogged caps the control inventory written on failure.
const maxControlsLogged = 25

// Launcher opens the browser session. *browser.SessionManager implements it.
type Launcher interface {
	Launch(ctx context.Context, opts browser.SessionOptions) (browser.Page, error)
	Close() error
}

// Engine runs workflows against one browser session. It is not safe for
// concurrent use; records are processed one at a time.
type Engine struct {
	launcher Launcher
	bus      *events.Bus

	cfg      Config
	profile  *SiteProfile
	timings  Timings
	page     browser.Page
	loggedIn bool

	closeOnce sync.Once
	closeErr  error
}

// NewEngine creates an engine that opens sessions through launcher and
// reports on bus.
func NewEngine(launcher Launcher, bus *events.Bus) *Engine {
	if bus == nil {
		bus = events.NewBus()
	}
	return &Engine{
		launcher: launcher,
		bus:      bus,
	}
}

// Bus returns the engine's event bus.
func (e *Engine) Bus() *events.Bus {
	return e.bus
}

// Debug reports whether workflows halt before final submission.
func (e *Engine) Debug() bool {
	return e.cfg.Debug
}

// Profile returns the site profile in use, or nil before Initialise.
func (e *Engine) Profile() *SiteProfile {
	return e.profile
}

// Initialise opens the persistent browser session.
func (e *Engine) Initialise(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Profile == nil {
		cfg.Profile = DefaultProfile()
	}

	e.cfg = cfg
	e.profile = cfg.Profile
	e.timings = cfg.Timings

	e.bus.Logf("Initialising browser...")
	page, err := e.launcher.Launch(ctx, browser.SessionOptions{
		ProfileDir: cfg.ProfileDir,
		Channel:    cfg.Channel,
		Headless:   cfg.Headless,
		SlowMo:     cfg.ActionDelay,
	})
	if err != nil {
		return fmt.Errorf("failed to open browser session: %w", err)
	}

	e.page = page
	e.bus.Logf("Browser initialised.")
	return nil
}

// Login authenticates the session. A profile that is still signed in is
// detected by the marker element and returns at once. Otherwise the login
// control is pressed if visible and the engine waits for the operator to
// finish signing in. A false result with a nil error means the marker never
// appeared or ctx ended during the wait; the only error is ErrNotReady.
func (e *Engine) Login(ctx context.Context) (bool, error) {
	if e.page == nil {
		return false, ErrNotReady
	}
	sel := e.profile.Selectors

	e.bus.Logf("Navigating to %s", e.cfg.TargetURL)
	if err := e.page.Goto(e.cfg.TargetURL); err != nil {
		e.bus.Logf("Navigation failed: %v", err)
		return false, nil
	}

	if err := e.page.WaitFor(sel.LoginMarker, e.timings.LoginCheck); err == nil {
		e.bus.Logf("Session valid. Already logged in.")
		e.loggedIn = true
		return true, nil
	}
	e.bus.Logf("Session check: login required.")

	if sel.LoginButton != "" {
		if visible, _ := e.page.Visible(browser.Sel(sel.LoginButton)); visible {
			if err := e.page.Click(browser.Sel(sel.LoginButton)); err != nil {
				e.bus.Logf("Login button click failed: %v", err)
			}
		}
	}

	if ctx.Err() != nil {
		e.bus.Logf("Login cancelled.")
		return false, nil
	}
	e.bus.Logf("Waiting for manual sign-in...")
	if err := e.waitForMarker(ctx, sel.LoginMarker, e.timings.LoginWait); err != nil {
		e.bus.Logf("Login did not complete: %v", err)
		return false, nil
	}

	e.bus.Logf("Successfully logged in.")
	e.loggedIn = true
	return true, nil
}

// waitForMarker waits for selector until timeout or until ctx ends. The
// page call itself cannot be interrupted; it is left to run out on its own.
func (e *Engine) waitForMarker(ctx context.Context, selector string, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- e.page.WaitFor(selector, timeout)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NavigateToEntry opens the search module: the entry link, then the search
// tab. Each hop is taken only when its link is visible, so calling it while
// already on the search screen does nothing harmful.
func (e *Engine) NavigateToEntry(ctx context.Context) error {
	if e.page == nil {
		return ErrNotReady
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	sel := e.profile.Selectors

	e.bus.Logf("Navigating to entry module...")
	if err := e.clickIfVisible(browser.Sel(sel.EntryLink)); err != nil {
		return err
	}

	e.bus.Logf("Clicking Search tab...")
	if err := e.clickIfVisible(browser.Sel(sel.SearchTab)); err != nil {
		return err
	}

	e.bus.Logf("Ready to search.")
	return nil
}

func (e *Engine) clickIfVisible(t browser.Target) error {
	visible, err := e.page.Visible(t)
	if err != nil || !visible {
		return nil
	}
	if err := e.page.Click(t); err != nil {
		return err
	}
	return e.page.WaitForLoad(e.timings.NetworkIdle)
}

// Close releases the browser session. It is safe to call more than once
// and before Initialise.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		if e.page != nil {
			e.bus.Logf("Closing browser...")
		}
		e.page = nil
		e.loggedIn = false
		if e.launcher != nil {
			e.closeErr = e.launcher.Close()
		}
	})
	return e.closeErr
}

func (e *Engine) ready() error {
	if e.page == nil || !e.loggedIn {
		return ErrNotReady
	}
	return nil
}

func (e *Engine) setStatus(rec *types.Record, s types.Status, errMsg string) {
	if rec.SetStatus(s, errMsg) {
		e.bus.StatusChanged(rec)
	}
}

// process is the per-record boundary shared by all workflows. It publishes
// Processing before touching the page, runs steps, and converts the outcome
// into a terminal status. Only ErrNotReady is returned.
func (e *Engine) process(ctx context.Context, rec *types.Record, title string, steps func(context.Context) error) error {
	if err := e.ready(); err != nil {
		return err
	}
	if rec.Status.IsTerminal() {
		e.bus.Logf("%s already %s; not reprocessing", rec.Identifier, rec.Status)
		return nil
	}

	e.setStatus(rec, types.StatusProcessing, "")
	e.bus.Logf("Processing %s for: %s (Prog: '%s')", title, rec.Identifier, rec.Programme)

	err := catchPanic(func() error { return steps(ctx) })
	switch {
	case err == nil:
		e.setStatus(rec, types.StatusSuccess, "")
		e.bus.Logf("SUCCESS: %s processed for %s", title, rec.Identifier)

	case errors.Is(err, errPaused):
		e.setStatus(rec, types.StatusPausedForReview, "")
		e.bus.Logf("PAUSED: %s left for manual review", rec.Identifier)

	default:
		e.setStatus(rec, types.StatusFailed, err.Error())
		e.bus.Logf("FAILED %s: %v", rec.Identifier, err)
		if perr := catchPanic(func() error { e.logControls(); return nil }); perr != nil {
			e.bus.Logf("Could not list page controls: %v", perr)
		}
		e.recover(ctx)
	}
	return nil
}

// catchPanic runs fn and turns a panic into an error, so a crash inside
// one record's steps ends that record instead of the batch.
func catchPanic(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	return fn()
}

// recover makes a best-effort return to the entry point after a failure.
func (e *Engine) recover(ctx context.Context) {
	e.bus.Logf("Recovering, navigating back to search...")
	if err := catchPanic(func() error { return e.NavigateToEntry(ctx) }); err != nil {
		e.bus.Logf("Recovery failed, browser may be in an unexpected state: %v", err)
	}
}

// logControls writes the page's interactive elements, which is usually
// enough to see why a selector missed.
func (e *Engine) logControls() {
	content, err := e.page.Content()
	if err != nil {
		return
	}
	controls, err := browser.ParseControls(content)
	if err != nil || len(controls) == 0 {
		return
	}
	e.bus.Logf("Controls on page:\n%s", browser.SummarizeControls(controls, maxControlsLogged))
}

// pause halts the workflow when running in debug mode.
func (e *Engine) pause(what string) error {
	if !e.cfg.Debug {
		return nil
	}
	e.bus.Logf("DEBUG MODE: paused before %s", what)
	return errPaused
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// firstVisible returns the first selector whose first match is visible.
func (e *Engine) firstVisible(selectors []string) (browser.Target, bool) {
	for _, s := range selectors {
		t := browser.Sel(s)
		if visible, err := e.page.Visible(t); err == nil && visible {
			return t, true
		}
	}
	return browser.Target{}, false
}

// clickFirstVisible clicks the first visible candidate, or fails with
// ErrNotFound naming what was looked for.
func (e *Engine) clickFirstVisible(what string, selectors []string) (browser.Target, error) {
	t, ok := e.firstVisible(selectors)
	if !ok {
		return browser.Target{}, fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	if err := e.page.Click(t); err != nil {
		return t, err
	}
	return t, nil
}
