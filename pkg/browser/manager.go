package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// ErrSessionClosed is returned when Launch is called after Close.
var ErrSessionClosed = errors.New("browser session closed")

// SessionManager owns the Playwright driver and the one persistent browser
// context the engine drives. It is safe for concurrent use.
type SessionManager struct {
	mu          sync.Mutex
	playwright  *playwright.Playwright
	context     playwright.BrowserContext
	page        *pwPage
	initialized bool
	closed      bool
}

// NewSessionManager creates a session manager. Nothing is started until
// Launch is called.
func NewSessionManager() *SessionManager {
	return &SessionManager{}
}

// initialize installs and starts the Playwright driver. Callers hold m.mu.
func (m *SessionManager) initialize(opts SessionOptions) error {
	if m.initialized {
		return nil
	}

	// Driver output is discarded so it cannot interleave with the terminal
	// view. A branded channel is already installed on the machine, so only
	// the bundled Chromium needs downloading.
	runOpts := &playwright.RunOptions{
		Verbose:             false,
		Stdout:              io.Discard,
		Stderr:              io.Discard,
		SkipInstallBrowsers: opts.Channel != "",
	}

	if !opts.SkipInstall {
		if err := playwright.Install(runOpts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// Launch starts the persistent browser context and returns its page.
// Calling Launch again returns the same page.
func (m *SessionManager) Launch(ctx context.Context, opts SessionOptions) (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrSessionClosed
	}
	if m.page != nil {
		return m.page, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := m.initialize(opts); err != nil {
		return nil, err
	}

	if opts.ProfileDir == "" {
		return nil, fmt.Errorf("browser profile directory is required")
	}
	if err := os.MkdirAll(opts.ProfileDir, profileDirPerms); err != nil {
		return nil, fmt.Errorf("failed to create browser profile directory: %w", err)
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	launchOpts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless:        playwright.Bool(opts.Headless),
		AcceptDownloads: playwright.Bool(true),
		SlowMo:          playwright.Float(float64(opts.SlowMo.Milliseconds())),
	}
	if opts.Channel != "" {
		launchOpts.Channel = playwright.String(opts.Channel)
	}
	if !opts.Headless {
		// Let the window size follow the maximized window.
		launchOpts.NoViewport = playwright.Bool(true)
		launchOpts.Args = []string{"--start-maximized"}
	}

	bctx, err := m.playwright.Chromium.LaunchPersistentContext(opts.ProfileDir, launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	// A persistent context opens with a tab already; reuse it.
	var page playwright.Page
	if pages := bctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = bctx.NewPage()
		if err != nil {
			_ = bctx.Close()
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
	}

	page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))

	m.context = bctx
	m.page = &pwPage{page: page}
	return m.page, nil
}

// Close releases the page, the browser context and the driver. It is safe
// to call more than once; later calls return nil.
func (m *SessionManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	if m.page != nil {
		if err := m.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
		m.page = nil
	}
	if m.context != nil {
		if err := m.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
		m.context = nil
	}
	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
		m.initialized = false
	}

	return errors.Join(errs...)
}
