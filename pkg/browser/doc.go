// Package browser drives a single persistent browser session through
// Playwright.
//
// # Session
//
// SessionManager launches one persistent context backed by an on-disk
// profile directory, so site cookies survive between runs and an operator
// who signed in once is usually still signed in next time. The context runs
// with downloads enabled and with a SlowMo delay between actions. Close is
// idempotent and releases the page, context and driver in that order.
//
// # Page
//
// The automation engine never touches Playwright directly. It works through
// the Page interface, which exposes the handful of operations the workflows
// need: navigation, network-idle waits, visibility probes, clicks, fills,
// table-row text, select options, text scans and downloads. Scans that must
// look at both an input's value and an element's visible text run as page
// scripts (see scripts.go).
//
// # Snapshots
//
// ParseControls turns Page.Content into a flat list of interactive elements.
// Workflows log it when a step cannot find what it expected.
//
// # Example Usage
//
//	manager := browser.NewSessionManager()
//	defer manager.Close()
//
//	page, err := manager.Launch(ctx, browser.SessionOptions{
//	    ProfileDir: "/home/me/.dossier/browser-profile",
//	    Channel:    browser.DefaultChannel,
//	    SlowMo:     browser.DefaultSlowMo,
//	})
//	if err != nil {
//	    return err
//	}
//	_ = page.Goto("https://example.org")
package browser
