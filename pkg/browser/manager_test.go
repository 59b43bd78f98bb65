package browser

import (
	"context"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_CloseWithoutLaunch(t *testing.T) {
	m := NewSessionManager()
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())

	_, err := m.Launch(context.Background(), SessionOptions{ProfileDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSessionManager_LaunchCancelledContext(t *testing.T) {
	m := NewSessionManager()
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Launch(ctx, SessionOptions{ProfileDir: t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
}

// TestPlaywrightPage drives a real headless Chromium against a data URL.
// It needs the Playwright driver and browsers, so it only runs when
// DOSSIER_BROWSER_TESTS is set.
func TestPlaywrightPage(t *testing.T) {
	if testing.Short() || os.Getenv("DOSSIER_BROWSER_TESTS") == "" {
		t.Skip("set DOSSIER_BROWSER_TESTS=1 to run browser tests")
	}

	m := NewSessionManager()
	defer m.Close()

	page, err := m.Launch(context.Background(), SessionOptions{
		ProfileDir: t.TempDir(),
		Headless:   true,
		Timeout:    10 * time.Second,
	})
	require.NoError(t, err)

	const doc = `data:text/html,<table><tbody>` +
		`<tr><td><a href="#">12345</a></td><td>MSc Machine Learning</td></tr>` +
		`<tr><td><a href="#">12345</a></td><td>MSc Computer Science</td></tr>` +
		`</tbody></table>` +
		`<select><option>1. Incomplete</option><option>8. Not competitive</option></select>` +
		`<input type="button" value="Create Overview" onclick="this.value='done'">`
	require.NoError(t, page.Goto(doc))
	require.NoError(t, page.WaitForLoad(5*time.Second))

	rows, err := page.RowTexts("table tbody tr td a")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[1], "Computer Science")

	visible, err := page.Visible(Target{Selector: "td", Text: regexp.MustCompile("Machine")})
	require.NoError(t, err)
	assert.True(t, visible)

	options, err := page.OptionTexts("select", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"1. Incomplete", "8. Not competitive"}, options)
	require.NoError(t, page.SelectOption("select", 0, 1))

	scan := TextScan{Tags: "input, button, a", Needles: []string{"create overview", "amend overview"}}
	present, err := page.TextPresent(scan)
	require.NoError(t, err)
	assert.True(t, present)

	matched, err := page.ClickText(scan)
	require.NoError(t, err)
	assert.Equal(t, "create overview", matched)

	_, err = page.ClickText(scan)
	assert.ErrorIs(t, err, ErrNotFound)
}
