// Package automationtest builds fake portal pages and ready engines for
// tests of code that drives the automation engine.
package automationtest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/entrhq/dossier/pkg/automation"
	"github.com/entrhq/dossier/pkg/browser/browsertest"
	"github.com/entrhq/dossier/pkg/events"
)

// TargetURL is the login URL used by Config.
const TargetURL = "https://portal.example.test/login"

// DefaultReasons is a reason dropdown that contains the standard reject reason.
var DefaultReasons = []string{
	"",
	"1. Incomplete application",
	"3. Insufficient English",
	"8. Not competitive",
	"9. Other",
}

// Student describes one searchable record on the fake portal.
type Student struct {
	ID string

	// RowCode is the programme code shown in the search result row.
	RowCode string

	// Reasons overrides the reject reason options. Nil uses DefaultReasons.
	Reasons []string
}

// NewPortal returns a fake page laid out like the default site profile:
// the user is signed in, every tab and button is visible, and each student
// has one matching result row. Text triggers for the merge workflow stay
// present for one poll after each click.
func NewPortal(students ...Student) *browsertest.Page {
	profile := automation.DefaultProfile()
	sel := profile.Selectors
	p := browsertest.NewPage()

	for _, s := range []string{
		sel.LoginMarker,
		sel.EntryLink,
		sel.SearchTab,
		sel.SearchMode,
		sel.SearchInputs[0],
		sel.SearchButtons[0],
		sel.ResultsTable,
		sel.RecommendLinks[0],
		sel.ProcessButtons[0],
		sel.MergeButtons[0],
		sel.ConfirmButtons[0],
		sel.ExitButtons[0],
	} {
		p.Shown[s] = true
	}
	p.Counts[sel.DecisionRadios] = 2
	p.Counts[sel.ReasonSelects] = 2

	for _, s := range students {
		p.Rows[s.ID] = []string{s.ID + "\tDoe, Jane\t" + s.RowCode + "\tApplication"}
		reasons := s.Reasons
		if reasons == nil {
			reasons = DefaultReasons
		}
		p.Options[s.ID] = reasons
		p.Links = append(p.Links, s.ID+"-01-01-OVERVIEW.PDF")
	}

	for _, t := range profile.Overview.Triggers {
		p.Texts[t] = 0
	}
	p.Texts[profile.Confirm.Text] = 0
	p.OnClick = func(p *browsertest.Page, target string) {
		needle, ok := strings.CutPrefix(target, "text=")
		if !ok {
			return
		}
		if n, ok := p.Texts[needle]; ok && n == 0 {
			p.Texts[needle] = 1
		}
	}
	p.File = &browsertest.Download{Data: []byte("not a pdf")}

	p.HTML = `<html><body><a href="#">Actions</a><input type="submit" value="Process"></body></html>`
	return p
}

// Timings returns waits short enough for tests while keeping the polling
// structure intact.
func Timings() automation.Timings {
	return automation.Timings{
		LoginCheck:    time.Millisecond,
		LoginWait:     time.Millisecond,
		NetworkIdle:   time.Millisecond,
		ResultsWait:   time.Millisecond,
		PollInterval:  time.Millisecond,
		PollDeadline:  time.Second,
		PostPollIdle:  time.Millisecond,
		ModalAttempts: 3,
		ModalInterval: time.Millisecond,
		DownloadWait:  time.Millisecond,
	}
}

// Config returns an engine configuration for tests.
func Config(tb testing.TB, debug bool) automation.Config {
	tb.Helper()
	return automation.Config{
		TargetURL:  TargetURL,
		ProfileDir: tb.TempDir(),
		Debug:      debug,
		Timings:    Timings(),
	}
}

// NewEngine returns an initialised, logged-in engine on page along with a
// recorder subscribed to its bus.
func NewEngine(tb testing.TB, page *browsertest.Page, debug bool) (*automation.Engine, *events.Recorder) {
	tb.Helper()
	return NewEngineWithConfig(tb, page, Config(tb, debug))
}

// NewEngineWithConfig is NewEngine with a caller-supplied configuration.
func NewEngineWithConfig(tb testing.TB, page *browsertest.Page, cfg automation.Config) (*automation.Engine, *events.Recorder) {
	tb.Helper()

	bus := events.NewBus()
	rec := &events.Recorder{}
	bus.Subscribe(rec.Handle)

	engine := automation.NewEngine(&browsertest.Launcher{Page: page}, bus)
	ctx := context.Background()
	if err := engine.Initialise(ctx, cfg); err != nil {
		tb.Fatalf("initialise: %v", err)
	}
	ok, err := engine.Login(ctx)
	if err != nil || !ok {
		tb.Fatalf("login: ok=%v err=%v", ok, err)
	}
	tb.Cleanup(func() { _ = engine.Close() })
	return engine, rec
}
