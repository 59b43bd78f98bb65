package automation

import (
	"fmt"
	"time"
)

// Timings holds every wait the workflows use. The remote system gives no
// completion signals, so most of these are settle delays after an action.
type Timings struct {
	LoginCheck     time.Duration // LoginCheck bounds the resumed-session marker probe.
	LoginWait      time.Duration // LoginWait bounds interactive sign-in, including second-factor prompts.
	NetworkIdle    time.Duration // NetworkIdle bounds ordinary network-idle waits.
	ResultsWait    time.Duration // ResultsWait bounds the wait for the search results table.
	Settle         time.Duration // Settle follows searches, submissions and exits.
	FormSettle     time.Duration // FormSettle follows opening forms and tabs.
	ChoiceSettle   time.Duration // ChoiceSettle follows choosing the decision radio.
	PollInterval   time.Duration // PollInterval spaces the disappearance checks in the merge workflow.
	PollDeadline   time.Duration // PollDeadline bounds each merge phase.
	PostPollIdle   time.Duration // PostPollIdle bounds the network-idle wait after a merge phase.
	PostPollSettle time.Duration // PostPollSettle follows PostPollIdle.
	ModalAttempts  int           // ModalAttempts is how often to look for the confirmation modal.
	ModalInterval  time.Duration // ModalInterval spaces the modal checks.
	DownloadWait   time.Duration // DownloadWait bounds the overview download.
}

// DefaultTimings returns the production waits.
func DefaultTimings() Timings {
	return Timings{
		LoginCheck:     5 * time.Second,
		LoginWait:      240 * time.Second,
		NetworkIdle:    30 * time.Second,
		ResultsWait:    10 * time.Second,
		Settle:         500 * time.Millisecond,
		FormSettle:     time.Second,
		ChoiceSettle:   2 * time.Second,
		PollInterval:   2 * time.Second,
		PollDeadline:   120 * time.Second,
		PostPollIdle:   60 * time.Second,
		PostPollSettle: 2 * time.Second,
		ModalAttempts:  10,
		ModalInterval:  time.Second,
		DownloadWait:   60 * time.Second,
	}
}

// Config is what Initialise needs to open and drive a session.
type Config struct {
	TargetURL   string
	Headless    bool
	ActionDelay time.Duration
	ProfileDir  string
	Channel     string

	// Debug halts every workflow right before its final submission and
	// leaves the record PausedForReview.
	Debug bool

	Timings Timings

	// Profile supplies selectors and heuristics. Nil uses DefaultProfile.
	Profile *SiteProfile
}

// Validate checks the fields Initialise cannot default.
func (c *Config) Validate() error {
	if c.TargetURL == "" {
		return fmt.Errorf("%w: target URL is required", ErrInvalidInput)
	}
	if c.ProfileDir == "" {
		return fmt.Errorf("%w: browser profile directory is required", ErrInvalidInput)
	}
	if c.ActionDelay < 0 {
		return fmt.Errorf("%w: action delay must be non-negative, got %s", ErrInvalidInput, c.ActionDelay)
	}
	if c.Timings.PollInterval < 0 || c.Timings.PollDeadline < 0 {
		return fmt.Errorf("%w: poll interval and deadline must be non-negative, got %s and %s",
			ErrInvalidInput, c.Timings.PollInterval, c.Timings.PollDeadline)
	}
	if c.Timings.ModalAttempts < 0 {
		return fmt.Errorf("%w: modal attempts must be non-negative, got %d", ErrInvalidInput, c.Timings.ModalAttempts)
	}
	return nil
}
