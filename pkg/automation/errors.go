package automation

import (
	"errors"
	"fmt"

	"github.com/entrhq/dossier/pkg/poll"
)

// Error taxonomy for workflow failures. Per-record operations capture these
// into the record's error message rather than returning them; callers that
// need the kind can match on the message or use the helpers in this package.
var (
	ErrNotFound            = errors.New("expected control not found")
	ErrTimeout             = poll.ErrTimeout
	ErrAmbiguousOrNotFound = errors.New("no single matching search result")
	ErrReasonNotFound      = errors.New("no matching reject reason option")
	ErrInvalidInput        = errors.New("invalid record input")
	ErrCancelled           = errors.New("cancelled by caller")

	// ErrNotReady is returned when a record operation is invoked before
	// Initialise and Login have succeeded. It is the only error a Process*
	// method returns.
	ErrNotReady = errors.New("engine not initialised or not logged in")

	// ErrLoginFailed is reported when the marker element never appeared.
	ErrLoginFailed = errors.New("login did not complete")
)

// errPaused stops a workflow at the debug checkpoint. It never escapes the
// engine; the record ends PausedForReview.
var errPaused = errors.New("paused for review")

// MatchError reports that no search result row contained both the
// identifier and the resolved programme code.
type MatchError struct {
	Identifier string
	Code       string
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("could not find link in row with identifier %q and programme code %q", e.Identifier, e.Code)
}

// Unwrap lets errors.Is match ErrAmbiguousOrNotFound.
func (e *MatchError) Unwrap() error {
	return ErrAmbiguousOrNotFound
}
