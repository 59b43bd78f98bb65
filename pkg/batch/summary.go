package batch

import (
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/dossier/pkg/types"
)

// Summary describes one finished (or cancelled) batch run.
type Summary struct {
	RunID      string        `json:"run_id"`
	Mode       Mode          `json:"mode"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Duration   time.Duration `json:"duration"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Paused     int           `json:"paused_for_review"`
	Pending    int           `json:"pending"`
	Cancelled  bool          `json:"cancelled"`

	Records []*types.Record `json:"records"`
}

// Tally counts the records' statuses into the summary.
func (s *Summary) Tally(records []*types.Record) {
	s.Successful, s.Failed, s.Skipped, s.Paused, s.Pending = 0, 0, 0, 0, 0
	for _, r := range records {
		switch r.Status {
		case types.StatusSuccess:
			s.Successful++
		case types.StatusFailed:
			s.Failed++
		case types.StatusSkipped:
			s.Skipped++
		case types.StatusPausedForReview:
			s.Paused++
		default:
			s.Pending++
		}
	}
}

// String is the run-complete line, e.g.
// "Complete: 2 successful, 1 failed, 3 skipped".
func (s Summary) String() string {
	var b strings.Builder
	if s.Cancelled {
		b.WriteString("Cancelled: ")
	} else {
		b.WriteString("Complete: ")
	}
	fmt.Fprintf(&b, "%d successful, %d failed", s.Successful, s.Failed)
	if s.Skipped > 0 {
		fmt.Fprintf(&b, ", %d skipped", s.Skipped)
	}
	if s.Paused > 0 {
		fmt.Fprintf(&b, ", %d paused for review", s.Paused)
	}
	return b.String()
}
