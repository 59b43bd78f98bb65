package types

import "strings"

// Decision is the outcome the operator wants recorded for a record.
type Decision string

const (
	DecisionAccept  Decision = "accept"  // DecisionAccept records an offer recommendation.
	DecisionReject  Decision = "reject"  // DecisionReject records a reject recommendation with a reason code.
	DecisionUnknown Decision = "unknown" // DecisionUnknown is anything the ingestion step could not classify.
)

// ParseDecision maps free text from an input sheet onto a Decision.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseDecision(s string) Decision {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept":
		return DecisionAccept
	case "reject":
		return DecisionReject
	default:
		return DecisionUnknown
	}
}

// Status is the processing state of a record within one batch run.
type Status string

const (
	StatusPending         Status = "pending"           // StatusPending is the initial state set by ingestion.
	StatusProcessing      Status = "processing"        // StatusProcessing means a workflow is running for the record.
	StatusSuccess         Status = "success"           // StatusSuccess means the workflow completed.
	StatusFailed          Status = "failed"            // StatusFailed means the workflow stopped with an error.
	StatusSkipped         Status = "skipped"           // StatusSkipped means the batch decided not to run a workflow.
	StatusPausedForReview Status = "paused_for_review" // StatusPausedForReview means debug mode halted before final submission.
)

// IsTerminal reports whether the status can no longer change within a run.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusSkipped, StatusPausedForReview:
		return true
	default:
		return false
	}
}

// Record is one row of work handed to the engine by the ingestion step.
//
// The engine is the only writer of Status and Error once a run starts. A
// record is owned by a single workflow invocation at a time, so no locking
// is done here.
type Record struct {
	// Identifier is the primary key within the batch (e.g. a student number).
	Identifier string `json:"identifier" yaml:"identifier"`

	// Programme is the disambiguation attribute, a short programme/route code.
	Programme string `json:"programme" yaml:"programme"`

	Decision Decision `json:"decision" yaml:"decision"`

	Forename string `json:"forename,omitempty" yaml:"forename,omitempty"`
	Surname  string `json:"surname,omitempty" yaml:"surname,omitempty"`

	Status Status `json:"status" yaml:"-"`

	// Error holds the failure message; set only when Status is StatusFailed.
	Error string `json:"error,omitempty" yaml:"-"`
}

// NewRecord returns a pending record.
func NewRecord(identifier, programme string, decision Decision) *Record {
	return &Record{
		Identifier: identifier,
		Programme:  programme,
		Decision:   decision,
		Status:     StatusPending,
	}
}

// Name returns "Forename Surname" with outer whitespace removed.
func (r *Record) Name() string {
	return strings.TrimSpace(r.Forename + " " + r.Surname)
}

// SetStatus moves the record to s. It returns false and leaves the record
// untouched when the record is already terminal. The error message is kept
// only for StatusFailed.
func (r *Record) SetStatus(s Status, errMsg string) bool {
	if r.Status.IsTerminal() {
		return false
	}
	r.Status = s
	if s == StatusFailed {
		r.Error = errMsg
	} else {
		r.Error = ""
	}
	return true
}
