package domain

import "fmt"

// Status is the lifecycle stage of a job application. The set is closed:
// every stored record carries exactly one of these values.
type Status string

const (
	StatusApplied     Status = "Applied"
	StatusUnderReview Status = "UnderReview"
	StatusInterview   Status = "Interview"
	StatusOffer       Status = "Offer"
	StatusRejected    Status = "Rejected"
	StatusAccepted    Status = "Accepted"
	StatusNoResponse  Status = "NoResponse"
)

// AllStatuses lists every status in display order. Dashboard counts are
// zero-filled over this slice.
var AllStatuses = []Status{
	StatusApplied,
	StatusUnderReview,
	StatusInterview,
	StatusOffer,
	StatusRejected,
	StatusAccepted,
	StatusNoResponse,
}

// ParseStatus converts a raw string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Valid reports whether the status is a member of the closed set.
func (s Status) Valid() bool {
	switch s {
	case StatusApplied, StatusUnderReview, StatusInterview, StatusOffer,
		StatusRejected, StatusAccepted, StatusNoResponse:
		return true
	}
	return false
}

// Responded reports whether the application has left the initial
// applied/no-response state. The switch is exhaustive on purpose so that a
// new status value cannot silently fall through.
func (s Status) Responded() bool {
	switch s {
	case StatusApplied, StatusNoResponse:
		return false
	case StatusUnderReview, StatusInterview, StatusOffer, StatusRejected, StatusAccepted:
		return true
	}
	return false
}

// Active reports whether the application still expects action from the
// applicant. Follow-up queues only consider active applications.
func (s Status) Active() bool {
	return s == StatusApplied || s == StatusUnderReview
}

func (s Status) String() string {
	return string(s)
}
