package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Application is one tracked job application. Dates carry no time-of-day
// component; optional dates are nil when unset.
type Application struct {
	ID              int64      `db:"id"`
	Company         string     `db:"company"`
	Role            string     `db:"role"`
	OfferURL        string     `db:"offer_url"`
	ApplicationDate time.Time  `db:"application_date"`
	Status          Status     `db:"status"`
	Notes           string     `db:"notes"`
	FollowUpDate    *time.Time `db:"follow_up_date"`
	ResponseDate    *time.Time `db:"response_date"`
	Tags            string     `db:"tags"`
	ContactName     string     `db:"contact_name"`
	ContactEmail    string     `db:"contact_email"`
	OfferedSalary   string     `db:"offered_salary"`
	Location        string     `db:"location"`
	WorkMode        string     `db:"work_mode"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// Patch describes a partial update. Nil fields are left untouched; set fields
// replace the stored value. Clearing an optional date is expressed with a
// non-nil pointer to a nil value via the Clear* flags.
type Patch struct {
	Company         *string
	Role            *string
	OfferURL        *string
	ApplicationDate *time.Time
	Status          *Status
	Notes           *string
	FollowUpDate    *time.Time
	ClearFollowUp   bool
	ResponseDate    *time.Time
	ClearResponse   bool
	Tags            *string
	ContactName     *string
	ContactEmail    *string
	OfferedSalary   *string
	Location        *string
	WorkMode        *string
}

// Apply writes the set fields of the patch onto the application.
func (p Patch) Apply(a *Application) {
	if p.Company != nil {
		a.Company = *p.Company
	}
	if p.Role != nil {
		a.Role = *p.Role
	}
	if p.OfferURL != nil {
		a.OfferURL = *p.OfferURL
	}
	if p.ApplicationDate != nil {
		a.ApplicationDate = DateOnly(*p.ApplicationDate)
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	if p.FollowUpDate != nil {
		d := DateOnly(*p.FollowUpDate)
		a.FollowUpDate = &d
	} else if p.ClearFollowUp {
		a.FollowUpDate = nil
	}
	if p.ResponseDate != nil {
		d := DateOnly(*p.ResponseDate)
		a.ResponseDate = &d
	} else if p.ClearResponse {
		a.ResponseDate = nil
	}
	if p.Tags != nil {
		a.Tags = *p.Tags
	}
	if p.ContactName != nil {
		a.ContactName = *p.ContactName
	}
	if p.ContactEmail != nil {
		a.ContactEmail = *p.ContactEmail
	}
	if p.OfferedSalary != nil {
		a.OfferedSalary = *p.OfferedSalary
	}
	if p.Location != nil {
		a.Location = *p.Location
	}
	if p.WorkMode != nil {
		a.WorkMode = *p.WorkMode
	}
}

// Validate checks the invariants every persisted record must hold.
func (a *Application) Validate() error {
	if a.Company == "" {
		return fmt.Errorf("%w: company", ErrMissingField)
	}
	if a.Role == "" {
		return fmt.Errorf("%w: role", ErrMissingField)
	}
	if a.ApplicationDate.IsZero() {
		return fmt.Errorf("%w: application_date", ErrMissingField)
	}
	if !a.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, a.Status)
	}
	return nil
}

// DateOnly truncates a timestamp to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOnly(t), nil
}

// FormatDate renders a date as YYYY-MM-DD. Nil dates render as the empty
// string, matching the CSV contract.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
