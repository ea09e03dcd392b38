package triage

import (
	"strings"
	"time"

	"github.com/linnemanlabs/triagedesk/internal/patient"
)

// Status tracks where an intake is in its lifecycle. Transitions are
// monotonic and one-directional: pending -> in_progress -> closed.
type Status string

const (
	// StatusPending means registered and waiting in the triage queue.
	StatusPending Status = "pending"

	// StatusInProgress means claimed by a doctor and being attended.
	StatusInProgress Status = "in_progress"

	// StatusClosed means attended and closed with a clinical note.
	StatusClosed Status = "closed"
)

// Nurse records intakes. License and national ID may be empty for accounts
// provisioned before credentialing data was backfilled.
type Nurse struct {
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	License    string `json:"license,omitempty"`
	NationalID string `json:"national_id,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Doctor claims and closes intakes.
type Doctor struct {
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	License    string `json:"license,omitempty"`
	NationalID string `json:"national_id,omitempty"`
	Email      string `json:"email,omitempty"`
}

// SameAs reports whether two doctors are the same clinician. Email is the
// primary identity; license number is the fallback when email is unset.
func (d *Doctor) SameAs(other *Doctor) bool {
	if d == nil || other == nil {
		return false
	}
	if d.Email != "" && other.Email != "" {
		return strings.EqualFold(d.Email, other.Email)
	}
	return d.License != "" && d.License == other.License
}

// ClinicalNote is the closing report a doctor attaches when an intake is
// attended. Immutable once created.
type ClinicalNote struct {
	Doctor    Doctor    `json:"doctor"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Intake is a single emergency-department case from arrival to closure.
// The Service exclusively owns all Intake records; only it mutates Status,
// Doctor, or Note. Callers always receive copies.
type Intake struct {
	ID           string           `json:"id"`
	Patient      *patient.Patient `json:"patient"`
	Nurse        Nurse            `json:"nurse"`
	Doctor       *Doctor          `json:"doctor,omitempty"`
	Level        Level            `json:"level"`
	Description  string           `json:"description"`
	Vitals       VitalSigns       `json:"-"`
	RegisteredAt time.Time        `json:"registered_at"`
	Status       Status           `json:"status"`
	Note         *ClinicalNote    `json:"note,omitempty"`

	// arrival is a monotonic registration counter. It breaks rank ties in
	// strict first-arrived order even when two registrations share a clock
	// reading.
	arrival uint64
}
