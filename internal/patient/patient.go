// Package patient holds the patient master-data entities and the Directory
// collaborator interface the triage engine depends on.
package patient

import (
	"errors"
	"fmt"
	"strings"
)

// nationalIDDigits is the digit count of a valid national ID (CUIL).
const nationalIDDigits = 11

// Address is a patient's postal address.
type Address struct {
	Street   string `json:"street"`
	Number   int    `json:"number"`
	Locality string `json:"locality"`
	City     string `json:"city"`
	Province string `json:"province"`
	Country  string `json:"country"`
}

// Affiliation links a patient to a health insurer.
type Affiliation struct {
	Insurer      string `json:"insurer"`
	MemberNumber string `json:"member_number"`
}

// Patient is a registered emergency-department patient, keyed by national ID.
type Patient struct {
	NationalID  string       `json:"national_id"`
	Name        string       `json:"name"`
	Surname     string       `json:"surname"`
	Address     Address      `json:"address"`
	Affiliation *Affiliation `json:"affiliation,omitempty"`
	Email       string       `json:"email,omitempty"`
}

// New builds a Patient, validating the national ID format and the
// mandatory identity fields.
func New(nationalID, name, surname string, addr Address, aff *Affiliation, email string) (*Patient, error) {
	if err := ValidateNationalID(nationalID); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.New("name is mandatory")
	}
	if surname == "" {
		return nil, errors.New("surname is mandatory")
	}
	if addr.Street == "" || addr.Locality == "" {
		return nil, errors.New("address is mandatory")
	}
	if aff != nil {
		if aff.Insurer == "" {
			return nil, errors.New("insurer is mandatory")
		}
		if aff.MemberNumber == "" {
			return nil, errors.New("member number is mandatory")
		}
	}
	return &Patient{
		NationalID:  nationalID,
		Name:        name,
		Surname:     surname,
		Address:     addr,
		Affiliation: aff,
		Email:       email,
	}, nil
}

// ValidateNationalID checks the 11-digit CUIL format. Separator dashes
// (XX-XXXXXXXX-X) are accepted and ignored.
func ValidateNationalID(id string) error {
	if id == "" {
		return errors.New("national id is mandatory")
	}
	stripped := strings.ReplaceAll(id, "-", "")
	if len(stripped) != nationalIDDigits {
		return fmt.Errorf("national id must be %d digits (XX-XXXXXXXX-X)", nationalIDDigits)
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return fmt.Errorf("national id must be %d digits (XX-XXXXXXXX-X)", nationalIDDigits)
		}
	}
	return nil
}

// FullName returns "Name Surname" for display and log fields.
func (p *Patient) FullName() string {
	return p.Name + " " + p.Surname
}
