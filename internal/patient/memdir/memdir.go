// Package memdir provides an in-memory implementation of patient.Directory.
package memdir

import (
	"context"
	"sync"

	"github.com/linnemanlabs/triagedesk/internal/patient"
)

// Directory holds patient records in memory, keyed by national ID.
// Suitable for dev/testing.
type Directory struct {
	mu       sync.RWMutex
	patients map[string]*patient.Patient
}

// New initializes an empty in-memory Directory.
func New() *Directory {
	return &Directory{
		patients: make(map[string]*patient.Patient),
	}
}

// FindByNationalID retrieves a patient by national ID. Returns a copy.
func (d *Directory) FindByNationalID(_ context.Context, nationalID string) (*patient.Patient, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.patients[nationalID]
	if !ok {
		return nil, false, nil
	}
	cp := *p
	return &cp, true, nil
}

// Save stores a copy of the patient record, replacing any existing one.
func (d *Directory) Save(_ context.Context, p *patient.Patient) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := *p
	d.patients[p.NationalID] = &cp
	return nil
}
