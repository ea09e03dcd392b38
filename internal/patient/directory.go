package patient

import "context"

// Directory is the patient master-data collaborator. The triage engine
// consumes exactly these two primitives; implementations own persistence.
type Directory interface {
	// FindByNationalID returns the patient keyed by nationalID, or
	// ok=false when no such patient exists. Absence is not an error.
	FindByNationalID(ctx context.Context, nationalID string) (*Patient, bool, error)

	// Save inserts or replaces a patient record.
	Save(ctx context.Context, p *Patient) error
}
