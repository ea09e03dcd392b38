package memdir

import (
	"context"
	"sync"
	"testing"

	"github.com/linnemanlabs/triagedesk/internal/patient"
)

func testPatient(t *testing.T, nationalID string) *patient.Patient {
	t.Helper()
	p, err := patient.New(nationalID, "Ana", "Suarez", patient.Address{
		Street: "Av. Rivadavia", Number: 123, Locality: "Balvanera",
	}, nil, "")
	if err != nil {
		t.Fatalf("patient.New: %v", err)
	}
	return p
}

func TestSaveAndFind(t *testing.T) {
	t.Parallel()

	d := New()
	ctx := context.Background()

	if _, ok, err := d.FindByNationalID(ctx, "20-12345678-9"); err != nil || ok {
		t.Fatalf("empty directory: ok=%v err=%v, want miss", ok, err)
	}

	p := testPatient(t, "20-12345678-9")
	if err := d.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := d.FindByNationalID(ctx, "20-12345678-9")
	if err != nil || !ok {
		t.Fatalf("FindByNationalID: ok=%v err=%v", ok, err)
	}
	if got.FullName() != "Ana Suarez" {
		t.Errorf("FullName = %q, want %q", got.FullName(), "Ana Suarez")
	}
}

func TestSave_Replaces(t *testing.T) {
	t.Parallel()

	d := New()
	ctx := context.Background()

	p := testPatient(t, "20-12345678-9")
	if err := d.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	p.Name = "Anabel"
	if err := d.Save(ctx, p); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, _, _ := d.FindByNationalID(ctx, "20-12345678-9")
	if got.Name != "Anabel" {
		t.Errorf("Name = %q, want %q after replace", got.Name, "Anabel")
	}
}

func TestFind_ReturnsCopy(t *testing.T) {
	t.Parallel()

	d := New()
	ctx := context.Background()

	if err := d.Save(ctx, testPatient(t, "20-12345678-9")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, _, _ := d.FindByNationalID(ctx, "20-12345678-9")
	got.Name = "mutated"

	again, _, _ := d.FindByNationalID(ctx, "20-12345678-9")
	if again.Name != "Ana" {
		t.Error("mutating a returned patient changed the stored record")
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	d := New()
	ctx := context.Background()
	ids := []string{"20-00000001-1", "20-00000002-2", "20-00000003-3", "20-00000004-4"}

	records := make(map[string]*patient.Patient, len(ids))
	for _, id := range ids {
		records[id] = testPatient(t, id)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			_ = d.Save(ctx, records[id])
		}(id)
		go func(id string) {
			defer wg.Done()
			_, _, _ = d.FindByNationalID(ctx, id)
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		if _, ok, _ := d.FindByNationalID(ctx, id); !ok {
			t.Errorf("patient %s missing after concurrent writes", id)
		}
	}
}
