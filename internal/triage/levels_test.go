package triage

import (
	"testing"
	"time"
)

func TestLevels_TableOrderAndValues(t *testing.T) {
	t.Parallel()

	got := Levels()
	if len(got) != 5 {
		t.Fatalf("len(Levels()) = %d, want 5", len(got))
	}

	want := []struct {
		code    LevelCode
		rank    int
		name    string
		maxWait time.Duration
	}{
		{LevelCritical, 0, "Critica", 5 * time.Minute},
		{LevelEmergency, 1, "Emergencia", 30 * time.Minute},
		{LevelUrgency, 2, "Urgencia", time.Hour},
		{LevelMinorUrgency, 3, "Urgencia Menor", 2 * time.Hour},
		{LevelNoUrgency, 4, "Sin Urgencia", 4 * time.Hour},
	}

	for i, w := range want {
		l := got[i]
		if l.Code != w.code || l.Rank != w.rank || l.Name != w.name || l.MaxWait != w.maxWait {
			t.Errorf("Levels()[%d] = %+v, want {%s %d %s %s}", i, l, w.code, w.rank, w.name, w.maxWait)
		}
	}
}

func TestLevels_ReturnsCopy(t *testing.T) {
	t.Parallel()

	first := Levels()
	first[0].Name = "mutated"

	if Levels()[0].Name != "Critica" {
		t.Error("mutating the returned slice changed the protocol table")
	}
}

func TestLevelByCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		code   string
		want   LevelCode
		wantOK bool
	}{
		{"exact", "CRITICA", LevelCritical, true},
		{"lowercase", "critica", LevelCritical, true},
		{"mixed case", "Urgencia_Menor", LevelMinorUrgency, true},
		{"surrounding whitespace", "  EMERGENCIA  ", LevelEmergency, true},
		{"unknown", "TRIVIAL", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := LevelByCode(tt.code)
			if ok != tt.wantOK {
				t.Fatalf("LevelByCode(%q) ok = %v, want %v", tt.code, ok, tt.wantOK)
			}
			if ok && got.Code != tt.want {
				t.Errorf("LevelByCode(%q) = %s, want %s", tt.code, got.Code, tt.want)
			}
		})
	}
}
