package triage

import (
	"strings"
	"time"
)

// LevelCode identifies a triage level in the clinical protocol.
type LevelCode string

// The five protocol levels, most severe first.
const (
	LevelCritical     LevelCode = "CRITICA"
	LevelEmergency    LevelCode = "EMERGENCIA"
	LevelUrgency      LevelCode = "URGENCIA"
	LevelMinorUrgency LevelCode = "URGENCIA_MENOR"
	LevelNoUrgency    LevelCode = "SIN_URGENCIA"
)

// Level is one row of the triage protocol table: a severity rank (0 = most
// severe), a display name, and the maximum tolerable wait before a patient at
// this level must be seen. The table is closed; Rank is the sole ordering key.
type Level struct {
	Code    LevelCode     `json:"code"`
	Rank    int           `json:"rank"`
	Name    string        `json:"name"`
	MaxWait time.Duration `json:"max_wait"`
}

// levels is ordered by rank. MaxWait enforcement is a monitoring concern and
// never blocks any engine operation.
var levels = [...]Level{
	{Code: LevelCritical, Rank: 0, Name: "Critica", MaxWait: 5 * time.Minute},
	{Code: LevelEmergency, Rank: 1, Name: "Emergencia", MaxWait: 30 * time.Minute},
	{Code: LevelUrgency, Rank: 2, Name: "Urgencia", MaxWait: time.Hour},
	{Code: LevelMinorUrgency, Rank: 3, Name: "Urgencia Menor", MaxWait: 2 * time.Hour},
	{Code: LevelNoUrgency, Rank: 4, Name: "Sin Urgencia", MaxWait: 4 * time.Hour},
}

// Levels returns the protocol table ordered by ascending rank.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels[:])
	return out
}

// LevelByCode looks up a level by its code, case-insensitively.
func LevelByCode(code string) (Level, bool) {
	normalized := LevelCode(strings.ToUpper(strings.TrimSpace(code)))
	for _, l := range levels {
		if l.Code == normalized {
			return l, true
		}
	}
	return Level{}, false
}
