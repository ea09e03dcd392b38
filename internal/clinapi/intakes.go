package clinapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/triagedesk/internal/authmw"
	"github.com/linnemanlabs/triagedesk/internal/patient"
	"github.com/linnemanlabs/triagedesk/internal/triage"
)

type registerRequest struct {
	PatientID       string           `json:"patient_id"`
	Description     string           `json:"description"`
	Level           string           `json:"level"`
	Temperature     *float64         `json:"temperature"`
	HeartRate       *float64         `json:"heart_rate"`
	RespiratoryRate *float64         `json:"respiratory_rate"`
	Systolic        *float64         `json:"systolic"`
	Diastolic       *float64         `json:"diastolic"`
	Name            string           `json:"name,omitempty"`
	Surname         string           `json:"surname,omitempty"`
	Insurer         string           `json:"insurer,omitempty"`
	Address         *patient.Address `json:"address,omitempty"`
}

type attendRequest struct {
	Note string `json:"note"`
}

// intakeItem is the wire shape of an intake in list and detail responses.
type intakeItem struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patient_id"`
	PatientName     string    `json:"patient_name"`
	PatientSurname  string    `json:"patient_surname"`
	Level           string    `json:"level"`
	LevelName       string    `json:"level_name"`
	Rank            int       `json:"rank"`
	Status          string    `json:"status"`
	RegisteredAt    time.Time `json:"registered_at"`
	Description     string    `json:"description,omitempty"`
	Temperature     float64   `json:"temperature"`
	HeartRate       float64   `json:"heart_rate"`
	RespiratoryRate float64   `json:"respiratory_rate"`
	Systolic        float64   `json:"systolic"`
	Diastolic       float64   `json:"diastolic"`
	NurseName       string    `json:"nurse_name,omitempty"`
	NurseSurname    string    `json:"nurse_surname,omitempty"`
	DoctorName      string    `json:"doctor_name,omitempty"`
	DoctorSurname   string    `json:"doctor_surname,omitempty"`
	Note            string    `json:"note,omitempty"`
	Warning         string    `json:"warning,omitempty"`
}

func (a *API) handleRegisterIntake(w http.ResponseWriter, r *http.Request) {
	id, err := authmw.FromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	nurse := triage.Nurse{
		Name:       id.Name,
		Surname:    id.Surname,
		License:    id.License,
		NationalID: id.NationalID,
		Email:      id.Email,
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	res, err := a.svc.RegisterIntake(r.Context(), nurse, triage.RegisterRequest{
		PatientID:       req.PatientID,
		Description:     req.Description,
		Level:           req.Level,
		Temperature:     req.Temperature,
		HeartRate:       req.HeartRate,
		RespiratoryRate: req.RespiratoryRate,
		Systolic:        req.Systolic,
		Diastolic:       req.Diastolic,
		Name:            req.Name,
		Surname:         req.Surname,
		Insurer:         req.Insurer,
		Address:         req.Address,
	})
	if err != nil {
		a.writeDomainError(w, r, err, "intake registration failed")
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("triagedesk.intake.id", res.Intake.ID),
		attribute.String("triagedesk.intake.level", string(res.Intake.Level.Code)),
	)

	item := toIntakeItem(res.Intake, true)
	item.Warning = res.Warning
	writeJSON(w, http.StatusCreated, item)
}

func (a *API) handleListPending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toIntakeItems(a.svc.ListPending(r.Context())))
}

func (a *API) handleListInProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toIntakeItems(a.svc.ListInProgress(r.Context())))
}

func (a *API) handleClaim(w http.ResponseWriter, r *http.Request) {
	doctor, ok := doctorFromRequest(w, r)
	if !ok {
		return
	}

	in, err := a.svc.ClaimNext(r.Context(), doctor)
	if err != nil {
		a.writeDomainError(w, r, err, "claim failed")
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("triagedesk.intake.id", in.ID))

	writeJSON(w, http.StatusOK, toIntakeItem(in, true))
}

func (a *API) handleAttend(w http.ResponseWriter, r *http.Request) {
	doctor, ok := doctorFromRequest(w, r)
	if !ok {
		return
	}

	intakeID := chi.URLParam(r, "id")

	var req attendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	note, err := a.svc.CloseIntake(r.Context(), intakeID, doctor, req.Note)
	if err != nil {
		a.writeDomainError(w, r, err, "attention failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"intake_id": intakeID,
		"status":    string(triage.StatusClosed),
		"note":      note.Text,
	})
}

func (a *API) handleGetIntake(w http.ResponseWriter, r *http.Request) {
	intakeID := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("triagedesk.intake.id", intakeID))

	in, ok := a.svc.FindByID(r.Context(), intakeID)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	span.SetAttributes(attribute.String("triagedesk.intake.status", string(in.Status)))

	writeJSON(w, http.StatusOK, toIntakeItem(in, true))
}

// doctorFromRequest builds the Doctor identity from the authenticated
// clinician, or writes a 401 and returns ok=false.
func doctorFromRequest(w http.ResponseWriter, r *http.Request) (*triage.Doctor, bool) {
	id, err := authmw.FromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return nil, false
	}
	return &triage.Doctor{
		Name:       id.Name,
		Surname:    id.Surname,
		License:    id.License,
		NationalID: id.NationalID,
		Email:      id.Email,
	}, true
}

func toIntakeItems(ins []*triage.Intake) []intakeItem {
	items := make([]intakeItem, 0, len(ins))
	for _, in := range ins {
		items = append(items, toIntakeItem(in, false))
	}
	return items
}

func toIntakeItem(in *triage.Intake, detail bool) intakeItem {
	item := intakeItem{
		ID:              in.ID,
		PatientID:       in.Patient.NationalID,
		PatientName:     in.Patient.Name,
		PatientSurname:  in.Patient.Surname,
		Level:           string(in.Level.Code),
		LevelName:       in.Level.Name,
		Rank:            in.Level.Rank,
		Status:          string(in.Status),
		RegisteredAt:    in.RegisteredAt,
		Temperature:     in.Vitals.Temperature.Value(),
		HeartRate:       in.Vitals.HeartRate.Value(),
		RespiratoryRate: in.Vitals.RespiratoryRate.Value(),
		Systolic:        in.Vitals.BloodPressure.Systolic(),
		Diastolic:       in.Vitals.BloodPressure.Diastolic(),
	}
	if detail {
		item.Description = in.Description
		item.NurseName = in.Nurse.Name
		item.NurseSurname = in.Nurse.Surname
		if in.Doctor != nil {
			item.DoctorName = in.Doctor.Name
			item.DoctorSurname = in.Doctor.Surname
		}
		if in.Note != nil {
			item.Note = in.Note.Text
		}
	}
	return item
}
