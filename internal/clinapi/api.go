// Package clinapi exposes the triage engine over HTTP to the clinical
// front-desk and physician UIs.
package clinapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/triagedesk/internal/authmw"
	"github.com/linnemanlabs/triagedesk/internal/patient"
	"github.com/linnemanlabs/triagedesk/internal/triage"
)

// IntakeService defines the business operations clinapi needs.
type IntakeService interface {
	RegisterIntake(ctx context.Context, nurse triage.Nurse, req triage.RegisterRequest) (*triage.RegisterResult, error)
	ListPending(ctx context.Context) []*triage.Intake
	ListInProgress(ctx context.Context) []*triage.Intake
	ClaimNext(ctx context.Context, doctor *triage.Doctor) (*triage.Intake, error)
	CloseIntake(ctx context.Context, intakeID string, doctor *triage.Doctor, note string) (*triage.ClinicalNote, error)
	FindByID(ctx context.Context, intakeID string) (*triage.Intake, bool)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger    log.Logger
	svc       IntakeService
	directory patient.Directory
}

// New creates a new API handler.
func New(logger log.Logger, svc IntakeService, directory patient.Directory) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("intake service is required"))
	}
	if directory == nil {
		panic(xerrors.New("patient directory is required"))
	}
	return &API{
		logger:    logger,
		svc:       svc,
		directory: directory,
	}
}

// RegisterRoutes attaches API endpoints to the router. auth wraps every
// clinical route; the triage-level table stays public for the intake form.
func (a *API) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/triage-levels", a.handleListLevels)

		r.Group(func(r chi.Router) {
			r.Use(auth)

			r.With(authmw.RequireRole(authmw.RoleNurse)).Post("/intakes", a.handleRegisterIntake)
			r.Get("/intakes/pending", a.handleListPending)
			r.Get("/intakes/in-progress", a.handleListInProgress)
			r.Get("/intakes/{id}", a.handleGetIntake)
			r.With(authmw.RequireRole(authmw.RoleDoctor)).Post("/claims", a.handleClaim)
			r.With(authmw.RequireRole(authmw.RoleDoctor)).Post("/intakes/{id}/attention", a.handleAttend)
			r.Get("/patients/{nationalID}", a.handleGetPatient)
		})
	})
}

func (a *API) handleListLevels(w http.ResponseWriter, r *http.Request) {
	type levelItem struct {
		Code           string `json:"code"`
		Name           string `json:"name"`
		Rank           int    `json:"rank"`
		MaxWaitMinutes int    `json:"max_wait_minutes"`
	}

	items := make([]levelItem, 0, len(triage.Levels()))
	for _, l := range triage.Levels() {
		items = append(items, levelItem{
			Code:           string(l.Code),
			Name:           l.Name,
			Rank:           l.Rank,
			MaxWaitMinutes: int(l.MaxWait.Minutes()),
		})
	}

	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	nationalID := chi.URLParam(r, "nationalID")

	p, ok, err := a.directory.FindByNationalID(r.Context(), nationalID)
	if err != nil {
		a.logger.Error(r.Context(), err, "patient lookup failed", "national_id", nationalID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "patient not found")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// writeDomainError maps engine errors onto status codes: validation failures
// are the caller's fault, everything else is ours.
func (a *API) writeDomainError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if triage.IsValidation(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a.logger.Error(r.Context(), err, msg)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
