package triage

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/triagedesk/internal/patient"
)

// provisionWarning is returned to the caller when an intake referenced an
// unknown patient and the engine had to auto-register them first.
const provisionWarning = "patient does not exist in the system and had to be registered before the intake could proceed"

// provisionMemberNumber is the placeholder member number attached to
// auto-provisioned affiliations until the insurer confirms the real one.
const provisionMemberNumber = "PENDING"

// Notifier receives escalation events for critical-level intakes.
type Notifier interface {
	CriticalIntake(ctx context.Context, in *Intake) error
}

// RegisterRequest carries the already-validated primitive values for one
// intake registration. Empty strings and nil numerics mean "not supplied";
// the presence checks here are the domain rules, not schema validation.
type RegisterRequest struct {
	PatientID       string
	Description     string
	Level           string
	Temperature     *float64
	HeartRate       *float64
	RespiratoryRate *float64
	Systolic        *float64
	Diastolic       *float64

	// Fallback identity data, consulted only when PatientID is unknown to
	// the directory and the patient must be auto-provisioned.
	Name    string
	Surname string
	Insurer string
	Address *patient.Address
}

// RegisterResult is the outcome of a successful intake registration.
type RegisterResult struct {
	Intake         *Intake
	Warning        string // non-empty only when the patient was auto-provisioned
	PatientCreated bool
}

// Service is the triage orchestration engine. It exclusively owns the set of
// all intakes, stored in one id-keyed arena with three ordered index lists.
// A single mutex covers each whole operation, so a claim can never race a
// registration's re-sort and two claims can never pop the same head.
type Service struct {
	directory patient.Directory
	logger    log.Logger
	metrics   *Metrics
	notifier  Notifier
	now       func() time.Time

	mu         sync.Mutex
	seq        uint64             // monotonic arrival counter
	intakes    map[string]*Intake // arena: id -> the one owned record
	pending    []string           // sorted by (rank asc, arrival asc)
	inProgress []string           // claim order
	closed     []string           // close order
}

// Option configures optional Service behavior.
type Option func(*Service)

// WithClock injects the time source used for registration timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the triage orchestrator. metrics and notifier may be
// nil; logger defaults to a no-op.
func NewService(directory patient.Directory, logger log.Logger, metrics *Metrics, notifier Notifier, opts ...Option) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	s := &Service{
		directory: directory,
		logger:    logger,
		metrics:   metrics,
		notifier:  notifier,
		now:       time.Now,
		intakes:   make(map[string]*Intake),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterIntake validates the request, resolves (or auto-provisions) the
// patient, builds the vital-sign values, and inserts a pending intake into
// the waiting list. On any failure no intake is inserted; the only observable
// side effect of a later failure is the documented patient-provisioning
// write, which happens only after every presence check has passed.
func (s *Service) RegisterIntake(ctx context.Context, nurse Nurse, req RegisterRequest) (*RegisterResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Presence checks, in fixed order for deterministic error messages.
	if req.PatientID == "" {
		return nil, s.reject("register", "patient id is mandatory")
	}
	if req.Description == "" {
		return nil, s.reject("register", "description is mandatory")
	}
	if req.Level == "" {
		return nil, s.reject("register", "triage level is mandatory")
	}
	level, ok := LevelByCode(req.Level)
	if !ok {
		return nil, s.reject("register", fmt.Sprintf("unknown triage level %q", req.Level))
	}
	if req.Temperature == nil {
		return nil, s.reject("register", "temperature is mandatory")
	}
	if req.HeartRate == nil {
		return nil, s.reject("register", "heart rate is mandatory")
	}
	if req.RespiratoryRate == nil {
		return nil, s.reject("register", "respiratory rate is mandatory")
	}
	if req.Systolic == nil || req.Diastolic == nil {
		return nil, s.reject("register", "blood pressure is mandatory")
	}

	p, created, err := s.resolveOrCreatePatient(ctx, req)
	if err != nil {
		if IsValidation(err) {
			s.metrics.incValidationFailure("register")
		}
		return nil, err
	}

	vitals, err := buildVitals(req)
	if err != nil {
		s.metrics.incValidationFailure("register")
		return nil, err
	}

	s.seq++
	in := &Intake{
		ID:           ulid.Make().String(),
		Patient:      p,
		Nurse:        nurse,
		Level:        level,
		Description:  req.Description,
		Vitals:       vitals,
		RegisteredAt: s.now(),
		Status:       StatusPending,
		arrival:      s.seq,
	}

	s.intakes[in.ID] = in
	s.pending = append(s.pending, in.ID)
	s.sortPendingLocked()

	s.metrics.observeRegister(level.Code, created)
	s.metrics.setQueueDepth(StatusPending, len(s.pending))

	s.logger.Info(ctx, "intake registered",
		"intake_id", in.ID,
		"patient", p.NationalID,
		"level", level.Code,
		"rank", level.Rank,
		"patient_created", created,
	)

	if s.notifier != nil && level.Rank == 0 {
		cp := copyIntake(in)
		go func() {
			nctx := context.WithoutCancel(ctx)
			if err := s.notifier.CriticalIntake(nctx, cp); err != nil {
				s.logger.Error(nctx, err, "critical intake notification failed", "intake_id", cp.ID)
			}
		}()
	}

	res := &RegisterResult{Intake: copyIntake(in), PatientCreated: created}
	if created {
		res.Warning = provisionWarning
	}
	return res, nil
}

// resolveOrCreatePatient returns the patient for req.PatientID, provisioning
// a new record when the directory has none. The provisioning save is the only
// engine path that writes through the directory.
func (s *Service) resolveOrCreatePatient(ctx context.Context, req RegisterRequest) (*patient.Patient, bool, error) {
	p, found, err := s.directory.FindByNationalID(ctx, req.PatientID)
	if err != nil {
		return nil, false, fmt.Errorf("patient lookup: %w", err)
	}
	if found {
		return p, false, nil
	}

	if req.Name == "" {
		return nil, false, validationf("name is mandatory")
	}
	if req.Surname == "" {
		return nil, false, validationf("surname is mandatory")
	}
	if req.Insurer == "" {
		return nil, false, validationf("insurer is mandatory")
	}
	if req.Address == nil {
		return nil, false, validationf("address is mandatory")
	}

	aff := &patient.Affiliation{Insurer: req.Insurer, MemberNumber: provisionMemberNumber}
	p, err = patient.New(req.PatientID, req.Name, req.Surname, *req.Address, aff, "")
	if err != nil {
		return nil, false, &ValidationError{Message: err.Error()}
	}
	if err := s.directory.Save(ctx, p); err != nil {
		return nil, false, fmt.Errorf("patient save: %w", err)
	}

	s.logger.Info(ctx, "patient auto-provisioned", "patient", p.NationalID)
	return p, true, nil
}

// buildVitals constructs the four value objects. Presence was already
// checked; only non-negativity can fail here.
func buildVitals(req RegisterRequest) (VitalSigns, error) {
	temp, err := NewTemperature(*req.Temperature)
	if err != nil {
		return VitalSigns{}, err
	}
	hr, err := NewHeartRate(*req.HeartRate)
	if err != nil {
		return VitalSigns{}, err
	}
	rr, err := NewRespiratoryRate(*req.RespiratoryRate)
	if err != nil {
		return VitalSigns{}, err
	}
	bp, err := NewBloodPressure(*req.Systolic, *req.Diastolic)
	if err != nil {
		return VitalSigns{}, err
	}
	return VitalSigns{Temperature: temp, HeartRate: hr, RespiratoryRate: rr, BloodPressure: bp}, nil
}

// ListPending returns the waiting list in (rank asc, arrival asc) order.
// The result is a defensive copy; the backing list is never exposed.
func (s *Service) ListPending(_ context.Context) []*Intake {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyAllLocked(s.pending)
}

// ListInProgress returns intakes currently being attended, in claim order.
func (s *Service) ListInProgress(_ context.Context) []*Intake {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyAllLocked(s.inProgress)
}

// ClaimNext pops the head of the waiting list (highest priority, earliest
// arrival), assigns it to doctor, and moves it to in-progress. A doctor may
// hold at most one in-progress intake at a time.
func (s *Service) ClaimNext(ctx context.Context, doctor *Doctor) (*Intake, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doctor == nil {
		return nil, s.reject("claim", "doctor is mandatory")
	}

	for _, id := range s.inProgress {
		held := s.intakes[id]
		if held.Doctor.SameAs(doctor) {
			return nil, s.reject("claim", fmt.Sprintf(
				"doctor is already attending patient %s; the current case must be finished before claiming another",
				held.Patient.FullName(),
			))
		}
	}

	if len(s.pending) == 0 {
		return nil, s.reject("claim", "no patients waiting")
	}

	id := s.pending[0]
	s.pending = s.pending[1:]
	in := s.intakes[id]

	d := *doctor
	in.Status = StatusInProgress
	in.Doctor = &d
	s.inProgress = append(s.inProgress, id)

	s.metrics.observeClaim(in.Level.Code, s.now().Sub(in.RegisteredAt))
	s.metrics.setQueueDepth(StatusPending, len(s.pending))
	s.metrics.setQueueDepth(StatusInProgress, len(s.inProgress))

	s.logger.Info(ctx, "intake claimed",
		"intake_id", in.ID,
		"patient", in.Patient.NationalID,
		"level", in.Level.Code,
		"doctor", doctor.Email,
	)

	return copyIntake(in), nil
}

// CloseIntake attaches the doctor's clinical note to an in-progress intake
// and moves it to the closed set. The note is immutable once attached.
func (s *Service) CloseIntake(ctx context.Context, intakeID string, doctor *Doctor, note string) (*ClinicalNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(note) == "" {
		return nil, s.reject("close", "note is mandatory")
	}
	if doctor == nil {
		return nil, s.reject("close", "doctor is mandatory")
	}

	idx := slices.Index(s.inProgress, intakeID)
	if idx < 0 {
		return nil, s.reject("close", "intake does not exist or is not in progress")
	}

	in := s.intakes[intakeID]
	in.Note = &ClinicalNote{Doctor: *doctor, Text: note, CreatedAt: s.now()}
	in.Status = StatusClosed
	s.inProgress = slices.Delete(s.inProgress, idx, idx+1)
	s.closed = append(s.closed, intakeID)

	s.metrics.observeClose(in.Level.Code)
	s.metrics.setQueueDepth(StatusInProgress, len(s.inProgress))

	s.logger.Info(ctx, "intake closed",
		"intake_id", in.ID,
		"patient", in.Patient.NationalID,
		"doctor", doctor.Email,
	)

	cp := *in.Note
	return &cp, nil
}

// FindByID returns the intake with the given id in whatever lifecycle state
// it currently holds. Absence is a normal outcome, not an error.
func (s *Service) FindByID(_ context.Context, intakeID string) (*Intake, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.intakes[intakeID]
	if !ok {
		return nil, false
	}
	return copyIntake(in), true
}

// sortPendingLocked re-sorts the waiting list by (rank asc, arrival asc).
// The sort is stable and arrival is strictly monotonic, so same-rank intakes
// keep first-arrived-first-placed order.
func (s *Service) sortPendingLocked() {
	slices.SortStableFunc(s.pending, func(a, b string) int {
		ia, ib := s.intakes[a], s.intakes[b]
		if ia.Level.Rank != ib.Level.Rank {
			return ia.Level.Rank - ib.Level.Rank
		}
		switch {
		case ia.arrival < ib.arrival:
			return -1
		case ia.arrival > ib.arrival:
			return 1
		default:
			return 0
		}
	})
}

func (s *Service) copyAllLocked(ids []string) []*Intake {
	out := make([]*Intake, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyIntake(s.intakes[id]))
	}
	return out
}

// reject records a validation failure and returns it.
func (s *Service) reject(operation, message string) error {
	s.metrics.incValidationFailure(operation)
	return &ValidationError{Message: message}
}

// copyIntake clones an intake deeply enough that callers cannot reach the
// engine's owned record through any pointer field.
func copyIntake(in *Intake) *Intake {
	cp := *in
	if in.Patient != nil {
		p := *in.Patient
		if in.Patient.Affiliation != nil {
			a := *in.Patient.Affiliation
			p.Affiliation = &a
		}
		cp.Patient = &p
	}
	if in.Doctor != nil {
		d := *in.Doctor
		cp.Doctor = &d
	}
	if in.Note != nil {
		n := *in.Note
		cp.Note = &n
	}
	return &cp
}
