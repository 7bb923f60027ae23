package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/Abhishek-Anvekar/healthcare/config"
	"github.com/Abhishek-Anvekar/healthcare/internal/domain/entity"
	domainRepo "github.com/Abhishek-Anvekar/healthcare/internal/domain/repository"
	"github.com/Abhishek-Anvekar/healthcare/internal/gateway"

	"github.com/sirupsen/logrus"
)

// fakeStore is an in-memory AppointmentRepository. InTx serializes callers,
// mirroring the store-level transaction boundary, and hands out copies so
// uncommitted mutations never leak.
type fakeStore struct {
	mu           sync.Mutex
	appointments map[string]entity.Appointment
	events       []entity.OutboxEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{appointments: make(map[string]entity.Appointment)}
}

func (s *fakeStore) put(a entity.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments[a.ID] = a
}

func (s *fakeStore) get(id string) entity.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appointments[id]
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appointments)
}

func (s *fakeStore) eventsForTopic(topic string) []entity.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.OutboxEvent
	for _, ev := range s.events {
		if ev.Topic == topic {
			out = append(out, ev)
		}
	}
	return out
}

func (s *fakeStore) InTx(ctx context.Context, fn func(tx domainRepo.AppointmentTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&fakeTx{store: s})
}

func (s *fakeStore) FindByID(ctx context.Context, id string) (*entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findByIDLocked(id), nil
}

func (s *fakeStore) findByIDLocked(id string) *entity.Appointment {
	if a, ok := s.appointments[id]; ok {
		copied := a
		return &copied
	}
	return nil
}

func (s *fakeStore) FindByDoctorAndStatuses(ctx context.Context, doctorID string, statuses []entity.AppointmentStatus, ascending bool) ([]entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Appointment
	for _, a := range s.appointments {
		if a.DoctorID == doctorID && statusIn(a.Status, statuses) {
			out = append(out, a)
		}
	}
	sortByStart(out, ascending)
	return out, nil
}

func (s *fakeStore) FindByPatient(ctx context.Context, patientID string) ([]entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Appointment
	for _, a := range s.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	sortByStart(out, false)
	return out, nil
}

func (s *fakeStore) FindByPatientAndStatuses(ctx context.Context, patientID string, statuses []entity.AppointmentStatus) ([]entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Appointment
	for _, a := range s.appointments {
		if a.PatientID == patientID && statusIn(a.Status, statuses) {
			out = append(out, a)
		}
	}
	sortByStart(out, false)
	return out, nil
}

func (s *fakeStore) FindByStartTimeBetween(ctx context.Context, from, to time.Time) ([]entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Appointment
	for _, a := range s.appointments {
		if !a.StartTime.Before(from) && !a.StartTime.After(to) {
			out = append(out, a)
		}
	}
	sortByStart(out, true)
	return out, nil
}

// fakeTx operates under the store lock held by InTx.
type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) Create(ctx context.Context, a *entity.Appointment) error {
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	t.store.appointments[a.ID] = *a
	return nil
}

func (t *fakeTx) Update(ctx context.Context, a *entity.Appointment) error {
	a.UpdatedAt = time.Now().UTC()
	t.store.appointments[a.ID] = *a
	return nil
}

func (t *fakeTx) FindByID(ctx context.Context, id string) (*entity.Appointment, error) {
	return t.store.findByIDLocked(id), nil
}

func (t *fakeTx) FindActiveByDoctorAndStart(ctx context.Context, doctorID string, startTime time.Time) (*entity.Appointment, error) {
	for _, a := range t.store.appointments {
		if a.DoctorID == doctorID && a.StartTime.Equal(startTime) && statusIn(a.Status, entity.ActiveStatuses()) {
			copied := a
			return &copied, nil
		}
	}
	return nil, nil
}

func (t *fakeTx) AppendEvent(ctx context.Context, ev *entity.OutboxEvent) error {
	t.store.events = append(t.store.events, *ev)
	return nil
}

func statusIn(status entity.AppointmentStatus, statuses []entity.AppointmentStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func sortByStart(appointments []entity.Appointment, ascending bool) {
	for i := 0; i < len(appointments); i++ {
		for j := i + 1; j < len(appointments); j++ {
			before := appointments[i].StartTime.Before(appointments[j].StartTime)
			if before != ascending && !appointments[i].StartTime.Equal(appointments[j].StartTime) {
				appointments[i], appointments[j] = appointments[j], appointments[i]
			}
		}
	}
}

// fakeProfileGateway resolves profiles from in-memory maps; unknown ids
// behave exactly like an unreachable service.
type fakeProfileGateway struct {
	doctors  map[string]*gateway.DoctorProfile
	patients map[string]*gateway.PatientProfile
}

func (g *fakeProfileGateway) GetDoctor(ctx context.Context, doctorID string) *gateway.DoctorProfile {
	return g.doctors[doctorID]
}

func (g *fakeProfileGateway) GetPatient(ctx context.Context, patientID string) *gateway.PatientProfile {
	return g.patients[patientID]
}

// fakeSlotGateway tracks blocked slots in memory.
type fakeSlotGateway struct {
	mu          sync.Mutex
	blocked     map[string]bool
	freeSearch  bool // result for lock attempts without a slot id
	unlockErr   error
	lockCalls   int
	unlockCalls []string
}

func newFakeSlotGateway() *fakeSlotGateway {
	return &fakeSlotGateway{blocked: make(map[string]bool), freeSearch: true}
}

func (g *fakeSlotGateway) ValidateAndLock(ctx context.Context, doctorID, slotID string, start time.Time, durationMinutes int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lockCalls++
	if slotID == "" {
		return g.freeSearch
	}
	if g.blocked[slotID] {
		return false
	}
	g.blocked[slotID] = true
	return true
}

func (g *fakeSlotGateway) Unlock(ctx context.Context, doctorID, slotID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if slotID == "" {
		return nil
	}
	g.unlockCalls = append(g.unlockCalls, slotID)
	if g.unlockErr != nil {
		return g.unlockErr
	}
	g.blocked[slotID] = false
	return nil
}

func (g *fakeSlotGateway) isBlocked(slotID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.blocked[slotID]
}

func (g *fakeSlotGateway) unlockCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.unlockCalls)
}

type fakeUnlockFailures struct {
	mu       sync.Mutex
	failures []entity.SlotUnlockFailure
}

func (r *fakeUnlockFailures) Record(ctx context.Context, failure *entity.SlotUnlockFailure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, *failure)
	return nil
}

func testTopics() config.TopicsConfig {
	return config.TopicsConfig{
		BookRequest: "appointment-book-request",
		Confirmed:   "appointment-confirmed",
		Rejected:    "appointment-rejected",
		Cancelled:   "appointment-cancelled",
		Notify:      "appointment-notify",
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
