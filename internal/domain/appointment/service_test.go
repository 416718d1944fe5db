package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockStore struct {
	appointments map[uuid.UUID]*Appointment
	children     map[uuid.UUID]string // child id -> owner
	doctors      map[uuid.UUID]string
}

func newMockStore() *mockStore {
	return &mockStore{
		appointments: make(map[uuid.UUID]*Appointment),
		children:     make(map[uuid.UUID]string),
		doctors:      make(map[uuid.UUID]string),
	}
}

func (m *mockStore) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	m.appointments[a.ID] = a
	return nil
}

func (m *mockStore) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok || a.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockStore) Update(ctx context.Context, a *Appointment) error {
	existing, ok := m.appointments[a.ID]
	if !ok || existing.OwnerID != a.OwnerID {
		return ErrNotFound
	}
	m.appointments[a.ID] = a
	return nil
}

func (m *mockStore) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	a, ok := m.appointments[id]
	if !ok || a.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.appointments, id)
	return nil
}

func (m *mockStore) List(ctx context.Context, ownerID string, limit, offset int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.appointments {
		if a.OwnerID == ownerID {
			items = append(items, a)
		}
	}
	return items, len(items), nil
}

func (m *mockStore) ListByChild(ctx context.Context, ownerID string, childID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.appointments {
		if a.OwnerID == ownerID && a.ChildID == childID {
			items = append(items, a)
		}
	}
	return items, len(items), nil
}

func (m *mockStore) ChildExists(ctx context.Context, ownerID string, childID uuid.UUID) (bool, error) {
	return m.children[childID] == ownerID, nil
}

func (m *mockStore) DoctorExists(ctx context.Context, ownerID string, doctorID uuid.UUID) (bool, error) {
	return m.doctors[doctorID] == ownerID, nil
}

func setup() (*Service, *mockStore, uuid.UUID, uuid.UUID) {
	store := newMockStore()
	childID := uuid.New()
	doctorID := uuid.New()
	store.children[childID] = "owner-1"
	store.doctors[doctorID] = "owner-1"
	return NewService(store, store), store, childID, doctorID
}

func validAppointment(childID, doctorID uuid.UUID) *Appointment {
	return &Appointment{
		OwnerID:         "owner-1",
		ChildID:         childID,
		DoctorID:        doctorID,
		AppointmentDate: time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "14:30",
		Location:        "Pediatric Clinic",
	}
}

func TestCreate_DefaultsToScheduled(t *testing.T) {
	svc, _, childID, doctorID := setup()

	a := validAppointment(childID, doctorID)
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("expected default status scheduled, got %s", a.Status)
	}
}

func TestCreate_ForeignChildRejected(t *testing.T) {
	svc, store, _, doctorID := setup()

	otherChild := uuid.New()
	store.children[otherChild] = "owner-2"

	a := validAppointment(otherChild, doctorID)
	err := svc.Create(context.Background(), a)
	if !errors.Is(err, ErrChildNotFound) {
		t.Fatalf("expected ErrChildNotFound, got %v", err)
	}
}

func TestCreate_UnknownDoctorRejected(t *testing.T) {
	svc, _, childID, _ := setup()

	a := validAppointment(childID, uuid.New())
	err := svc.Create(context.Background(), a)
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, childID, doctorID := setup()

	tests := []struct {
		name   string
		mutate func(*Appointment)
	}{
		{"bad time format", func(a *Appointment) { a.AppointmentTime = "25:00" }},
		{"bad time separator", func(a *Appointment) { a.AppointmentTime = "1430" }},
		{"short location", func(a *Appointment) { a.Location = "x" }},
		{"bad status", func(a *Appointment) { a.Status = "postponed" }},
		{"missing date", func(a *Appointment) { a.AppointmentDate = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAppointment(childID, doctorID)
			tt.mutate(a)
			if err := svc.Create(context.Background(), a); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreate_AcceptsValidStatuses(t *testing.T) {
	svc, _, childID, doctorID := setup()

	for _, status := range []string{StatusScheduled, StatusCompleted, StatusCancelled, StatusRescheduled} {
		a := validAppointment(childID, doctorID)
		a.Status = status
		if err := svc.Create(context.Background(), a); err != nil {
			t.Errorf("status %s: unexpected error: %v", status, err)
		}
	}
}

type mockTxRunner struct {
	calls int
	err   error
}

func (m *mockTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	return fn(ctx)
}

func TestCreate_RunsInTransaction(t *testing.T) {
	svc, store, childID, doctorID := setup()
	runner := &mockTxRunner{}
	svc.SetTxRunner(runner)

	a := validAppointment(childID, doctorID)
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if runner.calls != 1 {
		t.Errorf("expected 1 transaction, got %d", runner.calls)
	}
	if len(store.appointments) != 1 {
		t.Errorf("expected appointment persisted, got %d", len(store.appointments))
	}

	a.Location = "Downtown Clinic"
	if err := svc.Update(context.Background(), a); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if runner.calls != 2 {
		t.Errorf("expected update in its own transaction, got %d calls", runner.calls)
	}
}

func TestCreate_TransactionFailurePropagates(t *testing.T) {
	svc, store, childID, doctorID := setup()
	svc.SetTxRunner(&mockTxRunner{err: errors.New("begin: connection refused")})

	if err := svc.Create(context.Background(), validAppointment(childID, doctorID)); err == nil {
		t.Fatal("expected transaction failure to surface")
	}
	if len(store.appointments) != 0 {
		t.Errorf("failed transaction must not persist rows, got %d", len(store.appointments))
	}
}

func TestListByChild(t *testing.T) {
	svc, _, childID, doctorID := setup()

	for i := 0; i < 3; i++ {
		if err := svc.Create(context.Background(), validAppointment(childID, doctorID)); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	items, total, err := svc.ListByChild(context.Background(), "owner-1", childID, 20, 0)
	if err != nil {
		t.Fatalf("ListByChild() error: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Errorf("expected 3 appointments, got %d (total %d)", len(items), total)
	}
}
