package child

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	children map[uuid.UUID]*Child
}

func newMockRepo() *mockRepo {
	return &mockRepo{children: make(map[uuid.UUID]*Child)}
}

func (m *mockRepo) Create(ctx context.Context, ch *Child) error {
	ch.ID = uuid.New()
	m.children[ch.ID] = ch
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*Child, error) {
	ch, ok := m.children[id]
	if !ok || ch.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return ch, nil
}

func (m *mockRepo) Update(ctx context.Context, ch *Child) error {
	existing, ok := m.children[ch.ID]
	if !ok || existing.OwnerID != ch.OwnerID {
		return ErrNotFound
	}
	m.children[ch.ID] = ch
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	ch, ok := m.children[id]
	if !ok || ch.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.children, id)
	return nil
}

func (m *mockRepo) List(ctx context.Context, ownerID string, limit, offset int) ([]*Child, int, error) {
	var items []*Child
	for _, ch := range m.children {
		if ch.OwnerID == ownerID {
			items = append(items, ch)
		}
	}
	return items, len(items), nil
}

func validChild() *Child {
	return &Child{
		OwnerID:    "owner-1",
		Name:       "Alice",
		BirthDate:  time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
		BloodType:  "O+",
		BirthPlace: "City Hospital",
		FatherName: "Carlos",
		MotherName: "Maria",
	}
}

type mockBirthRecorder struct {
	calls int
	err   error
}

func (m *mockBirthRecorder) RecordBirth(ctx context.Context, ownerID string, childID uuid.UUID, birthDate time.Time, weightKG, lengthCM float64) error {
	m.calls++
	return m.err
}

func TestCreate_Valid(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	ch := validChild()
	if err := svc.Create(context.Background(), ch, nil); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if ch.ID == uuid.Nil {
		t.Error("expected generated id")
	}
}

func TestCreate_SeedsBirthMeasurement(t *testing.T) {
	svc := NewService(newMockRepo())
	recorder := &mockBirthRecorder{}
	svc.SetBirthRecorder(recorder)

	if err := svc.Create(context.Background(), validChild(), &BirthMeasurement{WeightKG: 3.2, LengthCM: 49.5}); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if recorder.calls != 1 {
		t.Errorf("expected 1 birth measurement, got %d", recorder.calls)
	}

	// Without measurements nothing is seeded.
	if err := svc.Create(context.Background(), validChild(), nil); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if recorder.calls != 1 {
		t.Errorf("expected no extra measurement, got %d calls", recorder.calls)
	}
}

func TestCreate_SeedFailureDoesNotFailCreate(t *testing.T) {
	svc := NewService(newMockRepo())
	svc.SetBirthRecorder(&mockBirthRecorder{err: errors.New("measurement store down")})

	var logs bytes.Buffer
	svc.SetLogger(zerolog.New(&logs))

	ch := validChild()
	if err := svc.Create(context.Background(), ch, &BirthMeasurement{WeightKG: 3.2, LengthCM: 49.5}); err != nil {
		t.Fatalf("Create() should survive a failed seed, got: %v", err)
	}
	if ch.ID == uuid.Nil {
		t.Error("expected generated id")
	}

	// The dropped measurement must be observable in the logs.
	if !strings.Contains(logs.String(), "failed to record birth measurement") {
		t.Errorf("expected warn log for the failed seed, got %q", logs.String())
	}
	if !strings.Contains(logs.String(), ch.ID.String()) {
		t.Error("expected log to carry the child id")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	tests := []struct {
		name   string
		mutate func(*Child)
	}{
		{"short name", func(ch *Child) { ch.Name = "A" }},
		{"future birth date", func(ch *Child) { ch.BirthDate = time.Now().AddDate(0, 0, 1) }},
		{"ancient birth date", func(ch *Child) { ch.BirthDate = time.Date(1899, 1, 1, 0, 0, 0, 0, time.UTC) }},
		{"bad blood type", func(ch *Child) { ch.BloodType = "X+" }},
		{"short birth place", func(ch *Child) { ch.BirthPlace = "x" }},
		{"short father name", func(ch *Child) { ch.FatherName = "x" }},
		{"short mother name", func(ch *Child) { ch.MotherName = "x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := validChild()
			tt.mutate(ch)
			if err := svc.Create(context.Background(), ch, nil); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGet_OwnerScoped(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	ch := validChild()
	if err := svc.Create(context.Background(), ch, nil); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if _, err := svc.Get(context.Background(), "owner-1", ch.ID); err != nil {
		t.Errorf("owner should see own child: %v", err)
	}
	if _, err := svc.Get(context.Background(), "owner-2", ch.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign owner should get ErrNotFound, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Delete(context.Background(), "owner-1", uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
