package vaccination

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeStore is an in-memory implementation of all three repository
// interfaces, enough to exercise the engine end to end.
type fakeStore struct {
	definitions []*VaccineDefinition
	children    map[uuid.UUID]*ChildInfo
	ownerID     string
	doses       []*ScheduledDose

	listActiveErr  error
	createBatchErr error
	markAppliedErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		children: make(map[uuid.UUID]*ChildInfo),
		ownerID:  "owner-1",
	}
}

func (f *fakeStore) ListActive(ctx context.Context) ([]*VaccineDefinition, error) {
	if f.listActiveErr != nil {
		return nil, f.listActiveErr
	}
	var active []*VaccineDefinition
	for _, d := range f.definitions {
		if d.IsActive {
			active = append(active, d)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].AgeMonthsOffset < active[j].AgeMonthsOffset
	})
	return active, nil
}

func (f *fakeStore) Find(ctx context.Context, ownerID string, childID uuid.UUID) (*ChildInfo, error) {
	if ownerID != f.ownerID {
		return nil, ErrChildNotFound
	}
	child, ok := f.children[childID]
	if !ok {
		return nil, ErrChildNotFound
	}
	return child, nil
}

func (f *fakeStore) HasSchedule(ctx context.Context, childID uuid.UUID) (bool, error) {
	for _, d := range f.doses {
		if d.ChildID == childID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateBatch(ctx context.Context, doses []*ScheduledDose) error {
	if f.createBatchErr != nil {
		return f.createBatchErr
	}
	for _, d := range doses {
		for _, existing := range f.doses {
			if existing.ChildID == d.ChildID && existing.VaccineDefinitionID == d.VaccineDefinitionID {
				return ErrScheduleExists
			}
		}
	}
	f.doses = append(f.doses, doses...)
	return nil
}

func (f *fakeStore) ListViewsByChild(ctx context.Context, ownerID string, childID uuid.UUID) ([]*DoseView, error) {
	child, ok := f.children[childID]
	if !ok || ownerID != f.ownerID {
		return nil, nil
	}

	defsByID := make(map[uuid.UUID]*VaccineDefinition)
	for _, d := range f.definitions {
		defsByID[d.ID] = d
	}

	var views []*DoseView
	for _, d := range f.doses {
		if d.ChildID != childID {
			continue
		}
		def := defsByID[d.VaccineDefinitionID]
		views = append(views, &DoseView{
			ScheduledDose:      *d,
			VaccineName:        def.VaccineName,
			DoseNumber:         def.DoseNumber,
			VaccineDescription: def.Description,
			ChildName:          child.Name,
			ChildBirthDate:     child.BirthDate,
		})
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].ScheduledDate.Before(views[j].ScheduledDate)
	})
	return views, nil
}

func (f *fakeStore) MarkApplied(ctx context.Context, ownerID string, doseID uuid.UUID, completedDate time.Time, location string, notes *string) error {
	if f.markAppliedErr != nil {
		return f.markAppliedErr
	}
	if ownerID != f.ownerID {
		return ErrDoseNotFound
	}
	for _, d := range f.doses {
		if d.ID == doseID {
			d.Status = StatusCompleted
			d.CompletedDate = &completedDate
			d.Location = &location
			d.Notes = notes
			return nil
		}
	}
	return ErrDoseNotFound
}

func definition(name string, dose, offset int) *VaccineDefinition {
	return &VaccineDefinition{
		ID:              uuid.New(),
		VaccineName:     name,
		DoseNumber:      dose,
		AgeMonthsOffset: offset,
		IsActive:        true,
	}
}

// setupScenario builds a child born 2024-06-15 against a four-entry calendar
// at offsets 0, 2, 4 and 6 months.
func setupScenario(t *testing.T) (*Service, *fakeStore, uuid.UUID) {
	t.Helper()
	store := newFakeStore()
	store.definitions = []*VaccineDefinition{
		definition("BCG", 1, 0),
		definition("Penta", 1, 2),
		definition("Penta", 2, 4),
		definition("Penta", 3, 6),
	}

	childID := uuid.New()
	store.children[childID] = &ChildInfo{
		ID:        childID,
		Name:      "Alice",
		BirthDate: date(2024, time.June, 15),
	}

	svc := NewService(store, store, store)
	svc.now = func() time.Time { return date(2024, time.October, 20) }
	return svc, store, childID
}

func TestGenerateSchedule_ProjectsCalendarOntoBirthDate(t *testing.T) {
	svc, store, childID := setupScenario(t)

	if err := svc.GenerateSchedule(context.Background(), "owner-1", childID); err != nil {
		t.Fatalf("GenerateSchedule() error: %v", err)
	}

	if len(store.doses) != 4 {
		t.Fatalf("expected 4 doses, got %d", len(store.doses))
	}

	result, err := svc.Schedule(context.Background(), "owner-1", childID)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}

	expected := []time.Time{
		date(2024, time.June, 15),
		date(2024, time.August, 15),
		date(2024, time.October, 15),
		date(2024, time.December, 15),
	}
	for i, want := range expected {
		if !result.Doses[i].ScheduledDate.Equal(want) {
			t.Errorf("dose %d: expected %s, got %s", i,
				want.Format("2006-01-02"), result.Doses[i].ScheduledDate.Format("2006-01-02"))
		}
		if result.Doses[i].Status != StatusPending {
			t.Errorf("dose %d: expected pending, got %s", i, result.Doses[i].Status)
		}
		if result.Doses[i].CompletedDate != nil {
			t.Errorf("dose %d: pending dose must have nil completed date", i)
		}
	}
}

func TestGenerateSchedule_ClampsDayOfMonth(t *testing.T) {
	store := newFakeStore()
	store.definitions = []*VaccineDefinition{definition("Hepatitis B", 2, 1)}

	childID := uuid.New()
	store.children[childID] = &ChildInfo{
		ID:        childID,
		Name:      "Bruno",
		BirthDate: date(2024, time.January, 31),
	}

	svc := NewService(store, store, store)
	if err := svc.GenerateSchedule(context.Background(), "owner-1", childID); err != nil {
		t.Fatalf("GenerateSchedule() error: %v", err)
	}

	want := date(2024, time.February, 29)
	if got := store.doses[0].ScheduledDate; !got.Equal(want) {
		t.Errorf("expected leap-year clamp to %s, got %s",
			want.Format("2006-01-02"), got.Format("2006-01-02"))
	}
}

func TestGenerateSchedule_SecondCallConflicts(t *testing.T) {
	svc, store, childID := setupScenario(t)

	if err := svc.GenerateSchedule(context.Background(), "owner-1", childID); err != nil {
		t.Fatalf("first GenerateSchedule() error: %v", err)
	}

	err := svc.GenerateSchedule(context.Background(), "owner-1", childID)
	if !errors.Is(err, ErrScheduleExists) {
		t.Fatalf("expected ErrScheduleExists, got %v", err)
	}
	if len(store.doses) != 4 {
		t.Errorf("row count changed on conflicting call: %d", len(store.doses))
	}
}

func TestGenerateSchedule_InsertConflictAfterProbe(t *testing.T) {
	// The probe passes but the batch insert hits the unique constraint, as
	// happens when two calls race. The constraint violation must surface as
	// the conflict sentinel.
	svc, store, childID := setupScenario(t)
	store.createBatchErr = ErrScheduleExists

	err := svc.GenerateSchedule(context.Background(), "owner-1", childID)
	if !errors.Is(err, ErrScheduleExists) {
		t.Fatalf("expected ErrScheduleExists, got %v", err)
	}
}

func TestGenerateSchedule_ChildNotFound(t *testing.T) {
	svc, _, _ := setupScenario(t)

	err := svc.GenerateSchedule(context.Background(), "owner-1", uuid.New())
	if !errors.Is(err, ErrChildNotFound) {
		t.Fatalf("expected ErrChildNotFound, got %v", err)
	}
}

func TestGenerateSchedule_OtherOwnerCannotSee(t *testing.T) {
	svc, _, childID := setupScenario(t)

	err := svc.GenerateSchedule(context.Background(), "owner-2", childID)
	if !errors.Is(err, ErrChildNotFound) {
		t.Fatalf("expected ErrChildNotFound for foreign owner, got %v", err)
	}
}

func TestGenerateSchedule_EmptyCalendar(t *testing.T) {
	store := newFakeStore()
	childID := uuid.New()
	store.children[childID] = &ChildInfo{
		ID:        childID,
		Name:      "Carla",
		BirthDate: date(2024, time.June, 15),
	}

	svc := NewService(store, store, store)
	if err := svc.GenerateSchedule(context.Background(), "owner-1", childID); err != nil {
		t.Fatalf("empty calendar should succeed with zero rows, got %v", err)
	}
	if len(store.doses) != 0 {
		t.Errorf("expected no doses, got %d", len(store.doses))
	}

	has, err := svc.HasSchedule(context.Background(), "owner-1", childID)
	if err != nil {
		t.Fatalf("HasSchedule() error: %v", err)
	}
	if has {
		t.Error("zero-row generation must still report no schedule")
	}
}

func TestSchedule_EndToEndScenario(t *testing.T) {
	svc, _, childID := setupScenario(t)

	if err := svc.GenerateSchedule(context.Background(), "owner-1", childID); err != nil {
		t.Fatalf("GenerateSchedule() error: %v", err)
	}

	// Evaluated at 2024-10-20: BCG (06-15), Penta-1 (08-15) and Penta-2
	// (10-15) are pending with past dates, so all three are overdue; Penta-2
	// by 5 days. Penta-3 (12-15) is 56 days out, neither due soon nor in
	// November.
	result, err := svc.Schedule(context.Background(), "owner-1", childID)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}

	if result.Child == nil || result.Child.Name != "Alice" {
		t.Fatalf("expected child context in result, got %+v", result.Child)
	}

	penta2 := result.Doses[2]
	if penta2.DaysUntilDue == nil || *penta2.DaysUntilDue != -5 {
		t.Errorf("expected Penta-2 five days overdue, got %v", penta2.DaysUntilDue)
	}
	if !penta2.IsOverdue {
		t.Error("Penta-2 should be overdue")
	}

	penta3 := result.Doses[3]
	if penta3.IsOverdue || penta3.IsDueSoon {
		t.Error("Penta-3 should be pending with no alert state")
	}
	if penta3.DaysUntilDue == nil || *penta3.DaysUntilDue != 56 {
		t.Errorf("expected Penta-3 due in 56 days, got %v", penta3.DaysUntilDue)
	}

	stats := result.Stats
	if stats.Total != 4 || stats.Completed != 0 || stats.Pending != 4 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.Overdue != 3 {
		t.Errorf("expected 3 overdue, got %d", stats.Overdue)
	}
	if stats.DueThisMonth != 0 {
		t.Errorf("expected 0 due this month, got %d", stats.DueThisMonth)
	}
	if stats.DueNextMonth != 0 {
		t.Errorf("expected 0 due next month, got %d", stats.DueNextMonth)
	}
}

func TestSchedule_StatsInvariants(t *testing.T) {
	svc, _, childID := setupScenario(t)

	if err := svc.GenerateSchedule(context.Background(), "owner-1", childID); err != nil {
		t.Fatalf("GenerateSchedule() error: %v", err)
	}

	result, err := svc.Schedule(context.Background(), "owner-1", childID)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}

	stats := result.Stats
	if stats.Total != stats.Completed+stats.Pending {
		t.Errorf("total %d != completed %d + pending %d", stats.Total, stats.Completed, stats.Pending)
	}
	if stats.Overdue > stats.Pending {
		t.Errorf("overdue %d exceeds pending %d", stats.Overdue, stats.Pending)
	}
	if stats.DueThisMonth > stats.Pending {
		t.Errorf("due this month %d exceeds pending %d", stats.DueThisMonth, stats.Pending)
	}
}

func TestSchedule_ChildNotFound(t *testing.T) {
	svc, _, _ := setupScenario(t)

	_, err := svc.Schedule(context.Background(), "owner-1", uuid.New())
	if !errors.Is(err, ErrChildNotFound) {
		t.Fatalf("expected ErrChildNotFound, got %v", err)
	}
}

func TestSchedule_NoScheduleYieldsEmptyList(t *testing.T) {
	svc, _, childID := setupScenario(t)

	result, err := svc.Schedule(context.Background(), "owner-1", childID)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	if len(result.Doses) != 0 {
		t.Errorf("expected empty schedule, got %d doses", len(result.Doses))
	}
	if result.Stats.Total != 0 {
		t.Errorf("expected zero stats, got %+v", result.Stats)
	}
}

func TestStats_MatchesScheduleView(t *testing.T) {
	svc, _, childID := setupScenario(t)

	if err := svc.GenerateSchedule(context.Background(), "owner-1", childID); err != nil {
		t.Fatalf("GenerateSchedule() error: %v", err)
	}

	result, err := svc.Schedule(context.Background(), "owner-1", childID)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	stats, err := svc.Stats(context.Background(), "owner-1", childID)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats != result.Stats {
		t.Errorf("stats diverged from schedule view: %+v vs %+v", stats, result.Stats)
	}
}

func TestMarkApplied_TransitionsDose(t *testing.T) {
	svc, store, childID := setupScenario(t)

	if err := svc.GenerateSchedule(context.Background(), "owner-1", childID); err != nil {
		t.Fatalf("GenerateSchedule() error: %v", err)
	}

	doseID := store.doses[0].ID
	notes := "no reaction"
	err := svc.MarkApplied(context.Background(), "owner-1", doseID, MarkAppliedInput{
		CompletedDate: date(2024, time.June, 16),
		Location:      "Health Center",
		Notes:         &notes,
	})
	if err != nil {
		t.Fatalf("MarkApplied() error: %v", err)
	}

	dose := store.doses[0]
	if dose.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", dose.Status)
	}
	if dose.CompletedDate == nil || dose.Location == nil {
		t.Error("completed dose must have completed date and location")
	}

	// The completed dose no longer contributes alert state.
	result, err := svc.Schedule(context.Background(), "owner-1", childID)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	if result.Stats.Completed != 1 || result.Stats.Pending != 3 {
		t.Errorf("unexpected stats after completion: %+v", result.Stats)
	}
	if result.Doses[0].DaysUntilDue != nil || result.Doses[0].IsOverdue {
		t.Error("completed dose must not derive alert state")
	}
}

func TestMarkApplied_NotFound(t *testing.T) {
	svc, _, _ := setupScenario(t)

	err := svc.MarkApplied(context.Background(), "owner-1", uuid.New(), MarkAppliedInput{
		CompletedDate: date(2024, time.June, 16),
		Location:      "Health Center",
	})
	if !errors.Is(err, ErrDoseNotFound) {
		t.Fatalf("expected ErrDoseNotFound, got %v", err)
	}
}

func TestMarkApplied_Validation(t *testing.T) {
	svc, _, _ := setupScenario(t)

	err := svc.MarkApplied(context.Background(), "owner-1", uuid.New(), MarkAppliedInput{
		Location: "Health Center",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing completed date, got %v", err)
	}

	err = svc.MarkApplied(context.Background(), "owner-1", uuid.New(), MarkAppliedInput{
		CompletedDate: date(2024, time.June, 16),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing location, got %v", err)
	}
}

func TestCalendar_ReturnsActiveDefinitionsInOrder(t *testing.T) {
	svc, store, _ := setupScenario(t)
	store.definitions = append(store.definitions, &VaccineDefinition{
		ID:              uuid.New(),
		VaccineName:     "Retired",
		DoseNumber:      1,
		AgeMonthsOffset: 1,
		IsActive:        false,
	})

	defs, err := svc.Calendar(context.Background())
	if err != nil {
		t.Fatalf("Calendar() error: %v", err)
	}
	if len(defs) != 4 {
		t.Fatalf("expected 4 active definitions, got %d", len(defs))
	}
	for i := 1; i < len(defs); i++ {
		if defs[i].AgeMonthsOffset < defs[i-1].AgeMonthsOffset {
			t.Error("definitions must be ordered by age offset")
		}
	}
}
