package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"swasth-sathi/pkg/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	existing  *client.HealthRecord
	creates   int
	updates   []client.HealthRecord
	updatedAt []time.Time
	updateErr error
}

func (s *fakeStore) GetHealthRecord(context.Context) (*client.HealthRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existing, nil
}

func (s *fakeStore) CreateHealthRecord(_ context.Context, record client.HealthRecord) (*client.HealthRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	record.ID = "rec-1"
	return &record, nil
}

func (s *fakeStore) UpdateHealthRecord(_ context.Context, record client.HealthRecord) (*client.HealthRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, record)
	s.updatedAt = append(s.updatedAt, time.Now())
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &record, nil
}

func (s *fakeStore) snapshot() (int, []client.HealthRecord, []time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates, append([]client.HealthRecord(nil), s.updates...), append([]time.Time(nil), s.updatedAt...)
}

func str(s string) *string { return &s }

func TestEditsBeforeFirstSaveDoNotUpdate(t *testing.T) {
	store := &fakeStore{}
	form := New(store, WithQuietPeriod(20*time.Millisecond))
	defer form.Close()

	form.Edit(func(r *client.HealthRecord) { r.Gender = str("Female") })
	time.Sleep(60 * time.Millisecond)

	creates, updates, _ := store.snapshot()
	assert.Equal(t, 0, creates)
	assert.Empty(t, updates)
	assert.Equal(t, StatusUnsaved, form.Status())
}

func TestBurstOfEditsSendsOneUpdate(t *testing.T) {
	store := &fakeStore{}
	quiet := 50 * time.Millisecond
	form := New(store, WithQuietPeriod(quiet))
	defer form.Close()

	saved, err := form.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rec-1", saved.ID)
	assert.Equal(t, StatusSaved, form.Status())

	var lastEdit time.Time
	for _, allergy := range []string{"P", "Po", "Pol", "Poll", "Pollen"} {
		a := allergy
		form.Edit(func(r *client.HealthRecord) { r.Allergies = &a })
		lastEdit = time.Now()
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		_, updates, _ := store.snapshot()
		return len(updates) == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(2 * quiet)

	creates, updates, at := store.snapshot()
	assert.Equal(t, 1, creates)
	require.Len(t, updates, 1)
	assert.Equal(t, "rec-1", updates[0].ID)
	assert.Equal(t, "Pollen", *updates[0].Allergies)
	assert.GreaterOrEqual(t, at[0].Sub(lastEdit), quiet)
	assert.Equal(t, StatusSaved, form.Status())
}

func TestSecondSaveNeverCreates(t *testing.T) {
	store := &fakeStore{}
	form := New(store, WithQuietPeriod(10*time.Millisecond))
	defer form.Close()

	_, err := form.Save(context.Background())
	require.NoError(t, err)

	form.Edit(func(r *client.HealthRecord) {
		r.ID = "someone-else"
		r.Gender = str("Male")
	})
	_, err = form.Save(context.Background())
	assert.ErrorIs(t, err, ErrAlreadySaved)

	assert.Eventually(t, func() bool {
		_, updates, _ := store.snapshot()
		return len(updates) == 1
	}, time.Second, 5*time.Millisecond)

	creates, updates, _ := store.snapshot()
	assert.Equal(t, 1, creates)
	assert.Equal(t, "rec-1", updates[0].ID)
	assert.Equal(t, "rec-1", form.Record().ID)
}

func TestLoadExistingGoesStraightToEditing(t *testing.T) {
	store := &fakeStore{existing: &client.HealthRecord{ID: "rec-9", Gender: str("Other")}}
	form := New(store, WithQuietPeriod(10*time.Millisecond))
	defer form.Close()

	require.NoError(t, form.Load(context.Background()))
	assert.Equal(t, StatusSaved, form.Status())
	assert.False(t, form.LastSaved().IsZero())

	// loading alone schedules nothing
	time.Sleep(30 * time.Millisecond)
	_, updates, _ := store.snapshot()
	assert.Empty(t, updates)

	form.Edit(func(r *client.HealthRecord) { r.LifestyleNotes = str("Walks daily") })
	assert.Eventually(t, func() bool {
		_, updates, _ := store.snapshot()
		return len(updates) == 1
	}, time.Second, 5*time.Millisecond)

	_, updates, _ = store.snapshot()
	assert.Equal(t, "rec-9", updates[0].ID)
}

func TestFailedAutoSaveKeepsEditing(t *testing.T) {
	store := &fakeStore{updateErr: errors.New("offline")}
	form := New(store, WithQuietPeriod(10*time.Millisecond))
	defer form.Close()

	_, err := form.Save(context.Background())
	require.NoError(t, err)
	savedAt := form.LastSaved()

	form.Edit(func(r *client.HealthRecord) { r.Gender = str("Female") })
	assert.Eventually(t, func() bool { return form.Err() != nil }, time.Second, 5*time.Millisecond)

	assert.Equal(t, StatusSaved, form.Status())
	assert.Equal(t, savedAt, form.LastSaved())
}

func TestCloseCancelsPendingUpdate(t *testing.T) {
	store := &fakeStore{}
	form := New(store, WithQuietPeriod(30*time.Millisecond))

	_, err := form.Save(context.Background())
	require.NoError(t, err)
	form.Edit(func(r *client.HealthRecord) { r.Gender = str("Female") })
	form.Close()

	time.Sleep(60 * time.Millisecond)
	_, updates, _ := store.snapshot()
	assert.Empty(t, updates)

	_, err = form.Save(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

type gatedStore struct {
	fakeStore
	started chan struct{}
	release chan struct{}
}

func (s *gatedStore) CreateHealthRecord(ctx context.Context, record client.HealthRecord) (*client.HealthRecord, error) {
	close(s.started)
	<-s.release
	return s.fakeStore.CreateHealthRecord(ctx, record)
}

func TestEditsDuringFirstSaveAreKept(t *testing.T) {
	store := &gatedStore{started: make(chan struct{}), release: make(chan struct{})}
	form := New(store, WithQuietPeriod(10*time.Millisecond))
	defer form.Close()

	form.Edit(func(r *client.HealthRecord) { r.Gender = str("Female") })

	done := make(chan error, 1)
	go func() {
		_, err := form.Save(context.Background())
		done <- err
	}()

	<-store.started
	form.Edit(func(r *client.HealthRecord) { r.Allergies = str("peanuts") })
	close(store.release)
	require.NoError(t, <-done)

	record := form.Record()
	assert.Equal(t, "rec-1", record.ID)
	require.NotNil(t, record.Allergies)
	assert.Equal(t, "peanuts", *record.Allergies)

	assert.Eventually(t, func() bool {
		_, updates, _ := store.snapshot()
		return len(updates) == 1
	}, time.Second, 5*time.Millisecond)

	creates, updates, _ := store.snapshot()
	assert.Equal(t, 1, creates)
	assert.Equal(t, "rec-1", updates[0].ID)
	require.NotNil(t, updates[0].Allergies)
	assert.Equal(t, "peanuts", *updates[0].Allergies)
	assert.Equal(t, "Female", *updates[0].Gender)
}

func TestUnchangedFirstSaveSchedulesNothing(t *testing.T) {
	store := &fakeStore{}
	form := New(store, WithQuietPeriod(10*time.Millisecond))
	defer form.Close()

	form.Edit(func(r *client.HealthRecord) { r.Gender = str("Male") })
	_, err := form.Save(context.Background())
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)
	_, updates, _ := store.snapshot()
	assert.Empty(t, updates)
}
