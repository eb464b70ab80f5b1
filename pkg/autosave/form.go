// Package autosave keeps a health profile form in sync with the server:
// one explicit create, then debounced updates while the user edits.
package autosave

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"swasth-sathi/pkg/client"
	"swasth-sathi/pkg/debounce"

	"github.com/sirupsen/logrus"
)

const DefaultQuietPeriod = 2 * time.Second

type Status string

const (
	StatusUnsaved    Status = "unsaved"
	StatusSaving     Status = "saving"
	StatusSaved      Status = "saved"
	StatusAutoSaving Status = "auto-saving"
)

var (
	ErrAlreadySaved = errors.New("autosave: record already created")
	ErrSaveRunning  = errors.New("autosave: initial save in progress")
	ErrClosed       = errors.New("autosave: form closed")
)

// Store is the remote side of the form. *client.Client satisfies it.
type Store interface {
	GetHealthRecord(ctx context.Context) (*client.HealthRecord, error)
	CreateHealthRecord(ctx context.Context, record client.HealthRecord) (*client.HealthRecord, error)
	UpdateHealthRecord(ctx context.Context, record client.HealthRecord) (*client.HealthRecord, error)
}

type Form struct {
	store Store
	log   *logrus.Logger
	quiet time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	record    client.HealthRecord
	status    Status
	lastSaved time.Time
	lastErr   error
	closed    bool
	edits     uint64

	debouncer *debounce.Debouncer
	updateMu  sync.Mutex
	inflight  sync.WaitGroup
}

type Option func(*Form)

func WithQuietPeriod(d time.Duration) Option {
	return func(f *Form) { f.quiet = d }
}

func WithLogger(log *logrus.Logger) Option {
	return func(f *Form) { f.log = log }
}

func New(store Store, opts ...Option) *Form {
	f := &Form{
		store:  store,
		quiet:  DefaultQuietPeriod,
		status: StatusUnsaved,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = logrus.New()
		f.log.SetOutput(io.Discard)
	}
	f.ctx, f.cancel = context.WithCancel(context.Background())
	f.debouncer = debounce.New(f.quiet, f.autoSave)
	return f
}

// Load fetches the stored profile. A missing profile leaves the form
// unsaved. Loading never schedules an update.
func (f *Form) Load(ctx context.Context) error {
	record, err := f.store.GetHealthRecord(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if record != nil {
		f.record = *record
		f.status = StatusSaved
		f.lastSaved = time.Now()
	}
	return nil
}

// Save performs the explicit first insert. Afterwards the form is in
// editing mode and every Edit schedules an update.
func (f *Form) Save(ctx context.Context) (client.HealthRecord, error) {
	f.mu.Lock()
	switch {
	case f.closed:
		f.mu.Unlock()
		return client.HealthRecord{}, ErrClosed
	case f.record.ID != "":
		f.mu.Unlock()
		return client.HealthRecord{}, ErrAlreadySaved
	case f.status == StatusSaving:
		f.mu.Unlock()
		return client.HealthRecord{}, ErrSaveRunning
	}
	f.status = StatusSaving
	snapshot := f.record
	edits := f.edits
	f.mu.Unlock()

	created, err := f.store.CreateHealthRecord(ctx, snapshot)

	f.mu.Lock()
	if err != nil {
		f.status = StatusUnsaved
		f.lastErr = err
		f.mu.Unlock()
		return client.HealthRecord{}, err
	}

	// edits made during the create win over the echoed snapshot
	changed := f.edits != edits
	if changed {
		f.record.ID = created.ID
		f.record.UpdatedAt = created.UpdatedAt
	} else {
		f.record = *created
	}
	f.status = StatusSaved
	f.lastSaved = time.Now()
	f.lastErr = nil
	record := f.record
	closed := f.closed
	f.mu.Unlock()

	if changed && !closed {
		f.debouncer.Trigger()
	}
	return record, nil
}

// Edit applies fn to the form's record. Once the record exists on the
// server the change is sent after the quiet period, replacing any update
// still waiting.
func (f *Form) Edit(fn func(record *client.HealthRecord)) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	id := f.record.ID
	fn(&f.record)
	// the server owns the id
	f.record.ID = id
	f.edits++
	saved := id != ""
	f.mu.Unlock()

	if saved {
		f.debouncer.Trigger()
	}
}

func (f *Form) autoSave() {
	// Add under mu so it never races with Close's Wait
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.inflight.Add(1)
	f.mu.Unlock()
	defer f.inflight.Done()

	f.updateMu.Lock()
	defer f.updateMu.Unlock()

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	snapshot := f.record
	f.status = StatusAutoSaving
	f.mu.Unlock()

	_, err := f.store.UpdateHealthRecord(f.ctx, snapshot)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = StatusSaved
	if err != nil {
		f.log.Warnf("Failed to auto-save health record: %+v", err)
		f.lastErr = err
		return
	}
	f.lastSaved = time.Now()
	f.lastErr = nil
}

// Record returns a copy of the current form contents.
func (f *Form) Record() client.HealthRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record
}

func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// LastSaved is zero until the first successful save or load.
func (f *Form) LastSaved() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSaved
}

// Err returns the error of the most recent failed save, if any.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Close drops any pending update, aborts one in flight and waits for it.
func (f *Form) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.mu.Unlock()

	f.debouncer.Stop()
	f.cancel()
	f.inflight.Wait()
}
