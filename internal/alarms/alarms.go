// Package alarms persists alarm records and keeps their triggers in step
// with the scheduler.
package alarms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/snaprise/internal/barcode"
	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/logger"
	"github.com/julianstephens/snaprise/internal/models"
	"github.com/julianstephens/snaprise/internal/scheduler"
	"github.com/julianstephens/snaprise/internal/storage"
)

var (
	// ErrValidation is wrapped by every rejected create, update or toggle.
	ErrValidation = models.ErrValidation
	ErrNotFound   = errors.New("alarm not found")
	// ErrBarcodeMissing is returned when activating a barcode alarm before a
	// code has been captured for it.
	ErrBarcodeMissing = fmt.Errorf("%w: no barcode captured for this alarm", models.ErrValidation)
)

// Spec holds the editable fields of an alarm. ID is only read by Create,
// where it may carry an id reserved with NewID.
type Spec struct {
	ID        string
	Time      string
	Days      []time.Weekday
	Active    bool
	Label     string
	Challenge models.Challenge
}

// Validate applies the rules Create enforces, except the barcode check, so a
// caller can reject a spec before capturing anything for it.
func (s Spec) Validate() error {
	a := models.Alarm{Time: s.Time, Days: s.Days, Active: s.Active, Challenge: s.Challenge}
	return checkRules(&a)
}

// NewID reserves an id so a barcode can be captured before Create.
func NewID() string {
	return uuid.NewString()
}

type scheduled struct {
	handle      scheduler.Handle
	fingerprint string
}

type Repository struct {
	mu       sync.Mutex
	kv       storage.Provider
	barcodes *barcode.Store
	sched    scheduler.Scheduler
	armed    map[string]scheduled
	now      func() time.Time
}

// NewRepository wires the repository to its collaborators. A nil scheduler
// validates triggers without arming them.
func NewRepository(kv storage.Provider, barcodes *barcode.Store, sched scheduler.Scheduler) *Repository {
	if sched == nil {
		sched = scheduler.Nop{}
	}
	if barcodes == nil {
		barcodes = barcode.NewStore(kv)
	}
	return &Repository{
		kv:       kv,
		barcodes: barcodes,
		sched:    sched,
		armed:    make(map[string]scheduled),
		now:      time.Now,
	}
}

func recordKey(id string) string { return constants.AlarmKeyPrefix + id }

func (r *Repository) readIndex(ctx context.Context) ([]string, error) {
	raw, found, err := r.kv.Get(ctx, constants.AlarmIndexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read alarm index: %w", err)
	}
	if !found {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode alarm index: %w", err)
	}
	return ids, nil
}

func (r *Repository) read(ctx context.Context, id string) (models.Alarm, error) {
	raw, found, err := r.kv.Get(ctx, recordKey(id))
	if err != nil {
		return models.Alarm{}, fmt.Errorf("failed to read alarm %s: %w", id, err)
	}
	if !found {
		return models.Alarm{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	var a models.Alarm
	if err := json.Unmarshal(raw, &a); err != nil {
		return models.Alarm{}, fmt.Errorf("failed to decode alarm %s: %w", id, err)
	}
	return a, nil
}

func putRecord(b *storage.Batch, a models.Alarm) (*storage.Batch, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode alarm: %w", err)
	}
	return b.Set(recordKey(a.ID), raw), nil
}

func putIndex(b *storage.Batch, ids []string) (*storage.Batch, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode alarm index: %w", err)
	}
	return b.Set(constants.AlarmIndexKey, raw), nil
}

func (r *Repository) apply(ctx context.Context, b *storage.Batch, action, id string) error {
	if err := r.kv.Apply(ctx, b); err != nil {
		logger.Error("Failed to persist alarm", "action", action, "alarm", id, "error", err)
		return fmt.Errorf("failed to %s alarm: %w", action, err)
	}
	return nil
}

// validate checks a record before anything is written or scheduled.
func checkRules(a *models.Alarm) error {
	a.NormalizeDays()
	if err := a.Validate(); err != nil {
		return err
	}
	if a.Active {
		return a.ValidateActivation()
	}
	return nil
}

func (r *Repository) validate(ctx context.Context, a *models.Alarm) error {
	if err := checkRules(a); err != nil {
		return err
	}
	if a.Active && a.Challenge.IsBarcode() {
		has, err := r.barcodes.Has(ctx, a.ID)
		if err != nil {
			return err
		}
		if !has {
			return ErrBarcodeMissing
		}
	}
	return nil
}

func fingerprint(a models.Alarm) string {
	return fmt.Sprintf("%s|%v", a.Time, a.Days)
}

// arm cancels any trigger held for a and schedules a fresh one when a is
// active. Caller holds r.mu.
func (r *Repository) arm(a models.Alarm) error {
	if err := r.disarm(a.ID); err != nil {
		return err
	}
	if !a.Active {
		return nil
	}
	h, err := r.sched.Schedule(scheduler.TriggerSpec{AlarmID: a.ID, Time: a.Time, Days: a.Days})
	if err != nil {
		return fmt.Errorf("failed to schedule alarm: %w", err)
	}
	r.armed[a.ID] = scheduled{handle: h, fingerprint: fingerprint(a)}
	return nil
}

// disarm cancels the trigger held for id. Caller holds r.mu.
func (r *Repository) disarm(id string) error {
	s, ok := r.armed[id]
	if !ok {
		return nil
	}
	if err := r.sched.Cancel(s.handle); err != nil {
		return fmt.Errorf("failed to cancel alarm: %w", err)
	}
	delete(r.armed, id)
	return nil
}

// Create validates and stores a new alarm, scheduling it when active.
func (r *Repository) Create(ctx context.Context, spec Spec) (models.Alarm, error) {
	now := r.now().UTC()
	a := models.Alarm{
		ID:        spec.ID,
		Time:      spec.Time,
		Days:      spec.Days,
		Active:    spec.Active,
		Label:     spec.Label,
		Challenge: spec.Challenge,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if a.ID == "" {
		a.ID = NewID()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.validate(ctx, &a); err != nil {
		return models.Alarm{}, err
	}

	ids, err := r.readIndex(ctx)
	if err != nil {
		return models.Alarm{}, err
	}
	if slices.Contains(ids, a.ID) {
		return models.Alarm{}, fmt.Errorf("%w: alarm %s already exists", ErrValidation, a.ID)
	}

	b, err := putRecord(storage.NewBatch(), a)
	if err != nil {
		return models.Alarm{}, err
	}
	if b, err = putIndex(b, append(ids, a.ID)); err != nil {
		return models.Alarm{}, err
	}
	if err := r.apply(ctx, b, "create", a.ID); err != nil {
		return models.Alarm{}, err
	}

	if err := r.arm(a); err != nil {
		// Undo the insert so a failed create leaves nothing behind
		undo, _ := putIndex(storage.NewBatch().Remove(recordKey(a.ID)), ids)
		if undoErr := r.kv.Apply(ctx, undo); undoErr != nil {
			logger.Error("Failed to roll back alarm create", "alarm", a.ID, "error", undoErr)
		}
		return models.Alarm{}, err
	}

	logger.Info("Created alarm", "alarm", a.ID, "time", a.Time, "days", a.FormatDays(), "challenge", a.Challenge.String())
	return a, nil
}

// Get returns the alarm with the given id or ErrNotFound.
func (r *Repository) Get(ctx context.Context, id string) (models.Alarm, error) {
	return r.read(ctx, id)
}

// List returns every alarm in creation order.
func (r *Repository) List(ctx context.Context) ([]models.Alarm, error) {
	ids, err := r.readIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Alarm, 0, len(ids))
	for _, id := range ids {
		a, err := r.read(ctx, id)
		if errors.Is(err, ErrNotFound) {
			logger.Warn("Alarm index references missing record", "alarm", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Update replaces the editable fields of an alarm and re-derives its trigger.
func (r *Repository) Update(ctx context.Context, id string, spec Spec) (models.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, err := r.read(ctx, id)
	if err != nil {
		return models.Alarm{}, err
	}

	next := prev
	next.Time = spec.Time
	next.Days = spec.Days
	next.Active = spec.Active
	next.Label = spec.Label
	next.Challenge = spec.Challenge
	next.UpdatedAt = r.now().UTC()

	if err := r.validate(ctx, &next); err != nil {
		return models.Alarm{}, err
	}
	if err := r.commit(ctx, prev, next, "update"); err != nil {
		return models.Alarm{}, err
	}

	logger.Info("Updated alarm", "alarm", id, "time", next.Time, "days", next.FormatDays(), "active", next.Active)
	return next, nil
}

// Toggle switches an alarm on or off. Activation requirements are checked
// before the scheduler is touched.
func (r *Repository) Toggle(ctx context.Context, id string, active bool) (models.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, err := r.read(ctx, id)
	if err != nil {
		return models.Alarm{}, err
	}

	next := prev
	next.Active = active
	next.UpdatedAt = r.now().UTC()
	if err := r.validate(ctx, &next); err != nil {
		return models.Alarm{}, err
	}
	if err := r.commit(ctx, prev, next, "toggle"); err != nil {
		return models.Alarm{}, err
	}

	logger.Info("Toggled alarm", "alarm", id, "active", active)
	return next, nil
}

// commit persists next and brings the trigger in line with it. If the
// scheduler refuses, prev is written back. Caller holds r.mu.
func (r *Repository) commit(ctx context.Context, prev, next models.Alarm, action string) error {
	b, err := putRecord(storage.NewBatch(), next)
	if err != nil {
		return err
	}
	if err := r.apply(ctx, b, action, next.ID); err != nil {
		return err
	}

	armErr := r.arm(next)
	if armErr == nil {
		return nil
	}

	logger.Warn("Rolling back alarm after scheduling failure", "alarm", next.ID, "error", armErr)
	if undo, err := putRecord(storage.NewBatch(), prev); err == nil {
		if err := r.kv.Apply(ctx, undo); err != nil {
			logger.Error("Failed to roll back alarm", "alarm", prev.ID, "error", err)
		}
	}
	if err := r.arm(prev); err != nil {
		logger.Error("Failed to restore previous trigger", "alarm", prev.ID, "error", err)
	}
	return armErr
}

// Remove deletes an alarm, its index entry and its barcode in one batch,
// then cancels its trigger.
func (r *Repository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.read(ctx, id); err != nil {
		return err
	}
	ids, err := r.readIndex(ctx)
	if err != nil {
		return err
	}

	b := storage.NewBatch().Remove(recordKey(id))
	barcode.RemoveOps(b, id)
	remaining := slices.DeleteFunc(slices.Clone(ids), func(v string) bool { return v == id })
	if b, err = putIndex(b, remaining); err != nil {
		return err
	}
	if err := r.apply(ctx, b, "remove", id); err != nil {
		return err
	}

	if err := r.disarm(id); err != nil {
		logger.Warn("Failed to cancel removed alarm", "alarm", id, "error", err)
	}
	logger.Info("Removed alarm", "alarm", id)
	return nil
}

// Restore brings the scheduler in line with the stored alarms: active alarms
// are armed, changed ones re-armed, and triggers of disabled or deleted
// alarms cancelled. It is safe to call repeatedly. It returns the number of
// armed alarms.
func (r *Repository) Restore(ctx context.Context) (int, error) {
	all, err := r.List(ctx)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	seen := make(map[string]bool, len(all))
	for _, a := range all {
		seen[a.ID] = true
		current, ok := r.armed[a.ID]
		switch {
		case !a.Active:
			if ok {
				if err := r.disarm(a.ID); err != nil {
					errs = append(errs, err)
				}
			}
		case !ok || current.fingerprint != fingerprint(a):
			if err := r.arm(a); err != nil {
				logger.Error("Failed to restore alarm", "alarm", a.ID, "error", err)
				errs = append(errs, fmt.Errorf("alarm %s: %w", a.ID, err))
			}
		}
	}
	for id := range r.armed {
		if !seen[id] {
			if err := r.disarm(id); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return len(r.armed), errors.Join(errs...)
}
