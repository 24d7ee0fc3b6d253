// Package barcode maps alarm ids to the barcode that dismisses them.
package barcode

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/logger"
	"github.com/julianstephens/snaprise/internal/models"
	"github.com/julianstephens/snaprise/internal/storage"
)

// Store keeps one expected code per alarm id. Codes are stored verbatim and
// compared byte for byte.
type Store struct {
	kv storage.Provider
}

func NewStore(kv storage.Provider) *Store {
	return &Store{kv: kv}
}

func codeKey(alarmID string) string  { return constants.BarcodeKeyPrefix + alarmID }
func labelKey(alarmID string) string { return constants.BarcodeLabelKeyPrefix + alarmID }

// Put associates code with the alarm, replacing any previous code.
func (s *Store) Put(ctx context.Context, alarmID, code string) error {
	if alarmID == "" {
		return fmt.Errorf("%w: alarm id is required", models.ErrValidation)
	}
	if code == "" {
		return fmt.Errorf("%w: barcode cannot be empty", models.ErrValidation)
	}
	if err := s.kv.Set(ctx, codeKey(alarmID), []byte(code)); err != nil {
		logger.Error("Failed to save barcode", "alarm", alarmID, "error", err)
		return fmt.Errorf("failed to save barcode: %w", err)
	}
	logger.Debug("Saved barcode", "alarm", alarmID)
	return nil
}

// PutWithLabel stores the code and its label in one write, so a failed label
// never leaves the code behind. An empty label clears any previous one.
func (s *Store) PutWithLabel(ctx context.Context, alarmID, code, label string) error {
	if alarmID == "" {
		return fmt.Errorf("%w: alarm id is required", models.ErrValidation)
	}
	if code == "" {
		return fmt.Errorf("%w: barcode cannot be empty", models.ErrValidation)
	}
	b := storage.NewBatch().Set(codeKey(alarmID), []byte(code))
	if label = strings.TrimSpace(label); label == "" {
		b.Remove(labelKey(alarmID))
	} else {
		b.Set(labelKey(alarmID), []byte(label))
	}
	if err := s.kv.Apply(ctx, b); err != nil {
		logger.Error("Failed to save barcode", "alarm", alarmID, "error", err)
		return fmt.Errorf("failed to save barcode: %w", err)
	}
	logger.Debug("Saved barcode", "alarm", alarmID)
	return nil
}

// Get returns the stored code. A missing code is reported through found.
func (s *Store) Get(ctx context.Context, alarmID string) (code string, found bool, err error) {
	v, found, err := s.kv.Get(ctx, codeKey(alarmID))
	if err != nil {
		return "", false, fmt.Errorf("failed to read barcode: %w", err)
	}
	return string(v), found, nil
}

func (s *Store) Has(ctx context.Context, alarmID string) (bool, error) {
	_, found, err := s.Get(ctx, alarmID)
	return found, err
}

// Matches reports whether scanned equals the stored code exactly.
func (s *Store) Matches(ctx context.Context, alarmID, scanned string) (bool, error) {
	code, found, err := s.Get(ctx, alarmID)
	if err != nil || !found {
		return false, err
	}
	return scanned == code, nil
}

// Remove deletes the code and its label. Removing a missing code is not an error.
func (s *Store) Remove(ctx context.Context, alarmID string) error {
	b := RemoveOps(storage.NewBatch(), alarmID)
	if err := s.kv.Apply(ctx, b); err != nil {
		logger.Error("Failed to remove barcode", "alarm", alarmID, "error", err)
		return fmt.Errorf("failed to remove barcode: %w", err)
	}
	return nil
}

// RemoveOps adds the deletes performed by Remove to an existing batch.
func RemoveOps(b *storage.Batch, alarmID string) *storage.Batch {
	return b.Remove(codeKey(alarmID)).Remove(labelKey(alarmID))
}

// PutLabel stores a human description of where the barcode lives. An empty
// label clears it.
func (s *Store) PutLabel(ctx context.Context, alarmID, label string) error {
	label = strings.TrimSpace(label)
	var err error
	if label == "" {
		err = s.kv.Remove(ctx, labelKey(alarmID))
	} else {
		err = s.kv.Set(ctx, labelKey(alarmID), []byte(label))
	}
	if err != nil {
		return fmt.Errorf("failed to save barcode label: %w", err)
	}
	return nil
}

func (s *Store) Label(ctx context.Context, alarmID string) (string, error) {
	v, _, err := s.kv.Get(ctx, labelKey(alarmID))
	if err != nil {
		return "", fmt.Errorf("failed to read barcode label: %w", err)
	}
	return string(v), nil
}
