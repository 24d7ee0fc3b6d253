// Package settings persists user preferences through the key-value store.
package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/logger"
	"github.com/julianstephens/snaprise/internal/models"
	"github.com/julianstephens/snaprise/internal/storage"
)

type Store struct {
	kv storage.Provider
}

func NewStore(kv storage.Provider) *Store {
	return &Store{kv: kv}
}

// Get returns the saved settings with defaults filled in. Settings that were
// never saved come back as models.DefaultSettings.
func (s *Store) Get(ctx context.Context) (models.Settings, error) {
	raw, found, err := s.kv.Get(ctx, constants.SettingsKey)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	if !found {
		return models.DefaultSettings(), nil
	}

	var st models.Settings
	if err := json.Unmarshal(raw, &st); err != nil {
		return models.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	models.ApplyDefaultSettings(&st)
	return st, nil
}

// Save validates and stores st.
func (s *Store) Save(ctx context.Context, st models.Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.kv.Set(ctx, constants.SettingsKey, raw); err != nil {
		logger.Error("Failed to save settings", "error", err)
		return fmt.Errorf("failed to save settings: %w", err)
	}
	logger.Debug("Saved settings", "buddy_mode", st.BuddyMode, "snooze_delay_min", st.SnoozeDelayMin)
	return nil
}

// EnsureDefaults writes the default settings when none are stored yet.
func (s *Store) EnsureDefaults(ctx context.Context) error {
	_, found, err := s.kv.Get(ctx, constants.SettingsKey)
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	if found {
		return nil
	}
	return s.Save(ctx, models.DefaultSettings())
}
