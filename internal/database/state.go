package database

import (
	"encoding/json"
	"errors"
	"fmt"

	"go-wallhaven-rotator/internal/models"

	log "github.com/sirupsen/logrus"
)

var stateKey = []byte("state")

// LoadState reads the persisted rotator state. A fresh database yields a zero State.
func (d *DB) LoadState() (models.State, error) {
	raw, err := d.Get(stateKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Debug("No persisted state found, starting empty")
			return models.State{SearchTermIndex: -1}, nil
		}
		return models.State{}, fmt.Errorf("error reading state: %w", err)
	}

	var state models.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return models.State{}, fmt.Errorf("error decoding state: %w", err)
	}
	return state, nil
}

// SaveState persists a full state snapshot. It is the single commit point
// for changes made by the rotation core.
func (d *DB) SaveState(state models.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("error encoding state: %w", err)
	}
	if err := d.Put(stateKey, raw); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"saved": len(state.SavedWallpapers),
		"shown": len(state.ShownSavedWallpapers),
	}).Debug("State persisted")
	return nil
}
