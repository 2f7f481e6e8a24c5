// Package store holds the in-memory farm state: the sound catalog, the
// device settings record and the alert log.
package store

import (
	"slices"
	"sync"

	"github.com/smartfarm/smartfarm-go/internal/errors"
	"github.com/smartfarm/smartfarm-go/internal/logger"
	"github.com/smartfarm/smartfarm-go/internal/observability/metrics"
)

// SoundSource tells where a sound came from.
type SoundSource string

const (
	SourceBuiltIn  SoundSource = "built-in"
	SourceUploaded SoundSource = "uploaded"
)

// DefaultSoundID identifies the built-in deterrent present at startup.
const DefaultSoundID = "default"

// Sound is a deterrent sound the device can play. Filename is set only for
// uploaded sounds.
type Sound struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Filename        string      `json:"filename,omitempty"`
	Source          SoundSource `json:"source"`
	DurationSeconds *float64    `json:"durationSeconds,omitempty"`
}

// DefaultSound returns the built-in deterrent.
func DefaultSound() Sound {
	return Sound{ID: DefaultSoundID, Name: "Default Deterrent", Source: SourceBuiltIn}
}

// SoundCatalog is an append-only list of sounds in insertion order.
type SoundCatalog struct {
	mu      sync.RWMutex
	sounds  []Sound
	index   map[string]struct{}
	metrics *metrics.FarmMetrics
}

// NewSoundCatalog returns a catalog holding only the built-in sound.
func NewSoundCatalog() *SoundCatalog {
	def := DefaultSound()
	return &SoundCatalog{
		sounds: []Sound{def},
		index:  map[string]struct{}{def.ID: {}},
	}
}

// SetMetrics attaches farm metrics. Nil disables recording.
func (c *SoundCatalog) SetMetrics(m *metrics.FarmMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
	if m != nil {
		m.SetCatalogSize(len(c.sounds))
	}
}

// List returns a copy of all sounds in insertion order.
func (c *SoundCatalog) List() []Sound {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.sounds)
}

// Exists reports whether a sound with id is in the catalog.
func (c *SoundCatalog) Exists(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.index[id]
	return ok
}

// Len returns the number of sounds.
func (c *SoundCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sounds)
}

// Add appends sound. The id must be non-empty and not already present.
func (c *SoundCatalog) Add(sound Sound) error {
	if sound.ID == "" {
		return errors.ValidationError("sound id must not be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, dup := c.index[sound.ID]; dup {
		return errors.Newf("sound %q already exists", sound.ID).
			Component("store").
			Category(errors.CategoryValidation).
			Context("sound_id", sound.ID).
			Build()
	}

	c.sounds = append(c.sounds, sound)
	c.index[sound.ID] = struct{}{}

	if c.metrics != nil {
		c.metrics.SetCatalogSize(len(c.sounds))
	}

	GetLogger().Info("Sound added to catalog",
		logger.String("sound_id", sound.ID),
		logger.String("source", string(sound.Source)),
		logger.Int("catalog_size", len(c.sounds)))
	return nil
}
