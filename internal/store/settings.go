package store

import (
	"sync"

	"github.com/smartfarm/smartfarm-go/internal/errors"
	"github.com/smartfarm/smartfarm-go/internal/logger"
	"github.com/smartfarm/smartfarm-go/internal/observability/metrics"
)

// Range limits for settings fields.
const (
	MinConfidence = 0.0
	MaxConfidence = 1.0
	MinVolume     = 0
	MaxVolume     = 100
)

// Settings field names as they appear on the wire.
const (
	FieldConfidenceThreshold = "confidenceThreshold"
	FieldAutoSound           = "autoSound"
	FieldPushAlerts          = "pushAlerts"
	FieldVolume              = "volume"
	FieldSelectedSoundID     = "selectedSoundId"
)

// Settings is the device configuration record.
type Settings struct {
	ConfidenceThreshold float64 `json:"confidenceThreshold"`
	AutoSound           bool    `json:"autoSound"`
	PushAlerts          bool    `json:"pushAlerts"`
	Volume              int     `json:"volume"`
	SelectedSoundID     string  `json:"selectedSoundId"`
}

// DefaultSettings returns the startup configuration.
func DefaultSettings() Settings {
	return Settings{
		ConfidenceThreshold: 0.5,
		AutoSound:           true,
		PushAlerts:          true,
		Volume:              70,
		SelectedSoundID:     DefaultSoundID,
	}
}

// SettingsStore guards the single Settings record. SelectedSoundID always
// names a sound present in the catalog.
type SettingsStore struct {
	mu       sync.RWMutex
	settings Settings
	catalog  *SoundCatalog
	metrics  *metrics.FarmMetrics
}

// NewSettingsStore returns a store seeded with initial. Out-of-range values
// are clamped and an unknown SelectedSoundID falls back to the default sound.
func NewSettingsStore(catalog *SoundCatalog, initial Settings) *SettingsStore {
	initial.ConfidenceThreshold = clampFloat(initial.ConfidenceThreshold, MinConfidence, MaxConfidence)
	initial.Volume = clampVolume(float64(initial.Volume))
	if !catalog.Exists(initial.SelectedSoundID) {
		initial.SelectedSoundID = DefaultSoundID
	}
	return &SettingsStore{settings: initial, catalog: catalog}
}

// SetMetrics attaches farm metrics. Nil disables recording.
func (s *SettingsStore) SetMetrics(m *metrics.FarmMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
}

// Get returns a copy of the current settings.
func (s *SettingsStore) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SelectedSoundID returns the currently selected sound id.
func (s *SettingsStore) SelectedSoundID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.SelectedSoundID
}

// UpdateFromUpload selects a freshly uploaded sound. The caller must have
// added soundID to the catalog first.
func (s *SettingsStore) UpdateFromUpload(soundID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.SelectedSoundID = soundID
}

// Select makes soundID the active sound. It returns a not-found error and
// leaves the settings untouched when the catalog has no such sound.
func (s *SettingsStore) Select(soundID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.catalog.Exists(soundID) {
		return errors.Newf("Sound not found").
			Component("store").
			Category(errors.CategoryNotFound).
			Context("sound_id", soundID).
			Build()
	}

	s.settings.SelectedSoundID = soundID
	return nil
}

// fieldApplier tries to merge one raw field into settings and reports
// whether it was applied.
type fieldApplier func(raw []byte, settings *Settings, catalog *SoundCatalog) bool

var fieldAppliers = []struct {
	name  string
	apply fieldApplier
}{
	{FieldConfidenceThreshold, func(raw []byte, st *Settings, _ *SoundCatalog) bool {
		v, ok := tryNumber(raw)
		if ok {
			st.ConfidenceThreshold = clampFloat(v, MinConfidence, MaxConfidence)
		}
		return ok
	}},
	{FieldAutoSound, func(raw []byte, st *Settings, _ *SoundCatalog) bool {
		v, ok := tryBool(raw)
		if ok {
			st.AutoSound = v
		}
		return ok
	}},
	{FieldPushAlerts, func(raw []byte, st *Settings, _ *SoundCatalog) bool {
		v, ok := tryBool(raw)
		if ok {
			st.PushAlerts = v
		}
		return ok
	}},
	{FieldVolume, func(raw []byte, st *Settings, _ *SoundCatalog) bool {
		v, ok := tryNumber(raw)
		if ok {
			st.Volume = clampVolume(v)
		}
		return ok
	}},
	{FieldSelectedSoundID, func(raw []byte, st *Settings, catalog *SoundCatalog) bool {
		v, ok := tryString(raw)
		if !ok || !catalog.Exists(v) {
			return false
		}
		st.SelectedSoundID = v
		return true
	}},
}

// Update merges patch into the settings field by field. Each recognised
// field is applied only if it has the right JSON type; ranges are clamped
// and unknown sound ids are ignored. It always returns the full record.
func (s *SettingsStore) Update(patch Patch) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	var applied, ignored []string
	for _, f := range fieldAppliers {
		raw, present := patch.field(f.name)
		if !present {
			continue
		}
		ok := f.apply(raw, &s.settings, s.catalog)
		if ok {
			applied = append(applied, f.name)
		} else {
			ignored = append(ignored, f.name)
		}
		if s.metrics != nil {
			s.metrics.RecordSettingsField(f.name, ok)
		}
	}

	GetLogger().Info("Settings updated",
		logger.Any("applied", applied),
		logger.Any("ignored", ignored))
	return s.settings
}
