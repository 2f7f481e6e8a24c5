package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartfarm/smartfarm-go/internal/errors"
	"github.com/smartfarm/smartfarm-go/internal/idgen"
)

func newStores(t *testing.T) (*SoundCatalog, *SettingsStore) {
	t.Helper()
	catalog := NewSoundCatalog()
	return catalog, NewSettingsStore(catalog, DefaultSettings())
}

func TestCatalogStartsWithDefaultSound(t *testing.T) {
	t.Parallel()

	catalog := NewSoundCatalog()
	sounds := catalog.List()
	require.Len(t, sounds, 1)
	assert.Equal(t, Sound{ID: "default", Name: "Default Deterrent", Source: SourceBuiltIn}, sounds[0])
	assert.True(t, catalog.Exists("default"))
	assert.False(t, catalog.Exists("nope"))
}

func TestCatalogAdd(t *testing.T) {
	t.Parallel()

	catalog := NewSoundCatalog()
	require.NoError(t, catalog.Add(Sound{ID: "s1", Name: "moo.wav", Filename: "1-moo.wav", Source: SourceUploaded}))

	sounds := catalog.List()
	require.Len(t, sounds, 2)
	assert.Equal(t, "s1", sounds[1].ID)

	err := catalog.Add(Sound{ID: "s1", Name: "again"})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	require.Error(t, catalog.Add(Sound{Name: "no id"}))
	assert.Equal(t, 2, catalog.Len())
}

func TestCatalogListIsCopy(t *testing.T) {
	t.Parallel()

	catalog := NewSoundCatalog()
	sounds := catalog.List()
	sounds[0].Name = "mutated"
	assert.Equal(t, "Default Deterrent", catalog.List()[0].Name)
}

func TestSettingsDefaults(t *testing.T) {
	t.Parallel()

	_, settings := newStores(t)
	assert.Equal(t, Settings{
		ConfidenceThreshold: 0.5,
		AutoSound:           true,
		PushAlerts:          true,
		Volume:              70,
		SelectedSoundID:     "default",
	}, settings.Get())
}

func TestNewSettingsStoreSanitizesInitial(t *testing.T) {
	t.Parallel()

	catalog := NewSoundCatalog()
	settings := NewSettingsStore(catalog, Settings{
		ConfidenceThreshold: 3,
		Volume:              250,
		SelectedSoundID:     "ghost",
	})
	got := settings.Get()
	assert.InDelta(t, 1.0, got.ConfidenceThreshold, 0)
	assert.Equal(t, 100, got.Volume)
	assert.Equal(t, DefaultSoundID, got.SelectedSoundID)
}

func TestSelectExistingSound(t *testing.T) {
	t.Parallel()

	catalog, settings := newStores(t)
	require.NoError(t, catalog.Add(Sound{ID: "bark", Name: "bark.wav", Source: SourceUploaded}))

	require.NoError(t, settings.Select("bark"))
	assert.Equal(t, "bark", settings.Get().SelectedSoundID)

	require.NoError(t, settings.Select("default"))
	assert.Equal(t, "default", settings.SelectedSoundID())
}

func TestSelectMissingSoundLeavesSettingsUnchanged(t *testing.T) {
	t.Parallel()

	_, settings := newStores(t)
	before := settings.Get()

	err := settings.Select("nope")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, "Sound not found", err.Error())
	assert.Equal(t, before, settings.Get())
}

func TestUpdateFromUpload(t *testing.T) {
	t.Parallel()

	catalog, settings := newStores(t)
	require.NoError(t, catalog.Add(Sound{ID: "up", Name: "up.wav", Source: SourceUploaded}))
	settings.UpdateFromUpload("up")
	assert.Equal(t, "up", settings.Get().SelectedSoundID)
}

func TestSettingsUpdate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, s Settings)
	}{
		{"volume above range", `{"volume":150}`, func(t *testing.T, s Settings) {
			assert.Equal(t, 100, s.Volume)
		}},
		{"volume below range", `{"volume":-5}`, func(t *testing.T, s Settings) {
			assert.Equal(t, 0, s.Volume)
		}},
		{"volume rounded", `{"volume":42.6}`, func(t *testing.T, s Settings) {
			assert.Equal(t, 43, s.Volume)
		}},
		{"confidence above range", `{"confidenceThreshold":2.0}`, func(t *testing.T, s Settings) {
			assert.InDelta(t, 1.0, s.ConfidenceThreshold, 0)
		}},
		{"confidence below range", `{"confidenceThreshold":-0.3}`, func(t *testing.T, s Settings) {
			assert.InDelta(t, 0.0, s.ConfidenceThreshold, 0)
		}},
		{"booleans", `{"autoSound":false,"pushAlerts":false}`, func(t *testing.T, s Settings) {
			assert.False(t, s.AutoSound)
			assert.False(t, s.PushAlerts)
		}},
		{"wrong types ignored", `{"volume":"80","autoSound":"no","confidenceThreshold":true,"selectedSoundId":5}`, func(t *testing.T, s Settings) {
			assert.Equal(t, DefaultSettings(), s)
		}},
		{"unknown sound ignored", `{"selectedSoundId":"ghost","volume":10}`, func(t *testing.T, s Settings) {
			assert.Equal(t, "default", s.SelectedSoundID)
			assert.Equal(t, 10, s.Volume)
		}},
		{"known sound stored", `{"selectedSoundId":"chime"}`, func(t *testing.T, s Settings) {
			assert.Equal(t, "chime", s.SelectedSoundID)
		}},
		{"null ignored", `{"volume":null}`, func(t *testing.T, s Settings) {
			assert.Equal(t, 70, s.Volume)
		}},
		{"malformed body", `{"volume":`, func(t *testing.T, s Settings) {
			assert.Equal(t, DefaultSettings(), s)
		}},
		{"array body", `[1,2,3]`, func(t *testing.T, s Settings) {
			assert.Equal(t, DefaultSettings(), s)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			catalog, settings := newStores(t)
			require.NoError(t, catalog.Add(Sound{ID: "chime", Name: "chime.wav", Source: SourceUploaded}))

			got := settings.Update(ParsePatch([]byte(tt.body)))
			tt.check(t, got)
			assert.Equal(t, got, settings.Get())
		})
	}
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 15, 4, 5, 0, time.UTC)
}

func TestRecordDetectionDefaults(t *testing.T) {
	t.Parallel()

	log := NewAlertLog(idgen.NewSequence("alert"), WithClock(fixedClock))

	first := log.RecordDetection(Patch{})
	assert.InDelta(t, 0.8, first.Confidence, 0)
	assert.Equal(t, "3:04:05 PM", first.Time)
	assert.Equal(t, "alert-1", first.ID)
	assert.Equal(t, 1, log.Len())

	second := log.RecordDetection(ParsePatch([]byte(`{"confidence":0.93,"time":"06:30"}`)))
	alerts := log.List()
	require.Len(t, alerts, 2)
	assert.Equal(t, second, alerts[0])
	assert.Equal(t, first, alerts[1])
	assert.InDelta(t, 0.93, alerts[0].Confidence, 0)
	assert.Equal(t, "06:30", alerts[0].Time)
}

func TestRecordDetectionFieldParsing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		wantConfidence float64
		wantTime       string
	}{
		{"numeric string confidence", `{"confidence":"0.75"}`, 0.75, "3:04:05 PM"},
		{"garbage confidence", `{"confidence":"high"}`, 0.8, "3:04:05 PM"},
		{"boolean confidence", `{"confidence":true}`, 0.8, "3:04:05 PM"},
		{"zero confidence kept", `{"confidence":0}`, 0, "3:04:05 PM"},
		{"empty time", `{"time":""}`, 0.8, "3:04:05 PM"},
		{"numeric time", `{"time":1234}`, 0.8, "3:04:05 PM"},
		{"free form time", `{"time":"dawn"}`, 0.8, "dawn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			log := NewAlertLog(idgen.NewSequence("a"), WithClock(fixedClock))
			alert := log.RecordDetection(ParsePatch([]byte(tt.body)))
			assert.InDelta(t, tt.wantConfidence, alert.Confidence, 1e-9)
			assert.Equal(t, tt.wantTime, alert.Time)
		})
	}
}

func TestAlertLogEmptyListIsNotNil(t *testing.T) {
	t.Parallel()

	log := NewAlertLog(idgen.NewUUID())
	alerts := log.List()
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestWithDefaultConfidence(t *testing.T) {
	t.Parallel()

	log := NewAlertLog(idgen.NewSequence("a"), WithDefaultConfidence(0.6))
	assert.InDelta(t, 0.6, log.RecordDetection(nil).Confidence, 0)
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	catalog, settings := newStores(t)
	log := NewAlertLog(idgen.NewSequence("a"))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			assert.NoError(t, catalog.Add(Sound{ID: id, Name: id, Source: SourceUploaded}))
			settings.UpdateFromUpload(id)
			log.RecordDetection(Patch{})
			_ = settings.Update(ParsePatch([]byte(`{"volume":50}`)))
			_ = catalog.List()
			_ = log.List()
		}()
	}
	wg.Wait()

	assert.Equal(t, 21, catalog.Len())
	assert.Equal(t, 20, log.Len())
	assert.True(t, catalog.Exists(settings.Get().SelectedSoundID))
}

func TestPatchString(t *testing.T) {
	t.Parallel()

	p := ParsePatch([]byte(`{"soundId":"bark","n":3,"nil":null}`))

	v, ok := p.String("soundId")
	assert.True(t, ok)
	assert.Equal(t, "bark", v)

	_, ok = p.String("n")
	assert.False(t, ok)
	_, ok = p.String("nil")
	assert.False(t, ok)
	_, ok = p.String("missing")
	assert.False(t, ok)
}
