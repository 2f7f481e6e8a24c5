package myaudio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestWAV writes a mono 16-bit clip of the given length and returns its path.
func writeTestWAV(t *testing.T, sampleRate int, length time.Duration) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	samples := make([]int, int(float64(sampleRate)*length.Seconds()))
	for i := range samples {
		samples[i] = (i % 64) * 256
	}
	buf := &audio.IntBuffer{
		Data:           samples,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	return path
}

func TestReadWAVInfo(t *testing.T) {
	t.Parallel()

	path := writeTestWAV(t, 8000, 2*time.Second)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	info, err := ReadWAVInfo(f)
	require.NoError(t, err)
	assert.Equal(t, 8000, info.SampleRate)
	assert.Equal(t, 1, info.NumChannels)
	assert.Equal(t, 16, info.BitDepth)
	assert.InDelta(t, 2.0, info.Duration.Seconds(), 0.01)
}

func TestReadWAVInfoRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := ReadWAVInfo(bytes.NewReader([]byte("definitely not audio")))
	require.ErrorIs(t, err, ErrNotWAV)
}

func TestProbeDurationSeconds(t *testing.T) {
	t.Parallel()

	path := writeTestWAV(t, 16000, time.Second)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	seconds, ok := ProbeDurationSeconds("Moo Loud.WAV", f)
	require.True(t, ok)
	assert.InDelta(t, 1.0, seconds, 0.01)

	_, ok = ProbeDurationSeconds("alarm.mp3", strings.NewReader("ID3"))
	assert.False(t, ok)

	_, ok = ProbeDurationSeconds("fake.wav", strings.NewReader("not riff"))
	assert.False(t, ok)
}
