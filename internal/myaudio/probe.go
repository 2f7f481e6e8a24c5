// Package myaudio inspects uploaded deterrent sound files.
package myaudio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"

	"github.com/smartfarm/smartfarm-go/internal/errors"
	"github.com/smartfarm/smartfarm-go/internal/logger"
)

// GetLogger returns the audio module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("audio")
}

// ErrNotWAV is returned for content that does not carry a valid RIFF/WAVE header.
var ErrNotWAV = errors.NewStd("invalid WAV file format")

// AudioInfo holds basic information about a WAV file
type AudioInfo struct {
	SampleRate  int
	NumChannels int
	BitDepth    int
	Duration    time.Duration
}

// IsWAVName reports whether the file name has a .wav extension.
func IsWAVName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".wav")
}

// ReadWAVInfo decodes the WAV header from r and computes the clip duration.
func ReadWAVInfo(r io.ReadSeeker) (AudioInfo, error) {
	decoder := wav.NewDecoder(r)
	decoder.ReadInfo()

	if !decoder.IsValidFile() {
		return AudioInfo{}, ErrNotWAV
	}

	duration, err := decoder.Duration()
	if err != nil {
		return AudioInfo{}, errors.New(fmt.Errorf("failed to compute WAV duration: %w", err)).
			Component("myaudio").
			Category(errors.CategoryAudio).
			Build()
	}

	return AudioInfo{
		SampleRate:  int(decoder.SampleRate),
		NumChannels: int(decoder.NumChans),
		BitDepth:    int(decoder.BitDepth),
		Duration:    duration,
	}, nil
}

// ProbeDurationSeconds returns the clip length for WAV uploads. ok is false
// for other formats and for WAV files that cannot be decoded; failures are
// logged and never block an upload.
func ProbeDurationSeconds(name string, r io.ReadSeeker) (seconds float64, ok bool) {
	if !IsWAVName(name) {
		return 0, false
	}

	info, err := ReadWAVInfo(r)
	if err != nil {
		GetLogger().Debug("Skipping duration probe",
			logger.String("filename", name),
			logger.Error(err))
		return 0, false
	}

	return info.Duration.Seconds(), true
}
