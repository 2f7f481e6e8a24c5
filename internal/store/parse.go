package store

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Patch is a partially decoded JSON object. Values stay raw until a field
// parser claims them, so a wrong-typed field can be skipped without failing
// the whole request.
type Patch map[string]json.RawMessage

// ParsePatch decodes body into a Patch. Empty, malformed or non-object
// bodies yield an empty Patch.
func ParsePatch(body []byte) Patch {
	var p Patch
	if err := json.Unmarshal(body, &p); err != nil || p == nil {
		return Patch{}
	}
	return p
}

// field returns the raw value for key, treating JSON null as absent.
func (p Patch) field(key string) (json.RawMessage, bool) {
	raw, ok := p[key]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

// String returns the value of key when it is a JSON string.
func (p Patch) String(key string) (string, bool) {
	raw, ok := p.field(key)
	if !ok {
		return "", false
	}
	return tryString(raw)
}

// tryNumber accepts only a JSON number.
func tryNumber(raw json.RawMessage) (float64, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// tryNumeric accepts a JSON number or a string holding a finite decimal number.
func tryNumeric(raw json.RawMessage) (float64, bool) {
	if f, ok := tryNumber(raw); ok {
		return f, true
	}
	s, ok := tryString(raw)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// tryBool accepts only a JSON boolean.
func tryBool(raw json.RawMessage) (bool, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// tryString accepts only a JSON string.
func tryString(raw json.RawMessage) (string, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// clampVolume clamps to [0,100] and rounds half away from zero.
func clampVolume(v float64) int {
	return int(math.Round(clampFloat(v, MinVolume, MaxVolume)))
}
