// Package idgen provides identifier generators for alerts and uploaded sounds.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator interface {
	NewID() string
}

// UUIDGenerator returns random RFC 4122 version 4 identifiers.
type UUIDGenerator struct{}

// NewUUID returns the production generator.
func NewUUID() UUIDGenerator {
	return UUIDGenerator{}
}

// NewID implements Generator.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Sequence returns prefix-1, prefix-2, ... and is safe for concurrent use.
type Sequence struct {
	prefix string
	next   atomic.Uint64
}

// NewSequence returns a deterministic generator for tests and fixtures.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// NewID implements Generator.
func (s *Sequence) NewID() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.next.Add(1))
}
