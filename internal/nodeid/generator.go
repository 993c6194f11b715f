// internal/nodeid/generator.go
package nodeid

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator mints new identifiers. Implementations must be safe for
// concurrent use.
type Generator interface {
	Next() string
}

// Sequence is a Generator producing `<prefix>-<n>` with n counting up from 1.
type Sequence struct {
	prefix string
	next   atomic.Uint64
}

// NewSequence creates a sequence generator with the given prefix.
func NewSequence(prefix string) *Sequence {
	s := &Sequence{prefix: prefix}
	s.next.Store(1)
	return s
}

// Next implements Generator.
func (s *Sequence) Next() string {
	value := s.next.Add(1) - 1
	if s.prefix == "" {
		return fmt.Sprintf("%d", value)
	}
	return fmt.Sprintf("%s-%d", s.prefix, value)
}

// UUIDGenerator is a Generator backed by random (version 4) UUIDs.
type UUIDGenerator struct {
	prefix string
}

// NewUUIDGenerator creates a UUID generator. A non-empty prefix is prepended
// as `<prefix>-<uuid>`.
func NewUUIDGenerator(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix}
}

// Next implements Generator.
func (g *UUIDGenerator) Next() string {
	id := uuid.NewString()
	if g.prefix == "" {
		return id
	}
	return g.prefix + "-" + id
}

// Generator formats accepted by NewGenerator.
const (
	FormatSequence = "sequence"
	FormatUUID     = "uuid"
)

// ErrUnknownFormat is returned by NewGenerator for an unsupported format.
var ErrUnknownFormat = errors.New("unknown id format")

// Formats lists the formats NewGenerator accepts.
var Formats = []string{FormatSequence, FormatUUID}

// NewGenerator returns the generator for format, with ids prefixed by prefix.
// An empty format means FormatSequence.
func NewGenerator(format, prefix string) (Generator, error) {
	switch format {
	case "", FormatSequence:
		return NewSequence(prefix), nil
	case FormatUUID:
		return NewUUIDGenerator(prefix), nil
	default:
		return nil, fmt.Errorf("%w %q, expected one of %v", ErrUnknownFormat, format, Formats)
	}
}

// Func adapts a plain function into a Generator.
type Func func() string

// Next implements Generator.
func (f Func) Next() string { return f() }
