package ir

import (
	"fmt"
	"regexp"
)

// NameSequence is a strictly monotonic stream of fresh identifiers.
// It is threaded explicitly through the lowering stages rather than
// kept as process-global state; a sequence never produces the same
// name twice and can only restart by constructing a new one with a
// different prefix.
type NameSequence struct {
	prefix string
	next   uint64
}

var namePrefixPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NewNameSequence returns a sequence yielding prefix0, prefix1, ...
func NewNameSequence(prefix string) (*NameSequence, error) {
	if !namePrefixPattern.MatchString(prefix) {
		return nil, fmt.Errorf("invalid identifier prefix %q", prefix)
	}
	return &NameSequence{prefix: prefix}, nil
}

// MustNameSequence is NewNameSequence for compile-time-constant
// prefixes.
func MustNameSequence(prefix string) *NameSequence {
	s, err := NewNameSequence(prefix)
	if err != nil {
		panic(err)
	}
	return s
}

// Next returns a name never returned before by this sequence.
func (s *NameSequence) Next() string {
	name := fmt.Sprintf("%s%d", s.prefix, s.next)
	s.next++
	return name
}

// Prefix returns the sequence's identifier prefix.
func (s *NameSequence) Prefix() string { return s.prefix }

// Count returns how many names have been handed out.
func (s *NameSequence) Count() uint64 { return s.next }
