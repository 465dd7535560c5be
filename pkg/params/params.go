// Package params holds the display and processing configuration used when
// rendering spectra, and detects whether it changed since the last commit.
package params

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Default values applied by New.
const (
	DefaultLowerLimit  = 0.0
	DefaultUpperLimit  = 5000.0
	DefaultUseFilter   = false
	DefaultFilterSigma = 15
)

// Field names one of the editable parameters.
type Field int

const (
	LowerLimit Field = iota
	UpperLimit
	UseFilter
	FilterSigma
)

var fieldNames = [...]string{
	LowerLimit:  "lower_limit",
	UpperLimit:  "upper_limit",
	UseFilter:   "use_filter",
	FilterSigma: "filter_sigma",
}

// Fields lists every field in fingerprint order.
func Fields() []Field {
	return []Field{LowerLimit, UpperLimit, UseFilter, FilterSigma}
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField looks a field up by its name (e.g. "lower_limit").
func ParseField(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range fieldNames {
		if n == name {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("unknown parameter %q", name)
}

// Snapshot is an immutable copy of the parameter values.
type Snapshot struct {
	LowerLimit  float64
	UpperLimit  float64
	UseFilter   bool
	FilterSigma int
}

// Set is the mutable parameter set edited by the shell.
//
// Setters never validate: inverted or out-of-range limits are stored as
// given and show up downstream as empty selections. Edits only become
// visible to the render pipeline through Commit.
type Set struct {
	values    Snapshot
	committed Snapshot
	lastHash  uint64
}

// New creates a parameter set holding the default values. The defaults are
// already committed, so Commit reports false until a field changes.
func New() *Set {
	return NewFrom(Snapshot{
		LowerLimit:  DefaultLowerLimit,
		UpperLimit:  DefaultUpperLimit,
		UseFilter:   DefaultUseFilter,
		FilterSigma: DefaultFilterSigma,
	})
}

// NewFrom creates a parameter set committed at the given values.
func NewFrom(initial Snapshot) *Set {
	return &Set{
		values:    initial,
		committed: initial,
		lastHash:  fingerprint(initial),
	}
}

func (s *Set) LowerLimit() float64 { return s.values.LowerLimit }
func (s *Set) UpperLimit() float64 { return s.values.UpperLimit }
func (s *Set) UseFilter() bool     { return s.values.UseFilter }
func (s *Set) FilterSigma() int    { return s.values.FilterSigma }

func (s *Set) SetLowerLimit(v float64) { s.values.LowerLimit = v }
func (s *Set) SetUpperLimit(v float64) { s.values.UpperLimit = v }
func (s *Set) SetUseFilter(v bool)     { s.values.UseFilter = v }
func (s *Set) SetFilterSigma(v int)    { s.values.FilterSigma = v }

// Get returns the current (possibly uncommitted) value of a field.
func (s *Set) Get(f Field) any {
	switch f {
	case LowerLimit:
		return s.values.LowerLimit
	case UpperLimit:
		return s.values.UpperLimit
	case UseFilter:
		return s.values.UseFilter
	case FilterSigma:
		return s.values.FilterSigma
	}
	return nil
}

// SetString parses text as the field's type and stores it. It fails only
// when the text does not parse.
func (s *Set) SetString(f Field, text string) error {
	text = strings.TrimSpace(text)

	switch f {
	case LowerLimit, UpperLimit:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("invalid %s value '%s': %w", f, text, err)
		}
		if f == LowerLimit {
			s.values.LowerLimit = v
		} else {
			s.values.UpperLimit = v
		}
	case UseFilter:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return fmt.Errorf("invalid %s value '%s': %w", f, text, err)
		}
		s.values.UseFilter = v
	case FilterSigma:
		v, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("invalid %s value '%s': %w", f, text, err)
		}
		s.values.FilterSigma = v
	default:
		return fmt.Errorf("unknown parameter %s", f)
	}
	return nil
}

// Apply copies all four values from snap without committing them.
func (s *Set) Apply(snap Snapshot) {
	s.values = snap
}

// Current returns the current, possibly uncommitted, values.
func (s *Set) Current() Snapshot {
	return s.values
}

// Committed returns the values as of the last Commit that reported a
// change (or the initial values).
func (s *Set) Committed() Snapshot {
	return s.committed
}

// Commit fingerprints the current values and compares the result with the
// last committed fingerprint. When they differ it records the new
// fingerprint and returns true.
//
// The fingerprint is a 64-bit hash, so two different value tuples can
// collide; a colliding edit is then reported as unchanged.
func (s *Set) Commit() bool {
	h := fingerprint(s.values)
	if h == s.lastHash {
		return false
	}
	s.lastHash = h
	s.committed = s.values
	return true
}

// fingerprint hashes the values. Negative zero limits are folded into
// positive zero so equal values always hash alike.
func fingerprint(v Snapshot) uint64 {
	if v.LowerLimit == 0 {
		v.LowerLimit = 0
	}
	if v.UpperLimit == 0 {
		v.UpperLimit = 0
	}

	var buf [25]byte
	binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(v.LowerLimit))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(v.UpperLimit))
	if v.UseFilter {
		buf[16] = 1
	}
	binary.LittleEndian.PutUint64(buf[17:], uint64(int64(v.FilterSigma)))
	return xxhash.Sum64(buf[:])
}

func (v Snapshot) String() string {
	return fmt.Sprintf("m/z %g-%g, filter=%t, sigma=%d", v.LowerLimit, v.UpperLimit, v.UseFilter, v.FilterSigma)
}
