// Package mapping moves values from a source range to a target range
// through a response curve.
package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Curve is the response applied to the normalised source value.
type Curve int

const (
	Linear Curve = iota
	Exponential
	Logarithmic
	Sinusoidal
)

var curveNames = [...]string{"linear", "exponential", "logarithmic", "sinusoidal"}

func (c Curve) String() string {
	if c < 0 || int(c) >= len(curveNames) {
		return fmt.Sprintf("Curve(%d)", int(c))
	}
	return curveNames[c]
}

// MarshalText encodes the curve by name.
func (c Curve) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(curveNames) {
		return nil, fmt.Errorf("unknown curve %d", int(c))
	}
	return []byte(curveNames[c]), nil
}

// UnmarshalText decodes a curve name.
func (c *Curve) UnmarshalText(b []byte) error {
	for i, n := range curveNames {
		if n == string(b) {
			*c = Curve(i)
			return nil
		}
	}
	return fmt.Errorf("unknown curve %q", b)
}

// Apply maps t in [0, 1] to [0, 1]. Every curve is monotonic and fixes the
// end points.
func (c Curve) Apply(t float64) float64 {
	t = clamp(t, 0, 1)
	switch c {
	case Exponential:
		return t * t
	case Logarithmic:
		return math.Log10(1 + 9*t)
	case Sinusoidal:
		return (1 - math.Cos(math.Pi*t)) / 2
	}
	return t
}

// Range is a closed interval. Min may exceed Max to invert a mapping.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Entry maps one source parameter onto one target parameter.
type Entry struct {
	Source string `json:"source"`
	Target string `json:"target"`
	From   Range  `json:"from"`
	To     Range  `json:"to"`
	Curve  Curve  `json:"curve"`
}

// Map converts a source value into the target range.
func (e Entry) Map(v float64) float64 {
	span := e.From.Max - e.From.Min
	var t float64
	if span != 0 {
		t = (v - e.From.Min) / span
	}
	return e.To.Min + e.Curve.Apply(t)*(e.To.Max-e.To.Min)
}

// Table is an ordered list of entries. Tables are replaced whole, never
// edited while in use.
type Table []Entry

// ErrInvalidTable is returned by Validate.
var ErrInvalidTable = errors.New("invalid mapping table")

// Validate checks that every entry names known parameters and has a usable
// source range.
func (t Table) Validate(sources, targets map[string]bool) error {
	for i, e := range t {
		if !sources[e.Source] {
			return fmt.Errorf("%w: entry %d: unknown source %q", ErrInvalidTable, i, e.Source)
		}
		if !targets[e.Target] {
			return fmt.Errorf("%w: entry %d: unknown target %q", ErrInvalidTable, i, e.Target)
		}
		if e.From.Min == e.From.Max {
			return fmt.Errorf("%w: entry %d: empty source range", ErrInvalidTable, i)
		}
		if e.Curve < Linear || e.Curve > Sinusoidal {
			return fmt.Errorf("%w: entry %d: unknown curve %d", ErrInvalidTable, i, int(e.Curve))
		}
	}
	return nil
}

// Apply maps every entry whose source is present in values and returns the
// results keyed by target. When several entries share a target the last one
// wins. dst is cleared and reused when non-nil.
func (t Table) Apply(values map[string]float64, dst map[string]float64) map[string]float64 {
	if dst == nil {
		dst = make(map[string]float64, len(t))
	} else {
		clear(dst)
	}
	for _, e := range t {
		v, ok := values[e.Source]
		if !ok {
			continue
		}
		dst[e.Target] = e.Map(v)
	}
	return dst
}

// Clone returns an independent copy.
func (t Table) Clone() Table {
	return append(Table(nil), t...)
}

// MarshalJSON keeps nil tables as empty arrays.
func (t Table) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Entry(t))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
