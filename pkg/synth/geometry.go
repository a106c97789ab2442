// Package synth maps a geometry index and visual system onto a synthesis
// algorithm, a timbre and a voice character, and renders audio buffers with
// the result.
package synth

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks caller mistakes that are returned immediately and
// never retried.
var ErrInvalidInput = errors.New("invalid input")

// Geometry index limits
const (
	MinGeometry   = 0
	MaxGeometry   = 23
	NumGeometries = MaxGeometry + 1
	basesPerCore  = 8
)

// RangeError reports a geometry index outside [MinGeometry, MaxGeometry].
type RangeError struct {
	Index int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("geometry index %d out of range [%d, %d]", e.Index, MinGeometry, MaxGeometry)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match.
func (e *RangeError) Unwrap() error { return ErrInvalidInput }

// Core is the 4D treatment applied to a base geometry.
type Core int

const (
	CoreBase Core = iota
	CoreHypersphere
	CoreHypertetrahedron
)

var coreNames = [...]string{"Base", "Hypersphere", "Hypertetrahedron"}

func (c Core) String() string {
	if c < 0 || int(c) >= len(coreNames) {
		return fmt.Sprintf("Core(%d)", int(c))
	}
	return coreNames[c]
}

// BaseGeometry is the polytope family shown by the renderer.
type BaseGeometry int

const (
	Tetrahedron BaseGeometry = iota
	Hypercube
	Sphere
	Torus
	KleinBottle
	Fractal
	Wave
	Crystal
)

var baseNames = [basesPerCore]string{
	"Tetrahedron", "Hypercube", "Sphere", "Torus", "KleinBottle", "Fractal", "Wave", "Crystal",
}

func (b BaseGeometry) String() string {
	if b < 0 || int(b) >= len(baseNames) {
		return fmt.Sprintf("BaseGeometry(%d)", int(b))
	}
	return baseNames[b]
}

// Geometry is a validated geometry index.
type Geometry struct {
	index int
}

// NewGeometry validates index.
func NewGeometry(index int) (Geometry, error) {
	if index < MinGeometry || index > MaxGeometry {
		return Geometry{}, &RangeError{Index: index}
	}
	return Geometry{index: index}, nil
}

// MustGeometry is NewGeometry for constant indices; it panics on bad input.
func MustGeometry(index int) Geometry {
	g, err := NewGeometry(index)
	if err != nil {
		panic(err)
	}
	return g
}

// Index returns the raw index
func (g Geometry) Index() int { return g.index }

// Core returns index / 8
func (g Geometry) Core() Core { return Core(g.index / basesPerCore) }

// Base returns index % 8
func (g Geometry) Base() BaseGeometry { return BaseGeometry(g.index % basesPerCore) }

// Branch returns the synthesis algorithm selected by the core
func (g Geometry) Branch() Branch { return Branch(g.Core()) }

func (g Geometry) String() string {
	return g.Core().String() + "/" + g.Base().String()
}

// Branch is the synthesis algorithm.
type Branch int

const (
	BranchDirect  Branch = iota // additive harmonic series
	BranchFM                    // modulator at 2× carrier
	BranchRingMod               // carrier × oscillator at 1.5×
)

var branchNames = [...]string{"Direct", "FM", "RingMod"}

func (b Branch) String() string {
	if b < 0 || int(b) >= len(branchNames) {
		return fmt.Sprintf("Branch(%d)", int(b))
	}
	return branchNames[b]
}

// Ratio is the second oscillator's frequency relative to the carrier.
// Direct has no second oscillator and reports 1.
func (b Branch) Ratio() float64 {
	switch b {
	case BranchFM:
		return fmModRatio
	case BranchRingMod:
		return ringModRatio
	}
	return 1
}

// Fixed algorithm constants.
const (
	fmModRatio          = 2.0
	fmIndexPerHarmonic  = 0.5
	ringModRatio        = 1.5
	ringModWet          = 0.7
	ringModDry          = 0.3
	directPartialWeight = 0.6
	fmCarrierWeight     = 0.8
)
