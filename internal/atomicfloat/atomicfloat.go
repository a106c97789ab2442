// Package atomicfloat provides a float64 cell that can be written by one
// goroutine and read by others without locks.
package atomicfloat

import (
	"math"
	"sync/atomic"
)

// Float64 holds a float64 as its IEEE-754 bits. The zero value is 0.0.
type Float64 struct {
	bits atomic.Uint64
}

// New returns a cell initialised to v.
func New(v float64) *Float64 {
	f := &Float64{}
	f.Store(v)
	return f
}

// Load returns the most recently stored value.
func (f *Float64) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Store sets the value.
func (f *Float64) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}
