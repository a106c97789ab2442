package analysis

import (
	"math"
	"testing"
)

const testRate = 44100.0

func sineWindow(freq, amp float64, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/testRate)
	}
	return s
}

func TestExtract_SilenceIsZero(t *testing.T) {
	e := NewExtractor(1024, testRate)
	for name, in := range map[string][]float64{
		"nil":   nil,
		"empty": {},
		"zeros": make([]float64, 1024),
	} {
		if got := e.Extract(in); got != (Features{}) {
			t.Errorf("%s: features = %+v, want zero", name, got)
		}
	}
}

func TestExtract_BandSelection(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		band func(Features) float64
	}{
		{"bass", 110, func(f Features) float64 { return f.Bass }},
		{"mid", 1000, func(f Features) float64 { return f.Mid }},
		{"high", 4000, func(f Features) float64 { return f.High }},
	}
	e := NewExtractor(2048, testRate)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := e.Extract(sineWindow(tc.freq, 0.8, 2048))
			own := tc.band(f)
			for _, other := range []float64{f.Bass, f.Mid, f.High} {
				if other > own {
					t.Errorf("%.0f Hz: own band %f below another band %f (%+v)", tc.freq, own, other, f)
				}
			}
			if own < 0.3 {
				t.Errorf("%.0f Hz: band energy %f too small", tc.freq, own)
			}
			if math.Abs(f.Centroid-tc.freq) > tc.freq*0.25 {
				t.Errorf("centroid = %f, want near %f", f.Centroid, tc.freq)
			}
		})
	}
}

func TestExtract_RMS(t *testing.T) {
	e := NewExtractor(2048, testRate)
	f := e.Extract(sineWindow(441, 1, 2048))
	if math.Abs(f.RMS-1/math.Sqrt2) > 0.01 {
		t.Errorf("RMS = %f, want %f", f.RMS, 1/math.Sqrt2)
	}
}

func TestExtract_ShortWindowIsPadded(t *testing.T) {
	e := NewExtractor(2048, testRate)
	f := e.Extract(sineWindow(1000, 0.5, 300))
	if f.Mid == 0 || f.RMS == 0 {
		t.Errorf("short window produced %+v", f)
	}
}
