package mapping

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestCurves_EndpointsAndMonotonic(t *testing.T) {
	for c := Linear; c <= Sinusoidal; c++ {
		t.Run(c.String(), func(t *testing.T) {
			if got := c.Apply(0); math.Abs(got) > 1e-12 {
				t.Errorf("Apply(0) = %f", got)
			}
			if got := c.Apply(1); math.Abs(got-1) > 1e-12 {
				t.Errorf("Apply(1) = %f", got)
			}
			prev := -1.0
			for i := 0; i <= 100; i++ {
				v := c.Apply(float64(i) / 100)
				if v < prev {
					t.Fatalf("not monotonic at %d: %f < %f", i, v, prev)
				}
				prev = v
			}
			if c.Apply(-3) != c.Apply(0) || c.Apply(7) != c.Apply(1) {
				t.Error("input not clamped")
			}
		})
	}
}

func TestEntry_Map(t *testing.T) {
	tests := []struct {
		name string
		e    Entry
		in   float64
		want float64
	}{
		{"linear mid", Entry{From: Range{0, 10}, To: Range{100, 200}}, 5, 150},
		{"inverted", Entry{From: Range{2, 6}, To: Range{1, 0}}, 3, 0.75},
		{"exponential", Entry{From: Range{0, 1}, To: Range{0, 4}, Curve: Exponential}, 0.5, 1},
		{"logarithmic", Entry{From: Range{0, 1}, To: Range{0, 1}, Curve: Logarithmic}, 1.0 / 9, math.Log10(2)},
		{"sinusoidal", Entry{From: Range{0, 1}, To: Range{0, 2}, Curve: Sinusoidal}, 0.5, 1},
		{"clamped above", Entry{From: Range{0, 1}, To: Range{0, 360}}, 3, 360},
	}
	for _, tc := range tests {
		if got := tc.e.Map(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s: Map(%f) = %f, want %f", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestDefaultTablesValidate(t *testing.T) {
	if err := DefaultAudioToVisual().Validate(AudioSources, VisualTargets); err != nil {
		t.Errorf("audio→visual: %v", err)
	}
	if err := DefaultVisualToAudio().Validate(VisualSources, AudioTargets); err != nil {
		t.Errorf("visual→audio: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []Table{
		{{Source: "nope", Target: DstGlow, From: Range{0, 1}}},
		{{Source: SrcRMS, Target: "nope", From: Range{0, 1}}},
		{{Source: SrcRMS, Target: DstGlow, From: Range{1, 1}}},
		{{Source: SrcRMS, Target: DstGlow, From: Range{0, 1}, Curve: 9}},
	}
	for i, tbl := range tests {
		if err := tbl.Validate(AudioSources, VisualTargets); !errors.Is(err, ErrInvalidTable) {
			t.Errorf("case %d: err = %v, want ErrInvalidTable", i, err)
		}
	}
}

func TestTable_Apply(t *testing.T) {
	tbl := Table{
		{Source: SrcBass, Target: DstGlow, From: Range{0, 1}, To: Range{0, 10}},
		{Source: SrcMid, Target: DstGlow, From: Range{0, 1}, To: Range{0, 100}},
		{Source: SrcHigh, Target: DstBrightness, From: Range{0, 1}, To: Range{0, 1}},
	}
	dst := map[string]float64{"stale": 1}
	out := tbl.Apply(map[string]float64{SrcBass: 0.5, SrcMid: 0.5}, dst)
	if out[DstGlow] != 50 {
		t.Errorf("glow = %f, want last entry to win (50)", out[DstGlow])
	}
	if _, ok := out[DstBrightness]; ok {
		t.Error("brightness written without a source value")
	}
	if _, ok := out["stale"]; ok {
		t.Error("dst not cleared")
	}
}

func TestTable_JSONRoundTrip(t *testing.T) {
	in := DefaultVisualToAudio()
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out Table
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("entry %d: %+v != %+v", i, out[i], in[i])
		}
	}
}

func TestRotationEnergy(t *testing.T) {
	if got := RotationEnergy(); got != 0 {
		t.Errorf("empty = %f", got)
	}
	if got := RotationEnergy(math.Pi/2, 3*math.Pi/2); math.Abs(got-1) > 1e-12 {
		t.Errorf("energy = %f, want 1", got)
	}
	if got := RotationEnergy(0, math.Pi); got > 1e-12 {
		t.Errorf("energy = %f, want 0", got)
	}
}
