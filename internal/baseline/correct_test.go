package baseline

import (
	"testing"

	"github.com/roman-kulish/radiometer/internal/spectrum"
)

func TestCorrect_ZeroFloorIsIdentity(t *testing.T) {
	s := spectrum.Series{{Frequency: 1000, Temperature: 11}, {Frequency: 1001, Temperature: 12.5}, {Frequency: 1002, Temperature: -3}}

	got := Correct(s, func(float64) float64 { return 0 })
	if len(got) != len(s) {
		t.Fatalf("Expected %d points, got %d", len(s), len(got))
	}
	for i := range s {
		if got[i] != s[i] {
			t.Errorf("Point %d: expected %+v, got %+v", i, s[i], got[i])
		}
	}
}

func TestCorrect_SubtractsFloor(t *testing.T) {
	s := spectrum.Series{{Frequency: 10, Temperature: 100}, {Frequency: 20, Temperature: 100}, {Frequency: 30, Temperature: 100}}

	got := Correct(s, func(f float64) float64 { return f })
	expected := spectrum.Series{{Frequency: 10, Temperature: 90}, {Frequency: 20, Temperature: 80}, {Frequency: 30, Temperature: 70}}
	for i, p := range expected {
		if got[i] != p {
			t.Errorf("Point %d: expected %+v, got %+v", i, p, got[i])
		}
	}

	if s[0].Temperature != 100 {
		t.Error("Correct must not modify its input")
	}
}

func TestCorrect_WithModel(t *testing.T) {
	edge := spectrum.Series{{Frequency: 0, Temperature: 2}, {Frequency: 1, Temperature: 2}, {Frequency: 8, Temperature: 2}, {Frequency: 9, Temperature: 2}}
	m, err := Fit(edge, 1)
	if err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	got := Correct(spectrum.Series{{Frequency: 4, Temperature: 7}, {Frequency: 5, Temperature: 2}}, m.Eval)
	if !approxEqual(got[0].Temperature, 5, tolerance) || !approxEqual(got[1].Temperature, 0, tolerance) {
		t.Errorf("Unexpected corrected series: %+v", got)
	}
}
