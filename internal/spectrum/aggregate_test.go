package spectrum

import (
	"errors"
	"testing"
)

func record(start, spacing float64, readings ...float64) *ScanRecord {
	return &ScanRecord{StartFrequency: start, Spacing: spacing, Readings: readings}
}

func TestAggregator_Mean(t *testing.T) {
	agg := NewAggregator()

	records := []*ScanRecord{
		record(1000, 1, 10, 10, 10, 10, 10),
		record(1000, 1, 12, 12, 12, 12, 12),
	}
	for i, r := range records {
		if err := agg.Add(r); err != nil {
			t.Fatalf("Failed to add record %d: %v", i, err)
		}
	}

	if agg.Lines() != 2 {
		t.Errorf("Expected 2 lines, got %d", agg.Lines())
	}

	means, err := agg.Mean()
	if err != nil {
		t.Fatalf("Failed to compute mean: %v", err)
	}

	expected := Series{{1000, 11}, {1001, 11}, {1002, 11}, {1003, 11}, {1004, 11}}
	if len(means) != len(expected) {
		t.Fatalf("Expected %d bins, got %d", len(expected), len(means))
	}
	for i, p := range expected {
		if means[i] != p {
			t.Errorf("Bin %d: expected %+v, got %+v", i, p, means[i])
		}
	}
}

func TestAggregator_BinCountIndependentOfLines(t *testing.T) {
	for _, lines := range []int{1, 2, 7, 50} {
		agg := NewAggregator()
		for i := 0; i < lines; i++ {
			if err := agg.Add(record(1420, 0.5, float64(i), float64(2*i), 3)); err != nil {
				t.Fatalf("Failed to add record: %v", err)
			}
		}

		means, err := agg.Mean()
		if err != nil {
			t.Fatalf("Failed to compute mean: %v", err)
		}
		if len(means) != 3 {
			t.Errorf("%d lines: expected 3 bins, got %d", lines, len(means))
		}

		// Order follows the channel index
		for k, p := range means {
			if want := 1420 + 0.5*float64(k); p.Frequency != want {
				t.Errorf("%d lines: bin %d frequency %g, want %g", lines, k, p.Frequency, want)
			}
		}
	}
}

func TestAggregator_MeanIsExact(t *testing.T) {
	values := []float64{0.1, 0.2, 0.7, 13.25, -4}

	agg := NewAggregator()
	for _, v := range values {
		if err := agg.Add(record(100, 1, v)); err != nil {
			t.Fatalf("Failed to add record: %v", err)
		}
	}

	means, err := agg.Mean()
	if err != nil {
		t.Fatalf("Failed to compute mean: %v", err)
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	if want := sum / float64(len(values)); means[0].Temperature != want {
		t.Errorf("Expected mean %v, got %v", want, means[0].Temperature)
	}
}

func TestAggregator_Errors(t *testing.T) {
	t.Run("no records", func(t *testing.T) {
		if _, err := NewAggregator().Mean(); !errors.Is(err, ErrNoData) {
			t.Errorf("Expected ErrNoData, got %v", err)
		}
	})

	t.Run("nil record", func(t *testing.T) {
		if err := NewAggregator().Add(nil); err == nil {
			t.Error("Expected error when adding nil record")
		}
	})

	testCases := []struct {
		name string
		next *ScanRecord
	}{
		{"start frequency changed", record(1001, 1, 1, 2)},
		{"spacing changed", record(1000, 2, 1, 2)},
		{"channel count changed", record(1000, 1, 1, 2, 3)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			agg := NewAggregator()
			if err := agg.Add(record(1000, 1, 1, 2)); err != nil {
				t.Fatalf("Failed to add first record: %v", err)
			}
			if err := agg.Add(tc.next); !errors.Is(err, ErrLayoutChanged) {
				t.Errorf("Expected ErrLayoutChanged, got %v", err)
			}
			if agg.Lines() != 1 {
				t.Errorf("Rejected record must not be counted, got %d lines", agg.Lines())
			}
		})
	}
}

func TestAggregator_EmptyBin(t *testing.T) {
	agg := &Aggregator{
		layout:   &Layout{StartFrequency: 10, Spacing: 1, Channels: 2},
		readings: [][]float64{{1}, {}},
	}

	_, err := agg.Mean()

	var binErr *EmptyBinError
	if !errors.As(err, &binErr) {
		t.Fatalf("Expected EmptyBinError, got %v", err)
	}
	if binErr.Bin != 1 || binErr.Frequency != 11 {
		t.Errorf("Unexpected bin in error: %+v", binErr)
	}
}
