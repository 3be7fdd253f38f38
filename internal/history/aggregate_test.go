package history

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

func TestAggregateBuckets_PairsOfTwo(t *testing.T) {
	candles, err := AggregateBuckets([]float64{1, 2, 3, 4, 5, 6}, 2)
	if err != nil {
		t.Fatalf("AggregateBuckets failed: %v", err)
	}
	want := []Candle{
		{StartIndex: 0, Open: 1, Close: 2, High: 2, Low: 1, Count: 2},
		{StartIndex: 2, Open: 3, Close: 4, High: 4, Low: 3, Count: 2},
		{StartIndex: 4, Open: 5, Close: 6, High: 6, Low: 5, Count: 2},
	}
	if len(candles) != len(want) {
		t.Fatalf("expected %d candles, got %d", len(want), len(candles))
	}
	for i, w := range want {
		c := candles[i]
		if c.StartIndex != w.StartIndex || c.Open != w.Open || c.Close != w.Close ||
			c.High != w.High || c.Low != w.Low || c.Count != w.Count {
			t.Errorf("candle %d = %+v, want %+v", i, c, w)
		}
		if c.BucketSeconds != 2 || c.Granularity != "2s" {
			t.Errorf("candle %d labelled %q/%d", i, c.Granularity, c.BucketSeconds)
		}
	}
}

func TestAggregator_CustomLevel(t *testing.T) {
	agg := NewAggregator("2s", "1m")
	candles, err := agg.Aggregate([]float64{1, 2, 3, 4, 5, 6}, "2S")
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(candles) != 3 || candles[1].Open != 3 || candles[1].Close != 4 {
		t.Errorf("unexpected candles %+v", candles)
	}
	if _, err := agg.Aggregate([]float64{1}, "1h"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for label outside the set, got %v", err)
	}
}

func TestAggregate_TrailingPartialBucket(t *testing.T) {
	history := make([]float64, 12)
	for i := range history {
		history[i] = float64(100 + i)
	}
	candles, err := Aggregate(history, "5s")
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(candles) != 3 {
		t.Fatalf("expected 3 candles, got %d", len(candles))
	}
	last := candles[2]
	if last.StartIndex != 10 || last.Count != 2 || last.Open != 110 || last.Close != 111 {
		t.Errorf("unexpected trailing candle %+v", last)
	}
}

func TestAggregate_Empty(t *testing.T) {
	candles, err := Aggregate(nil, "1m")
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if candles == nil || len(candles) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", candles)
	}
}

func TestAggregate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		granularity string
		kind        Kind
	}{
		{"not in set", "2h", KindUnsupportedGranularity},
		{"garbage", "fortnight", KindUnsupportedGranularity},
		{"empty", "", KindUnsupportedGranularity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Aggregate([]float64{1, 2}, tt.granularity)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, verr.Kind)
			}
			if !errors.Is(err, ErrValidation) {
				t.Error("expected errors.Is(err, ErrValidation)")
			}
		})
	}

	_, err := NewAggregator("0s").Aggregate([]float64{1}, "0s")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Kind != KindNonPositiveBucket {
		t.Errorf("expected NonPositiveBucket, got %v", err)
	}
	if _, err := AggregateBuckets([]float64{1}, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for size 0, got %v", err)
	}
}

func TestParseGranularity(t *testing.T) {
	tests := []struct {
		label string
		want  int64
	}{
		{"1s", 1},
		{"1m", 60},
		{"90m", 5400},
		{"1h", 3600},
		{"5d", 5 * 86400},
		{"1wk", 7 * 86400},
		{"3mo", 90 * 86400},
		{"10y", 3650 * 86400},
		{" 1.5H ", 3600},
	}
	for _, tt := range tests {
		got, err := ParseGranularity(tt.label)
		if err != nil {
			t.Errorf("ParseGranularity(%q) failed: %v", tt.label, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseGranularity(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}

	for _, bad := range []string{"m", "1", "1.2.3s", "1min"} {
		if _, err := ParseGranularity(bad); !errors.Is(err, ErrValidation) {
			t.Errorf("ParseGranularity(%q): expected validation error, got %v", bad, err)
		}
	}
}

func TestDefaultLevelsParse(t *testing.T) {
	for _, l := range NewAggregator().Levels() {
		if secs, err := ParseGranularity(l); err != nil || secs <= 0 {
			t.Errorf("default level %q parses to %d, %v", l, secs, err)
		}
	}
}

func TestAggregateBuckets_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		history := rapid.SliceOf(rapid.Float64Range(0.0001, 1e6)).Draw(t, "history")
		size := rapid.IntRange(1, 50).Draw(t, "size")

		candles, err := AggregateBuckets(history, size)
		if err != nil {
			t.Fatalf("AggregateBuckets failed: %v", err)
		}
		total := 0
		for i, c := range candles {
			if c.StartIndex != i*size {
				t.Fatalf("candle %d starts at %d", i, c.StartIndex)
			}
			if c.Low > c.Open || c.Low > c.Close || c.High < c.Open || c.High < c.Close {
				t.Fatalf("candle %d violates low <= open,close <= high: %+v", i, c)
			}
			if c.Count < 1 || c.Count > size {
				t.Fatalf("candle %d count %d outside [1,%d]", i, c.Count, size)
			}
			total += c.Count
		}
		if total != len(history) {
			t.Fatalf("candles cover %d samples, history has %d", total, len(history))
		}
	})
}
