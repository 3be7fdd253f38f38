package history

import (
	"strconv"
	"strings"
)

// Candle is one OHLC bucket over a contiguous run of history positions.
type Candle struct {
	StartIndex    int     `json:"start_index"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	Count         int     `json:"count"`
	BucketSeconds int64   `json:"bucket_size_seconds"`
	Granularity   string  `json:"granularity"`
}

// Aggregator buckets flat price series by a fixed set of granularity labels.
// History is one sample per simulated second, so a label's duration in
// seconds is also its bucket length in samples.
type Aggregator struct {
	levels []string
	allow  map[string]struct{}
}

// NewAggregator accepts the given labels, or DefaultLevels when none are given.
func NewAggregator(levels ...string) *Aggregator {
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	a := &Aggregator{allow: make(map[string]struct{}, len(levels))}
	for _, l := range levels {
		n := normalize(l)
		if _, dup := a.allow[n]; dup {
			continue
		}
		a.allow[n] = struct{}{}
		a.levels = append(a.levels, n)
	}
	return a
}

// Levels returns the accepted labels in configuration order.
func (a *Aggregator) Levels() []string {
	return append([]string(nil), a.levels...)
}

func (a *Aggregator) Aggregate(history []float64, granularity string) ([]Candle, error) {
	g := normalize(granularity)
	if _, ok := a.allow[g]; !ok {
		return nil, newValidationError(KindUnsupportedGranularity, granularity,
			"not one of %s", strings.Join(a.levels, ", "))
	}
	secs, err := ParseGranularity(g)
	if err != nil {
		return nil, err
	}
	if secs <= 0 {
		return nil, newValidationError(KindNonPositiveBucket, granularity, "bucket size must be > 0 seconds")
	}
	return bucketize(history, int(secs), secs, g), nil
}

var defaultAggregator = NewAggregator()

// Aggregate buckets history with the default label set.
func Aggregate(history []float64, granularity string) ([]Candle, error) {
	return defaultAggregator.Aggregate(history, granularity)
}

// AggregateBuckets chunks history into runs of size samples, bypassing the
// label set.
func AggregateBuckets(history []float64, size int) ([]Candle, error) {
	if size <= 0 {
		return nil, newValidationError(KindNonPositiveBucket, "", "bucket size must be > 0, got %d", size)
	}
	return bucketize(history, size, int64(size), strconv.Itoa(size)+"s"), nil
}

func bucketize(history []float64, size int, secs int64, label string) []Candle {
	if len(history) == 0 {
		return []Candle{}
	}
	out := make([]Candle, 0, (len(history)+size-1)/size)
	for start := 0; start < len(history); start += size {
		end := min(start+size, len(history))
		chunk := history[start:end]
		c := Candle{
			StartIndex:    start,
			Open:          chunk[0],
			High:          chunk[0],
			Low:           chunk[0],
			Close:         chunk[len(chunk)-1],
			Count:         len(chunk),
			BucketSeconds: secs,
			Granularity:   label,
		}
		for _, v := range chunk[1:] {
			c.High = max(c.High, v)
			c.Low = min(c.Low, v)
		}
		out = append(out, c)
	}
	return out
}
