package history

import (
	"strconv"
	"strings"
)

// DefaultLevels is the enumerated label set accepted by Aggregate.
var DefaultLevels = []string{
	"1s", "5s", "1m", "30m", "1h", "90m", "1d", "5d",
	"1wk", "1mo", "3mo", "6mo", "1y", "5y", "10y",
}

var unitSeconds = map[string]int64{
	"s":  1,
	"m":  60,
	"h":  3600,
	"d":  86400,
	"wk": 7 * 86400,
	"mo": 30 * 86400,
	"y":  365 * 86400,
}

func normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// ParseGranularity converts a label such as "90m" or "1wk" into seconds.
// A fractional prefix is truncated, so "1.5h" is one hour.
func ParseGranularity(label string) (int64, error) {
	g := normalize(label)
	i := 0
	for i < len(g) && (g[i] == '.' || (g[i] >= '0' && g[i] <= '9')) {
		i++
	}
	if i == 0 {
		return 0, newValidationError(KindInvalidGranularity, label, "missing numeric prefix")
	}
	n, err := strconv.ParseFloat(g[:i], 64)
	if err != nil {
		return 0, newValidationError(KindInvalidGranularity, label, "bad numeric prefix %q", g[:i])
	}
	mult, ok := unitSeconds[g[i:]]
	if !ok {
		return 0, newValidationError(KindUnsupportedGranularity, label, "unsupported unit %q", g[i:])
	}
	return int64(n) * mult, nil
}
