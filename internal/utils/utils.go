package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseNumber parses numbers as they appear in exchange exports. Dot groups
// of exactly three digits ("1.234.567") are read as thousands separators,
// commas, underscores and blanks are dropped. A single dot is always a
// decimal point, so "0.125" stays 0.125.
func ParseNumber(s string) (float64, error) {
	clean := strings.NewReplacer(",", "", "_", "", " ", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, fmt.Errorf("parse number %q: empty", s)
	}

	if strings.Count(clean, ".") > 1 && grouped(clean) {
		clean = strings.ReplaceAll(clean, ".", "")
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s, err)
	}
	return v, nil
}

func grouped(s string) bool {
	parts := strings.Split(strings.TrimPrefix(s, "-"), ".")
	if len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}
