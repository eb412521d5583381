package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/peezyagent/rfp-analyzer/internal/models"
)

// sizePattern matches human-readable file sizes like "10MB" or "2.5GB".
// The unit is optional aside from the trailing B, so plain "512B" works.
var sizePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)([KMGT]?B)$`)

// sizeUnits maps unit suffixes to binary byte multipliers.
var sizeUnits = map[string]int64{
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

// IsValidSize reports whether s is a well-formed file-size string.
// Matching is case-insensitive: "10mb" and "10MB" are both valid.
func IsValidSize(s string) bool {
	return sizePattern.MatchString(strings.ToUpper(s))
}

// ParseSizeBytes converts a file-size string to a byte count, truncating
// any fractional remainder: "2.5MB" parses to 2621440.
func ParseSizeBytes(s string) (int64, error) {
	match := sizePattern.FindStringSubmatch(strings.ToUpper(s))
	if match == nil {
		return 0, fmt.Errorf("%w: file size %q", models.ErrInvalidFormat, s)
	}

	number, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: file size %q: %v", models.ErrInvalidFormat, s, err)
	}

	return int64(number * float64(sizeUnits[match[2]])), nil
}
