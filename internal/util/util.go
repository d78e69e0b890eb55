// Package util provides the argument helpers shared by the command handlers.
package util

import (
	"fmt"
	"strconv"
	"strings"
)

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// CleanText unquotes a free-text argument such as a mission or objective name.
func CleanText(s string) string {
	return FixEscapeQuotes(TrimQuotes(strings.TrimSpace(s)))
}

// Joaat returns the Jenkins one-at-a-time hash the game uses to identify
// models, weapons and pickups by name. Names are case-insensitive.
func Joaat(name string) uint32 {
	var h uint32
	for _, c := range []byte(strings.ToLower(name)) {
		h += uint32(c)
		h += h << 10
		h ^= h >> 6
	}
	h += h << 3
	h ^= h >> 11
	h += h << 15
	return h
}

// ParseHash reads a model or item identifier. It accepts 0x-prefixed hex,
// signed or unsigned decimal, or a name which is hashed with Joaat.
func ParseHash(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty hash")
	}
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		v, err := strconv.ParseUint(rest, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid hex hash %q: %w", s, err)
		}
		return uint32(v), nil
	}
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(v), nil
	}
	if v, err := strconv.ParseInt(s, 10, 32); err == nil {
		return uint32(int32(v)), nil
	}
	if s[0] == '-' || (s[0] >= '0' && s[0] <= '9') {
		return 0, fmt.Errorf("invalid hash %q", s)
	}
	return Joaat(s), nil
}
