// Package quantity parses Kubernetes-style resource quantity strings
// into canonical numeric units: CPU into cores, memory and storage
// into bytes. It recognizes the fixed suffix grammar used in request
// manifests (millicores, binary Ki/Mi/Gi, decimal K/M/G) and nothing
// else; callers that need a different unit convert from the canonical
// one.
package quantity

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Byte scales for the recognized unit suffixes.
const (
	KB = 1000.0
	MB = KB * 1000
	GB = MB * 1000

	KiB = 1024.0
	MiB = KiB * 1024
	GiB = MiB * 1024
)

// ParseError reports a quantity string that does not match the
// recognized grammar. The parser never guesses: an unparsable value is
// returned to the caller, which decides whether to treat it as zero or
// abort.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse quantity %q: %s", e.Input, e.Reason)
}

// byteSuffixes is ordered so binary suffixes match before the decimal
// suffixes they contain ("KI" before "K").
var byteSuffixes = []struct {
	suffix string
	scale  float64
}{
	{"KI", KiB},
	{"MI", MiB},
	{"GI", GiB},
	{"K", KB},
	{"M", MB},
	{"G", GB},
}

// ParseCPU converts a CPU request string to cores. A trailing "m"
// marks millicores, so "500m" is half a core; anything else is read as
// a plain decimal core count. Empty input means the request was never
// set and parses to zero.
func ParseCPU(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.HasSuffix(s, "m") {
		millis, err := parseNumber(strings.TrimSuffix(s, "m"), s)
		if err != nil {
			return 0, err
		}
		return millis / 1000, nil
	}
	return parseNumber(s, s)
}

// ParseBytes converts a memory or storage request string to bytes.
// Suffix matching is case-insensitive ("512Mi", "512MI" and "512mi"
// are the same quantity); a bare number is a raw byte count. Unlike
// ParseCPU, an empty string is an error: absent byte quantities are
// the caller's concern.
func ParseBytes(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, &ParseError{Input: s, Reason: "empty quantity"}
	}
	upper := strings.ToUpper(trimmed)
	for _, u := range byteSuffixes {
		if !strings.HasSuffix(upper, u.suffix) {
			continue
		}
		v, err := parseNumber(strings.TrimSuffix(upper, u.suffix), s)
		if err != nil {
			return 0, err
		}
		return v * u.scale, nil
	}
	return parseNumber(upper, s)
}

func parseNumber(num, input string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Input: input, Reason: "not a valid number"}
	}
	if v < 0 {
		return 0, &ParseError{Input: input, Reason: "negative quantity"}
	}
	return v, nil
}
