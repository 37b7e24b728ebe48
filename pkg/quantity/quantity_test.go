package quantity

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestParseCPU_Values(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "millicores", input: "500m", want: 0.5},
		{name: "whole millicores", input: "2000m", want: 2.0},
		{name: "small millicores", input: "250m", want: 0.25},
		{name: "whole cores", input: "4", want: 4.0},
		{name: "fractional cores", input: "0.5", want: 0.5},
		{name: "empty means unset", input: "", want: 0},
		{name: "whitespace only", input: "   ", want: 0},
		{name: "surrounding whitespace", input: " 2 ", want: 2.0},
		{name: "zero", input: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCPU(tt.input)
			if err != nil {
				t.Fatalf("ParseCPU(%q) returned error: %v", tt.input, err)
			}
			if !approxEqual(got, tt.want, 1e-12) {
				t.Errorf("ParseCPU(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCPU_Errors(t *testing.T) {
	inputs := []string{"abc", "-1", "-500m", "m", "1.2.3", "500M", "NaN"}

	for _, input := range inputs {
		got, err := ParseCPU(input)
		if err == nil {
			t.Errorf("ParseCPU(%q) = %v, want error", input, got)
			continue
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("ParseCPU(%q) error is %T, want *ParseError", input, err)
			continue
		}
		if perr.Input != input {
			t.Errorf("ParseCPU(%q) error carries input %q", input, perr.Input)
		}
	}
}

func TestParseBytes_Values(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "binary mebibytes", input: "512Mi", want: 512 * MiB},
		{name: "binary gibibytes", input: "1Gi", want: GiB},
		{name: "binary kibibytes", input: "100Ki", want: 100 * KiB},
		{name: "decimal gigabytes", input: "1G", want: 1e9},
		{name: "decimal megabytes", input: "200M", want: 200 * 1e6},
		{name: "decimal kilobytes", input: "8K", want: 8000},
		{name: "bare bytes", input: "1048576", want: 1 * MiB},
		{name: "lowercase suffix", input: "512mi", want: 512 * MiB},
		{name: "mixed case suffix", input: "2gI", want: 2 * GiB},
		{name: "fractional value", input: "1.5Gi", want: 1.5 * GiB},
		{name: "zero", input: "0", want: 0},
		{name: "surrounding whitespace", input: " 64Mi ", want: 64 * MiB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBytes(tt.input)
			if err != nil {
				t.Fatalf("ParseBytes(%q) returned error: %v", tt.input, err)
			}
			if !approxEqual(got, tt.want, 1e-9) {
				t.Errorf("ParseBytes(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// The binary suffixes must win over the decimal suffixes they end in,
// otherwise "1Ki" would be read as "1K" plus trailing garbage.
func TestParseBytes_BinarySuffixPrecedence(t *testing.T) {
	got, err := ParseBytes("1Ki")
	if err != nil {
		t.Fatalf("ParseBytes(1Ki) returned error: %v", err)
	}
	if got != 1024 {
		t.Errorf("ParseBytes(1Ki) = %v, want 1024", got)
	}
}

func TestParseBytes_Errors(t *testing.T) {
	inputs := []string{"", "   ", "abc", "-5Gi", "12XB", "Gi", "NaN", "Inf", "1e"}

	for _, input := range inputs {
		got, err := ParseBytes(input)
		if err == nil {
			t.Errorf("ParseBytes(%q) = %v, want error", input, got)
			continue
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("ParseBytes(%q) error is %T, want *ParseError", input, err)
		}
	}
}

func TestParseError_MessageNamesOffendingInput(t *testing.T) {
	_, err := ParseBytes("banana")
	if err == nil {
		t.Fatal("ParseBytes(banana) did not return an error")
	}
	if !strings.Contains(err.Error(), "banana") {
		t.Errorf("error message %q does not name the offending input", err.Error())
	}
}

// Formatting a parsed quantity back into the grammar and re-parsing it
// must not drift.
func TestParseCPU_RoundTrip(t *testing.T) {
	for _, cores := range []float64{0.001, 0.25, 0.5, 1, 2.5, 16, 96} {
		formatted := fmt.Sprintf("%dm", int64(math.Round(cores*1000)))
		got, err := ParseCPU(formatted)
		if err != nil {
			t.Fatalf("ParseCPU(%q) returned error: %v", formatted, err)
		}
		if !approxEqual(got, cores, 1e-9) {
			t.Errorf("round trip through %q = %v, want %v", formatted, got, cores)
		}
	}
}

func TestParseBytes_RoundTrip(t *testing.T) {
	for _, gib := range []float64{0.5, 1, 8, 64, 512} {
		formatted := fmt.Sprintf("%vGi", gib)
		got, err := ParseBytes(formatted)
		if err != nil {
			t.Fatalf("ParseBytes(%q) returned error: %v", formatted, err)
		}
		if !approxEqual(got, gib*GiB, 1e-6) {
			t.Errorf("round trip through %q = %v, want %v", formatted, got, gib*GiB)
		}
	}
}

// --- helpers ---

func approxEqual(got, want, epsilon float64) bool {
	return math.Abs(got-want) <= epsilon
}
