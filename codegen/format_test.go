package codegen

import (
	"math"
	"strings"
	"testing"
)

func TestFormatFloatHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		v    float64
		prec int
		want string
	}{
		{0.5, 0, "1"},
		{1.5, 0, "2"},
		{2.5, 0, "3"},
		{-2.5, 0, "-3"},
		{0.125, 2, "0.13"},
		{-0.125, 2, "-0.13"},
		{0.375, 2, "0.38"},
	}
	for _, c := range cases {
		got, err := FormatFloat(c.v, c.prec)
		if err != nil {
			t.Fatalf("FormatFloat(%v, %d): %v", c.v, c.prec, err)
		}
		if got != c.want {
			t.Errorf("FormatFloat(%v, %d) = %q, want %q", c.v, c.prec, got, c.want)
		}
	}
}

func TestFormatFloatExactExpansion(t *testing.T) {
	cases := []struct {
		v    float64
		want string
	}{
		{0.1, "0.10000000"},
		{1.0 / 3.0, "0.33333333"},
		{2.0, "2.00000000"},
		{-1.0, "-1.00000000"},
		{0.0, "0.00000000"},
		{1e-9, "0.00000000"},
		{1e9, "1000000000.00000000"},
	}
	for _, c := range cases {
		got, err := FormatFloat(c.v, 8)
		if err != nil {
			t.Fatalf("FormatFloat(%v, 8): %v", c.v, err)
		}
		if got != c.want {
			t.Errorf("FormatFloat(%v, 8) = %q, want %q", c.v, got, c.want)
		}
		frac := got[strings.IndexByte(got, '.')+1:]
		if len(frac) != 8 {
			t.Errorf("FormatFloat(%v, 8) emitted %d fractional digits", c.v, len(frac))
		}
	}
}

func TestFormatFloatNoExponentNotation(t *testing.T) {
	for _, v := range []float64{1e-9, 1e12, 3.5e-7} {
		got, err := FormatFloat(v, 8)
		if err != nil {
			t.Fatalf("FormatFloat(%v, 8): %v", v, err)
		}
		if strings.ContainsAny(got, "eE") {
			t.Errorf("FormatFloat(%v, 8) = %q contains exponent notation", v, got)
		}
	}
}

func TestFormatFloatPrecisionZero(t *testing.T) {
	cases := []struct {
		v    float64
		want string
	}{
		{0.4, "0"},
		{0.6, "1"},
		{-0.6, "-1"},
		{3.0, "3"},
	}
	for _, c := range cases {
		got, err := FormatFloat(c.v, 0)
		if err != nil {
			t.Fatalf("FormatFloat(%v, 0): %v", c.v, err)
		}
		if got != c.want {
			t.Errorf("FormatFloat(%v, 0) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestFormatFloatErrors(t *testing.T) {
	if _, err := FormatFloat(math.NaN(), 8); err == nil {
		t.Error("expected error for NaN")
	}
	if _, err := FormatFloat(math.Inf(1), 8); err == nil {
		t.Error("expected error for +Inf")
	}
	if _, err := FormatFloat(math.Inf(-1), 8); err == nil {
		t.Error("expected error for -Inf")
	}
	if _, err := FormatFloat(1.0, -1); err == nil {
		t.Error("expected error for negative precision")
	}
}
