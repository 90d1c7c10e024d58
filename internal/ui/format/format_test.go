package format

import (
	"math"
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		want    string
	}{
		{name: "negative", seconds: -5, want: "0s"},
		{name: "seconds", seconds: 59, want: "59s"},
		{name: "minute-seconds", seconds: 61, want: "1m1s"},
		{name: "hour-minutes", seconds: 3661, want: "1h1m"},
		{name: "day-hour", seconds: 90061, want: "1d1h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Duration(tt.seconds); got != tt.want {
				t.Fatalf("Duration(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestSpan(t *testing.T) {
	tests := []struct {
		ms   float64
		want string
	}{
		{ms: 0, want: "0ms"},
		{ms: math.NaN(), want: "0ms"},
		{ms: 12.34, want: "12.3ms"},
		{ms: 4500, want: "4.5s"},
		{ms: 123_000, want: "2m3s"},
	}
	for _, tt := range tests {
		if got := Span(tt.ms); got != tt.want {
			t.Errorf("Span(%v) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestShortNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{n: 999, want: "999"},
		{n: 9_999, want: "10.0K"},
		{n: 120_000, want: "120K"},
		{n: 2_500_000, want: "2.5M"},
		{n: 12_000_000_000, want: "12B"},
	}
	for _, tt := range tests {
		if got := ShortNumber(tt.n); got != tt.want {
			t.Errorf("ShortNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{v: 0, want: "0"},
		{v: 12.3456, want: "12.35"},
		{v: 0.5, want: "0.5"},
		{v: 100, want: "100"},
		{v: -2.5, want: "-2.5"},
		{v: 7.0710678, want: "7.071"},
		{v: 99999, want: "99999"},
		{v: 123456, want: "1.23e+05"},
		{v: 0.0001, want: "1.00e-04"},
		{v: math.Inf(-1), want: "-Inf"},
	}
	for _, tt := range tests {
		if got := Value(tt.v); got != tt.want {
			t.Errorf("Value(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestAxisTime(t *testing.T) {
	base := float64(time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC).UnixMilli())

	tests := []struct {
		name     string
		ms       float64
		relative bool
		step     time.Duration
		want     string
	}{
		{name: "absolute", ms: base, step: 10 * time.Second, want: "09:26:53"},
		{name: "absolute fine", ms: base + 250, step: 100 * time.Millisecond, want: "26:53.250"},
		{name: "relative", ms: base + 125_000, relative: true, step: 5 * time.Second, want: "02:05"},
		{name: "relative fine", ms: base + 1_500, relative: true, step: 500 * time.Millisecond, want: "00:01.500"},
		{name: "relative before origin", ms: base - 3_000, relative: true, step: time.Second, want: "-00:03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AxisTime(tt.ms, base, tt.relative, tt.step, time.UTC)
			if got != tt.want {
				t.Fatalf("AxisTime = %q, want %q", got, tt.want)
			}
		})
	}
}
