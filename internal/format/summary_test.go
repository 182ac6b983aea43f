package format

import (
	"testing"
	"time"
)

func TestCounts(t *testing.T) {
	tests := []struct {
		name    string
		buckets map[string]int
		want    string
	}{
		{"empty", map[string]int{}, "none"},
		{"nil", nil, "none"},
		{"single", map[string]int{"FAILED": 3}, "FAILED:3"},
		{
			"sorted",
			map[string]int{"RUNNING": 1, "COMPLETED": 7, "FAILED": 3},
			"COMPLETED:7 FAILED:3 RUNNING:1",
		},
		{"zero counts kept", map[string]int{"Critical": 0, "Warning": 2}, "Critical:0 Warning:2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Counts(tt.buckets); got != tt.want {
				t.Errorf("Counts() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{24 * time.Hour, "24h"},
		{48 * time.Hour, "48h"},
		{90 * time.Minute, "90m"},
		{5 * time.Minute, "5m"},
		{300 * time.Second, "5m"},
		{45 * time.Second, "45s"},
		{0, "0s"},
	}

	for _, tt := range tests {
		if got := Window(tt.d); got != tt.want {
			t.Errorf("Window(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		v    float64
		unit string
		want string
	}{
		{85, "Percent", "85 Percent"},
		{1.5, "Gigabytes", "1.5 Gigabytes"},
		{12, "", "12"},
		{12, "None", "12"},
	}

	for _, tt := range tests {
		if got := Value(tt.v, tt.unit); got != tt.want {
			t.Errorf("Value(%v, %q) = %q, want %q", tt.v, tt.unit, got, tt.want)
		}
	}
}
