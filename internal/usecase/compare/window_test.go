package compare

import (
	"testing"
	"time"
)

func TestWindow_Contains(t *testing.T) {
	w := window("2024-01-10", "2024-01-20")

	tests := []struct {
		name string
		date string
		want bool
	}{
		{"before window", "2024-01-09", false},
		{"on lower bound", "2024-01-10", true},
		{"inside window", "2024-01-15", true},
		{"on upper bound", "2024-01-20", true},
		{"after window", "2024-01-21", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(mustDate(tt.date)); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestWindow_OpenBounds(t *testing.T) {
	var open Window
	if !open.Contains(time.Now()) {
		t.Error("fully open window should contain any instant")
	}

	fromOnly := Window{From: mustDate("2024-01-10")}
	if fromOnly.Contains(mustDate("2024-01-09")) {
		t.Error("date before the open-ended lower bound should be excluded")
	}
	if !fromOnly.Contains(mustDate("2030-01-01")) {
		t.Error("open upper bound should accept any later date")
	}
}

func TestWindow_IsValid(t *testing.T) {
	if w := window("2024-02-01", "2024-01-01"); w.IsValid() {
		t.Error("From after To should be invalid")
	}
	if w := window("2024-01-01", "2024-01-01"); !w.IsValid() {
		t.Error("From equal to To should be valid")
	}
	if w := (Window{}); !w.IsValid() {
		t.Error("fully open window should be valid")
	}
}

func TestWindow_IsBounded(t *testing.T) {
	if (Window{}).IsBounded() {
		t.Error("open window should not be bounded")
	}
	if !window("2024-01-01", "").IsBounded() {
		t.Error("window with a From should be bounded")
	}
	if !window("", "2024-01-31").IsBounded() {
		t.Error("window with a To should be bounded")
	}
}
