package output

import (
	"strings"
	"testing"
)

func TestBar_Render(t *testing.T) {
	tests := []struct {
		name       string
		value      int
		total      int
		wantFilled int
		wantEmpty  int
	}{
		{"full", 30, 30, 10, 0},
		{"half", 15, 30, 5, 5},
		{"empty", 0, 30, 0, 10},
		{"negative", -3, 30, 0, 10},
		{"over", 45, 30, 10, 0},
		{"no total", 5, 0, 0, 10},
	}

	b := NewBar(10)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Render(tt.value, tt.total)
			if n := strings.Count(got, "█"); n != tt.wantFilled {
				t.Errorf("filled = %d, want %d (%q)", n, tt.wantFilled, got)
			}
			if n := strings.Count(got, "░"); n != tt.wantEmpty {
				t.Errorf("empty = %d, want %d (%q)", n, tt.wantEmpty, got)
			}
		})
	}
}

func TestNewBar_DefaultWidth(t *testing.T) {
	got := NewBar(0).Render(0, 1)
	if n := strings.Count(got, "░"); n != 30 {
		t.Errorf("default width = %d, want 30", n)
	}
}
