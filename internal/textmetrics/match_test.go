package textmetrics

import (
	"math"
	"testing"
)

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name       string
		expected   string
		recognized string
		want       float64
	}{
		{
			name:       "Identical strings",
			expected:   "Quarterly Revenue",
			recognized: "Quarterly Revenue",
			want:       1.0,
		},
		{
			name:       "Both empty",
			expected:   "",
			recognized: "",
			want:       1.0,
		},
		{
			name:       "Completely different same length",
			expected:   "abcd",
			recognized: "wxyz",
			want:       0.0,
		},
		{
			name:       "One character substituted",
			expected:   "hello",
			recognized: "hallo",
			want:       0.8,
		},
		{
			name:       "Recognized empty",
			expected:   "hello",
			recognized: "",
			want:       0.0,
		},
		{
			name:       "Expected empty",
			expected:   "",
			recognized: "hello",
			want:       0.0,
		},
		{
			name:       "Whitespace runs are normalized",
			expected:   "Quarterly   Revenue\n2024",
			recognized: "Quarterly Revenue 2024",
			want:       1.0,
		},
		{
			name:       "Leading and trailing whitespace ignored",
			expected:   "  title  ",
			recognized: "title",
			want:       1.0,
		},
		{
			name:       "Case matters",
			expected:   "Title",
			recognized: "title",
			want:       0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchScore(tt.expected, tt.recognized)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MatchScore(%q, %q) = %v, want %v", tt.expected, tt.recognized, got, tt.want)
			}
		})
	}
}

func TestMatchScoreBounds(t *testing.T) {
	pairs := [][2]string{
		{"short", "a much longer recognized string than expected"},
		{"a much longer expected string than recognized", "short"},
		{"", "x"},
		{"mixed 123 content", "mixed 12E c0ntent"},
	}
	for _, p := range pairs {
		score := MatchScore(p[0], p[1])
		if score < 0.0 || score > 1.0 {
			t.Errorf("MatchScore(%q, %q) = %v, outside [0, 1]", p[0], p[1], score)
		}
	}
}
