package rbl

import "testing"

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"answer", "answer"},
		{"ANSWER", "answer"},
		{"  Answer  ", "answer"},
		{"an swer", "answer"},
		{"An  SweR\t", "answer"},
		{"tea pot", "teapot"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := NormalizeAnswer(tt.in); got != tt.want {
			t.Errorf("NormalizeAnswer(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAnswerMatches(t *testing.T) {
	accepted := []string{"answer", "Tea Pot"}

	tests := []struct {
		in   string
		want bool
	}{
		{"  Answer  ", true},
		{"ANSWER", true},
		{"an swer", true},
		{"teapot", true},
		{"TEA POT", true},
		{"wrong", false},
		{"answers", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := AnswerMatches(tt.in, accepted); got != tt.want {
			t.Errorf("AnswerMatches(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
