package skill

import "testing"

func TestSpokenDate(t *testing.T) {
	t.Parallel()

	today := day(2026, 10, 19)
	if got := spokenDate(day(2026, 5, 5), today); got != "5 мая" {
		t.Fatalf("spokenDate() = %q", got)
	}
	if got := spokenDate(day(2024, 12, 31), today); got != "31 декабря 2024 года" {
		t.Fatalf("spokenDate() = %q", got)
	}
}

func TestJoinSpoken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"a", "b"}, "a и b"},
		{[]string{"a", "b", "c"}, "a, b и c"},
	}
	for _, tt := range tests {
		if got := joinSpoken(tt.in); got != tt.want {
			t.Fatalf("joinSpoken(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
