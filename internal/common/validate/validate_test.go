package validate

import (
	"strings"
	"testing"
	"unicode/utf8"

	commonerrors "github.com/academiahub/backend/internal/common/errors"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"under the cap", "short", 10, "short"},
		{"exactly at the cap", "exact", 5, "exact"},
		{"over the cap", "overflow", 4, "over"},
		{"multi-byte runes", "→→→→", 2, "→→"},
		{"zero cap", "anything", 0, ""},
	}

	for _, tc := range cases {
		if got := Truncate(tc.in, tc.max); got != tc.want {
			t.Errorf("%s: Truncate(%q, %d) = %q, want %q", tc.name, tc.in, tc.max, got, tc.want)
		}
	}
}

func TestTruncateNeverSplitsRunes(t *testing.T) {
	in := strings.Repeat("→", 1000)

	got := Truncate(in, 700)
	if !utf8.ValidString(got) {
		t.Fatal("truncated string must stay valid UTF-8")
	}
	if n := utf8.RuneCountInString(got); n != 700 {
		t.Fatalf("expected 700 runes, got %d", n)
	}
}

func TestStructMapsValidationFailure(t *testing.T) {
	type req struct {
		Name string `validate:"required"`
	}

	err := Struct(req{})
	if !commonerrors.Is(err, commonerrors.ErrInvalidPayload) {
		t.Fatalf("expected invalid payload, got %v", err)
	}
}
