package user

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateReason(t *testing.T) {
	t.Parallel()

	if got := truncateReason("  email already taken \n"); got != "email already taken" {
		t.Fatalf("expected trimmed reason, got %q", got)
	}

	long := strings.Repeat("a", 999) + "é" + strings.Repeat("b", 10)
	got := truncateReason(long)
	if len(got) > 1000 {
		t.Fatalf("expected at most 1000 bytes, got %d", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("expected valid utf-8 after truncation")
	}
	if got != strings.Repeat("a", 999) {
		t.Fatalf("expected cut before the split rune, got %d bytes", len(got))
	}
}
