package util

import (
	"math/rand/v2"
	"strings"
	"testing"
)

func TestGenerateRandomID(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		hexLength  int
		wantLength int
	}{
		{name: "account prefix", prefix: "acct_", hexLength: 8, wantLength: 13},
		{name: "no prefix", prefix: "", hexLength: 16, wantLength: 16},
		{name: "zero length", prefix: "x_", hexLength: 0, wantLength: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateRandomID(tt.prefix, tt.hexLength)
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("GenerateRandomID() = %q, want prefix %q", got, tt.prefix)
			}
			if len(got) != tt.wantLength {
				t.Errorf("GenerateRandomID() length = %d, want %d", len(got), tt.wantLength)
			}
			if hexPart := got[len(tt.prefix):]; strings.Trim(hexPart, "0123456789abcdef") != "" {
				t.Errorf("GenerateRandomID() hex part %q is not hex", hexPart)
			}
		})
	}
}

func TestRandomDigits(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		got := RandomDigits(r, 9)
		if len(got) != 9 {
			t.Fatalf("RandomDigits() = %q, want 9 digits", got)
		}
		if got[0] == '0' {
			t.Fatalf("RandomDigits() = %q starts with zero", got)
		}
		if strings.Trim(got, "0123456789") != "" {
			t.Fatalf("RandomDigits() = %q contains non-digits", got)
		}
	}
	if got := RandomDigits(r, 0); got != "" {
		t.Errorf("RandomDigits(0) = %q, want empty", got)
	}
}

func TestPick(t *testing.T) {
	items := []string{"a", "b", "c"}

	t.Run("deterministic with seeded source", func(t *testing.T) {
		a := rand.New(rand.NewPCG(7, 7))
		b := rand.New(rand.NewPCG(7, 7))
		for i := 0; i < 10; i++ {
			if x, y := Pick(a, items), Pick(b, items); x != y {
				t.Fatalf("Pick() diverged: %q vs %q", x, y)
			}
		}
	})

	t.Run("always an element", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			got := Pick(nil, items)
			if got != "a" && got != "b" && got != "c" {
				t.Fatalf("Pick() = %q, not in items", got)
			}
		}
	})

	t.Run("empty slice", func(t *testing.T) {
		if got := Pick[int](nil, nil); got != 0 {
			t.Errorf("Pick(empty) = %d, want 0", got)
		}
	})
}
