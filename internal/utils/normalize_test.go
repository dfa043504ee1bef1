package utils_test

import (
	"errors"
	"testing"
	"time"

	"association-portal/backend/internal/utils"
)

func TestNormalizeEmail(t *testing.T) {
	if got := utils.NormalizeEmail("  Donor@Example.COM  "); got != "donor@example.com" {
		t.Fatalf("got %q", got)
	}
	if got := utils.NormalizeEmail(""); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Community Iftar 2026", "community-iftar-2026"},
		{"  Café   Rencontre  ", "cafe-rencontre"},
		{"hello_world--again", "hello-world-again"},
		{"???", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := utils.Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeToken(t *testing.T) {
	if got := utils.NormalizeToken("  Hello   World "); got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestTrimMax(t *testing.T) {
	if got := utils.TrimMax("  abcdef  ", 4); got != "abcd" {
		t.Fatalf("got %q", got)
	}
	if got := utils.TrimMax(" ab ", 10); got != "ab" {
		t.Fatalf("got %q", got)
	}
}

func TestParseTime(t *testing.T) {
	for _, in := range []string{
		"2026-03-01T10:00:00Z",
		"2026-03-01T10:00:00",
		"2026-03-01 10:00:00",
	} {
		got, err := utils.ParseTime(in)
		if err != nil {
			t.Fatalf("ParseTime(%q): %v", in, err)
		}
		if got.Year() != 2026 || got.Month() != time.March {
			t.Fatalf("ParseTime(%q) = %v", in, got)
		}
	}

	day, err := utils.ParseTime("2026-03-01")
	if err != nil {
		t.Fatalf("date only: %v", err)
	}
	if day.Hour() != 0 {
		t.Fatalf("date only = %v", day)
	}

	if _, err := utils.ParseTime("March 1st"); !errors.Is(err, utils.ErrInvalidTimeFormat) {
		t.Fatalf("err = %v, want ErrInvalidTimeFormat", err)
	}
}
