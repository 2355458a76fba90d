package service

import (
	"errors"
	"testing"
	"time"
)

func TestClock_TodayAndWallUseRestaurantZone(t *testing.T) {
	loc := time.FixedZone("AST", -4*3600)
	c := Clock{Now: func() time.Time { return time.Date(2030, 6, 2, 2, 30, 0, 0, time.UTC) }, Loc: loc}

	if got := c.Today(); !got.Equal(time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Today: %v", got)
	}
	if got := c.Wall(); !got.Equal(time.Date(2030, 6, 1, 22, 30, 0, 0, time.UTC)) {
		t.Fatalf("Wall: %v", got)
	}
}

func TestParseSlotTime(t *testing.T) {
	for in, want := range map[string]string{"19:00": "19:00", "07:05:59": "07:05", "23:59": "23:59"} {
		got, err := ParseSlotTime(in)
		if err != nil || got != want {
			t.Fatalf("%s: got %q %v", in, got, err)
		}
	}
	for _, in := range []string{"", "24:00", "7pm", "19-00"} {
		if _, err := ParseSlotTime(in); !errors.Is(err, ErrInvalidTime) {
			t.Fatalf("%q: %v", in, err)
		}
	}
	if _, err := ParseDate("2030-02-30"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("invalid calendar date accepted")
	}
}
