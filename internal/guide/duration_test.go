/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package guide

import (
	"testing"
	"time"

	"github.com/teamcast/teamcast/internal/models"
)

func TestResolveDurationModes(t *testing.T) {
	settings := Settings{
		DefaultDurationHours: 3,
		SportDurations:       map[string]float64{"baseball": 3.5},
	}
	game := &models.Game{Sport: "baseball"}

	cases := []struct {
		name string
		tmpl models.Template
		want time.Duration
	}{
		{"sport mode mapped", models.Template{DurationMode: models.DurationSport}, time.Duration(3.5 * float64(time.Hour))},
		{"default mode ignores sport", models.Template{DurationMode: models.DurationDefault}, 3 * time.Hour},
		{"custom mode", models.Template{DurationMode: models.DurationCustom, CustomHours: 4.25}, time.Duration(4.25 * float64(time.Hour))},
		{"empty mode falls back to default", models.Template{}, 3 * time.Hour},
	}
	for _, tc := range cases {
		if got := ResolveDuration(game, &tc.tmpl, settings); got != tc.want {
			t.Errorf("%s: ResolveDuration() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestResolveDurationUnmappedSportUsesDefault(t *testing.T) {
	settings := Settings{
		DefaultDurationHours: 2,
		SportDurations:       map[string]float64{"hockey": 2.75},
	}
	game := &models.Game{Sport: "cricket"}
	tmpl := &models.Template{DurationMode: models.DurationSport}

	if got := ResolveDuration(game, tmpl, settings); got != 2*time.Hour {
		t.Fatalf("ResolveDuration() = %v, want default 2h", got)
	}
}

func TestSplitIntervalMidnightCrossover(t *testing.T) {
	settings := Settings{MidnightCrossover: MidnightSplit}
	start := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)

	chunks := splitInterval(start, end, settings, time.UTC)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}

	midnight := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	if !chunks[0].start.Equal(start) || !chunks[0].end.Equal(midnight) {
		t.Fatalf("first chunk %v..%v, want 23:00..00:00", chunks[0].start, chunks[0].end)
	}
	if !chunks[1].start.Equal(midnight) || !chunks[1].end.Equal(end) {
		t.Fatalf("second chunk %v..%v, want 00:00..02:00", chunks[1].start, chunks[1].end)
	}
}

func TestSplitIntervalKeepPolicy(t *testing.T) {
	settings := Settings{MidnightCrossover: MidnightKeep}
	start := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)

	chunks := splitInterval(start, end, settings, time.UTC)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 under keep policy", len(chunks))
	}
	if !chunks[0].start.Equal(start) || !chunks[0].end.Equal(end) {
		t.Fatalf("chunk %v..%v, want full interval", chunks[0].start, chunks[0].end)
	}
}

func TestSplitIntervalMaxLength(t *testing.T) {
	settings := Settings{MaxProgramHours: 2, MidnightCrossover: MidnightKeep}
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Hour)

	chunks := splitInterval(start, end, settings, time.UTC)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, c := range chunks[:2] {
		if c.end.Sub(c.start) != 2*time.Hour {
			t.Fatalf("chunk %d length %v, want 2h", i, c.end.Sub(c.start))
		}
	}
	if chunks[2].end.Sub(chunks[2].start) != time.Hour {
		t.Fatalf("tail chunk length %v, want 1h", chunks[2].end.Sub(chunks[2].start))
	}
	// Contiguity.
	for i := 1; i < len(chunks); i++ {
		if !chunks[i].start.Equal(chunks[i-1].end) {
			t.Fatalf("chunk %d not contiguous", i)
		}
	}
}

func TestSplitIntervalTimezoneMidnight(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	settings := Settings{MidnightCrossover: MidnightSplit}

	// 22:00 local, running 4 hours across local midnight.
	start := time.Date(2026, 6, 5, 22, 0, 0, 0, loc)
	chunks := splitInterval(start, start.Add(4*time.Hour), settings, loc)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if got := chunks[1].start.In(loc).Hour(); got != 0 {
		t.Fatalf("second chunk starts at local hour %d, want 0", got)
	}
}
