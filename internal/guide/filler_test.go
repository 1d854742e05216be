/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package guide

import (
	"math/rand"
	"testing"
	"time"

	"github.com/teamcast/teamcast/internal/guide/rules"
	"github.com/teamcast/teamcast/internal/guide/vars"
	"github.com/teamcast/teamcast/internal/models"
)

func testSelector() *rules.Selector {
	return rules.NewSelector(rand.New(rand.NewSource(1)))
}

func testChannel() *models.Channel {
	return &models.Channel{
		ID:       "ch-1",
		Name:     "Mariners TV",
		TeamName: "Seattle Mariners",
		League:   "mlb",
	}
}

func mustCompileFiller(t *testing.T, tmpl *models.Template) *compiledFiller {
	t.Helper()
	f, err := compileFiller(tmpl)
	if err != nil {
		t.Fatalf("compileFiller: %v", err)
	}
	return f
}

func gameContext(startsAt time.Time, status models.GameStatus) *eventContext {
	game := &models.Game{ID: "g1", StartsAt: startsAt, Status: status}
	return &eventContext{
		game: game,
		set:  vars.ContextSet{Current: vars.Variables{"opponent_name": "Houston"}},
	}
}

func TestFillRegionPregamePeriod(t *testing.T) {
	tmpl := &models.Template{
		Pregame: models.FillerConfig{
			Periods: []models.Period{
				{StartOffsetHours: 4, EndOffsetHours: 0, Title: "Pregame: {opponent_name}"},
			},
		},
		Idle: models.FillerConfig{Fallback: models.Fallback{Title: "Team Replay"}},
	}
	f := mustCompileFiller(t, tmpl)

	gameStart := time.Date(2026, 5, 2, 18, 0, 0, 0, time.UTC)
	next := gameContext(gameStart, models.GameScheduled)
	region := span{start: gameStart.Add(-8 * time.Hour), end: gameStart}

	programmes := f.fillRegion(region, nil, next, testSelector(), testChannel(), Settings{MidnightCrossover: MidnightKeep}, time.UTC)
	if len(programmes) != 2 {
		t.Fatalf("got %d programmes, want idle + pregame", len(programmes))
	}

	idle, pregame := programmes[0], programmes[1]
	if idle.Title != "Team Replay" || idle.Kind != KindIdle {
		t.Fatalf("leading filler = %q (%s)", idle.Title, idle.Kind)
	}
	if !idle.Start.Equal(region.start) || !idle.End.Equal(gameStart.Add(-4*time.Hour)) {
		t.Fatalf("idle window %v..%v", idle.Start, idle.End)
	}

	if pregame.Kind != KindPregame || pregame.Title != "Pregame: Houston" {
		t.Fatalf("pregame = %q (%s)", pregame.Title, pregame.Kind)
	}
	if !pregame.Start.Equal(gameStart.Add(-4*time.Hour)) || !pregame.End.Equal(gameStart) {
		t.Fatalf("pregame window %v..%v, want 14:00..18:00", pregame.Start, pregame.End)
	}
}

func TestFillRegionPostgameThenPregame(t *testing.T) {
	tmpl := &models.Template{
		Pregame: models.FillerConfig{
			Periods: []models.Period{{StartOffsetHours: 2, EndOffsetHours: 0, Title: "Countdown"}},
		},
		Postgame: models.FillerConfig{
			Periods: []models.Period{{StartOffsetHours: 0, EndOffsetHours: 1, Title: "Wrap-Up"}},
		},
		Idle: models.FillerConfig{Fallback: models.Fallback{Title: "Off Air"}},
	}
	f := mustCompileFiller(t, tmpl)

	prevEnd := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	prev := gameContext(prevEnd.Add(-3*time.Hour), models.GameFinal)
	prev.chunks = []span{{start: prevEnd.Add(-3 * time.Hour), end: prevEnd}}
	nextStart := time.Date(2026, 5, 2, 19, 0, 0, 0, time.UTC)
	next := gameContext(nextStart, models.GameScheduled)

	region := span{start: prevEnd, end: nextStart}
	programmes := f.fillRegion(region, prev, next, testSelector(), testChannel(), Settings{MidnightCrossover: MidnightKeep}, time.UTC)

	if len(programmes) != 3 {
		t.Fatalf("got %d programmes, want postgame + idle + pregame", len(programmes))
	}
	if programmes[0].Kind != KindPostgame || !programmes[0].Start.Equal(prevEnd) || !programmes[0].End.Equal(prevEnd.Add(time.Hour)) {
		t.Fatalf("postgame = %s %v..%v", programmes[0].Kind, programmes[0].Start, programmes[0].End)
	}
	if programmes[1].Kind != KindIdle {
		t.Fatalf("middle filler kind = %s", programmes[1].Kind)
	}
	if programmes[2].Kind != KindPregame || !programmes[2].End.Equal(nextStart) {
		t.Fatalf("pregame = %s ending %v", programmes[2].Kind, programmes[2].End)
	}

	// Full region coverage, contiguous.
	if !programmes[0].Start.Equal(region.start) || !programmes[2].End.Equal(region.end) {
		t.Fatal("region edges not covered")
	}
	for i := 1; i < len(programmes); i++ {
		if !programmes[i].Start.Equal(programmes[i-1].End) {
			t.Fatalf("programme %d not contiguous", i)
		}
	}
}

func TestFillRegionEarlierPeriodWins(t *testing.T) {
	tmpl := &models.Template{
		Pregame: models.FillerConfig{
			Periods: []models.Period{
				{StartOffsetHours: 3, EndOffsetHours: 0, Title: "Big Show"},
				{StartOffsetHours: 4, EndOffsetHours: 0, Title: "Overlapping Show"},
			},
		},
		Idle: models.FillerConfig{Fallback: models.Fallback{Title: "Off Air"}},
	}
	f := mustCompileFiller(t, tmpl)

	gameStart := time.Date(2026, 5, 2, 18, 0, 0, 0, time.UTC)
	next := gameContext(gameStart, models.GameScheduled)
	region := span{start: gameStart.Add(-6 * time.Hour), end: gameStart}

	programmes := f.fillRegion(region, nil, next, testSelector(), testChannel(), Settings{MidnightCrossover: MidnightKeep}, time.UTC)

	// Declared-first period keeps its full window; the second only gets
	// the hour the first left free.
	var bigShow, overlap *Programme
	for i := range programmes {
		switch programmes[i].Title {
		case "Big Show":
			bigShow = &programmes[i]
		case "Overlapping Show":
			overlap = &programmes[i]
		}
	}
	if bigShow == nil || overlap == nil {
		t.Fatalf("missing period programmes: %+v", programmes)
	}
	if bigShow.Duration() != 3*time.Hour {
		t.Fatalf("declared-first period got %v, want 3h", bigShow.Duration())
	}
	if overlap.Duration() != time.Hour {
		t.Fatalf("overlapping period got %v, want leftover 1h", overlap.Duration())
	}
}

func TestFillRegionConditionalFallback(t *testing.T) {
	tmpl := &models.Template{
		Idle: models.FillerConfig{
			Fallback: models.Fallback{Title: "Plain"},
			Conditional: &models.ConditionalFallback{
				Final:    models.Fallback{Title: "Full Replay"},
				NotFinal: models.Fallback{Title: "Game Preview"},
			},
		},
	}
	f := mustCompileFiller(t, tmpl)

	region := span{
		start: time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC),
		end:   time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC),
	}
	settings := Settings{MidnightCrossover: MidnightKeep}

	finalPrev := gameContext(region.start.Add(-3*time.Hour), models.GameFinal)
	programmes := f.fillRegion(region, finalPrev, nil, testSelector(), testChannel(), settings, time.UTC)
	if len(programmes) != 1 || programmes[0].Title != "Full Replay" {
		t.Fatalf("final branch: %+v", programmes)
	}

	livePrev := gameContext(region.start.Add(-3*time.Hour), models.GameLive)
	programmes = f.fillRegion(region, livePrev, nil, testSelector(), testChannel(), settings, time.UTC)
	if len(programmes) != 1 || programmes[0].Title != "Game Preview" {
		t.Fatalf("not-final branch: %+v", programmes)
	}
}

func TestFillOffseason(t *testing.T) {
	tmpl := &models.Template{
		Idle: models.FillerConfig{
			Fallback:  models.Fallback{Title: "Plain"},
			Offseason: &models.Fallback{Title: "{team_name} Classics", Description: "Best of the archives"},
		},
	}
	f := mustCompileFiller(t, tmpl)

	horizon := span{
		start: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		end:   time.Date(2026, 12, 3, 0, 0, 0, 0, time.UTC),
	}
	programmes := f.fillOffseason(horizon, testChannel(), Settings{MidnightCrossover: MidnightSplit}, time.UTC)

	if len(programmes) != 2 {
		t.Fatalf("got %d programmes, want one per day", len(programmes))
	}
	for _, p := range programmes {
		if p.Title != "Seattle Mariners Classics" {
			t.Fatalf("offseason title = %q", p.Title)
		}
		if p.Kind != KindIdle {
			t.Fatalf("offseason kind = %s", p.Kind)
		}
	}
	if !programmes[0].Start.Equal(horizon.start) || !programmes[1].End.Equal(horizon.end) {
		t.Fatal("offseason must cover the full horizon")
	}
}

func TestFillRegionLastResortTitle(t *testing.T) {
	// No fallback configured anywhere: the channel name keeps the
	// timeline covered.
	f := mustCompileFiller(t, &models.Template{})
	region := span{
		start: time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC),
		end:   time.Date(2026, 5, 2, 11, 0, 0, 0, time.UTC),
	}
	programmes := f.fillRegion(region, nil, nil, testSelector(), testChannel(), Settings{MidnightCrossover: MidnightKeep}, time.UTC)
	if len(programmes) != 1 || programmes[0].Title != "Mariners TV" {
		t.Fatalf("last resort: %+v", programmes)
	}
}
