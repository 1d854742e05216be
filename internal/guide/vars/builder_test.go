/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package vars

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/teamcast/teamcast/internal/enrich"
	"github.com/teamcast/teamcast/internal/models"
)

func builderGame() *models.Game {
	return &models.Game{
		ID:       "g1",
		League:   "mlb",
		Sport:    "baseball",
		StartsAt: time.Date(2026, 7, 10, 19, 10, 0, 0, time.UTC),
		Status:   models.GameScheduled,
		Home:     models.Competitor{ID: "12", Name: "Seattle Mariners", ShortName: "Mariners", Abbrev: "SEA", Record: "50-40"},
		Away:     models.Competitor{ID: "18", Name: "Houston Astros", ShortName: "Astros", Abbrev: "HOU"},
		Venue:    "T-Mobile Park",
		City:     "Seattle",
		Network:  "ROOT",
	}
}

func TestBuildTeamPerspective(t *testing.T) {
	v, ctx := Build(builderGame(), "12", enrich.Facts{}, time.UTC)

	if v["team_name"] != "Seattle Mariners" || v["opponent_abbrev"] != "HOU" {
		t.Fatalf("perspective: team=%q opponent=%q", v["team_name"], v["opponent_abbrev"])
	}
	if v["home_away"] != "Home" || v["matchup"] != "Houston Astros at Seattle Mariners" {
		t.Fatalf("home view: %q / %q", v["home_away"], v["matchup"])
	}
	if v["league"] != "MLB" || v["game_time"] != "7:10 PM" {
		t.Fatalf("formatting: league=%q time=%q", v["league"], v["game_time"])
	}
	if !ctx.Flags["is_home"] || ctx.Flags["is_final"] {
		t.Fatalf("flags: %v", ctx.Flags)
	}

	// Same game from the away side.
	v, ctx = Build(builderGame(), "18", enrich.Facts{}, time.UTC)
	if v["team_name"] != "Houston Astros" || v["home_away"] != "Away" {
		t.Fatalf("away perspective: %q / %q", v["team_name"], v["home_away"])
	}
	if ctx.Flags["is_home"] {
		t.Fatal("away side flagged as home")
	}
}

func TestBuildScoreVarsOnlyWhenFinal(t *testing.T) {
	game := builderGame()
	v, _ := Build(game, "12", enrich.Facts{}, time.UTC)
	if _, ok := v["final_score"]; ok {
		t.Fatal("score vars present before the game is final")
	}

	game.Status = models.GameFinal
	game.Home.Score, game.Away.Score = 5, 3
	game.Home.Winner = true
	v, ctx := Build(game, "12", enrich.Facts{}, time.UTC)
	if v["final_score"] != "5-3" || v["result"] != "W" {
		t.Fatalf("final vars: score=%q result=%q", v["final_score"], v["result"])
	}
	if !ctx.Flags["is_final"] {
		t.Fatal("is_final flag not set")
	}

	// Losing side sees the same totals from its own perspective.
	v, _ = Build(game, "18", enrich.Facts{}, time.UTC)
	if v["final_score"] != "3-5" || v["result"] != "L" {
		t.Fatalf("loser vars: score=%q result=%q", v["final_score"], v["result"])
	}
}

func TestBuildEnrichmentFacts(t *testing.T) {
	facts := enrich.Facts{
		Stats: &enrich.TeamStats{
			Wins: 50, Losses: 40, WinPct: 0.556,
			DivisionName: "AL West", DivisionRank: 2, GamesBack: 1.5,
		},
		Opponent:   &enrich.TeamStats{Wins: 48, Losses: 42, DivisionName: "AL West"},
		Streaks:    &enrich.Streaks{WinStreak: 4, LastTen: "7-3"},
		HeadToHead: &enrich.HeadToHead{TeamWins: 5, OpponentWins: 2},
		Coach:      &enrich.Coach{Name: "Dan Wilson"},
		Leaders: &enrich.Leaders{Entries: []enrich.Leader{
			{Category: "Batting Avg", Name: "J. Rodriguez", StatLine: ".312"},
		}},
	}
	v, ctx := Build(builderGame(), "12", facts, time.UTC)

	if v["division_place"] != "2nd" || v["games_back"] != "1.5" {
		t.Fatalf("standings vars: %q %q", v["division_place"], v["games_back"])
	}
	if v["win_streak"] != "4" || v["last_ten"] != "7-3" {
		t.Fatalf("streak vars: %q %q", v["win_streak"], v["last_ten"])
	}
	if v["series_record"] != "5-2" || v["coach"] != "Dan Wilson" {
		t.Fatalf("series/coach: %q %q", v["series_record"], v["coach"])
	}
	if v["leader_batting_avg"] != "J. Rodriguez .312" {
		t.Fatalf("leader var: %q", v["leader_batting_avg"])
	}
	if ctx.Nums["wins"] != 50 || ctx.Nums["division_rank"] != 2 {
		t.Fatalf("nums: %v", ctx.Nums)
	}
	// Shared division name marks the matchup as divisional.
	if !ctx.Flags["is_division"] {
		t.Fatal("is_division not derived from standings")
	}
	// The explicit record string wins over the standings-derived one.
	if v["team_record"] != "50-40" {
		t.Fatalf("team_record %q", v["team_record"])
	}
}

func TestBuildUnknownTeamFallsBackToHome(t *testing.T) {
	v, ctx := Build(builderGame(), "999", enrich.Facts{}, time.UTC)
	if v["team_name"] != "Seattle Mariners" || !ctx.Flags["is_home"] {
		t.Fatalf("neutral fallback: %q", v["team_name"])
	}
}

func TestBuildNilGame(t *testing.T) {
	v, ctx := Build(nil, "12", enrich.Facts{}, time.UTC)
	if len(v) != 0 {
		t.Fatalf("nil game produced vars: %v", v)
	}
	if len(ctx.Flags) != 0 || len(ctx.Nums) != 0 {
		t.Fatalf("nil game produced context: %v %v", ctx.Flags, ctx.Nums)
	}
}

func TestGatherDegradesMissingRecords(t *testing.T) {
	provider := &enrich.StaticProvider{
		Stats: map[string]*enrich.TeamStats{"12": {Wins: 50, Losses: 40}},
	}
	facts := enrich.Gather(t.Context(), provider, zerolog.Nop(), "mlb", "12", "18", time.Now())
	if facts.Stats == nil || facts.Stats.Wins != 50 {
		t.Fatalf("stats: %+v", facts.Stats)
	}
	if facts.Opponent != nil || facts.Coach != nil || facts.Leaders != nil {
		t.Fatal("missing records must stay nil")
	}
}
