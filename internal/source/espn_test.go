/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/teamcast/teamcast/internal/models"
)

const scheduleFixture = `{
  "team": {"id": "9"},
  "events": [
    {
      "id": "401547001",
      "date": "2026-07-11T02:00Z",
      "seasonType": {"name": "Regular Season"},
      "competitions": [{
        "venue": {"fullName": "Lumen Field", "address": {"city": "Seattle", "state": "WA"}},
        "broadcasts": [{"media": {"shortName": "FS1"}}],
        "odds": [{"details": "SEA -1.5", "overUnder": 2.5}],
        "status": {"type": {"state": "pre", "completed": false}},
        "competitors": [
          {"id": "9", "homeAway": "home", "team": {"displayName": "Seattle Sounders FC", "shortDisplayName": "Sounders", "abbreviation": "SEA"}, "record": [{"displayValue": "10-4-3"}]},
          {"id": "11", "homeAway": "away", "team": {"displayName": "Portland Timbers", "shortDisplayName": "Timbers", "abbreviation": "POR"}}
        ]
      }]
    },
    {
      "id": "401547002",
      "date": "2026-07-20T02:00Z",
      "competitions": [{
        "status": {"type": {"state": "post", "completed": true}},
        "competitors": [
          {"id": "9", "homeAway": "away", "winner": true, "score": {"value": 2, "displayValue": "2"}, "team": {"displayName": "Seattle Sounders FC"}},
          {"id": "11", "homeAway": "home", "score": {"value": 1, "displayValue": "1"}, "team": {"displayName": "Portland Timbers"}}
        ]
      }]
    }
  ]
}`

func TestESPNClientEvents(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(scheduleFixture))
	}))
	defer ts.Close()

	client := NewESPNClient(ts.URL, time.Second, zerolog.Nop())
	from := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(72 * time.Hour)

	games, err := client.Events(context.Background(), "mls", "9", from, to)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}

	if want := "/apis/site/v2/sports/soccer/mls/teams/9/schedule"; gotPath != want {
		t.Fatalf("path %q, want %q", gotPath, want)
	}

	// Only the first event starts inside the window.
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	game := games[0]
	if game.ID != "401547001" || game.Status != models.GameScheduled {
		t.Fatalf("game %+v", game)
	}
	if game.Home.Abbrev != "SEA" || game.Away.Abbrev != "POR" {
		t.Fatalf("competitors home=%q away=%q", game.Home.Abbrev, game.Away.Abbrev)
	}
	if game.Home.Record != "10-4-3" {
		t.Fatalf("home record %q", game.Home.Record)
	}
	if game.Venue != "Lumen Field" || game.City != "Seattle" || game.Network != "FS1" {
		t.Fatalf("venue fields: %+v", game)
	}
	if game.OddsLine != "SEA -1.5" || game.OverUnder != 2.5 {
		t.Fatalf("odds: %+v", game)
	}
	if game.SeasonType != "Regular Season" {
		t.Fatalf("season type %q", game.SeasonType)
	}
	if !game.StartsAt.Equal(time.Date(2026, 7, 11, 2, 0, 0, 0, time.UTC)) {
		t.Fatalf("starts at %v", game.StartsAt)
	}
}

func TestESPNClientWindowKeepsCompletedGames(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(scheduleFixture))
	}))
	defer ts.Close()

	client := NewESPNClient(ts.URL, time.Second, zerolog.Nop())
	from := time.Date(2026, 7, 19, 0, 0, 0, 0, time.UTC)
	to := from.Add(48 * time.Hour)

	games, err := client.Events(context.Background(), "mls", "9", from, to)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	game := games[0]
	if game.Status != models.GameFinal {
		t.Fatalf("status %s, want final", game.Status)
	}
	if !game.Home.Winner && !game.Away.Winner {
		t.Fatal("winner flag lost")
	}
	if game.Away.Score != 2 || game.Home.Score != 1 {
		t.Fatalf("scores home=%d away=%d", game.Home.Score, game.Away.Score)
	}
}

func TestESPNClientUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	client := NewESPNClient(ts.URL, time.Second, zerolog.Nop())
	if _, err := client.Events(context.Background(), "mls", "9", time.Now(), time.Now().Add(time.Hour)); err == nil {
		t.Fatal("expected error on upstream failure")
	}
}
