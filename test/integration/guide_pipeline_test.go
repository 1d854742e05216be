/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package integration exercises the full fetch-generate-render pipeline
// against an in-memory database and a stubbed schedule endpoint.
package integration

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/teamcast/teamcast/internal/enrich"
	"github.com/teamcast/teamcast/internal/guide"
	"github.com/teamcast/teamcast/internal/guide/rules"
	"github.com/teamcast/teamcast/internal/models"
	"github.com/teamcast/teamcast/internal/source"
	"github.com/teamcast/teamcast/internal/xmltv"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&models.Template{}, &models.Channel{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func scheduleJSON(gameStart time.Time) string {
	return fmt.Sprintf(`{
  "events": [{
    "id": "501",
    "date": %q,
    "competitions": [{
      "venue": {"fullName": "Climate Pledge Arena", "address": {"city": "Seattle"}},
      "status": {"type": {"state": "pre"}},
      "competitors": [
        {"id": "25", "homeAway": "home", "team": {"displayName": "Seattle Kraken", "abbreviation": "SEA"}},
        {"id": "22", "homeAway": "away", "team": {"displayName": "Vancouver Canucks", "abbreviation": "VAN"}}
      ]
    }]
  }]
}`, gameStart.UTC().Format("2006-01-02T15:04Z"))
}

func TestGuidePipeline(t *testing.T) {
	gameStart := time.Now().UTC().Add(6 * time.Hour).Truncate(time.Minute)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(scheduleJSON(gameStart)))
	}))
	defer upstream.Close()

	db := setupTestDB(t)
	tmpl := models.Template{
		ID:          "tmpl-1",
		Name:        "Hockey Night",
		TitleFormat: "{team_name} vs {opponent_name}",
		Rules: []models.ConditionalRule{
			{Priority: 100, Output: "Live from {venue}."},
		},
		Pregame: models.FillerConfig{
			Periods: []models.Period{{StartOffsetHours: 1, EndOffsetHours: 0, Title: "Warmup"}},
		},
		Idle: models.FillerConfig{Fallback: models.Fallback{Title: "Kraken Replay"}},
	}
	if err := db.Create(&tmpl).Error; err != nil {
		t.Fatalf("create template: %v", err)
	}
	channel := models.Channel{
		ID: "ch-1", Name: "Kraken TV", Number: 101,
		League: "nhl", TeamID: "25", TeamName: "Seattle Kraken", TeamAbbrev: "SEA",
		TemplateID: &tmpl.ID,
	}
	if err := db.Create(&channel).Error; err != nil {
		t.Fatalf("create channel: %v", err)
	}

	logger := zerolog.Nop()
	settings := guide.Settings{
		HorizonHours:         24,
		Timezone:             "UTC",
		DefaultDurationHours: 3,
		MidnightCrossover:    guide.MidnightKeep,
		FetchTimeout:         2 * time.Second,
		Workers:              2,
	}
	svc := guide.New(db, source.NewESPNClient(upstream.URL, time.Second, logger), &enrich.StaticProvider{}, rules.NewSelector(nil), settings, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result, err := svc.GenerateAll(ctx)
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if len(result.Outcomes) != 1 {
		t.Fatalf("got %d outcomes", len(result.Outcomes))
	}
	outcome := result.Outcomes[0]
	if outcome.Status != guide.StatusSucceeded {
		t.Fatalf("outcome %s: %s", outcome.Status, outcome.Reason)
	}

	// The timeline must cover the horizon without gaps and contain the
	// game with its resolved title and description.
	var gameProg *guide.Programme
	for i := 1; i < len(outcome.Programmes); i++ {
		if !outcome.Programmes[i].Start.Equal(outcome.Programmes[i-1].End) {
			t.Fatalf("gap before programme %d", i)
		}
	}
	for i := range outcome.Programmes {
		if outcome.Programmes[i].Kind == guide.KindGame {
			gameProg = &outcome.Programmes[i]
		}
	}
	if gameProg == nil {
		t.Fatal("no game programme in timeline")
	}
	if gameProg.Title != "Seattle Kraken vs Vancouver Canucks" {
		t.Fatalf("game title %q", gameProg.Title)
	}
	if gameProg.Description != "Live from Climate Pledge Arena." {
		t.Fatalf("game description %q", gameProg.Description)
	}

	var channels []models.Channel
	if err := db.Find(&channels).Error; err != nil {
		t.Fatalf("load channels: %v", err)
	}
	var buf bytes.Buffer
	if err := xmltv.Render(&buf, xmltv.Build(channels, result)); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`<channel id="ch-1">`,
		"Seattle Kraken vs Vancouver Canucks",
		"Warmup",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered guide lacks %q", want)
		}
	}
}

func TestGuidePipelineSourceDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	db := setupTestDB(t)
	tmpl := models.Template{ID: "tmpl-1", Name: "Hockey Night", TitleFormat: "{team_name}"}
	if err := db.Create(&tmpl).Error; err != nil {
		t.Fatalf("create template: %v", err)
	}
	channel := models.Channel{
		ID: "ch-1", Name: "Kraken TV", League: "nhl", TeamID: "25",
		TeamName: "Seattle Kraken", TemplateID: &tmpl.ID,
	}
	if err := db.Create(&channel).Error; err != nil {
		t.Fatalf("create channel: %v", err)
	}

	logger := zerolog.Nop()
	settings := guide.Settings{
		HorizonHours:         24,
		Timezone:             "UTC",
		DefaultDurationHours: 3,
		MidnightCrossover:    guide.MidnightKeep,
		FetchTimeout:         time.Second,
		Workers:              1,
	}
	svc := guide.New(db, source.NewESPNClient(upstream.URL, time.Second, logger), &enrich.StaticProvider{}, rules.NewSelector(nil), settings, logger)

	result, err := svc.GenerateAll(context.Background())
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if result.Outcomes[0].Status != guide.StatusFailed {
		t.Fatalf("outcome %s, want failed", result.Outcomes[0].Status)
	}
	if !strings.Contains(result.Outcomes[0].Reason, "source unavailable") {
		t.Fatalf("reason %q", result.Outcomes[0].Reason)
	}
}
