/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/teamcast/teamcast/internal/models"
)

var sportPaths = map[string]string{
	"nfl":                     "football",
	"college-football":        "football",
	"nba":                     "basketball",
	"wnba":                    "basketball",
	"mens-college-basketball": "basketball",
	"mlb":                     "baseball",
	"nhl":                     "hockey",
	"mls":                     "soccer",
}

func leaguePath(league string) string {
	sport, ok := sportPaths[league]
	if !ok {
		sport = league
	}
	return sport + "/" + league
}

// ESPNClient reads team schedules from the public site API.
type ESPNClient struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewESPNClient builds a client against baseURL (no trailing slash).
func NewESPNClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *ESPNClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ESPNClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "espn_source").Logger(),
	}
}

type scheduleResponse struct {
	Team struct {
		ID string `json:"id"`
	} `json:"team"`
	Events []scheduleEvent `json:"events"`
}

type scheduleEvent struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	SeasonType struct {
		Name string `json:"name"`
	} `json:"seasonType"`
	Competitions []struct {
		Venue struct {
			FullName string `json:"fullName"`
			Address  struct {
				City  string `json:"city"`
				State string `json:"state"`
			} `json:"address"`
		} `json:"venue"`
		Broadcasts []struct {
			Media struct {
				ShortName string `json:"shortName"`
			} `json:"media"`
		} `json:"broadcasts"`
		Odds []struct {
			Details   string  `json:"details"`
			OverUnder float64 `json:"overUnder"`
		} `json:"odds"`
		ConferenceCompetition bool `json:"conferenceCompetition"`
		Status                struct {
			Type struct {
				State     string `json:"state"`
				Completed bool   `json:"completed"`
			} `json:"type"`
		} `json:"status"`
		Competitors []struct {
			ID       string `json:"id"`
			HomeAway string `json:"homeAway"`
			Winner   bool   `json:"winner"`
			Team     struct {
				DisplayName      string `json:"displayName"`
				ShortDisplayName string `json:"shortDisplayName"`
				Abbreviation     string `json:"abbreviation"`
			} `json:"team"`
			Score struct {
				Value        float64 `json:"value"`
				DisplayValue string  `json:"displayValue"`
			} `json:"score"`
			Record []struct {
				DisplayValue string `json:"displayValue"`
			} `json:"record"`
		} `json:"competitors"`
	} `json:"competitions"`
}

// Events fetches the team schedule and keeps the games starting inside
// [from, to).
func (c *ESPNClient) Events(ctx context.Context, league, teamID string, from, to time.Time) ([]models.Game, error) {
	url := fmt.Sprintf("%s/apis/site/v2/sports/%s/teams/%s/schedule", c.baseURL, leaguePath(league), teamID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status code: %d", resp.StatusCode)
	}

	var body scheduleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}

	sport, ok := sportPaths[league]
	if !ok {
		sport = league
	}

	games := make([]models.Game, 0, len(body.Events))
	for _, event := range body.Events {
		game, ok := c.parseEvent(event, league, sport)
		if !ok {
			continue
		}
		if game.StartsAt.Before(from) || !game.StartsAt.Before(to) {
			continue
		}
		games = append(games, game)
	}
	return games, nil
}

func (c *ESPNClient) parseEvent(event scheduleEvent, league, sport string) (models.Game, bool) {
	if len(event.Competitions) == 0 {
		return models.Game{}, false
	}
	comp := event.Competitions[0]

	startsAt, err := time.Parse("2006-01-02T15:04Z", event.Date)
	if err != nil {
		c.logger.Debug().Str("event", event.ID).Str("date", event.Date).Msg("unparseable event date")
		return models.Game{}, false
	}

	game := models.Game{
		ID:           event.ID,
		League:       league,
		Sport:        sport,
		StartsAt:     startsAt,
		Venue:        comp.Venue.FullName,
		City:         comp.Venue.Address.City,
		SeasonType:   event.SeasonType.Name,
		IsConference: comp.ConferenceCompetition,
	}

	switch comp.Status.Type.State {
	case "in":
		game.Status = models.GameLive
	case "post":
		game.Status = models.GameFinal
	default:
		game.Status = models.GameScheduled
	}

	if len(comp.Broadcasts) > 0 {
		game.Network = comp.Broadcasts[0].Media.ShortName
	}
	if len(comp.Odds) > 0 {
		game.OddsLine = comp.Odds[0].Details
		game.OverUnder = comp.Odds[0].OverUnder
	}

	for _, competitor := range comp.Competitors {
		side := models.Competitor{
			ID:        competitor.ID,
			Name:      competitor.Team.DisplayName,
			ShortName: competitor.Team.ShortDisplayName,
			Abbrev:    competitor.Team.Abbreviation,
			Score:     int(competitor.Score.Value),
			Winner:    competitor.Winner,
		}
		if len(competitor.Record) > 0 {
			side.Record = competitor.Record[0].DisplayValue
		}
		if competitor.HomeAway == "home" {
			game.Home = side
		} else {
			game.Away = side
		}
	}
	if game.Home.ID == "" && game.Away.ID == "" {
		return models.Game{}, false
	}
	return game, true
}
