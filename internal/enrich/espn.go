/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// sportPaths maps league slugs to the sport segment of the site API path.
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

// ESPNProvider reads enrichment records from the public site API.
type ESPNProvider struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewESPNProvider builds a provider against baseURL (no trailing slash).
func NewESPNProvider(baseURL string, timeout time.Duration, logger zerolog.Logger) *ESPNProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ESPNProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "espn_enrich").Logger(),
	}
}

func leaguePath(league string) string {
	sport, ok := sportPaths[league]
	if !ok {
		sport = league
	}
	return sport + "/" + league
}

// get fetches url and decodes the JSON body into out. A 404 is reported
// as absence via the (false, nil) return.
func (p *ESPNProvider) get(ctx context.Context, url string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("http status code: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

type teamResponse struct {
	Team struct {
		Record struct {
			Items []struct {
				Type    string `json:"type"`
				Summary string `json:"summary"`
				Stats   []struct {
					Name  string  `json:"name"`
					Value float64 `json:"value"`
				} `json:"stats"`
			} `json:"items"`
		} `json:"record"`
		StandingSummary string `json:"standingSummary"`
		Groups          struct {
			Name   string `json:"name"`
			Parent struct {
				Name string `json:"name"`
			} `json:"parent"`
		} `json:"groups"`
		Coach []struct {
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
		} `json:"coach"`
	} `json:"team"`
}

// TeamStats reads the overall record item from the team endpoint.
func (p *ESPNProvider) TeamStats(ctx context.Context, league, teamID string, _ time.Time) (*TeamStats, error) {
	if teamID == "" {
		return nil, nil
	}
	url := fmt.Sprintf("%s/apis/site/v2/sports/%s/teams/%s", p.baseURL, leaguePath(league), teamID)
	var body teamResponse
	found, err := p.get(ctx, url, &body)
	if err != nil || !found {
		return nil, err
	}

	stats := &TeamStats{
		DivisionName:   body.Team.Groups.Name,
		ConferenceName: body.Team.Groups.Parent.Name,
	}
	for _, item := range body.Team.Record.Items {
		if item.Type != "total" {
			continue
		}
		for _, s := range item.Stats {
			switch s.Name {
			case "wins":
				stats.Wins = int(s.Value)
			case "losses":
				stats.Losses = int(s.Value)
			case "ties":
				stats.Ties = int(s.Value)
			case "winPercent":
				stats.WinPct = s.Value
			case "gamesBehind":
				stats.GamesBack = s.Value
			case "divisionRank":
				stats.DivisionRank = int(s.Value)
			case "playoffSeed":
				stats.ConferenceRank = int(s.Value)
			case "avgPointsFor":
				stats.PointsPerGame = s.Value
			case "avgPointsAgainst":
				stats.PointsAllowed = s.Value
			}
		}
	}
	if stats.Wins == 0 && stats.Losses == 0 && stats.Ties == 0 {
		return nil, nil
	}
	return stats, nil
}

type scheduleResponse struct {
	Events []struct {
		Date         string `json:"date"`
		Competitions []struct {
			Competitors []struct {
				ID     string `json:"id"`
				Winner bool   `json:"winner"`
				Score  struct {
					DisplayValue string `json:"displayValue"`
				} `json:"score"`
			} `json:"competitors"`
			Status struct {
				Type struct {
					Completed bool `json:"completed"`
				} `json:"type"`
			} `json:"status"`
		} `json:"competitions"`
	} `json:"events"`
}

// HeadToHead derives the season series from completed schedule entries
// involving the opponent, counting only games played by asOf.
func (p *ESPNProvider) HeadToHead(ctx context.Context, league, teamID, opponentID string, asOf time.Time) (*HeadToHead, error) {
	if teamID == "" || opponentID == "" {
		return nil, nil
	}
	url := fmt.Sprintf("%s/apis/site/v2/sports/%s/teams/%s/schedule", p.baseURL, leaguePath(league), teamID)
	var body scheduleResponse
	found, err := p.get(ctx, url, &body)
	if err != nil || !found {
		return nil, err
	}

	var h2h HeadToHead
	seen := false
	for _, event := range body.Events {
		if len(event.Competitions) == 0 {
			continue
		}
		comp := event.Competitions[0]
		if !comp.Status.Type.Completed {
			continue
		}
		if ts, err := time.Parse("2006-01-02T15:04Z", event.Date); err == nil && ts.After(asOf) {
			continue
		}
		var teamWon, oppInvolved, oppWon bool
		for _, c := range comp.Competitors {
			switch c.ID {
			case teamID:
				teamWon = c.Winner
			case opponentID:
				oppInvolved = true
				oppWon = c.Winner
			}
		}
		if !oppInvolved {
			continue
		}
		seen = true
		switch {
		case teamWon:
			h2h.TeamWins++
		case oppWon:
			h2h.OpponentWins++
		default:
			h2h.Ties++
		}
		if ts, err := time.Parse("2006-01-02T15:04Z", event.Date); err == nil {
			result := "T"
			if teamWon {
				result = "W"
			} else if oppWon {
				result = "L"
			}
			h2h.LastMeeting = result + " (" + ts.Format("Jan 2") + ")"
		}
	}
	if !seen {
		return nil, nil
	}
	return &h2h, nil
}

// Streaks walks completed schedule entries backwards from asOf.
func (p *ESPNProvider) Streaks(ctx context.Context, league, teamID string, asOf time.Time) (*Streaks, error) {
	if teamID == "" {
		return nil, nil
	}
	url := fmt.Sprintf("%s/apis/site/v2/sports/%s/teams/%s/schedule", p.baseURL, leaguePath(league), teamID)
	var body scheduleResponse
	found, err := p.get(ctx, url, &body)
	if err != nil || !found {
		return nil, err
	}

	// Results in schedule order; the streak is counted from the tail.
	var results []bool
	for _, event := range body.Events {
		if len(event.Competitions) == 0 {
			continue
		}
		comp := event.Competitions[0]
		if !comp.Status.Type.Completed {
			continue
		}
		if ts, err := time.Parse("2006-01-02T15:04Z", event.Date); err == nil && ts.After(asOf) {
			continue
		}
		for _, c := range comp.Competitors {
			if c.ID == teamID {
				results = append(results, c.Winner)
			}
		}
	}
	if len(results) == 0 {
		return nil, nil
	}

	streaks := &Streaks{}
	lastWon := results[len(results)-1]
	run := 0
	for i := len(results) - 1; i >= 0 && results[i] == lastWon; i-- {
		run++
	}
	if lastWon {
		streaks.WinStreak = run
	} else {
		streaks.LossStreak = run
	}

	wins := 0
	window := results
	if len(window) > 10 {
		window = window[len(window)-10:]
	}
	for _, won := range window {
		if won {
			wins++
		}
	}
	streaks.LastTen = fmt.Sprintf("%d-%d", wins, len(window)-wins)
	return streaks, nil
}

// Coach reads the head coach from the team endpoint.
func (p *ESPNProvider) Coach(ctx context.Context, league, teamID string) (*Coach, error) {
	if teamID == "" {
		return nil, nil
	}
	url := fmt.Sprintf("%s/apis/site/v2/sports/%s/teams/%s?enable=coach", p.baseURL, leaguePath(league), teamID)
	var body teamResponse
	found, err := p.get(ctx, url, &body)
	if err != nil || !found {
		return nil, err
	}
	if len(body.Team.Coach) == 0 {
		return nil, nil
	}
	c := body.Team.Coach[0]
	name := c.FirstName + " " + c.LastName
	if c.FirstName == "" {
		name = c.LastName
	}
	if name == "" || name == " " {
		return nil, nil
	}
	return &Coach{Name: name}, nil
}

type leadersResponse struct {
	Leaders struct {
		Categories []struct {
			Name    string `json:"name"`
			Leaders []struct {
				DisplayValue string `json:"displayValue"`
				Athlete      struct {
					ShortName string `json:"shortName"`
				} `json:"athlete"`
			} `json:"leaders"`
		} `json:"categories"`
	} `json:"leaders"`
}

// Leaders reads the statistical leader lines for a team.
func (p *ESPNProvider) Leaders(ctx context.Context, league, teamID string) (*Leaders, error) {
	if teamID == "" {
		return nil, nil
	}
	url := fmt.Sprintf("%s/apis/site/v2/sports/%s/teams/%s/leaders", p.baseURL, leaguePath(league), teamID)
	var body leadersResponse
	found, err := p.get(ctx, url, &body)
	if err != nil || !found {
		return nil, err
	}

	leaders := &Leaders{}
	for _, cat := range body.Leaders.Categories {
		if len(cat.Leaders) == 0 {
			continue
		}
		top := cat.Leaders[0]
		if top.Athlete.ShortName == "" {
			continue
		}
		leaders.Entries = append(leaders.Entries, Leader{
			Category: cat.Name,
			Name:     top.Athlete.ShortName,
			StatLine: top.DisplayValue,
		})
	}
	if len(leaders.Entries) == 0 {
		return nil, nil
	}
	return leaders, nil
}
