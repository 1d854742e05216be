/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package enrich supplies optional per-team context records (standings,
// head-to-head, streaks, coach, statistical leaders). Absence of any
// record is a normal outcome, never an error: callers render whatever is
// available and omit the rest.
package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// TeamStats is a standings snapshot for one team.
type TeamStats struct {
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	Ties           int     `json:"ties"`
	WinPct         float64 `json:"win_pct"`
	GamesBack      float64 `json:"games_back"`
	DivisionRank   int     `json:"division_rank"`
	DivisionName   string  `json:"division_name,omitempty"`
	ConferenceRank int     `json:"conference_rank"`
	ConferenceName string  `json:"conference_name,omitempty"`
	PointsPerGame  float64 `json:"points_per_game"`
	PointsAllowed  float64 `json:"points_allowed"`
}

// Record renders the standings as "W-L" or "W-L-T".
func (s *TeamStats) Record() string {
	if s == nil {
		return ""
	}
	if s.Ties > 0 {
		return fmt.Sprintf("%d-%d-%d", s.Wins, s.Losses, s.Ties)
	}
	return fmt.Sprintf("%d-%d", s.Wins, s.Losses)
}

// HeadToHead summarizes the season series against one opponent.
type HeadToHead struct {
	TeamWins     int    `json:"team_wins"`
	OpponentWins int    `json:"opponent_wins"`
	Ties         int    `json:"ties"`
	LastMeeting  string `json:"last_meeting,omitempty"`
}

// Streaks carries current run-of-results figures.
type Streaks struct {
	WinStreak  int    `json:"win_streak"`
	LossStreak int    `json:"loss_streak"`
	LastTen    string `json:"last_ten,omitempty"`
}

// Coach identifies the head coach.
type Coach struct {
	Name         string `json:"name"`
	SeasonRecord string `json:"season_record,omitempty"`
}

// Leader is one statistical leader line, e.g. category "passing",
// name "P. Mahomes", stat line "4,183 YDS".
type Leader struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	StatLine string `json:"stat_line"`
}

// Leaders groups the leader lines for a team.
type Leaders struct {
	Entries []Leader `json:"entries"`
}

// Facts aggregates every enrichment record available for one anchor
// event. Any field may be nil.
type Facts struct {
	Stats      *TeamStats
	Opponent   *TeamStats
	HeadToHead *HeadToHead
	Streaks    *Streaks
	Coach      *Coach
	Leaders    *Leaders
}

// Provider fetches enrichment records. Implementations return (nil, nil)
// when a record simply does not exist; errors are reserved for transport
// failures, and callers degrade those to absence as well.
type Provider interface {
	TeamStats(ctx context.Context, league, teamID string, asOf time.Time) (*TeamStats, error)
	HeadToHead(ctx context.Context, league, teamID, opponentID string, asOf time.Time) (*HeadToHead, error)
	Streaks(ctx context.Context, league, teamID string, asOf time.Time) (*Streaks, error)
	Coach(ctx context.Context, league, teamID string) (*Coach, error)
	Leaders(ctx context.Context, league, teamID string) (*Leaders, error)
}

// Gather fans the per-fact lookups out concurrently and joins them all
// before returning. A failed or missing lookup leaves its field nil.
func Gather(ctx context.Context, p Provider, logger zerolog.Logger, league, teamID, opponentID string, asOf time.Time) Facts {
	var facts Facts
	if p == nil {
		return facts
	}

	degrade := func(what string, err error) {
		if err != nil {
			logger.Debug().Err(err).Str("fact", what).Str("team", teamID).Msg("enrichment unavailable")
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := p.TeamStats(gctx, league, teamID, asOf)
		degrade("team_stats", err)
		facts.Stats = stats
		return nil
	})
	g.Go(func() error {
		stats, err := p.TeamStats(gctx, league, opponentID, asOf)
		degrade("opponent_stats", err)
		facts.Opponent = stats
		return nil
	})
	g.Go(func() error {
		h2h, err := p.HeadToHead(gctx, league, teamID, opponentID, asOf)
		degrade("head_to_head", err)
		facts.HeadToHead = h2h
		return nil
	})
	g.Go(func() error {
		streaks, err := p.Streaks(gctx, league, teamID, asOf)
		degrade("streaks", err)
		facts.Streaks = streaks
		return nil
	})
	g.Go(func() error {
		coach, err := p.Coach(gctx, league, teamID)
		degrade("coach", err)
		facts.Coach = coach
		return nil
	})
	g.Go(func() error {
		leaders, err := p.Leaders(gctx, league, teamID)
		degrade("leaders", err)
		facts.Leaders = leaders
		return nil
	})
	_ = g.Wait()

	return facts
}
