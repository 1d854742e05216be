/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package vars

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teamcast/teamcast/internal/enrich"
	"github.com/teamcast/teamcast/internal/guide/rules"
	"github.com/teamcast/teamcast/internal/models"
)

// Build assembles the variable view and the predicate context for one
// anchor game, seen from the channel team's perspective. The same
// function serves the current, next and last views; callers invoke it
// once per anchor. Score variables only exist once the game is final,
// and every enrichment-backed variable silently stays absent when its
// record is missing.
func Build(game *models.Game, teamID string, facts enrich.Facts, loc *time.Location) (Variables, rules.Context) {
	ctx := rules.Context{
		Flags: make(map[string]bool),
		Nums:  make(map[string]float64),
	}
	if game == nil {
		return Variables{}, ctx
	}
	if loc == nil {
		loc = time.UTC
	}

	team, opponent, home, ok := game.TeamSide(teamID)
	if !ok {
		// Neutral fallback: render from the home side.
		team, opponent, home = game.Home, game.Away, true
	}

	v := Variables{
		"team_name":       team.Name,
		"team_abbrev":     team.Abbrev,
		"team_short":      team.ShortName,
		"opponent_name":   opponent.Name,
		"opponent_abbrev": opponent.Abbrev,
		"opponent_short":  opponent.ShortName,
		"sport":           game.Sport,
		"league":          strings.ToUpper(game.League),
		"venue":           game.Venue,
		"city":            game.City,
		"network":         game.Network,
		"season_type":     game.SeasonType,
	}

	local := game.StartsAt.In(loc)
	v["game_date"] = local.Format("Monday, January 2")
	v["game_time"] = local.Format("3:04 PM")
	v["game_day"] = local.Format("Monday")

	if home {
		v["home_away"] = "Home"
		v["matchup"] = opponent.Name + " at " + team.Name
	} else {
		v["home_away"] = "Away"
		v["matchup"] = team.Name + " at " + opponent.Name
	}

	if team.Record != "" {
		v["team_record"] = team.Record
	}
	if opponent.Record != "" {
		v["opponent_record"] = opponent.Record
	}

	if game.OddsLine != "" {
		v["odds_line"] = game.OddsLine
	}
	if game.OverUnder > 0 {
		v["over_under"] = strconv.FormatFloat(game.OverUnder, 'f', -1, 64)
		ctx.Nums["over_under"] = game.OverUnder
	}

	if game.Final() {
		v["team_score"] = strconv.Itoa(team.Score)
		v["opponent_score"] = strconv.Itoa(opponent.Score)
		v["final_score"] = fmt.Sprintf("%d-%d", team.Score, opponent.Score)
		switch {
		case team.Winner:
			v["result"] = "W"
		case opponent.Winner:
			v["result"] = "L"
		default:
			v["result"] = "T"
		}
	}

	ctx.Flags["is_home"] = home
	ctx.Flags["is_final"] = game.Final()
	ctx.Flags["is_live"] = game.Status == models.GameLive
	ctx.Flags["has_odds"] = game.OddsLine != "" || game.OverUnder > 0
	ctx.Flags["is_division"] = game.IsDivision
	ctx.Flags["is_conference"] = game.IsConference
	ctx.Flags["is_rivalry"] = game.IsRivalry

	applyFacts(v, ctx, facts)

	return v, ctx
}

func applyFacts(v Variables, ctx rules.Context, facts enrich.Facts) {
	if stats := facts.Stats; stats != nil {
		if _, ok := v["team_record"]; !ok {
			v["team_record"] = stats.Record()
		}
		v["win_pct"] = strconv.FormatFloat(stats.WinPct, 'f', 3, 64)
		v["division"] = stats.DivisionName
		v["conference"] = stats.ConferenceName
		if stats.DivisionRank > 0 {
			v["division_place"] = ordinal(stats.DivisionRank)
			ctx.Nums["division_rank"] = float64(stats.DivisionRank)
		}
		if stats.GamesBack > 0 {
			v["games_back"] = strconv.FormatFloat(stats.GamesBack, 'f', -1, 64)
			ctx.Nums["games_back"] = stats.GamesBack
		}
		if stats.PointsPerGame > 0 {
			v["points_per_game"] = strconv.FormatFloat(stats.PointsPerGame, 'f', 1, 64)
		}
		if stats.PointsAllowed > 0 {
			v["points_allowed"] = strconv.FormatFloat(stats.PointsAllowed, 'f', 1, 64)
		}
		ctx.Nums["wins"] = float64(stats.Wins)
		ctx.Nums["losses"] = float64(stats.Losses)
		ctx.Nums["win_pct"] = stats.WinPct
	}

	if opp := facts.Opponent; opp != nil {
		if _, ok := v["opponent_record"]; !ok {
			v["opponent_record"] = opp.Record()
		}
	}

	// Standings can establish division/conference games when the source
	// itself did not flag them.
	if facts.Stats != nil && facts.Opponent != nil {
		if facts.Stats.DivisionName != "" && facts.Stats.DivisionName == facts.Opponent.DivisionName {
			ctx.Flags["is_division"] = true
		}
		if facts.Stats.ConferenceName != "" && facts.Stats.ConferenceName == facts.Opponent.ConferenceName {
			ctx.Flags["is_conference"] = true
		}
	}

	if streaks := facts.Streaks; streaks != nil {
		if streaks.WinStreak > 0 {
			v["win_streak"] = strconv.Itoa(streaks.WinStreak)
		}
		if streaks.LossStreak > 0 {
			v["loss_streak"] = strconv.Itoa(streaks.LossStreak)
		}
		if streaks.LastTen != "" {
			v["last_ten"] = streaks.LastTen
		}
		ctx.Nums["win_streak"] = float64(streaks.WinStreak)
		ctx.Nums["loss_streak"] = float64(streaks.LossStreak)
	}

	if h2h := facts.HeadToHead; h2h != nil {
		if h2h.Ties > 0 {
			v["series_record"] = fmt.Sprintf("%d-%d-%d", h2h.TeamWins, h2h.OpponentWins, h2h.Ties)
		} else {
			v["series_record"] = fmt.Sprintf("%d-%d", h2h.TeamWins, h2h.OpponentWins)
		}
		v["last_meeting"] = h2h.LastMeeting
		ctx.Nums["series_wins"] = float64(h2h.TeamWins)
		ctx.Nums["series_losses"] = float64(h2h.OpponentWins)
	}

	if coach := facts.Coach; coach != nil {
		v["coach"] = coach.Name
	}

	if leaders := facts.Leaders; leaders != nil && len(leaders.Entries) > 0 {
		lines := make([]string, 0, len(leaders.Entries))
		for _, entry := range leaders.Entries {
			lines = append(lines, entry.Name+" "+entry.StatLine)
			v["leader_"+sanitizeKey(entry.Category)] = entry.Name + " " + entry.StatLine
		}
		v["leaders"] = strings.Join(lines, ", ")
	}
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}

func sanitizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('_')
		}
	}
	return b.String()
}
