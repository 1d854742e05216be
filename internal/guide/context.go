/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package guide

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/teamcast/teamcast/internal/enrich"
	"github.com/teamcast/teamcast/internal/guide/rules"
	"github.com/teamcast/teamcast/internal/guide/vars"
	"github.com/teamcast/teamcast/internal/models"
)

// eventContext carries one game's variable view, predicate context and
// on-air placement. The set field is the three-view bundle used when
// this game anchors a programme.
type eventContext struct {
	game    *models.Game
	vars    vars.Variables
	ruleCtx rules.Context
	set     vars.ContextSet

	onAir  span   // scheduled interval before clamping
	chunks []span // clamped chunks actually on the timeline
}

// gameStart returns the scheduled start, the pregame anchor.
func (e *eventContext) gameStart() time.Time { return e.game.StartsAt }

// airEnd returns the effective end of the game on the timeline, the
// postgame anchor. Falls back to the scheduled end when every chunk was
// clipped away.
func (e *eventContext) airEnd() time.Time {
	if len(e.chunks) > 0 {
		return e.chunks[len(e.chunks)-1].end
	}
	return e.onAir.end
}

// buildEventContexts sorts games chronologically and builds each game's
// three-view context. Event processing is strictly sequential within a
// channel: the next/last views need the stable sorted neighbor list.
// Enrichment lookups fan out per fact inside Gather and are joined
// before any view is assembled; a missing fact degrades to absent
// variables.
func buildEventContexts(ctx context.Context, provider enrich.Provider, logger zerolog.Logger, channel *models.Channel, games []models.Game, loc *time.Location) []*eventContext {
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].StartsAt.Before(games[j].StartsAt)
	})

	contexts := make([]*eventContext, len(games))
	for i := range games {
		game := &games[i]
		_, opponent, _, _ := game.TeamSide(channel.TeamID)
		facts := enrich.Gather(ctx, provider, logger, channel.League, channel.TeamID, opponent.ID, game.StartsAt)
		variables, ruleCtx := vars.Build(game, channel.TeamID, facts, loc)
		contexts[i] = &eventContext{
			game:    game,
			vars:    variables,
			ruleCtx: ruleCtx,
		}
	}

	// Second pass wires the temporal neighbors.
	for i, ec := range contexts {
		ec.set = vars.ContextSet{Current: ec.vars}
		if i > 0 {
			ec.set.Last = contexts[i-1].vars
		}
		if i+1 < len(contexts) {
			ec.set.Next = contexts[i+1].vars
		}
	}

	return contexts
}
