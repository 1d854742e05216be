/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package guide

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teamcast/teamcast/internal/guide/rules"
	"github.com/teamcast/teamcast/internal/guide/vars"
	"github.com/teamcast/teamcast/internal/models"
)

// fillerPhase bundles one phase's configuration with its compiled rules.
type fillerPhase struct {
	cfg      models.FillerConfig
	compiled []rules.CompiledRule
	kind     ProgrammeKind
}

// compiledFiller holds the three filler phases of one template, compiled
// once per channel generation.
type compiledFiller struct {
	pregame  fillerPhase
	postgame fillerPhase
	idle     fillerPhase
}

func compileFiller(tmpl *models.Template) (*compiledFiller, error) {
	f := &compiledFiller{
		pregame:  fillerPhase{cfg: tmpl.Pregame, kind: KindPregame},
		postgame: fillerPhase{cfg: tmpl.Postgame, kind: KindPostgame},
		idle:     fillerPhase{cfg: tmpl.Idle, kind: KindIdle},
	}
	for _, phase := range []*fillerPhase{&f.pregame, &f.postgame, &f.idle} {
		compiled, err := rules.Compile(phase.cfg.Rules)
		if err != nil {
			return nil, fmt.Errorf("%w: %s rules: %v", ErrConfiguration, phase.kind, err)
		}
		phase.compiled = compiled
	}
	return f, nil
}

// carver tracks the still-uncovered sub-spans of one open region.
// Carving claims the intersection of a window with the free list, so
// earlier claims always win and nothing is ever covered twice.
type carver struct {
	free []span
}

func newCarver(region span) *carver {
	return &carver{free: []span{region}}
}

func (c *carver) carve(window span) []span {
	if window.empty() {
		return nil
	}
	var claimed []span
	var remaining []span
	for _, f := range c.free {
		start := maxTime(f.start, window.start)
		end := minTime(f.end, window.end)
		if !start.Before(end) {
			remaining = append(remaining, f)
			continue
		}
		claimed = append(claimed, span{start: start, end: end})
		if f.start.Before(start) {
			remaining = append(remaining, span{start: f.start, end: start})
		}
		if end.Before(f.end) {
			remaining = append(remaining, span{start: end, end: f.end})
		}
	}
	c.free = remaining
	return claimed
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// fillRegion covers one open region exactly once. Postgame periods of
// the previous game claim first, then the next game's pregame periods,
// then the previous game's idle periods; within a phase the declared
// order wins. Whatever stays free becomes idle fallback time, so the
// region is always fully covered on return.
func (f *compiledFiller) fillRegion(region span, prev, next *eventContext, sel *rules.Selector, channel *models.Channel, settings Settings, loc *time.Location) []Programme {
	if region.empty() {
		return nil
	}

	c := newCarver(region)
	var programmes []Programme

	if prev != nil {
		anchor := prev.airEnd()
		for _, period := range f.postgame.cfg.Periods {
			window := forwardWindow(anchor, period)
			for _, claimed := range c.carve(window) {
				programmes = append(programmes, f.periodProgrammes(&f.postgame, period, claimed, prev, channel, sel, settings, loc)...)
			}
		}
	}

	if next != nil {
		anchor := next.gameStart()
		for _, period := range f.pregame.cfg.Periods {
			window := backwardWindow(anchor, period)
			for _, claimed := range c.carve(window) {
				programmes = append(programmes, f.periodProgrammes(&f.pregame, period, claimed, next, channel, sel, settings, loc)...)
			}
		}
	}

	if prev != nil {
		anchor := prev.airEnd()
		for _, period := range f.idle.cfg.Periods {
			window := forwardWindow(anchor, period)
			for _, claimed := range c.carve(window) {
				programmes = append(programmes, f.periodProgrammes(&f.idle, period, claimed, prev, channel, sel, settings, loc)...)
			}
		}
	}

	for _, remainder := range c.free {
		programmes = append(programmes, f.idleFallback(remainder, prev, next, sel, channel, settings, loc)...)
	}

	sort.SliceStable(programmes, func(i, j int) bool {
		return programmes[i].Start.Before(programmes[j].Start)
	})
	return programmes
}

// fillOffseason covers a horizon with zero games. Periods, rules and
// conditional fallbacks are skipped; only the offseason fallback, or the
// idle terminal fallback when none is set, fills the span.
func (f *compiledFiller) fillOffseason(horizon span, channel *models.Channel, settings Settings, loc *time.Location) []Programme {
	fb := f.idle.cfg.Fallback
	if f.idle.cfg.Offseason != nil {
		fb = *f.idle.cfg.Offseason
	}

	set := channelVars(channel)
	title := vars.Resolve(fb.Title, set)
	if title == "" {
		title = channel.Name
	}
	desc := vars.Resolve(fb.Description, set)

	var programmes []Programme
	for _, chunk := range splitInterval(horizon.start, horizon.end, settings, loc) {
		programmes = append(programmes, Programme{
			ChannelID:   channel.ID,
			Start:       chunk.start,
			End:         chunk.end,
			Title:       title,
			Description: desc,
			Kind:        KindIdle,
		})
	}
	return programmes
}

// forwardWindow anchors a period after the anchor instant.
func forwardWindow(anchor time.Time, p models.Period) span {
	return span{
		start: anchor.Add(hoursDuration(p.StartOffsetHours)),
		end:   anchor.Add(hoursDuration(p.EndOffsetHours)),
	}
}

// backwardWindow anchors a period before the anchor instant. Offsets
// count back from the anchor, so the start offset is the larger one.
func backwardWindow(anchor time.Time, p models.Period) span {
	return span{
		start: anchor.Add(-hoursDuration(p.StartOffsetHours)),
		end:   anchor.Add(-hoursDuration(p.EndOffsetHours)),
	}
}

func hoursDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}

// periodProgrammes renders one claimed span for a period, chunked at the
// usual boundaries. The anchor game's variable views drive resolution.
func (f *compiledFiller) periodProgrammes(phase *fillerPhase, period models.Period, claimed span, anchor *eventContext, channel *models.Channel, sel *rules.Selector, settings Settings, loc *time.Location) []Programme {
	set := anchor.set
	title := vars.Resolve(period.Title, set)
	if title == "" {
		title = vars.Resolve(phase.cfg.Fallback.Title, set)
	}
	if title == "" {
		title = channel.Name
	}

	desc := vars.Resolve(period.Description, set)
	if desc == "" && len(phase.compiled) > 0 {
		desc = vars.Resolve(sel.Description(phase.compiled, anchor.ruleCtx), set)
	}
	if desc == "" {
		desc = vars.Resolve(phase.cfg.Fallback.Description, set)
	}

	var programmes []Programme
	for _, chunk := range splitInterval(claimed.start, claimed.end, settings, loc) {
		programmes = append(programmes, Programme{
			ChannelID:   channel.ID,
			Start:       chunk.start,
			End:         chunk.end,
			Title:       title,
			Description: desc,
			Kind:        phase.kind,
		})
	}
	return programmes
}

// idleFallback covers free time no period claimed. The conditional
// fallback, when configured, branches on whether the adjacent game has
// gone final; the previous game is the adjacent one except at the head
// of the horizon. Idle rules get a chance before the terminal pair.
func (f *compiledFiller) idleFallback(remainder span, prev, next *eventContext, sel *rules.Selector, channel *models.Channel, settings Settings, loc *time.Location) []Programme {
	adjacent := prev
	if adjacent == nil {
		adjacent = next
	}

	fb := f.idle.cfg.Fallback
	if cond := f.idle.cfg.Conditional; cond != nil && adjacent != nil {
		if adjacent.game.Final() {
			fb = cond.Final
		} else {
			fb = cond.NotFinal
		}
	}

	set := channelVars(channel)
	ctx := rules.Context{}
	if adjacent != nil {
		set = adjacent.set
		ctx = adjacent.ruleCtx
	}

	title := vars.Resolve(fb.Title, set)
	if title == "" {
		title = channel.Name
	}
	desc := ""
	if len(f.idle.compiled) > 0 && adjacent != nil {
		desc = vars.Resolve(sel.Description(f.idle.compiled, ctx), set)
	}
	if desc == "" {
		desc = vars.Resolve(fb.Description, set)
	}

	var programmes []Programme
	for _, chunk := range splitInterval(remainder.start, remainder.end, settings, loc) {
		programmes = append(programmes, Programme{
			ChannelID:   channel.ID,
			Start:       chunk.start,
			End:         chunk.end,
			Title:       title,
			Description: desc,
			Kind:        KindIdle,
		})
	}
	return programmes
}

// channelVars is the minimal variable view available when no game
// anchors the text, offseason spans included.
func channelVars(ch *models.Channel) vars.ContextSet {
	return vars.ContextSet{Current: vars.Variables{
		"team_name":    ch.TeamName,
		"team_abbrev":  ch.TeamAbbrev,
		"league":       strings.ToUpper(ch.League),
		"sport":        ch.Sport,
		"channel_name": ch.Name,
	}}
}
