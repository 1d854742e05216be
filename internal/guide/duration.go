/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package guide

import (
	"time"

	"github.com/teamcast/teamcast/internal/models"
)

// ResolveDuration computes a game's on-air duration from the template's
// duration mode. Sport mode looks the sport up in the per-sport table
// and falls back to the global default for unmapped sports; default mode
// ignores the sport entirely; custom mode uses the template override
// verbatim, fractional hours included.
func ResolveDuration(game *models.Game, tmpl *models.Template, settings Settings) time.Duration {
	hours := settings.DefaultDurationHours
	if hours <= 0 {
		hours = 3
	}

	switch tmpl.DurationMode {
	case models.DurationCustom:
		if tmpl.CustomHours > 0 {
			hours = tmpl.CustomHours
		}
	case models.DurationSport:
		if v, ok := settings.SportDurations[game.Sport]; ok && v > 0 {
			hours = v
		}
	case models.DurationDefault, "":
		// global default as-is
	}

	return time.Duration(hours * float64(time.Hour))
}

// span is a half-open [start, end) interval.
type span struct {
	start time.Time
	end   time.Time
}

func (s span) empty() bool { return !s.start.Before(s.end) }

// splitInterval partitions [start, end) at the maximum-program-length
// edges and, under the split midnight policy, at local day boundaries.
// The returned chunks are contiguous and cover the input exactly.
func splitInterval(start, end time.Time, settings Settings, loc *time.Location) []span {
	if !start.Before(end) {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	var maxLen time.Duration
	if settings.MaxProgramHours > 0 {
		maxLen = time.Duration(settings.MaxProgramHours * float64(time.Hour))
	}
	splitDays := settings.MidnightCrossover == MidnightSplit

	var chunks []span
	cursor := start
	for cursor.Before(end) {
		next := end
		if maxLen > 0 && cursor.Add(maxLen).Before(next) {
			next = cursor.Add(maxLen)
		}
		if splitDays {
			if midnight := nextMidnight(cursor, loc); midnight.Before(next) {
				next = midnight
			}
		}
		chunks = append(chunks, span{start: cursor, end: next})
		cursor = next
	}
	return chunks
}

// nextMidnight returns the first local day boundary strictly after t.
func nextMidnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
}
