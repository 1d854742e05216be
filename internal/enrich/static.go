/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package enrich

import (
	"context"
	"time"
)

// StaticProvider serves fixed records keyed by team ID. Used by tests and
// offline generation; any missing key is ordinary absence.
type StaticProvider struct {
	Stats      map[string]*TeamStats
	H2H        map[string]*HeadToHead
	StreakData map[string]*Streaks
	Coaches    map[string]*Coach
	LeaderData map[string]*Leaders
}

func (s *StaticProvider) TeamStats(_ context.Context, _, teamID string, _ time.Time) (*TeamStats, error) {
	return s.Stats[teamID], nil
}

func (s *StaticProvider) HeadToHead(_ context.Context, _, teamID, _ string, _ time.Time) (*HeadToHead, error) {
	return s.H2H[teamID], nil
}

func (s *StaticProvider) Streaks(_ context.Context, _, teamID string, _ time.Time) (*Streaks, error) {
	return s.StreakData[teamID], nil
}

func (s *StaticProvider) Coach(_ context.Context, _, teamID string) (*Coach, error) {
	return s.Coaches[teamID], nil
}

func (s *StaticProvider) Leaders(_ context.Context, _, teamID string) (*Leaders, error) {
	return s.LeaderData[teamID], nil
}
