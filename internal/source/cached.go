/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package source

import (
	"context"
	"time"

	"github.com/teamcast/teamcast/internal/cache"
	"github.com/teamcast/teamcast/internal/models"
)

// Cached wraps a Source with a read-through event-window cache so a run
// across many channels of the same team hits the upstream API once.
type Cached struct {
	inner Source
	cache *cache.Cache
}

func NewCached(inner Source, c *cache.Cache) *Cached {
	return &Cached{inner: inner, cache: c}
}

func (s *Cached) Events(ctx context.Context, league, teamID string, from, to time.Time) ([]models.Game, error) {
	if games, ok := s.cache.Events(ctx, league, teamID, from, to); ok {
		return games, nil
	}
	games, err := s.inner.Events(ctx, league, teamID, from, to)
	if err != nil {
		return nil, err
	}
	s.cache.StoreEvents(ctx, league, teamID, from, to, games)
	return games, nil
}
