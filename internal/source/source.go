/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package source fetches scheduled and completed games for a team.
package source

import (
	"context"
	"time"

	"github.com/teamcast/teamcast/internal/models"
)

// Source yields a team's games inside the half-open window [from, to).
// Implementations return the games in no particular order; callers sort.
type Source interface {
	Events(ctx context.Context, league, teamID string, from, to time.Time) ([]models.Game, error)
}
