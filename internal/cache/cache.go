/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache is a Redis-backed read-through layer for channel lists,
// fetched event windows and the rendered guide document. Every miss and
// every Redis error degrades to a plain miss; the generator never
// depends on the cache being up.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/teamcast/teamcast/internal/models"
)

const (
	keyChannels = "teamcast:channels"
	keyGuide    = "teamcast:guide:xml"
	keyEvents   = "teamcast:events:%s:%s:%d:%d"
)

type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// New wraps rdb. ttl bounds every entry; a non-positive ttl gets five
// minutes.
func New(rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With().Str("component", "cache").Logger(),
	}
}

// Ping verifies the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) get(ctx context.Context, key string, out any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache entry corrupt")
		return false
	}
	return true
}

func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Channels returns the cached channel list.
func (c *Cache) Channels(ctx context.Context) ([]models.Channel, bool) {
	var channels []models.Channel
	if !c.get(ctx, keyChannels, &channels) {
		return nil, false
	}
	return channels, true
}

func (c *Cache) StoreChannels(ctx context.Context, channels []models.Channel) {
	c.set(ctx, keyChannels, channels, c.ttl)
}

// InvalidateChannels drops the channel list after a mutation.
func (c *Cache) InvalidateChannels(ctx context.Context) {
	if err := c.rdb.Del(ctx, keyChannels).Err(); err != nil {
		c.logger.Debug().Err(err).Msg("channel invalidation failed")
	}
}

func eventKey(league, teamID string, from, to time.Time) string {
	return fmt.Sprintf(keyEvents, league, teamID, from.Unix(), to.Unix())
}

// Events returns a cached event window.
func (c *Cache) Events(ctx context.Context, league, teamID string, from, to time.Time) ([]models.Game, bool) {
	var games []models.Game
	if !c.get(ctx, eventKey(league, teamID, from, to), &games) {
		return nil, false
	}
	return games, true
}

func (c *Cache) StoreEvents(ctx context.Context, league, teamID string, from, to time.Time, games []models.Game) {
	c.set(ctx, eventKey(league, teamID, from, to), games, c.ttl)
}

// Guide returns the rendered guide document.
func (c *Cache) Guide(ctx context.Context) ([]byte, bool) {
	raw, err := c.rdb.Get(ctx, keyGuide).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug().Err(err).Msg("guide cache read failed")
		}
		return nil, false
	}
	return raw, true
}

func (c *Cache) StoreGuide(ctx context.Context, xml []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	if err := c.rdb.Set(ctx, keyGuide, xml, ttl).Err(); err != nil {
		c.logger.Debug().Err(err).Msg("guide cache write failed")
	}
}

// InvalidateGuide drops the rendered document after a run.
func (c *Cache) InvalidateGuide(ctx context.Context) {
	if err := c.rdb.Del(ctx, keyGuide).Err(); err != nil {
		c.logger.Debug().Err(err).Msg("guide invalidation failed")
	}
}
