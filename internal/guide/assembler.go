/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package guide

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/teamcast/teamcast/internal/cache"
	"github.com/teamcast/teamcast/internal/enrich"
	"github.com/teamcast/teamcast/internal/events"
	"github.com/teamcast/teamcast/internal/guide/rules"
	"github.com/teamcast/teamcast/internal/guide/vars"
	"github.com/teamcast/teamcast/internal/models"
	"github.com/teamcast/teamcast/internal/source"
	"github.com/teamcast/teamcast/internal/telemetry"
)

// Service generates guide timelines for every channel. Channels are
// processed concurrently under a bounded pool; within one channel the
// games are handled strictly in chronological order.
type Service struct {
	db       *gorm.DB
	source   source.Source
	provider enrich.Provider
	selector *rules.Selector
	settings Settings
	logger   zerolog.Logger
	bus      *events.Bus
	cache    *cache.Cache

	now func() time.Time

	mu     sync.RWMutex
	latest *RunResult

	warnedTZ sync.Map
}

func New(db *gorm.DB, src source.Source, provider enrich.Provider, selector *rules.Selector, settings Settings, logger zerolog.Logger) *Service {
	if selector == nil {
		selector = rules.NewSelector(nil)
	}
	return &Service{
		db:       db,
		source:   src,
		provider: provider,
		selector: selector,
		settings: settings,
		logger:   logger.With().Str("component", "guide").Logger(),
		now:      time.Now,
	}
}

// SetBus wires the event bus for run notifications.
func (s *Service) SetBus(bus *events.Bus) { s.bus = bus }

// SetCache wires the shared cache for channel lists and event windows.
func (s *Service) SetCache(c *cache.Cache) { s.cache = c }

// Latest returns the most recent run result, nil before the first run.
func (s *Service) Latest() *RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Run regenerates on the refresh interval until ctx is cancelled. The
// first run starts immediately.
func (s *Service) Run(ctx context.Context) {
	interval := s.settings.RefreshInterval
	if interval <= 0 {
		interval = time.Hour
	}
	s.logger.Info().Dur("interval", interval).Msg("guide refresh loop started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.GenerateAll(ctx); err != nil {
			s.logger.Error().Err(err).Msg("guide run failed")
		}
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("guide refresh loop stopped")
			return
		case <-ticker.C:
		}
	}
}

// GenerateAll builds timelines for every channel. A failing channel
// never aborts the run; its outcome records the failure and the other
// channels keep their results. The error return covers only the channel
// list load.
func (s *Service) GenerateAll(ctx context.Context) (*RunResult, error) {
	ctx, span := otel.Tracer("guide").Start(ctx, "guide.generate_all")
	defer span.End()
	started := s.now()
	telemetry.GuideRunsTotal.Inc()
	if s.bus != nil {
		s.bus.Publish(events.EventGuideRunStarted, events.Payload{"started_at": started})
	}

	channels, err := s.loadChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("load channels: %w", err)
	}
	span.SetAttributes(attribute.Int("channels", len(channels)))

	workers := s.settings.Workers
	if workers <= 0 {
		workers = 4
	}

	outcomes := make([]Outcome, len(channels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range channels {
		i := i
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.settings.ChannelBudget())
			defer cancel()
			outcomes[i] = s.Generate(cctx, &channels[i])
			return nil
		})
	}
	g.Wait()

	result := &RunResult{GeneratedAt: started, Outcomes: outcomes}
	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()

	var programmes int
	for _, o := range outcomes {
		telemetry.GuideChannelOutcomes.WithLabelValues(string(o.Status)).Inc()
		programmes += len(o.Programmes)
	}
	telemetry.GuideProgrammesTotal.Set(float64(programmes))
	telemetry.GuideBuildDuration.Observe(time.Since(started).Seconds())

	if s.bus != nil {
		s.bus.Publish(events.EventGuideRunCompleted, events.Payload{
			"channels":   len(channels),
			"programmes": programmes,
		})
	}

	s.logger.Info().
		Int("channels", len(channels)).
		Int("programmes", programmes).
		Dur("took", time.Since(started)).
		Msg("guide run completed")
	return result, nil
}

// Generate builds one channel's timeline. Every failure is contained in
// the returned outcome.
func (s *Service) Generate(ctx context.Context, channel *models.Channel) Outcome {
	outcome := Outcome{ChannelID: channel.ID, ChannelName: channel.Name}
	logger := s.logger.With().Str("channel", channel.Name).Logger()

	if channel.Template == nil {
		outcome.Status = StatusSkipped
		outcome.Reason = "no template assigned"
		logger.Debug().Msg("channel skipped, no template")
		return outcome
	}
	tmpl := channel.Template
	if tmpl.TitleFormat == "" {
		outcome.Status = StatusFailed
		outcome.Reason = fmt.Errorf("%w: empty title format", ErrConfiguration).Error()
		return outcome
	}

	loc := s.location(channel)
	horizonHours := s.settings.HorizonHours
	if horizonHours <= 0 {
		horizonHours = 72
	}
	horizonStart := s.now().Truncate(time.Hour)
	horizon := span{start: horizonStart, end: horizonStart.Add(time.Duration(horizonHours) * time.Hour)}

	compiledRules, err := rules.Compile(tmpl.Rules)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Reason = fmt.Errorf("%w: description rules: %v", ErrConfiguration, err).Error()
		return outcome
	}
	filler, err := compileFiller(tmpl)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		return outcome
	}

	games, err := s.fetchGames(ctx, channel, horizon)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		logger.Warn().Err(err).Msg("channel generation failed")
		return outcome
	}

	var programmes []Programme
	if len(games) == 0 {
		programmes = filler.fillOffseason(horizon, channel, s.settings, loc)
	} else {
		contexts := buildEventContexts(ctx, s.provider, logger, channel, games, loc)
		s.placeGames(contexts, tmpl, horizon, loc)
		programmes = s.assemble(contexts, compiledRules, filler, tmpl, channel, horizon, loc)
	}

	if err := validateTimeline(programmes, horizon.start, horizon.end); err != nil {
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		logger.Error().Err(err).Msg("timeline rejected")
		return outcome
	}

	outcome.Status = StatusSucceeded
	outcome.Programmes = programmes
	logger.Debug().Int("programmes", len(programmes)).Msg("channel generated")
	return outcome
}

// placeGames computes each game's on-air span and its clamped chunks.
// A game's air time is cut at the next game's scheduled start and
// clipped to the horizon; a game clipped away entirely keeps serving as
// a neighbor view for variable resolution.
func (s *Service) placeGames(contexts []*eventContext, tmpl *models.Template, horizon span, loc *time.Location) {
	for i, ec := range contexts {
		start := ec.game.StartsAt
		end := start.Add(ResolveDuration(ec.game, tmpl, s.settings))
		if i+1 < len(contexts) && contexts[i+1].game.StartsAt.Before(end) {
			end = contexts[i+1].game.StartsAt
		}
		ec.onAir = span{start: start, end: end}

		clipped := span{start: maxTime(start, horizon.start), end: minTime(end, horizon.end)}
		if clipped.empty() {
			continue
		}
		ec.chunks = splitInterval(clipped.start, clipped.end, s.settings, loc)
	}
}

// assemble renders game programmes, fills every open region, and returns
// the sorted full-horizon sequence.
func (s *Service) assemble(contexts []*eventContext, compiledRules []rules.CompiledRule, filler *compiledFiller, tmpl *models.Template, channel *models.Channel, horizon span, loc *time.Location) []Programme {
	var programmes []Programme

	for _, ec := range contexts {
		programmes = append(programmes, s.gameProgrammes(ec, compiledRules, tmpl, channel)...)
	}

	// Open regions between consecutive on-air blocks, plus the head and
	// tail of the horizon.
	aired := make([]*eventContext, 0, len(contexts))
	for _, ec := range contexts {
		if len(ec.chunks) > 0 {
			aired = append(aired, ec)
		}
	}

	if len(aired) == 0 {
		programmes = append(programmes, filler.fillOffseason(horizon, channel, s.settings, loc)...)
	} else {
		head := span{start: horizon.start, end: aired[0].chunks[0].start}
		programmes = append(programmes, filler.fillRegion(head, nil, aired[0], s.selector, channel, s.settings, loc)...)

		for i := 0; i+1 < len(aired); i++ {
			between := span{start: aired[i].airEnd(), end: aired[i+1].chunks[0].start}
			programmes = append(programmes, filler.fillRegion(between, aired[i], aired[i+1], s.selector, channel, s.settings, loc)...)
		}

		last := aired[len(aired)-1]
		tail := span{start: last.airEnd(), end: horizon.end}
		programmes = append(programmes, filler.fillRegion(tail, last, nil, s.selector, channel, s.settings, loc)...)
	}

	sort.SliceStable(programmes, func(i, j int) bool {
		return programmes[i].Start.Before(programmes[j].Start)
	})
	return programmes
}

// gameProgrammes renders one game's chunks. Titles and descriptions are
// re-resolved per chunk only when the format actually references the
// chunk counters.
func (s *Service) gameProgrammes(ec *eventContext, compiledRules []rules.CompiledRule, tmpl *models.Template, channel *models.Channel) []Programme {
	if len(ec.chunks) == 0 {
		return nil
	}

	desc := s.selector.Description(compiledRules, ec.ruleCtx)
	perChunk := vars.References(tmpl.TitleFormat, "chunk_num", "chunk_count") ||
		vars.References(tmpl.SubtitleFormat, "chunk_num", "chunk_count") ||
		vars.References(desc, "chunk_num", "chunk_count")

	title := vars.Resolve(tmpl.TitleFormat, ec.set)
	subtitle := vars.Resolve(tmpl.SubtitleFormat, ec.set)
	description := vars.Resolve(desc, ec.set)

	programmes := make([]Programme, 0, len(ec.chunks))
	for i, chunk := range ec.chunks {
		p := Programme{
			ChannelID:   channel.ID,
			Start:       chunk.start,
			End:         chunk.end,
			Title:       title,
			Subtitle:    subtitle,
			Description: description,
			ArtURL:      channel.LogoURL,
			Categories:  tmpl.Categories,
			Kind:        KindGame,
			GameID:      ec.game.ID,
			Live:        tmpl.MarkLive && !ec.game.Final(),
			New:         tmpl.MarkNew && i == 0,
		}
		if perChunk {
			set := ec.set
			chunked := make(vars.Variables, len(set.Current)+2)
			for k, v := range set.Current {
				chunked[k] = v
			}
			chunked["chunk_num"] = strconv.Itoa(i + 1)
			chunked["chunk_count"] = strconv.Itoa(len(ec.chunks))
			set.Current = chunked
			p.Title = vars.Resolve(tmpl.TitleFormat, set)
			p.Subtitle = vars.Resolve(tmpl.SubtitleFormat, set)
			p.Description = vars.Resolve(desc, set)
		}
		programmes = append(programmes, p)
	}
	return programmes
}

// fetchGames pulls the channel's events with bounded retries. Each
// attempt gets the configured timeout; exhaustion surfaces as a source
// availability failure.
func (s *Service) fetchGames(ctx context.Context, channel *models.Channel, horizon span) ([]models.Game, error) {
	timeout := s.settings.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	attempts := s.settings.FetchRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			telemetry.EventFetchRetriesTotal.Inc()
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, ctx.Err())
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
		actx, cancel := context.WithTimeout(ctx, timeout)
		games, err := s.source.Events(actx, channel.League, channel.TeamID, horizon.start, horizon.end)
		cancel()
		if err == nil {
			return games, nil
		}
		lastErr = err
		s.logger.Debug().Err(err).Str("channel", channel.Name).Int("attempt", attempt+1).Msg("event fetch failed")
	}
	return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, lastErr)
}

func (s *Service) loadChannels(ctx context.Context) ([]models.Channel, error) {
	if s.cache != nil {
		if channels, ok := s.cache.Channels(ctx); ok {
			return channels, nil
		}
	}
	var channels []models.Channel
	if err := s.db.WithContext(ctx).Preload("Template").Order("number").Find(&channels).Error; err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.StoreChannels(ctx, channels)
	}
	return channels, nil
}

// location resolves the channel's timezone, falling back to the global
// one and finally UTC. Bad zones are warned about once per zone name.
func (s *Service) location(channel *models.Channel) *time.Location {
	for _, name := range []string{channel.Timezone, s.settings.Timezone} {
		if name == "" {
			continue
		}
		loc, err := time.LoadLocation(name)
		if err == nil {
			return loc
		}
		if _, warned := s.warnedTZ.LoadOrStore(name, true); !warned {
			s.logger.Warn().Str("timezone", name).Msg("unknown timezone, using UTC")
		}
	}
	return time.UTC
}
