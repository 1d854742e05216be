/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/teamcast/teamcast/internal/cache"
	"github.com/teamcast/teamcast/internal/config"
	"github.com/teamcast/teamcast/internal/db"
	"github.com/teamcast/teamcast/internal/enrich"
	"github.com/teamcast/teamcast/internal/events"
	"github.com/teamcast/teamcast/internal/guide"
	"github.com/teamcast/teamcast/internal/guide/rules"
	"github.com/teamcast/teamcast/internal/source"
	"github.com/teamcast/teamcast/internal/telemetry"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error

	db    *gorm.DB
	cache *cache.Cache
	guide *guide.Service
	bus   *events.Bus

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware("teamcast-api"))
	router.Use(telemetry.MetricsMiddleware)
	router.Use(middleware.Timeout(60 * time.Second))

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
		bus:    events.NewBus(),
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()
	srv.startBackgroundWorkers()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return srv, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Frame-Options", "DENY")
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies() error {
	database, err := db.Connect(s.cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(database); err != nil {
		return err
	}
	s.db = database
	s.DeferClose(func() error { return db.Close(database) })

	if s.cfg.RedisEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     s.cfg.RedisAddr,
			Password: s.cfg.RedisPassword,
			DB:       s.cfg.RedisDB,
		})
		entityCache := cache.New(rdb, s.cfg.CacheTTL, s.logger)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := entityCache.Ping(pingCtx)
		cancel()
		if err != nil {
			s.logger.Warn().Err(err).Msg("cache initialization failed, continuing without cache")
		} else {
			s.cache = entityCache
			s.DeferClose(rdb.Close)
		}
	}

	var eventSource source.Source = source.NewESPNClient(s.cfg.ESPNBaseURL, s.cfg.FetchTimeout, s.logger)
	if s.cache != nil {
		eventSource = source.NewCached(eventSource, s.cache)
	}
	provider := enrich.NewESPNProvider(s.cfg.ESPNBaseURL, s.cfg.FetchTimeout, s.logger)

	s.guide = guide.New(s.db, eventSource, provider, rules.NewSelector(nil), s.cfg.GuideSettings(), s.logger)
	s.guide.SetBus(s.bus)
	if s.cache != nil {
		s.guide.SetCache(s.cache)
	}

	return nil
}

// startBackgroundWorkers launches the refresh loop and the cache
// invalidation listener.
func (s *Server) startBackgroundWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.guide.Run(ctx)
	}()

	if s.cache != nil {
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			s.invalidationLoop(ctx)
		}()
	}
}

// invalidationLoop drops stale cache entries on mutation and run events.
func (s *Server) invalidationLoop(ctx context.Context) {
	channelEvents := []events.EventType{
		events.EventChannelCreated, events.EventChannelUpdated, events.EventChannelDeleted,
		events.EventTemplateCreated, events.EventTemplateUpdated, events.EventTemplateDeleted,
	}
	subs := make([]events.Subscriber, 0, len(channelEvents)+1)
	cases := make([]events.EventType, 0, len(channelEvents)+1)
	for _, eventType := range channelEvents {
		subs = append(subs, s.bus.Subscribe(eventType))
		cases = append(cases, eventType)
	}
	runSub := s.bus.Subscribe(events.EventGuideRunCompleted)
	defer func() {
		for i, sub := range subs {
			s.bus.Unsubscribe(cases[i], sub)
		}
		s.bus.Unsubscribe(events.EventGuideRunCompleted, runSub)
	}()

	merged := make(chan events.EventType, 16)
	for i, sub := range subs {
		sub := sub
		eventType := cases[i]
		go func() {
			for range sub {
				select {
				case merged <- eventType:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-runSub:
			s.cache.InvalidateGuide(ctx)
		case <-merged:
			s.cache.InvalidateChannels(ctx)
			s.cache.InvalidateGuide(ctx)
		}
	}
}

// DeferClose registers cleanup executed during shutdown, LIFO.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Start serves HTTP until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops background work and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.bgCancel != nil {
		s.bgCancel()
	}
	err := s.httpServer.Shutdown(ctx)
	s.bgWG.Wait()
	for i := len(s.closers) - 1; i >= 0; i-- {
		if cerr := s.closers[i](); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
