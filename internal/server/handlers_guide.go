/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"bytes"
	"net/http"

	"github.com/teamcast/teamcast/internal/events"
	"github.com/teamcast/teamcast/internal/guide"
	"github.com/teamcast/teamcast/internal/models"
	"github.com/teamcast/teamcast/internal/xmltv"
)

func (s *Server) handleGuideXML(w http.ResponseWriter, r *http.Request) {
	if s.cache != nil {
		if raw, ok := s.cache.Guide(r.Context()); ok {
			w.Header().Set("Content-Type", "application/xml; charset=utf-8")
			_, _ = w.Write(raw)
			return
		}
	}

	result := s.guide.Latest()
	if result == nil {
		writeError(w, http.StatusServiceUnavailable, "no guide generated yet")
		return
	}

	var channels []models.Channel
	if err := s.db.WithContext(r.Context()).Order("number").Find(&channels).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "load channels failed")
		return
	}

	var buf bytes.Buffer
	if err := xmltv.Render(&buf, xmltv.Build(channels, result)); err != nil {
		s.logger.Error().Err(err).Msg("guide render failed")
		writeError(w, http.StatusInternalServerError, "guide render failed")
		return
	}

	if s.cache != nil {
		s.cache.StoreGuide(r.Context(), buf.Bytes(), s.cfg.RefreshInterval)
	}
	s.bus.Publish(events.EventGuideRendered, events.Payload{"bytes": buf.Len()})
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleGuideRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := s.guide.GenerateAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "guide refresh failed: "+err.Error())
		return
	}
	if s.cache != nil {
		s.cache.InvalidateGuide(r.Context())
	}
	writeJSON(w, http.StatusOK, summarize(result))
}

func (s *Server) handleGuideStatus(w http.ResponseWriter, r *http.Request) {
	result := s.guide.Latest()
	if result == nil {
		writeError(w, http.StatusNotFound, "no guide generated yet")
		return
	}
	writeJSON(w, http.StatusOK, summarize(result))
}

type runSummary struct {
	GeneratedAt string           `json:"generated_at"`
	Channels    []channelSummary `json:"channels"`
}

type channelSummary struct {
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	Programmes  int    `json:"programmes"`
}

func summarize(result *guide.RunResult) runSummary {
	summary := runSummary{
		GeneratedAt: result.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Channels:    make([]channelSummary, 0, len(result.Outcomes)),
	}
	for _, outcome := range result.Outcomes {
		summary.Channels = append(summary.Channels, channelSummary{
			ChannelID:   outcome.ChannelID,
			ChannelName: outcome.ChannelName,
			Status:      string(outcome.Status),
			Reason:      outcome.Reason,
			Programmes:  len(outcome.Programmes),
		})
	}
	return summary
}
