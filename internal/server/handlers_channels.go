/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamcast/teamcast/internal/events"
	"github.com/teamcast/teamcast/internal/models"
)

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	var channels []models.Channel
	if err := s.db.WithContext(r.Context()).Preload("Template").Order("number").Find(&channels).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "list channels failed")
		return
	}
	writeJSON(w, http.StatusOK, channels)
}

func (s *Server) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	var channel models.Channel
	if err := readJSON(r, &channel); err != nil {
		writeError(w, http.StatusBadRequest, "invalid channel payload: "+err.Error())
		return
	}
	if err := validateChannel(&channel); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	channel.ID = uuid.NewString()
	channel.Template = nil
	if err := s.db.WithContext(r.Context()).Create(&channel).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "create channel failed")
		return
	}

	s.bus.Publish(events.EventChannelCreated, events.Payload{"id": channel.ID})
	writeJSON(w, http.StatusCreated, channel)
}

func (s *Server) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	var channel models.Channel
	err := s.db.WithContext(r.Context()).Preload("Template").First(&channel, "id = ?", chi.URLParam(r, "id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load channel failed")
		return
	}
	writeJSON(w, http.StatusOK, channel)
}

func (s *Server) handleUpdateChannel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var existing models.Channel
	err := s.db.WithContext(r.Context()).First(&existing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load channel failed")
		return
	}

	var update models.Channel
	if err := readJSON(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid channel payload: "+err.Error())
		return
	}
	update.ID = id
	update.Template = nil
	update.CreatedAt = existing.CreatedAt
	if err := validateChannel(&update); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if update.TemplateID != nil {
		var count int64
		s.db.WithContext(r.Context()).Model(&models.Template{}).Where("id = ?", *update.TemplateID).Count(&count)
		if count == 0 {
			writeError(w, http.StatusBadRequest, "template does not exist")
			return
		}
	}

	if err := s.db.WithContext(r.Context()).Save(&update).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "update channel failed")
		return
	}

	s.bus.Publish(events.EventChannelUpdated, events.Payload{"id": id})
	writeJSON(w, http.StatusOK, update)
}

func (s *Server) handleDeleteChannel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result := s.db.WithContext(r.Context()).Delete(&models.Channel{}, "id = ?", id)
	if result.Error != nil {
		writeError(w, http.StatusInternalServerError, "delete channel failed")
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}

	s.bus.Publish(events.EventChannelDeleted, events.Payload{"id": id})
	w.WriteHeader(http.StatusNoContent)
}

func validateChannel(channel *models.Channel) error {
	switch {
	case channel.Name == "":
		return errors.New("channel name is required")
	case channel.League == "":
		return errors.New("channel league is required")
	case channel.TeamID == "":
		return errors.New("channel team_id is required")
	}
	return nil
}
