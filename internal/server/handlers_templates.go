/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamcast/teamcast/internal/events"
	"github.com/teamcast/teamcast/internal/guide/rules"
	"github.com/teamcast/teamcast/internal/models"
)

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	var templates []models.Template
	if err := s.db.WithContext(r.Context()).Order("name").Find(&templates).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "list templates failed")
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var tmpl models.Template
	if err := readJSON(r, &tmpl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid template payload: "+err.Error())
		return
	}
	if err := validateTemplate(&tmpl); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tmpl.ID = uuid.NewString()
	if err := s.db.WithContext(r.Context()).Create(&tmpl).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "create template failed")
		return
	}

	s.bus.Publish(events.EventTemplateCreated, events.Payload{"id": tmpl.ID})
	writeJSON(w, http.StatusCreated, tmpl)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	var tmpl models.Template
	err := s.db.WithContext(r.Context()).First(&tmpl, "id = ?", chi.URLParam(r, "id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load template failed")
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var existing models.Template
	err := s.db.WithContext(r.Context()).First(&existing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load template failed")
		return
	}

	var update models.Template
	if err := readJSON(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid template payload: "+err.Error())
		return
	}
	update.ID = id
	update.CreatedAt = existing.CreatedAt
	if err := validateTemplate(&update); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.db.WithContext(r.Context()).Save(&update).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "update template failed")
		return
	}

	s.bus.Publish(events.EventTemplateUpdated, events.Payload{"id": id})
	writeJSON(w, http.StatusOK, update)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var assigned int64
	s.db.WithContext(r.Context()).Model(&models.Channel{}).Where("template_id = ?", id).Count(&assigned)
	if assigned > 0 {
		writeError(w, http.StatusConflict, "template is assigned to channels")
		return
	}

	result := s.db.WithContext(r.Context()).Delete(&models.Template{}, "id = ?", id)
	if result.Error != nil {
		writeError(w, http.StatusInternalServerError, "delete template failed")
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	s.bus.Publish(events.EventTemplateDeleted, events.Payload{"id": id})
	w.WriteHeader(http.StatusNoContent)
}

// validateTemplate rejects malformed templates before they can fail a
// whole channel at generation time.
func validateTemplate(tmpl *models.Template) error {
	if tmpl.Name == "" {
		return errors.New("template name is required")
	}
	if tmpl.TitleFormat == "" {
		return errors.New("template title_format is required")
	}
	switch tmpl.DurationMode {
	case models.DurationSport, models.DurationDefault, models.DurationCustom, "":
	default:
		return fmt.Errorf("unknown duration mode %q", tmpl.DurationMode)
	}
	if tmpl.DurationMode == models.DurationCustom && tmpl.CustomHours <= 0 {
		return errors.New("custom duration mode requires positive custom_hours")
	}

	if _, err := rules.Compile(tmpl.Rules); err != nil {
		return fmt.Errorf("description rules: %w", err)
	}
	for name, cfg := range map[string]models.FillerConfig{
		"pregame": tmpl.Pregame, "postgame": tmpl.Postgame, "idle": tmpl.Idle,
	} {
		if _, err := rules.Compile(cfg.Rules); err != nil {
			return fmt.Errorf("%s rules: %w", name, err)
		}
		for _, period := range cfg.Periods {
			if period.StartOffsetHours == period.EndOffsetHours {
				return fmt.Errorf("%s period has zero length", name)
			}
		}
	}
	return nil
}
