/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teamcast/teamcast/internal/enrich"
	"github.com/teamcast/teamcast/internal/guide"
	"github.com/teamcast/teamcast/internal/guide/rules"
	"github.com/teamcast/teamcast/internal/models"
	"github.com/teamcast/teamcast/internal/source"
	"github.com/teamcast/teamcast/internal/xmltv"
)

var (
	generateFile   string
	generateOutput string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a guide once from a YAML lineup file",
	Long:  "Run a single generation pass for the channels and templates described in a YAML file, without a database, and write the XMLTV document.",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateFile, "file", "f", "lineup.yaml", "lineup file with templates and channels")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "-", "output path, - for stdout")
}

// lineupFile is the one-shot generation input.
type lineupFile struct {
	Templates []models.Template `yaml:"templates"`
	Channels  []lineupChannel   `yaml:"channels"`
}

type lineupChannel struct {
	Name       string `yaml:"name"`
	Number     int    `yaml:"number"`
	League     string `yaml:"league"`
	Sport      string `yaml:"sport"`
	TeamID     string `yaml:"team_id"`
	TeamName   string `yaml:"team_name"`
	TeamAbbrev string `yaml:"team_abbrev"`
	Timezone   string `yaml:"timezone"`
	LogoURL    string `yaml:"logo_url"`
	Template   string `yaml:"template"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	raw, err := os.ReadFile(generateFile)
	if err != nil {
		return fmt.Errorf("read lineup file: %w", err)
	}
	var lineup lineupFile
	if err := yaml.Unmarshal(raw, &lineup); err != nil {
		return fmt.Errorf("parse lineup file: %w", err)
	}

	templates := make(map[string]*models.Template, len(lineup.Templates))
	for i := range lineup.Templates {
		tmpl := &lineup.Templates[i]
		if tmpl.ID == "" {
			tmpl.ID = uuid.NewString()
		}
		templates[tmpl.Name] = tmpl
	}

	channels := make([]models.Channel, 0, len(lineup.Channels))
	for _, entry := range lineup.Channels {
		channel := models.Channel{
			ID:         uuid.NewString(),
			Name:       entry.Name,
			Number:     entry.Number,
			League:     entry.League,
			Sport:      entry.Sport,
			TeamID:     entry.TeamID,
			TeamName:   entry.TeamName,
			TeamAbbrev: entry.TeamAbbrev,
			Timezone:   entry.Timezone,
			LogoURL:    entry.LogoURL,
		}
		if entry.Template != "" {
			tmpl, ok := templates[entry.Template]
			if !ok {
				return fmt.Errorf("channel %q references unknown template %q", entry.Name, entry.Template)
			}
			channel.TemplateID = &tmpl.ID
			channel.Template = tmpl
		}
		channels = append(channels, channel)
	}

	eventSource := source.NewESPNClient(cfg.ESPNBaseURL, cfg.FetchTimeout, logger)
	provider := enrich.NewESPNProvider(cfg.ESPNBaseURL, cfg.FetchTimeout, logger)
	settings := cfg.GuideSettings()
	svc := guide.New(nil, eventSource, provider, rules.NewSelector(nil), settings, logger)

	result := &guide.RunResult{GeneratedAt: time.Now()}
	for i := range channels {
		ctx, cancel := context.WithTimeout(cmd.Context(), settings.ChannelBudget())
		outcome := svc.Generate(ctx, &channels[i])
		cancel()
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Status == guide.StatusFailed {
			logger.Warn().Str("channel", outcome.ChannelName).Str("reason", outcome.Reason).Msg("channel failed")
		}
	}

	out := os.Stdout
	if generateOutput != "-" {
		f, err := os.Create(generateOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	return xmltv.Render(out, xmltv.Build(channels, result))
}
