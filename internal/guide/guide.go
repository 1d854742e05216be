/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package guide assembles gapless programme timelines for team channels.
// Games fetched from the event source become chunked game programmes;
// the time around them is synthesized from the template's pregame,
// postgame and idle filler configuration. The assembled sequence always
// covers the full horizon with no gaps and no overlaps before it is
// handed to the writer.
package guide

import (
	"errors"
	"time"
)

var (
	// ErrConfiguration indicates a malformed template, rule or period.
	// Fatal for the affected channel only.
	ErrConfiguration = errors.New("invalid guide configuration")

	// ErrSourceUnavailable indicates the event source failed after all
	// retry attempts.
	ErrSourceUnavailable = errors.New("event source unavailable")

	// ErrInvariant indicates the assembled timeline has a gap or an
	// overlap. This is an internal defect: a sequence failing the check
	// is never handed to the writer.
	ErrInvariant = errors.New("timeline invariant violation")
)

// MidnightCrossover policies.
const (
	MidnightSplit = "split"
	MidnightKeep  = "keep"
)

// Settings is the immutable per-run configuration snapshot.
type Settings struct {
	HorizonHours         int
	Timezone             string
	DefaultDurationHours float64
	SportDurations       map[string]float64
	MaxProgramHours      float64
	MidnightCrossover    string
	FetchTimeout         time.Duration
	FetchRetries         int
	Workers              int
	RefreshInterval      time.Duration
}

// ChannelBudget is the wall-clock budget for one channel's generation.
func (s Settings) ChannelBudget() time.Duration {
	timeout := s.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	attempts := s.FetchRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	return timeout * time.Duration(attempts)
}

// ProgrammeKind tags what produced a programme.
type ProgrammeKind string

const (
	KindGame     ProgrammeKind = "game"
	KindPregame  ProgrammeKind = "pregame"
	KindPostgame ProgrammeKind = "postgame"
	KindIdle     ProgrammeKind = "idle"
)

// Programme is one guide entry over a half-open [Start, End) interval.
// It holds resolved scalar copies only; no references back into game or
// enrichment data survive generation.
type Programme struct {
	ChannelID   string
	Start       time.Time
	End         time.Time
	Title       string
	Subtitle    string
	Description string
	ArtURL      string
	Categories  []string
	Kind        ProgrammeKind
	GameID      string
	Live        bool
	New         bool
}

// Duration returns the programme length.
func (p Programme) Duration() time.Duration { return p.End.Sub(p.Start) }

// Status values for per-channel outcomes.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Outcome records how one channel's generation ended. Skipped channels
// carry a reason; failed ones additionally withhold their programmes.
type Outcome struct {
	ChannelID   string
	ChannelName string
	Status      Status
	Reason      string
	Programmes  []Programme
}

// RunResult aggregates one full generation run across all channels.
type RunResult struct {
	GeneratedAt time.Time
	Outcomes    []Outcome
}

// Succeeded returns the outcomes that produced a validated timeline.
func (r *RunResult) Succeeded() []Outcome {
	out := make([]Outcome, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Status == StatusSucceeded {
			out = append(out, o)
		}
	}
	return out
}
