/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package guide

import (
	"errors"
	"testing"
	"time"
)

func mkProgramme(start, end time.Time, title string) Programme {
	return Programme{Start: start, End: end, Title: title}
}

func TestValidateTimelineAcceptsGapless(t *testing.T) {
	h0 := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	h1 := h0.Add(6 * time.Hour)
	programmes := []Programme{
		mkProgramme(h0, h0.Add(2*time.Hour), "a"),
		mkProgramme(h0.Add(2*time.Hour), h0.Add(5*time.Hour), "b"),
		mkProgramme(h0.Add(5*time.Hour), h1, "c"),
	}
	if err := validateTimeline(programmes, h0, h1); err != nil {
		t.Fatalf("validateTimeline() = %v, want nil", err)
	}
}

func TestValidateTimelineDetectsGap(t *testing.T) {
	h0 := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	h1 := h0.Add(4 * time.Hour)
	programmes := []Programme{
		mkProgramme(h0, h0.Add(time.Hour), "a"),
		mkProgramme(h0.Add(2*time.Hour), h1, "b"),
	}
	err := validateTimeline(programmes, h0, h1)
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("validateTimeline() = %v, want ErrInvariant", err)
	}
}

func TestValidateTimelineDetectsOverlap(t *testing.T) {
	h0 := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	h1 := h0.Add(4 * time.Hour)
	programmes := []Programme{
		mkProgramme(h0, h0.Add(3*time.Hour), "a"),
		mkProgramme(h0.Add(2*time.Hour), h1, "b"),
	}
	if err := validateTimeline(programmes, h0, h1); !errors.Is(err, ErrInvariant) {
		t.Fatalf("validateTimeline() = %v, want ErrInvariant", err)
	}
}

func TestValidateTimelineDetectsHorizonMismatch(t *testing.T) {
	h0 := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	h1 := h0.Add(4 * time.Hour)

	late := []Programme{mkProgramme(h0.Add(time.Minute), h1, "a")}
	if err := validateTimeline(late, h0, h1); !errors.Is(err, ErrInvariant) {
		t.Fatalf("late start: %v, want ErrInvariant", err)
	}

	short := []Programme{mkProgramme(h0, h1.Add(-time.Minute), "a")}
	if err := validateTimeline(short, h0, h1); !errors.Is(err, ErrInvariant) {
		t.Fatalf("short end: %v, want ErrInvariant", err)
	}

	if err := validateTimeline(nil, h0, h1); !errors.Is(err, ErrInvariant) {
		t.Fatal("empty timeline must violate coverage")
	}
}

func TestValidateTimelineDetectsNonPositiveLength(t *testing.T) {
	h0 := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	h1 := h0.Add(time.Hour)
	programmes := []Programme{
		mkProgramme(h0, h0, "zero"),
		mkProgramme(h0, h1, "a"),
	}
	if err := validateTimeline(programmes, h0, h1); !errors.Is(err, ErrInvariant) {
		t.Fatal("zero-length programme must be rejected")
	}
}
