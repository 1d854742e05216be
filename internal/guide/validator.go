/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package guide

import (
	"fmt"
	"time"
)

// validateTimeline asserts the assembled sequence covers exactly
// [horizonStart, horizonEnd): sorted ascending, every programme of
// positive length, each end meeting the next start, first programme at
// the horizon start and last at the horizon end. Any violation is an
// internal defect reported as ErrInvariant; such a sequence must never
// reach the writer.
func validateTimeline(programmes []Programme, horizonStart, horizonEnd time.Time) error {
	if !horizonStart.Before(horizonEnd) {
		return fmt.Errorf("%w: empty horizon %s..%s", ErrInvariant, horizonStart.Format(time.RFC3339), horizonEnd.Format(time.RFC3339))
	}
	if len(programmes) == 0 {
		return fmt.Errorf("%w: no programmes for horizon %s..%s", ErrInvariant, horizonStart.Format(time.RFC3339), horizonEnd.Format(time.RFC3339))
	}

	first := programmes[0]
	if !first.Start.Equal(horizonStart) {
		return fmt.Errorf("%w: first programme starts %s, horizon starts %s", ErrInvariant, first.Start.Format(time.RFC3339), horizonStart.Format(time.RFC3339))
	}
	last := programmes[len(programmes)-1]
	if !last.End.Equal(horizonEnd) {
		return fmt.Errorf("%w: last programme ends %s, horizon ends %s", ErrInvariant, last.End.Format(time.RFC3339), horizonEnd.Format(time.RFC3339))
	}

	for i, p := range programmes {
		if !p.Start.Before(p.End) {
			return fmt.Errorf("%w: programme %d %q has non-positive length at %s", ErrInvariant, i, p.Title, p.Start.Format(time.RFC3339))
		}
		if i == 0 {
			continue
		}
		prev := programmes[i-1]
		switch {
		case p.Start.Before(prev.End):
			overlap := prev.End.Sub(p.Start)
			return fmt.Errorf("%w: %q and %q overlap by %s at %s", ErrInvariant, prev.Title, p.Title, overlap, p.Start.Format(time.RFC3339))
		case p.Start.After(prev.End):
			gap := p.Start.Sub(prev.End)
			return fmt.Errorf("%w: %s gap between %q and %q at %s", ErrInvariant, gap, prev.Title, p.Title, prev.End.Format(time.RFC3339))
		}
	}
	return nil
}
