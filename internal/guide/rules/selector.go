/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rules

import (
	"math/rand"
	"sort"
	"sync"
	"time"
)

// Selector resolves a description from a compiled rule list. The
// randomness source is injected so fallback ties can be pinned in tests;
// it is only consulted when more than one fallback rule qualifies. One
// selector serves every concurrent channel worker, so draws from the
// source are serialized under the mutex.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector builds a selector around rng. A nil rng gets a time-seeded
// source.
func NewSelector(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{rng: rng}
}

// Description picks the output for ctx. Standard rules (priority 1-99)
// are tried in ascending priority, declared order within a priority, and
// the first match wins. When none match, the qualifying fallback rules
// (priority 100) are collected and one is chosen uniformly at random.
// No match at all yields the empty string.
func (s *Selector) Description(compiled []CompiledRule, ctx Context) string {
	standard := make([]int, 0, len(compiled))
	var fallbacks []int
	for i, rule := range compiled {
		if rule.Priority == FallbackPriority {
			fallbacks = append(fallbacks, i)
			continue
		}
		standard = append(standard, i)
	}

	// Stable sort keeps declared order inside equal priorities.
	sort.SliceStable(standard, func(a, b int) bool {
		return compiled[standard[a]].Priority < compiled[standard[b]].Priority
	})

	for _, idx := range standard {
		if compiled[idx].Matches(ctx) {
			return compiled[idx].Output
		}
	}

	qualified := fallbacks[:0]
	for _, idx := range fallbacks {
		if compiled[idx].Matches(ctx) {
			qualified = append(qualified, idx)
		}
	}
	switch len(qualified) {
	case 0:
		return ""
	case 1:
		return compiled[qualified[0]].Output
	default:
		s.mu.Lock()
		pick := s.rng.Intn(len(qualified))
		s.mu.Unlock()
		return compiled[qualified[pick]].Output
	}
}
