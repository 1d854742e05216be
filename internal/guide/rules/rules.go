/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package rules evaluates priority-ranked conditional description rules
// against a closed predicate vocabulary. Rules never execute host code:
// predicates are compiled into a small fixed AST of boolean flags and
// numeric comparisons.
package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/teamcast/teamcast/internal/models"
)

// FallbackPriority marks fallback rules. Priorities 1-99 are standard.
const FallbackPriority = 100

// ErrBadRule indicates a malformed rule definition.
var ErrBadRule = errors.New("malformed conditional rule")

// Context carries the predicate inputs for one anchor event. Absent
// flags evaluate false and absent numeric fields fail their comparison,
// so missing enrichment degrades a rule rather than erroring.
type Context struct {
	Flags map[string]bool
	Nums  map[string]float64
}

// Flag returns the boolean value for name, false when unset.
func (c Context) Flag(name string) bool {
	return c.Flags[name]
}

// Num returns the numeric value for name and whether it is set.
func (c Context) Num(name string) (float64, bool) {
	v, ok := c.Nums[name]
	return v, ok
}

type comparison int

const (
	opNone comparison = iota
	opGE
	opLE
	opGT
	opLT
	opEQ
	opNE
)

var comparisons = map[string]comparison{
	">=": opGE,
	"<=": opLE,
	">":  opGT,
	"<":  opLT,
	"==": opEQ,
	"!=": opNE,
}

// term is one conjunct: a bare flag or a numeric comparison.
type term struct {
	field string
	op    comparison
	value float64
}

func (t term) eval(ctx Context) bool {
	if t.op == opNone {
		return ctx.Flag(t.field)
	}
	v, ok := ctx.Num(t.field)
	if !ok {
		return false
	}
	switch t.op {
	case opGE:
		return v >= t.value
	case opLE:
		return v <= t.value
	case opGT:
		return v > t.value
	case opLT:
		return v < t.value
	case opEQ:
		return v == t.value
	case opNE:
		return v != t.value
	}
	return false
}

// CompiledRule is a validated rule ready for evaluation.
type CompiledRule struct {
	Priority int
	Output   string
	always   bool
	terms    []term
}

// Matches evaluates the rule predicate against ctx.
func (r CompiledRule) Matches(ctx Context) bool {
	if r.always {
		return true
	}
	for _, t := range r.terms {
		if !t.eval(ctx) {
			return false
		}
	}
	return true
}

// Compile validates and compiles a declared rule list, preserving the
// declared order. Any malformed rule fails the whole list; callers treat
// that as a configuration error for the owning channel.
func Compile(defs []models.ConditionalRule) ([]CompiledRule, error) {
	compiled := make([]CompiledRule, 0, len(defs))
	for i, def := range defs {
		if def.Priority < 1 || def.Priority > FallbackPriority {
			return nil, fmt.Errorf("%w: rule %d priority %d out of range [1,%d]", ErrBadRule, i, def.Priority, FallbackPriority)
		}
		rule, err := compilePredicate(def.When)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d: %v", ErrBadRule, i, err)
		}
		rule.Priority = def.Priority
		rule.Output = def.Output
		compiled = append(compiled, rule)
	}
	return compiled, nil
}

// compilePredicate parses `term { "and" term }` where a term is either a
// bare flag name or `field op number`. The empty predicate and the
// keyword "always" both match unconditionally.
func compilePredicate(expr string) (CompiledRule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || strings.EqualFold(expr, "always") {
		return CompiledRule{always: true}, nil
	}

	var rule CompiledRule
	for _, clause := range strings.Split(expr, " and ") {
		fields := strings.Fields(clause)
		switch len(fields) {
		case 1:
			name := fields[0]
			if !validIdent(name) {
				return CompiledRule{}, fmt.Errorf("invalid flag %q", name)
			}
			rule.terms = append(rule.terms, term{field: name})
		case 3:
			name, opText, valText := fields[0], fields[1], fields[2]
			if !validIdent(name) {
				return CompiledRule{}, fmt.Errorf("invalid field %q", name)
			}
			op, ok := comparisons[opText]
			if !ok {
				return CompiledRule{}, fmt.Errorf("unknown operator %q", opText)
			}
			val, err := strconv.ParseFloat(valText, 64)
			if err != nil {
				return CompiledRule{}, fmt.Errorf("invalid number %q", valText)
			}
			rule.terms = append(rule.terms, term{field: name, op: op, value: val})
		default:
			return CompiledRule{}, fmt.Errorf("cannot parse clause %q", clause)
		}
	}
	return rule, nil
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}
