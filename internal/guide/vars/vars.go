/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package vars resolves template placeholders against per-game variable
// sets. Placeholders use the {name}, {name.next} and {name.last} forms;
// a variable that is not set resolves to the empty string.
package vars

import (
	"regexp"
	"strings"
)

// Variables is one temporal view of resolved scalar values. Values are
// copied out of their source records at build time; a Variables map never
// holds references back into game or enrichment data.
type Variables map[string]string

// Get returns the value for name, or "" when absent.
func (v Variables) Get(name string) string {
	if v == nil {
		return ""
	}
	return v[name]
}

// ContextSet bundles the three temporal views used during resolution.
// Current is anchored at the event being rendered; Next and Last are
// anchored at the neighboring events, when they exist.
type ContextSet struct {
	Current Variables
	Next    Variables
	Last    Variables
}

var placeholderRe = regexp.MustCompile(`\{([a-z0-9_]+)(?:\.(next|last))?\}`)

// Resolve substitutes every placeholder in text from the matching view.
// Unset variables become empty strings; the literal placeholder never
// survives resolution. Resolve is pure: identical text and set always
// produce identical output.
func Resolve(text string, set ContextSet) string {
	if text == "" || !strings.Contains(text, "{") {
		return text
	}
	return placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		groups := placeholderRe.FindStringSubmatch(match)
		name, view := groups[1], groups[2]
		switch view {
		case "next":
			return set.Next.Get(name)
		case "last":
			return set.Last.Get(name)
		default:
			return set.Current.Get(name)
		}
	})
}

// References reports whether text contains any of the given variable
// names, in any temporal view. Used to decide whether chunked programmes
// need per-chunk re-resolution.
func References(text string, names ...string) bool {
	for _, match := range placeholderRe.FindAllStringSubmatch(text, -1) {
		for _, name := range names {
			if match[1] == name {
				return true
			}
		}
	}
	return false
}
