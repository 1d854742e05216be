/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package xmltv renders guide runs as an XMLTV document.
package xmltv

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/teamcast/teamcast/internal/guide"
	"github.com/teamcast/teamcast/internal/models"
)

const (
	generatorName = "teamcast"
	generatorURL  = "https://github.com/teamcast/teamcast"

	// XMLTV timestamp layout.
	timeLayout = "20060102150405 -0700"
)

// TV is the XMLTV document root.
type TV struct {
	XMLName           xml.Name    `xml:"tv"`
	GeneratorInfoName string      `xml:"generator-info-name,attr,omitempty"`
	GeneratorInfoURL  string      `xml:"generator-info-url,attr,omitempty"`
	Channels          []Channel   `xml:"channel,omitempty"`
	Programmes        []Programme `xml:"programme,omitempty"`
}

type Channel struct {
	ID          string   `xml:"id,attr"`
	DisplayName []Text   `xml:"display-name"`
	Icon        *Icon    `xml:"icon,omitempty"`
	URL         []string `xml:"url,omitempty"`
}

type Programme struct {
	Start    string `xml:"start,attr"`
	Stop     string `xml:"stop,attr"`
	Channel  string `xml:"channel,attr"`
	Title    Text   `xml:"title"`
	SubTitle *Text  `xml:"sub-title,omitempty"`
	Desc     *Text  `xml:"desc,omitempty"`
	Category []Text `xml:"category,omitempty"`
	Icon     *Icon  `xml:"icon,omitempty"`
	New      *Flag  `xml:"new,omitempty"`
	Live     *Flag  `xml:"live,omitempty"`
}

type Text struct {
	Lang  string `xml:"lang,attr,omitempty"`
	Value string `xml:",chardata"`
}

type Icon struct {
	Src string `xml:"src,attr"`
}

// Flag is an empty presence element such as <new/>.
type Flag struct{}

// Build assembles the document from the channel list and the run result.
// Every channel gets a channel element; programmes come only from
// succeeded outcomes, so a failed channel keeps its listing empty rather
// than stale or partial.
func Build(channels []models.Channel, result *guide.RunResult) *TV {
	doc := &TV{
		GeneratorInfoName: generatorName,
		GeneratorInfoURL:  generatorURL,
	}

	for _, ch := range channels {
		entry := Channel{
			ID:          ch.ID,
			DisplayName: []Text{{Lang: "en", Value: ch.Name}},
		}
		if ch.TeamAbbrev != "" && ch.TeamAbbrev != ch.Name {
			entry.DisplayName = append(entry.DisplayName, Text{Lang: "en", Value: ch.TeamAbbrev})
		}
		if ch.LogoURL != "" {
			entry.Icon = &Icon{Src: ch.LogoURL}
		}
		doc.Channels = append(doc.Channels, entry)
	}

	if result == nil {
		return doc
	}
	for _, outcome := range result.Succeeded() {
		for _, p := range outcome.Programmes {
			doc.Programmes = append(doc.Programmes, buildProgramme(p))
		}
	}
	return doc
}

func buildProgramme(p guide.Programme) Programme {
	out := Programme{
		Start:   p.Start.Format(timeLayout),
		Stop:    p.End.Format(timeLayout),
		Channel: p.ChannelID,
		Title:   Text{Lang: "en", Value: p.Title},
	}
	if p.Subtitle != "" {
		out.SubTitle = &Text{Lang: "en", Value: p.Subtitle}
	}
	if p.Description != "" {
		out.Desc = &Text{Lang: "en", Value: p.Description}
	}
	for _, category := range p.Categories {
		out.Category = append(out.Category, Text{Lang: "en", Value: category})
	}
	if p.ArtURL != "" {
		out.Icon = &Icon{Src: p.ArtURL}
	}
	if p.New {
		out.New = &Flag{}
	}
	if p.Live {
		out.Live = &Flag{}
	}
	return out
}

// Render writes the document with the XML declaration and DTD reference.
func Render(w io.Writer, doc *TV) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "<!DOCTYPE tv SYSTEM \"xmltv.dtd\">\n"); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode xmltv: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ParseTime reads an XMLTV timestamp, for tests and import tooling.
func ParseTime(value string) (time.Time, error) {
	return time.Parse(timeLayout, value)
}
