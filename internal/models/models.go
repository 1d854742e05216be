package models

import (
	"time"
)

// DurationMode selects how a game's on-air duration is resolved.
type DurationMode string

const (
	DurationSport   DurationMode = "sport"
	DurationDefault DurationMode = "default"
	DurationCustom  DurationMode = "custom"
)

// ConditionalRule picks a description when its predicate matches.
// Priorities 1-99 are standard rules, 100 is reserved for fallbacks.
type ConditionalRule struct {
	Priority int    `json:"priority"`
	When     string `json:"when"`
	Output   string `json:"output"`
}

// Period is a filler window anchored to a game. Offsets are hours
// relative to the anchor: before game start for pregame, after game
// end for postgame and idle.
type Period struct {
	StartOffsetHours float64 `json:"start_offset_hours"`
	EndOffsetHours   float64 `json:"end_offset_hours"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
}

// Fallback is the terminal title/description pair for uncovered filler time.
type Fallback struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ConditionalFallback branches on whether the adjacent game is final.
type ConditionalFallback struct {
	Final    Fallback `json:"final"`
	NotFinal Fallback `json:"not_final"`
}

// FillerConfig describes one filler phase (pregame, postgame or idle).
type FillerConfig struct {
	Periods     []Period             `json:"periods,omitempty"`
	Rules       []ConditionalRule    `json:"rules,omitempty"`
	Fallback    Fallback             `json:"fallback"`
	Conditional *ConditionalFallback `json:"conditional,omitempty"`
	Offseason   *Fallback            `json:"offseason,omitempty"`
}

// Template is the reusable guide configuration assigned to channels.
type Template struct {
	ID             string            `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string            `gorm:"uniqueIndex" json:"name"`
	TitleFormat    string            `gorm:"type:text" json:"title_format"`
	SubtitleFormat string            `gorm:"type:text" json:"subtitle_format"`
	Rules          []ConditionalRule `gorm:"type:jsonb;serializer:json" json:"rules,omitempty"`
	Pregame        FillerConfig      `gorm:"type:jsonb;serializer:json" json:"pregame"`
	Postgame       FillerConfig      `gorm:"type:jsonb;serializer:json" json:"postgame"`
	Idle           FillerConfig      `gorm:"type:jsonb;serializer:json" json:"idle"`
	DurationMode   DurationMode      `gorm:"type:varchar(16)" json:"duration_mode"`
	CustomHours    float64           `json:"custom_hours,omitempty"`
	MarkLive       bool              `json:"mark_live"`
	MarkNew        bool              `json:"mark_new"`
	Categories     []string          `gorm:"type:jsonb;serializer:json" json:"categories,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Channel is a single-team guide channel. A channel without a template
// produces no output.
type Channel struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"uniqueIndex" json:"name"`
	Number     int       `json:"number"`
	League     string    `gorm:"type:varchar(32);index" json:"league"`
	Sport      string    `gorm:"type:varchar(32)" json:"sport"`
	TeamID     string    `gorm:"type:varchar(32);index" json:"team_id"`
	TeamName   string    `json:"team_name"`
	TeamAbbrev string    `gorm:"type:varchar(8)" json:"team_abbrev"`
	Timezone   string    `gorm:"type:varchar(48)" json:"timezone,omitempty"`
	LogoURL    string    `json:"logo_url,omitempty"`
	TemplateID *string   `gorm:"type:uuid;index" json:"template_id,omitempty"`
	Template   *Template `json:"template,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
