package models

import "time"

// GameStatus tracks the live state of a fetched game.
type GameStatus string

const (
	GameScheduled GameStatus = "scheduled"
	GameLive      GameStatus = "live"
	GameFinal     GameStatus = "final"
)

// Competitor is one side of a game.
type Competitor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
	Abbrev    string `json:"abbrev,omitempty"`
	Record    string `json:"record,omitempty"`
	Score     int    `json:"score"`
	Winner    bool   `json:"winner"`
}

// Game is one scheduled event fetched from the event source. Games are
// rebuilt every run and never persisted.
type Game struct {
	ID           string     `json:"id"`
	League       string     `json:"league"`
	Sport        string     `json:"sport"`
	StartsAt     time.Time  `json:"starts_at"`
	Status       GameStatus `json:"status"`
	Home         Competitor `json:"home"`
	Away         Competitor `json:"away"`
	Venue        string     `json:"venue,omitempty"`
	City         string     `json:"city,omitempty"`
	Network      string     `json:"network,omitempty"`
	OddsLine     string     `json:"odds_line,omitempty"`
	OverUnder    float64    `json:"over_under,omitempty"`
	IsDivision   bool       `json:"is_division"`
	IsConference bool       `json:"is_conference"`
	IsRivalry    bool       `json:"is_rivalry"`
	SeasonType   string     `json:"season_type,omitempty"`
}

// TeamSide returns the competitor matching teamID and the opponent.
// The second return is false when teamID plays in neither slot.
func (g *Game) TeamSide(teamID string) (team, opponent Competitor, home, ok bool) {
	switch teamID {
	case g.Home.ID:
		return g.Home, g.Away, true, true
	case g.Away.ID:
		return g.Away, g.Home, false, true
	}
	return Competitor{}, Competitor{}, false, false
}

// Final reports whether the game has completed.
func (g *Game) Final() bool { return g.Status == GameFinal }
