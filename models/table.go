package models

import "time"

// WeekColumn is the header of the first column in both league tables.
const WeekColumn = "Week"

// Table is a parsed CSV-shaped grid: the header row and the data rows, cells kept as raw strings.
// The scoring engine interprets the cells; sources only parse the grid.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Players returns the player columns of the header (everything after Week).
func (t Table) Players() []string {
	if len(t.Header) < 2 {
		return nil
	}
	players := make([]string, len(t.Header)-1)
	copy(players, t.Header[1:])
	return players
}

// Season is one load of both league tables.
type Season struct {
	Schedule Table     `json:"schedule"`
	Points   Table     `json:"points"`
	LoadedAt time.Time `json:"loaded_at"`
}
