package scoring

import (
	"math"
	"strconv"
	"strings"

	"github.com/Dosada05/league-stats/models"
)

// grid is a validated Week-keyed table: weeks run 1..len(cells) and every row has one cell per player.
type grid struct {
	players []string
	index   map[string]int
	cells   [][]string
}

func parseGrid(t models.Table, name string) (*grid, error) {
	if len(t.Header) == 0 || !strings.EqualFold(strings.TrimSpace(t.Header[0]), models.WeekColumn) {
		return nil, dataErrorf(0, "", "%s table: first column must be %q", name, models.WeekColumn)
	}
	if len(t.Header) < 2 {
		return nil, dataErrorf(0, "", "%s table has no player columns", name)
	}

	g := &grid{
		players: make([]string, 0, len(t.Header)-1),
		index:   make(map[string]int, len(t.Header)-1),
		cells:   make([][]string, 0, len(t.Rows)),
	}
	for _, h := range t.Header[1:] {
		player := strings.TrimSpace(h)
		if player == "" {
			return nil, dataErrorf(0, "", "%s table has an empty player column name", name)
		}
		if _, dup := g.index[player]; dup {
			return nil, dataErrorf(0, player, "%s table has a duplicate player column", name)
		}
		g.index[player] = len(g.players)
		g.players = append(g.players, player)
	}

	for i, row := range t.Rows {
		want := i + 1
		if len(row) == 0 {
			return nil, dataErrorf(want, "", "%s table: missing %s value", name, models.WeekColumn)
		}
		raw := strings.TrimSpace(row[0])
		week, err := strconv.Atoi(raw)
		if err != nil {
			return nil, dataErrorf(want, "", "%s table: malformed %s value %q", name, models.WeekColumn, raw)
		}
		if week != want {
			return nil, dataErrorf(want, "", "%s table: non-contiguous week numbering, got week %d", name, week)
		}
		if len(row) != len(t.Header) {
			return nil, dataErrorf(week, "", "%s table: row has %d cells, header has %d", name, len(row), len(t.Header))
		}
		cells := make([]string, len(g.players))
		for j := range g.players {
			cells[j] = strings.TrimSpace(row[j+1])
		}
		g.cells = append(g.cells, cells)
	}
	return g, nil
}

// pointsData holds the scores of played weeks. values[w-1][j] is player j's score in week w.
type pointsData struct {
	*grid
	values [][]float64
	played int
}

func (p *pointsData) currentWeek() int {
	return p.played + 1
}

func parsePoints(t models.Table) (*pointsData, error) {
	g, err := parseGrid(t, "points")
	if err != nil {
		return nil, err
	}
	if len(g.cells) == 0 {
		return nil, dataErrorf(0, "", "points table has no weeks")
	}

	p := &pointsData{grid: g, values: make([][]float64, 0, len(g.cells))}
	firstBlank := 0
	for i, cells := range g.cells {
		week := i + 1
		blank := 0
		firstBlankPlayer := ""
		for j, cell := range cells {
			if cell == "" {
				blank++
				if firstBlankPlayer == "" {
					firstBlankPlayer = g.players[j]
				}
			}
		}

		switch {
		case blank == len(cells):
			if firstBlank == 0 {
				firstBlank = week
			}
			continue
		case blank > 0:
			return nil, dataErrorf(week, firstBlankPlayer, "week is only partly scored")
		case firstBlank != 0:
			return nil, dataErrorf(week, "", "scored week follows unplayed week %d", firstBlank)
		}

		row := make([]float64, len(cells))
		for j, cell := range cells {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, dataErrorf(week, g.players[j], "non-numeric score %q", cell)
			}
			row[j] = v
		}
		p.values = append(p.values, row)
	}
	p.played = len(p.values)
	return p, nil
}

// scheduleData holds opponent indexes: opponents[w-1][j] is the column of player j's opponent in week w.
type scheduleData struct {
	*grid
	opponents [][]int
}

func (s *scheduleData) weeks() int {
	return len(s.opponents)
}

func parseSchedule(t models.Table) (*scheduleData, error) {
	g, err := parseGrid(t, "schedule")
	if err != nil {
		return nil, err
	}
	s := &scheduleData{grid: g, opponents: make([][]int, len(g.cells))}
	for i, cells := range g.cells {
		week := i + 1
		row := make([]int, len(cells))
		for j, cell := range cells {
			player := g.players[j]
			if cell == "" {
				return nil, dataErrorf(week, player, "missing scheduled opponent")
			}
			opp, ok := g.index[cell]
			if !ok {
				return nil, dataErrorf(week, player, "unknown opponent %q", cell)
			}
			if opp == j {
				return nil, dataErrorf(week, player, "player is scheduled against themselves")
			}
			row[j] = opp
		}
		s.opponents[i] = row
	}
	return s, nil
}

// season is a points table checked against its schedule.
type season struct {
	points   *pointsData
	schedule *scheduleData
}

func parseSeason(points, schedule models.Table) (*season, error) {
	p, err := parsePoints(points)
	if err != nil {
		return nil, err
	}
	s, err := parseSchedule(schedule)
	if err != nil {
		return nil, err
	}
	if err := samePlayers(s.players, p.players); err != nil {
		return nil, err
	}
	if p.played > s.weeks() {
		return nil, dataErrorf(s.weeks()+1, "", "points table scores a week missing from the schedule")
	}
	return &season{points: p, schedule: s}, nil
}

func samePlayers(schedule, points []string) error {
	if len(schedule) != len(points) {
		return dataErrorf(0, "", "schedule has %d players, points has %d", len(schedule), len(points))
	}
	for i := range schedule {
		if schedule[i] != points[i] {
			return dataErrorf(0, points[i], "player columns differ: schedule column %d is %q", i+1, schedule[i])
		}
	}
	return nil
}

func checkPlayedWeek(p *pointsData, week int) error {
	if week < 1 {
		return dataErrorf(0, "", "week %d is out of range", week)
	}
	if week > p.played {
		return dataErrorf(week, "", "week has not been played (current week is %d)", p.currentWeek())
	}
	return nil
}
