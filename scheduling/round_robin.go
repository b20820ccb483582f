package scheduling

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/league-stats/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

// Generate pairs players with the circle method: the first player stays fixed and the rest rotate
// one seat per week, so every pair meets once per cycle of players-1 weeks. Longer seasons repeat
// the cycle.
func (g *RoundRobinGenerator) Generate(ctx context.Context, params GenerateParams) (models.Table, error) {
	players, err := cleanPlayers(params.Players)
	if err != nil {
		return models.Table{}, err
	}
	n := len(players)
	if n < 2 {
		return models.Table{}, fmt.Errorf("%w: found %d, min 2 required", ErrNotEnoughPlayers, n)
	}
	if n%2 != 0 {
		return models.Table{}, fmt.Errorf("%w: found %d", ErrOddPlayers, n)
	}
	if params.Weeks < 0 {
		return models.Table{}, fmt.Errorf("%w: %d", ErrInvalidWeeks, params.Weeks)
	}
	weeks := params.Weeks
	if weeks == 0 {
		weeks = n - 1
	}

	index := make(map[string]int, n)
	for i, p := range players {
		index[p] = i
	}

	table := models.Table{
		Header: append([]string{models.WeekColumn}, players...),
		Rows:   make([][]string, 0, weeks),
	}

	seats := make([]string, n)
	copy(seats, players)
	for week := 1; week <= weeks; week++ {
		if err := ctx.Err(); err != nil {
			return models.Table{}, err
		}

		row := make([]string, n+1)
		row[0] = strconv.Itoa(week)
		for i := 0; i < n/2; i++ {
			home, away := seats[i], seats[n-1-i]
			row[index[home]+1] = away
			row[index[away]+1] = home
		}
		table.Rows = append(table.Rows, row)

		rotate(seats)
	}
	return table, nil
}

// rotate moves every seat but the first one place clockwise.
func rotate(seats []string) {
	last := seats[len(seats)-1]
	copy(seats[2:], seats[1:len(seats)-1])
	seats[1] = last
}

func cleanPlayers(raw []string) ([]string, error) {
	players := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("%w: empty player name", ErrInvalidPlayers)
		}
		if strings.EqualFold(p, models.WeekColumn) {
			return nil, fmt.Errorf("%w: %q is reserved", ErrInvalidPlayers, p)
		}
		if _, dup := seen[p]; dup {
			return nil, fmt.Errorf("%w: duplicate player %q", ErrInvalidPlayers, p)
		}
		seen[p] = struct{}{}
		players = append(players, p)
	}
	return players, nil
}
