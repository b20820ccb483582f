// Package scheduling builds head-to-head schedule tables for a league.
package scheduling

import (
	"context"
	"errors"

	"github.com/Dosada05/league-stats/models"
)

var (
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrOddPlayers       = errors.New("head-to-head schedule needs an even number of players")
	ErrInvalidPlayers   = errors.New("invalid player list")
	ErrInvalidWeeks     = errors.New("invalid number of weeks")
)

type GenerateParams struct {
	Players []string
	// Weeks is the schedule length. Zero means one full round robin (players-1 weeks).
	Weeks int
}

// Generator produces a schedule table in the same shape the scoring engine reads:
// a Week column followed by one column per player naming that week's opponent.
type Generator interface {
	Generate(ctx context.Context, params GenerateParams) (models.Table, error)

	Name() string
}
