package scoring

import (
	"fmt"
	"math"
)

// Config is the numeric scoring policy of a league.
type Config struct {
	// WinPoints is awarded for winning the weekly head-to-head matchup.
	WinPoints float64 `json:"win_points" yaml:"win_points"`
	// RankBonusTable maps a weekly rank (1 = most points) to bonus points. Ranks missing from a
	// non-empty table earn nothing.
	RankBonusTable map[int]float64 `json:"rank_bonus_table,omitempty" yaml:"rank_bonus_table"`
	// LinearRankScale is used when RankBonusTable is empty: the bonus for rank r of n players is
	// LinearRankScale * (n - r + 1) / n.
	LinearRankScale float64 `json:"linear_rank_scale" yaml:"linear_rank_scale"`
	// CloseMatchMargin is the largest point difference still counted as a close match.
	CloseMatchMargin float64 `json:"close_match_margin" yaml:"close_match_margin"`
}

// DefaultConfig scores one point per win plus rank bonus (players-rank+1)/players.
func DefaultConfig() Config {
	return Config{
		WinPoints:        1,
		LinearRankScale:  1,
		CloseMatchMargin: 10,
	}
}

func (c Config) Validate() error {
	if !isFinite(c.WinPoints) {
		return fmt.Errorf("%w: win points must be finite", ErrInvalidConfig)
	}
	if !isFinite(c.LinearRankScale) {
		return fmt.Errorf("%w: linear rank scale must be finite", ErrInvalidConfig)
	}
	if !isFinite(c.CloseMatchMargin) || c.CloseMatchMargin < 0 {
		return fmt.Errorf("%w: close match margin must be a non-negative number", ErrInvalidConfig)
	}
	for rank, bonus := range c.RankBonusTable {
		if rank < 1 {
			return fmt.Errorf("%w: rank bonus table has rank %d, ranks start at 1", ErrInvalidConfig, rank)
		}
		if !isFinite(bonus) {
			return fmt.Errorf("%w: rank %d bonus must be finite", ErrInvalidConfig, rank)
		}
	}
	return nil
}

// RankBonus returns the bonus for finishing a week at rank among players.
func (c Config) RankBonus(rank, players int) float64 {
	if rank < 1 || players < 1 || rank > players {
		return 0
	}
	if len(c.RankBonusTable) > 0 {
		return c.RankBonusTable[rank]
	}
	return c.LinearRankScale * float64(players-rank+1) / float64(players)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
