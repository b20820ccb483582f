package models

// MatchupResult is one player's head-to-head outcome for a played week.
type MatchupResult struct {
	Week           int     `json:"week"`
	Player         string  `json:"player"`
	Opponent       string  `json:"opponent"`
	OwnPoints      float64 `json:"own_points"`
	OpponentPoints float64 `json:"opponent_points"`
	Won            bool    `json:"won"`
	// ScheduleMismatch is set when the opponent's own schedule cell does not name this player.
	ScheduleMismatch bool `json:"schedule_mismatch,omitempty"`
}

// WeekScore is the full scoring record of one player in one played week.
type WeekScore struct {
	Week            int     `json:"week"`
	Player          string  `json:"player"`
	Opponent        string  `json:"opponent"`
	Points          float64 `json:"points"`
	OpponentPoints  float64 `json:"opponent_points"`
	Won             bool    `json:"won"`
	Rank            int     `json:"rank"`
	RankBonus       float64 `json:"rank_bonus"`
	// OpponentRankBonus is the rank bonus the opponent earned in the same week.
	OpponentRankBonus float64 `json:"opponent_rank_bonus"`
	// OpponentSeasonRank places the opponent's score among the opponent's own weeks so far
	// (1 = their lowest). Tied weeks share the average rank.
	OpponentSeasonRank float64 `json:"opponent_season_rank"`
	WeeklyTotal        float64 `json:"weekly_total"`
	CumulativeTotal    float64 `json:"cumulative_total"`
}

// PlayerSeason is a player's per-week totals and their running sum.
type PlayerSeason struct {
	WeeklyTotals    []float64 `json:"weekly_totals"`
	CumulativeTotal float64   `json:"cumulative_total"`
}

// ScheduleIssue reports a pairing that is not symmetric in the schedule.
type ScheduleIssue struct {
	Week     int    `json:"week"`
	Player   string `json:"player"`
	Opponent string `json:"opponent"`
	// OpponentOpponent is who the opponent is scheduled against in the same week.
	OpponentOpponent string `json:"opponent_opponent"`
}
