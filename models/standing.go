package models

import "time"

// SeasonStanding is one row of the season stats table as of a given week.
type SeasonStanding struct {
	SnapshotID                string    `json:"snapshot_id,omitempty" db:"snapshot_id"`
	ThroughWeek               int       `json:"through_week" db:"through_week"`
	Place                     int       `json:"place" db:"place"`
	Player                    string    `json:"player" db:"player"`
	Points                    float64   `json:"points" db:"points"`
	PointsAgainst             float64   `json:"points_against" db:"points_against"`
	Wins                      int       `json:"wins" db:"wins"`
	RankPoints                float64   `json:"rank_points" db:"rank_points"`
	TotalPoints               float64   `json:"total_points" db:"total_points"`
	ExpectedWins              int       `json:"expected_wins" db:"expected_wins"`
	CloseWins                 int       `json:"close_wins" db:"close_wins"`
	CloseLosses               int       `json:"close_losses" db:"close_losses"`
	RemainingOppAvgRankPoints float64   `json:"remaining_opp_avg_rank_points" db:"remaining_opp_avg_rank_points"`
	CreatedAt                 time.Time `json:"created_at,omitempty" db:"created_at"`
}

// WeekViewEntry is one bar of the weekly chart.
type WeekViewEntry struct {
	Player        string   `json:"player"`
	Points        *float64 `json:"points,omitempty"`
	Opponent      string   `json:"opponent"`
	MatchupNumber int      `json:"matchup_number"`
	Won           bool     `json:"won"`
	Rank          int      `json:"rank,omitempty"`
	RankBonus     float64  `json:"rank_bonus,omitempty"`
}

// WeekView is the weekly chart: played weeks are sorted by points, unplayed weeks keep header order.
type WeekView struct {
	Week        int             `json:"week"`
	CurrentWeek int             `json:"current_week"`
	Played      bool            `json:"played"`
	Entries     []WeekViewEntry `json:"entries"`
}
