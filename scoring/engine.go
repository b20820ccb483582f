// Package scoring computes weekly head-to-head results, rank bonuses and season totals from a
// league's schedule and points tables. Every function is pure: the same tables and config
// always produce the same output, and nothing is cached or persisted here.
package scoring

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/Dosada05/league-stats/models"
)

// WeekOutcome is everything known about one player's played week before it is scored.
type WeekOutcome struct {
	Week           int
	Player         string
	Opponent       string
	Points         float64
	OpponentPoints float64
	Won            bool
	Rank           int
	Players        int
	RankBonus      float64
}

// Strategy turns a week outcome into the player's weekly total.
type Strategy interface {
	ScoreWeek(o WeekOutcome, cfg Config) float64
}

// NamedStrategy is a Strategy that identifies itself. Results cached under a shared cache are
// keyed by this name, so two strategies must not share one.
type NamedStrategy interface {
	Strategy
	Name() string
}

// DefaultStrategyName is reported by engines built with a nil strategy.
const DefaultStrategyName = "win-plus-rank"

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(o WeekOutcome, cfg Config) float64

func (f StrategyFunc) ScoreWeek(o WeekOutcome, cfg Config) float64 {
	return f(o, cfg)
}

// DefaultStrategy awards WinPoints for a win plus the rank bonus.
var DefaultStrategy Strategy = StrategyFunc(func(o WeekOutcome, cfg Config) float64 {
	var win float64
	if o.Won {
		win = cfg.WinPoints
	}
	return win + o.RankBonus
})

type Engine struct {
	cfg      Config
	strategy Strategy
	// winPlusRank is set when weekly totals are wins plus rank bonus, so season totals can be
	// rebuilt from the rounded rank points column.
	winPlusRank bool
}

// NewEngine returns an engine scoring with cfg. A nil strategy means DefaultStrategy.
func NewEngine(cfg Config, strategy Strategy) *Engine {
	e := &Engine{cfg: cfg, strategy: strategy}
	if strategy == nil {
		e.strategy = DefaultStrategy
		e.winPlusRank = true
	}
	return e
}

func (e *Engine) Config() Config {
	return e.cfg
}

// StrategyName identifies how weekly totals are computed. Strategies that do not implement
// NamedStrategy report their Go type.
func (e *Engine) StrategyName() string {
	if e.winPlusRank {
		return DefaultStrategyName
	}
	if named, ok := e.strategy.(NamedStrategy); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", e.strategy)
}

// CurrentWeek returns the first week with no scores, or one past the last row when every week
// is scored.
func CurrentWeek(points models.Table) (int, error) {
	p, err := parsePoints(points)
	if err != nil {
		return 0, err
	}
	return p.currentWeek(), nil
}

// WeeklyMatchupResult returns every player's head-to-head result for a played week. Equal
// points are a win for neither player.
func WeeklyMatchupResult(points, schedule models.Table, week int) (map[string]models.MatchupResult, error) {
	s, err := parseSeason(points, schedule)
	if err != nil {
		return nil, err
	}
	if err := checkPlayedWeek(s.points, week); err != nil {
		return nil, err
	}
	results := s.matchups(week)
	out := make(map[string]models.MatchupResult, len(results))
	for _, r := range results {
		out[r.Player] = r
	}
	return out, nil
}

// RankScoring returns each player's rank bonus for a played week under cfg.
func RankScoring(points models.Table, week int, cfg Config) (map[string]float64, error) {
	return NewEngine(cfg, nil).RankScoring(points, week)
}

// SeasonSummary returns every player's weekly totals and cumulative total under cfg.
func SeasonSummary(points, schedule models.Table, cfg Config) (map[string]models.PlayerSeason, error) {
	return NewEngine(cfg, nil).SeasonSummary(points, schedule)
}

func (e *Engine) CurrentWeek(points models.Table) (int, error) {
	return CurrentWeek(points)
}

func (e *Engine) WeeklyMatchupResult(points, schedule models.Table, week int) (map[string]models.MatchupResult, error) {
	return WeeklyMatchupResult(points, schedule, week)
}

func (e *Engine) RankScoring(points models.Table, week int) (map[string]float64, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := parsePoints(points)
	if err != nil {
		return nil, err
	}
	if err := checkPlayedWeek(p, week); err != nil {
		return nil, err
	}
	order := rankOrder(p, week)
	bonuses := make(map[string]float64, len(order))
	for i, j := range order {
		bonuses[p.players[j]] = e.cfg.RankBonus(i+1, len(order))
	}
	return bonuses, nil
}

func (e *Engine) SeasonSummary(points, schedule models.Table) (map[string]models.PlayerSeason, error) {
	scores, players, err := e.weekScores(points, schedule)
	if err != nil {
		return nil, err
	}
	summary := make(map[string]models.PlayerSeason, len(players))
	for _, player := range players {
		summary[player] = models.PlayerSeason{WeeklyTotals: []float64{}}
	}
	for _, sc := range scores {
		ps := summary[sc.Player]
		ps.WeeklyTotals = append(ps.WeeklyTotals, sc.WeeklyTotal)
		ps.CumulativeTotal = sc.CumulativeTotal
		summary[sc.Player] = ps
	}
	return summary, nil
}

// WeekScores returns the full scoring grid of every played week, ordered by week and then by
// header column.
func (e *Engine) WeekScores(points, schedule models.Table) ([]models.WeekScore, error) {
	scores, _, err := e.weekScores(points, schedule)
	return scores, err
}

func (e *Engine) weekScores(points, schedule models.Table) ([]models.WeekScore, []string, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	s, err := parseSeason(points, schedule)
	if err != nil {
		return nil, nil, err
	}
	return e.scoreThrough(s, s.points.played), s.points.players, nil
}

// scoreThrough scores weeks 1..through, accumulating totals left to right in week order.
func (e *Engine) scoreThrough(s *season, through int) []models.WeekScore {
	p := s.points
	n := len(p.players)
	cumulative := make([]float64, n)
	scores := make([]models.WeekScore, 0, through*n)
	seasonRanks := seasonScoreRanks(p, through)

	for week := 1; week <= through; week++ {
		ranks := make([]int, n)
		for i, j := range rankOrder(p, week) {
			ranks[j] = i + 1
		}
		for _, m := range s.matchups(week) {
			j := p.index[m.Player]
			opp := p.index[m.Opponent]
			o := WeekOutcome{
				Week:           week,
				Player:         m.Player,
				Opponent:       m.Opponent,
				Points:         m.OwnPoints,
				OpponentPoints: m.OpponentPoints,
				Won:            m.Won,
				Rank:           ranks[j],
				Players:        n,
				RankBonus:      e.cfg.RankBonus(ranks[j], n),
			}
			total := e.strategy.ScoreWeek(o, e.cfg)
			cumulative[j] += total
			scores = append(scores, models.WeekScore{
				Week:               week,
				Player:             m.Player,
				Opponent:           m.Opponent,
				Points:             m.OwnPoints,
				OpponentPoints:     m.OpponentPoints,
				Won:                m.Won,
				Rank:               o.Rank,
				RankBonus:          o.RankBonus,
				OpponentRankBonus:  e.cfg.RankBonus(ranks[opp], n),
				OpponentSeasonRank: seasonRanks[opp][week-1],
				WeeklyTotal:        total,
				CumulativeTotal:    cumulative[j],
			})
		}
	}
	return scores
}

// seasonScoreRanks ranks each player's weekly score among their own scores in weeks 1..through,
// ascending, so 1 is the player's lowest week. Equal scores share the average of their ranks.
// ranks[j][w-1] is player j's rank for week w.
func seasonScoreRanks(p *pointsData, through int) [][]float64 {
	ranks := make([][]float64, len(p.players))
	for j := range p.players {
		ranks[j] = make([]float64, through)
		for w := 0; w < through; w++ {
			v := p.values[w][j]
			below, equal := 0, 0
			for other := 0; other < through; other++ {
				switch u := p.values[other][j]; {
				case u < v:
					below++
				case u == v:
					equal++
				}
			}
			ranks[j][w] = float64(below) + float64(equal+1)/2
		}
	}
	return ranks
}

// matchups returns the week's results in header order. The week must be played.
func (s *season) matchups(week int) []models.MatchupResult {
	p := s.points
	values := p.values[week-1]
	opponents := s.schedule.opponents[week-1]
	results := make([]models.MatchupResult, len(p.players))
	for j, player := range p.players {
		opp := opponents[j]
		results[j] = models.MatchupResult{
			Week:             week,
			Player:           player,
			Opponent:         p.players[opp],
			OwnPoints:        values[j],
			OpponentPoints:   values[opp],
			Won:              values[j] > values[opp],
			ScheduleMismatch: opponents[opp] != j,
		}
	}
	return results
}

// rankOrder returns player columns sorted by the week's points descending, then name ascending.
func rankOrder(p *pointsData, week int) []int {
	values := p.values[week-1]
	order := make([]int, len(p.players))
	for j := range order {
		order[j] = j
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := cmp.Compare(values[b], values[a]); c != 0 {
			return c
		}
		return cmp.Compare(p.players[a], p.players[b])
	})
	return order
}
