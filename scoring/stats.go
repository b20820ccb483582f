package scoring

import (
	"cmp"
	"math"
	"slices"

	"github.com/Dosada05/league-stats/models"
)

// SeasonStats runs Engine.SeasonStats on a fresh engine with the default strategy.
func SeasonStats(points, schedule models.Table, cfg Config, throughWeek int) ([]models.SeasonStanding, error) {
	return NewEngine(cfg, nil).SeasonStats(points, schedule, throughWeek)
}

// SeasonStats builds the season stats table using weeks 1..throughWeek. A throughWeek of 0, or
// one past the last played week, means every played week.
func (e *Engine) SeasonStats(points, schedule models.Table, throughWeek int) ([]models.SeasonStanding, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := parseSeason(points, schedule)
	if err != nil {
		return nil, err
	}
	if throughWeek < 0 || throughWeek > s.schedule.weeks() {
		return nil, dataErrorf(0, "", "week %d is out of range", throughWeek)
	}
	through := throughWeek
	if through == 0 || through > s.points.played {
		through = s.points.played
	}

	p := s.points
	rows := make([]models.SeasonStanding, len(p.players))
	rankPoints := make([]float64, len(p.players))
	winPoints := make([]float64, len(p.players))
	totals := make([]float64, len(p.players))
	for j, player := range p.players {
		rows[j] = models.SeasonStanding{ThroughWeek: through, Player: player}
	}

	medians := make([]float64, through)
	for week := 1; week <= through; week++ {
		medians[week-1] = median(p.values[week-1])
	}

	for _, sc := range e.scoreThrough(s, through) {
		j := p.index[sc.Player]
		row := &rows[j]
		row.Points += sc.Points
		row.PointsAgainst += sc.OpponentPoints
		rankPoints[j] += sc.RankBonus
		totals[j] = sc.CumulativeTotal
		if sc.Won {
			row.Wins++
			winPoints[j] += e.cfg.WinPoints
		}
		if sc.Points > medians[sc.Week-1] {
			row.ExpectedWins++
		}
		if math.Abs(sc.Points-sc.OpponentPoints) <= e.cfg.CloseMatchMargin {
			if sc.Won {
				row.CloseWins++
			} else {
				row.CloseLosses++
			}
		}
	}

	// The rank points column is rounded first and the other columns are derived from it, so
	// TotalPoints = Wins*WinPoints + RankPoints holds row by row.
	for j := range rankPoints {
		rankPoints[j] = round(rankPoints[j], 1)
	}
	for j := range rows {
		rows[j].Points = round(rows[j].Points, 2)
		rows[j].PointsAgainst = round(rows[j].PointsAgainst, 2)
		rows[j].RankPoints = rankPoints[j]
		if e.winPlusRank {
			rows[j].TotalPoints = round(winPoints[j]+rankPoints[j], 2)
		} else {
			rows[j].TotalPoints = round(totals[j], 2)
		}
		rows[j].RemainingOppAvgRankPoints = remainingOpponentAvg(s.schedule, j, through, rankPoints)
	}

	slices.SortStableFunc(rows, func(a, b models.SeasonStanding) int {
		if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
			return c
		}
		return cmp.Compare(a.Player, b.Player)
	})
	for i := range rows {
		if i > 0 && rows[i].TotalPoints == rows[i-1].TotalPoints {
			rows[i].Place = rows[i-1].Place
			continue
		}
		rows[i].Place = i + 1
	}
	return rows, nil
}

// remainingOpponentAvg averages, over the weeks after through, the scheduled opponent's rounded
// rank points per played week.
func remainingOpponentAvg(s *scheduleData, player, through int, rankPoints []float64) float64 {
	if through == 0 || through >= s.weeks() {
		return 0
	}
	var sum float64
	for week := through + 1; week <= s.weeks(); week++ {
		opp := s.opponents[week-1][player]
		sum += rankPoints[opp] / float64(through)
	}
	return round(sum/float64(s.weeks()-through), 2)
}

// BuildWeekView runs Engine.BuildWeekView on a fresh engine with the default strategy.
func BuildWeekView(points, schedule models.Table, cfg Config, week int) (models.WeekView, error) {
	return NewEngine(cfg, nil).BuildWeekView(points, schedule, week)
}

// BuildWeekView returns the weekly chart for any scheduled week. Matchup numbers start at 1 and
// are handed out in entry order, one per pairing.
func (e *Engine) BuildWeekView(points, schedule models.Table, week int) (models.WeekView, error) {
	if err := e.cfg.Validate(); err != nil {
		return models.WeekView{}, err
	}
	s, err := parseSeason(points, schedule)
	if err != nil {
		return models.WeekView{}, err
	}
	if week < 1 || week > s.schedule.weeks() {
		return models.WeekView{}, dataErrorf(0, "", "week %d is out of range", week)
	}

	p := s.points
	view := models.WeekView{
		Week:        week,
		CurrentWeek: p.currentWeek(),
		Played:      week <= p.played,
		Entries:     make([]models.WeekViewEntry, 0, len(p.players)),
	}
	opponents := s.schedule.opponents[week-1]

	if view.Played {
		results := s.matchups(week)
		order := rankOrder(p, week)
		for i, j := range order {
			pts := results[j].OwnPoints
			view.Entries = append(view.Entries, models.WeekViewEntry{
				Player:    p.players[j],
				Points:    &pts,
				Opponent:  results[j].Opponent,
				Won:       results[j].Won,
				Rank:      i + 1,
				RankBonus: e.cfg.RankBonus(i+1, len(order)),
			})
		}
	} else {
		for j, player := range p.players {
			view.Entries = append(view.Entries, models.WeekViewEntry{
				Player:   player,
				Opponent: p.players[opponents[j]],
			})
		}
	}

	numbers := make(map[string]int, len(view.Entries))
	next := 1
	for _, entry := range view.Entries {
		if _, ok := numbers[entry.Player]; ok {
			continue
		}
		numbers[entry.Player] = next
		numbers[entry.Opponent] = next
		next++
	}
	for i := range view.Entries {
		view.Entries[i].MatchupNumber = numbers[view.Entries[i].Player]
	}
	return view, nil
}

// ScheduleIssues reports every asymmetric pairing in the schedule, in week and header order.
func ScheduleIssues(schedule models.Table) ([]models.ScheduleIssue, error) {
	s, err := parseSchedule(schedule)
	if err != nil {
		return nil, err
	}
	issues := make([]models.ScheduleIssue, 0)
	for i, row := range s.opponents {
		for j, opp := range row {
			if row[opp] == j {
				continue
			}
			issues = append(issues, models.ScheduleIssue{
				Week:             i + 1,
				Player:           s.players[j],
				Opponent:         s.players[opp],
				OpponentOpponent: s.players[row[opp]],
			})
		}
	}
	return issues, nil
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// round rounds half to even.
func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(v*scale) / scale
}
