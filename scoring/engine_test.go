package scoring

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Dosada05/league-stats/models"
)

// leagueSchedule is a four-player, three-week round robin.
func leagueSchedule() models.Table {
	return models.Table{
		Header: []string{"Week", "Jim", "Dwight", "Pam", "Andy"},
		Rows: [][]string{
			{"1", "Dwight", "Jim", "Andy", "Pam"},
			{"2", "Pam", "Andy", "Jim", "Dwight"},
			{"3", "Andy", "Pam", "Dwight", "Jim"},
		},
	}
}

// leaguePoints has weeks 1 and 2 scored and week 3 blank. Week 2 has a 70-70 tie between
// Dwight and Andy.
func leaguePoints() models.Table {
	return models.Table{
		Header: []string{"Week", "Jim", "Dwight", "Pam", "Andy"},
		Rows: [][]string{
			{"1", "100", "95", "80", "120"},
			{"2", "90", "70", "110", "70"},
			{"3", "", "", "", ""},
		},
	}
}

func assertDataError(t *testing.T, err error, week int, player string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected a data error, got nil")
	}
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("errors.Is(err, ErrInvalidData) = false for %v", err)
	}
	var de *DataError
	if !errors.As(err, &de) {
		t.Fatalf("error %v is not a *DataError", err)
	}
	if de.Week != week {
		t.Errorf("DataError.Week = %d, want %d (%v)", de.Week, week, err)
	}
	if de.Player != player {
		t.Errorf("DataError.Player = %q, want %q (%v)", de.Player, player, err)
	}
}

func TestSeasonSummary_TwoPlayerExample(t *testing.T) {
	schedule := models.Table{
		Header: []string{"Week", "Jim", "Dwight"},
		Rows:   [][]string{{"1", "Dwight", "Jim"}},
	}
	points := models.Table{
		Header: []string{"Week", "Jim", "Dwight"},
		Rows:   [][]string{{"1", "90.21", "80.73"}},
	}
	cfg := Config{WinPoints: 10, RankBonusTable: map[int]float64{1: 5, 2: 0}}

	got, err := SeasonSummary(points, schedule, cfg)
	if err != nil {
		t.Fatalf("SeasonSummary error: %v", err)
	}
	want := map[string]models.PlayerSeason{
		"Jim":    {WeeklyTotals: []float64{15}, CumulativeTotal: 15},
		"Dwight": {WeeklyTotals: []float64{0}, CumulativeTotal: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SeasonSummary = %+v, want %+v", got, want)
	}
}

func TestCurrentWeek(t *testing.T) {
	header := []string{"Week", "Jim", "Dwight"}

	t.Run("first blank week", func(t *testing.T) {
		points := models.Table{Header: header, Rows: [][]string{
			{"1", "90", "80"},
			{"2", "", ""},
			{"3", "", ""},
		}}
		got, err := CurrentWeek(points)
		if err != nil {
			t.Fatalf("CurrentWeek error: %v", err)
		}
		if got != 2 {
			t.Errorf("CurrentWeek = %d, want 2", got)
		}
	})

	t.Run("fully scored season", func(t *testing.T) {
		points := models.Table{Header: header, Rows: [][]string{
			{"1", "90", "80"},
			{"2", "70", "75.5"},
		}}
		got, err := CurrentWeek(points)
		if err != nil {
			t.Fatalf("CurrentWeek error: %v", err)
		}
		if got != 3 {
			t.Errorf("CurrentWeek = %d, want 3", got)
		}
	})

	t.Run("nothing played", func(t *testing.T) {
		points := models.Table{Header: header, Rows: [][]string{{"1", "", ""}}}
		got, err := CurrentWeek(points)
		if err != nil {
			t.Fatalf("CurrentWeek error: %v", err)
		}
		if got != 1 {
			t.Errorf("CurrentWeek = %d, want 1", got)
		}
	})

	t.Run("partly scored week", func(t *testing.T) {
		points := models.Table{Header: header, Rows: [][]string{{"1", "", "80"}}}
		_, err := CurrentWeek(points)
		assertDataError(t, err, 1, "Jim")
	})

	t.Run("scored week after blank week", func(t *testing.T) {
		points := models.Table{Header: header, Rows: [][]string{
			{"1", "90", "80"},
			{"2", "", ""},
			{"3", "70", "60"},
		}}
		_, err := CurrentWeek(points)
		assertDataError(t, err, 3, "")
	})

	t.Run("empty table", func(t *testing.T) {
		_, err := CurrentWeek(models.Table{Header: header})
		assertDataError(t, err, 0, "")
	})

	t.Run("non-numeric score", func(t *testing.T) {
		points := models.Table{Header: header, Rows: [][]string{{"1", "90", "eighty"}}}
		_, err := CurrentWeek(points)
		assertDataError(t, err, 1, "Dwight")
	})

	t.Run("missing week column", func(t *testing.T) {
		points := models.Table{Header: []string{"Jim", "Dwight"}, Rows: [][]string{{"90", "80"}}}
		_, err := CurrentWeek(points)
		assertDataError(t, err, 0, "")
	})

	t.Run("non-contiguous weeks", func(t *testing.T) {
		points := models.Table{Header: header, Rows: [][]string{
			{"1", "90", "80"},
			{"3", "70", "60"},
		}}
		_, err := CurrentWeek(points)
		assertDataError(t, err, 2, "")
	})

	t.Run("malformed week value", func(t *testing.T) {
		points := models.Table{Header: header, Rows: [][]string{{"one", "90", "80"}}}
		_, err := CurrentWeek(points)
		assertDataError(t, err, 1, "")
	})

	t.Run("duplicate player column", func(t *testing.T) {
		points := models.Table{Header: []string{"Week", "Jim", "Jim"}, Rows: [][]string{{"1", "90", "80"}}}
		_, err := CurrentWeek(points)
		assertDataError(t, err, 0, "Jim")
	})

	t.Run("ragged row", func(t *testing.T) {
		points := models.Table{Header: header, Rows: [][]string{{"1", "90"}}}
		_, err := CurrentWeek(points)
		assertDataError(t, err, 1, "")
	})
}

func TestWeeklyMatchupResult_Symmetric(t *testing.T) {
	results, err := WeeklyMatchupResult(leaguePoints(), leagueSchedule(), 1)
	if err != nil {
		t.Fatalf("WeeklyMatchupResult error: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("len(results) = %d, want 4", len(results))
	}
	for player, r := range results {
		opp, ok := results[r.Opponent]
		if !ok {
			t.Fatalf("%s's opponent %q missing from results", player, r.Opponent)
		}
		if opp.Opponent != player {
			t.Errorf("%s plays %s, but %s plays %s", player, r.Opponent, r.Opponent, opp.Opponent)
		}
		if r.OwnPoints != opp.OpponentPoints || r.OpponentPoints != opp.OwnPoints {
			t.Errorf("%s vs %s points are not mirrored: %+v / %+v", player, r.Opponent, r, opp)
		}
		if r.Won == opp.Won {
			t.Errorf("%s vs %s: exactly one side should win (%v / %v)", player, r.Opponent, r.Won, opp.Won)
		}
		if r.ScheduleMismatch {
			t.Errorf("%s: unexpected schedule mismatch", player)
		}
	}
	if !results["Jim"].Won || results["Dwight"].Won {
		t.Errorf("Jim 100 vs Dwight 95: Jim.Won = %v, Dwight.Won = %v", results["Jim"].Won, results["Dwight"].Won)
	}
}

func TestWeeklyMatchupResult_EqualPointsNoWinner(t *testing.T) {
	results, err := WeeklyMatchupResult(leaguePoints(), leagueSchedule(), 2)
	if err != nil {
		t.Fatalf("WeeklyMatchupResult error: %v", err)
	}
	if results["Dwight"].Won || results["Andy"].Won {
		t.Errorf("70-70 tie: Dwight.Won = %v, Andy.Won = %v, want both false",
			results["Dwight"].Won, results["Andy"].Won)
	}
	if results["Dwight"].Opponent != "Andy" {
		t.Errorf("Dwight.Opponent = %q, want Andy", results["Dwight"].Opponent)
	}
}

func TestWeeklyMatchupResult_Errors(t *testing.T) {
	t.Run("unplayed week", func(t *testing.T) {
		_, err := WeeklyMatchupResult(leaguePoints(), leagueSchedule(), 3)
		assertDataError(t, err, 3, "")
	})

	t.Run("week zero", func(t *testing.T) {
		_, err := WeeklyMatchupResult(leaguePoints(), leagueSchedule(), 0)
		assertDataError(t, err, 0, "")
	})

	t.Run("week past the season", func(t *testing.T) {
		_, err := WeeklyMatchupResult(leaguePoints(), leagueSchedule(), 9)
		assertDataError(t, err, 9, "")
	})

	t.Run("unknown opponent", func(t *testing.T) {
		schedule := leagueSchedule()
		schedule.Rows[0][3] = "Michael"
		_, err := WeeklyMatchupResult(leaguePoints(), schedule, 1)
		assertDataError(t, err, 1, "Pam")
	})

	t.Run("self opponent", func(t *testing.T) {
		schedule := leagueSchedule()
		schedule.Rows[1][1] = "Jim"
		_, err := WeeklyMatchupResult(leaguePoints(), schedule, 1)
		assertDataError(t, err, 2, "Jim")
	})

	t.Run("mismatched players", func(t *testing.T) {
		points := leaguePoints()
		points.Header[4] = "Angela"
		_, err := WeeklyMatchupResult(points, leagueSchedule(), 1)
		assertDataError(t, err, 0, "Angela")
	})

	t.Run("missing player column", func(t *testing.T) {
		points := models.Table{
			Header: []string{"Week", "Jim", "Dwight", "Pam"},
			Rows:   [][]string{{"1", "100", "95", "80"}},
		}
		_, err := WeeklyMatchupResult(points, leagueSchedule(), 1)
		assertDataError(t, err, 0, "")
	})

	t.Run("scored week missing from schedule", func(t *testing.T) {
		schedule := leagueSchedule()
		schedule.Rows = schedule.Rows[:1]
		_, err := WeeklyMatchupResult(leaguePoints(), schedule, 1)
		assertDataError(t, err, 2, "")
	})
}

func TestWeeklyMatchupResult_ReportsAsymmetricPairing(t *testing.T) {
	schedule := leagueSchedule()
	// Pam now names Jim, while Jim still names Dwight.
	schedule.Rows[0][3] = "Jim"
	results, err := WeeklyMatchupResult(leaguePoints(), schedule, 1)
	if err != nil {
		t.Fatalf("WeeklyMatchupResult error: %v", err)
	}
	if !results["Pam"].ScheduleMismatch {
		t.Error("Pam.ScheduleMismatch = false, want true")
	}
	if results["Jim"].ScheduleMismatch {
		t.Error("Jim.ScheduleMismatch = true, want false")
	}
}

func TestRankScoring_DescendingOrder(t *testing.T) {
	cfg := Config{RankBonusTable: map[int]float64{1: 5, 2: 3, 3: 1}}
	got, err := RankScoring(leaguePoints(), 1, cfg)
	if err != nil {
		t.Fatalf("RankScoring error: %v", err)
	}
	want := map[string]float64{"Andy": 5, "Jim": 3, "Dwight": 1, "Pam": 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RankScoring = %v, want %v", got, want)
	}
}

func TestRankScoring_TiesBreakByName(t *testing.T) {
	cfg := Config{RankBonusTable: map[int]float64{1: 4, 2: 3, 3: 2, 4: 1}}
	first, err := RankScoring(leaguePoints(), 2, cfg)
	if err != nil {
		t.Fatalf("RankScoring error: %v", err)
	}
	// Andy and Dwight both scored 70; Andy sorts first.
	if first["Andy"] != 2 || first["Dwight"] != 1 {
		t.Errorf("tied bonuses Andy = %v, Dwight = %v, want 2 and 1", first["Andy"], first["Dwight"])
	}
	for i := 0; i < 10; i++ {
		again, err := RankScoring(leaguePoints(), 2, cfg)
		if err != nil {
			t.Fatalf("RankScoring error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("RankScoring not deterministic: %v vs %v", first, again)
		}
	}
}

func TestRankScoring_Linear(t *testing.T) {
	got, err := RankScoring(leaguePoints(), 1, DefaultConfig())
	if err != nil {
		t.Fatalf("RankScoring error: %v", err)
	}
	want := map[string]float64{"Andy": 1, "Jim": 0.75, "Dwight": 0.5, "Pam": 0.25}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RankScoring = %v, want %v", got, want)
	}
}

func TestRankScoring_Errors(t *testing.T) {
	_, err := RankScoring(leaguePoints(), 3, DefaultConfig())
	assertDataError(t, err, 3, "")

	bad := Config{RankBonusTable: map[int]float64{0: 1}}
	_, err = RankScoring(leaguePoints(), 1, bad)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("RankScoring with rank 0 bonus: err = %v, want ErrInvalidConfig", err)
	}
}

func TestSeasonSummary_CumulativeIsRunningSum(t *testing.T) {
	got, err := SeasonSummary(leaguePoints(), leagueSchedule(), DefaultConfig())
	if err != nil {
		t.Fatalf("SeasonSummary error: %v", err)
	}
	want := map[string]models.PlayerSeason{
		"Jim":    {WeeklyTotals: []float64{1.75, 0.75}, CumulativeTotal: 2.5},
		"Dwight": {WeeklyTotals: []float64{0.5, 0.25}, CumulativeTotal: 0.75},
		"Pam":    {WeeklyTotals: []float64{0.25, 2}, CumulativeTotal: 2.25},
		"Andy":   {WeeklyTotals: []float64{2, 0.5}, CumulativeTotal: 2.5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SeasonSummary = %+v, want %+v", got, want)
	}

	for player, ps := range got {
		var sum float64
		for _, w := range ps.WeeklyTotals {
			sum += w
		}
		if sum != ps.CumulativeTotal {
			t.Errorf("%s: sum(weekly) = %v, cumulative = %v", player, sum, ps.CumulativeTotal)
		}
	}

	again, err := SeasonSummary(leaguePoints(), leagueSchedule(), DefaultConfig())
	if err != nil {
		t.Fatalf("SeasonSummary error: %v", err)
	}
	if !reflect.DeepEqual(got, again) {
		t.Error("SeasonSummary is not deterministic across calls")
	}
}

func TestSeasonSummary_NothingPlayed(t *testing.T) {
	points := leaguePoints()
	points.Rows = [][]string{{"1", "", "", "", ""}}
	got, err := SeasonSummary(points, leagueSchedule(), DefaultConfig())
	if err != nil {
		t.Fatalf("SeasonSummary error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len(summary) = %d, want 4", len(got))
	}
	for player, ps := range got {
		if len(ps.WeeklyTotals) != 0 || ps.CumulativeTotal != 0 {
			t.Errorf("%s: %+v, want empty season", player, ps)
		}
	}
}

func TestEngine_CustomStrategy(t *testing.T) {
	// Winner takes their margin of victory.
	margin := StrategyFunc(func(o WeekOutcome, cfg Config) float64 {
		if !o.Won {
			return 0
		}
		return o.Points - o.OpponentPoints
	})
	e := NewEngine(DefaultConfig(), margin)
	got, err := e.SeasonSummary(leaguePoints(), leagueSchedule())
	if err != nil {
		t.Fatalf("SeasonSummary error: %v", err)
	}
	if got["Jim"].CumulativeTotal != 5 {
		t.Errorf("Jim total = %v, want 5", got["Jim"].CumulativeTotal)
	}
	if got["Andy"].CumulativeTotal != 40 {
		t.Errorf("Andy total = %v, want 40", got["Andy"].CumulativeTotal)
	}
	if got["Pam"].CumulativeTotal != 20 {
		t.Errorf("Pam total = %v, want 20", got["Pam"].CumulativeTotal)
	}
}

func TestEngine_WeekScores(t *testing.T) {
	scores, err := NewEngine(DefaultConfig(), nil).WeekScores(leaguePoints(), leagueSchedule())
	if err != nil {
		t.Fatalf("WeekScores error: %v", err)
	}
	if len(scores) != 8 {
		t.Fatalf("len(scores) = %d, want 8", len(scores))
	}
	first := scores[0]
	if first.Week != 1 || first.Player != "Jim" || first.Rank != 2 || first.RankBonus != 0.75 || !first.Won {
		t.Errorf("scores[0] = %+v", first)
	}
	last := scores[7]
	if last.Week != 2 || last.Player != "Andy" || last.CumulativeTotal != 2.5 {
		t.Errorf("scores[7] = %+v", last)
	}
}

func TestEngine_WeekScoresOpponentStats(t *testing.T) {
	scores, err := NewEngine(DefaultConfig(), nil).WeekScores(leaguePoints(), leagueSchedule())
	if err != nil {
		t.Fatalf("WeekScores error: %v", err)
	}
	tests := []struct {
		index      int
		player     string
		oppBonus   float64
		seasonRank float64
	}{
		// Week 1: Dwight scored 95 (3rd of 4), his better week of two.
		{0, "Jim", 0.5, 2},
		// Week 2: Pam scored 110 (1st), her better week.
		{4, "Jim", 1, 2},
		// Week 2: Andy scored 70 (3rd on the name tie-break), his worse week.
		{5, "Dwight", 0.5, 1},
	}
	for _, tt := range tests {
		got := scores[tt.index]
		if got.Player != tt.player || got.OpponentRankBonus != tt.oppBonus || got.OpponentSeasonRank != tt.seasonRank {
			t.Errorf("scores[%d] = %s opp bonus %v season rank %v, want %s %v %v",
				tt.index, got.Player, got.OpponentRankBonus, got.OpponentSeasonRank, tt.player, tt.oppBonus, tt.seasonRank)
		}
	}
}

func TestEngine_OpponentSeasonRankAveragesTies(t *testing.T) {
	schedule := models.Table{
		Header: []string{"Week", "Jim", "Dwight"},
		Rows: [][]string{
			{"1", "Dwight", "Jim"},
			{"2", "Dwight", "Jim"},
			{"3", "Dwight", "Jim"},
		},
	}
	points := models.Table{
		Header: []string{"Week", "Jim", "Dwight"},
		Rows: [][]string{
			{"1", "80", "70"},
			{"2", "90", "70"},
			{"3", "80", "100"},
		},
	}
	scores, err := NewEngine(DefaultConfig(), nil).WeekScores(points, schedule)
	if err != nil {
		t.Fatalf("WeekScores error: %v", err)
	}

	var got []float64
	for _, sc := range scores {
		if sc.Player == "Dwight" {
			got = append(got, sc.OpponentSeasonRank)
		}
	}
	if want := []float64{1.5, 3, 1.5}; !reflect.DeepEqual(got, want) {
		t.Errorf("Dwight's opponent season ranks = %v, want %v", got, want)
	}
}
