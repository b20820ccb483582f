package scheduling

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/league-stats/scoring"
)

func TestRoundRobinEveryPairMeetsOncePerCycle(t *testing.T) {
	players := []string{"Jim", "Dwight", "Pam", "Andy", "Kevin", "Oscar"}
	table, err := NewRoundRobinGenerator().Generate(context.Background(), GenerateParams{Players: players})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(table.Rows) != len(players)-1 {
		t.Fatalf("weeks = %d, want %d", len(table.Rows), len(players)-1)
	}

	met := make(map[[2]string]int)
	for _, row := range table.Rows {
		for j, opp := range row[1:] {
			player := table.Header[j+1]
			if player < opp {
				met[[2]string{player, opp}]++
			}
		}
	}
	want := len(players) * (len(players) - 1) / 2
	if len(met) != want {
		t.Errorf("distinct pairings = %d, want %d", len(met), want)
	}
	for pair, count := range met {
		if count != 1 {
			t.Errorf("pair %v met %d times", pair, count)
		}
	}

	issues, err := scoring.ScheduleIssues(table)
	if err != nil {
		t.Fatalf("ScheduleIssues() error = %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("generated schedule has issues: %+v", issues)
	}
}

func TestRoundRobinRepeatsCycle(t *testing.T) {
	table, err := NewRoundRobinGenerator().Generate(context.Background(), GenerateParams{
		Players: []string{"A", "B", "C", "D"},
		Weeks:   7,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(table.Rows) != 7 {
		t.Fatalf("weeks = %d, want 7", len(table.Rows))
	}
	for j := 1; j < len(table.Header); j++ {
		if table.Rows[0][j] != table.Rows[3][j] {
			t.Errorf("week 4 column %s = %q, want week 1 opponent %q", table.Header[j], table.Rows[3][j], table.Rows[0][j])
		}
	}
	if table.Rows[6][0] != "7" {
		t.Errorf("last week label = %q", table.Rows[6][0])
	}
}

func TestRoundRobinRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		params GenerateParams
		want   error
	}{
		{"single player", GenerateParams{Players: []string{"A"}}, ErrNotEnoughPlayers},
		{"odd count", GenerateParams{Players: []string{"A", "B", "C"}}, ErrOddPlayers},
		{"duplicate", GenerateParams{Players: []string{"A", "A"}}, ErrInvalidPlayers},
		{"blank", GenerateParams{Players: []string{"A", " "}}, ErrInvalidPlayers},
		{"reserved", GenerateParams{Players: []string{"A", "week"}}, ErrInvalidPlayers},
		{"negative weeks", GenerateParams{Players: []string{"A", "B"}, Weeks: -1}, ErrInvalidWeeks},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRoundRobinGenerator().Generate(context.Background(), tt.params)
			if !errors.Is(err, tt.want) {
				t.Errorf("Generate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRoundRobinHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRoundRobinGenerator().Generate(ctx, GenerateParams{Players: []string{"A", "B"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
}
