package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Dosada05/league-stats/models"
	"github.com/Dosada05/league-stats/scoring"
)

func writeTables(t *testing.T, schedule, points string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	s := filepath.Join(dir, "schedule.csv")
	p := filepath.Join(dir, "points.csv")
	if err := os.WriteFile(s, []byte(schedule), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(points), 0o644); err != nil {
		t.Fatal(err)
	}
	return s, p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const (
	scheduleCSV = "Week,Jim,Dwight\n1,Dwight,Jim\n2,Dwight,Jim\n"
	pointsCSV   = "Week,Jim,Dwight\n1,90.21,80.73\n2,,\n"
)

func TestCurrentWeek(t *testing.T) {
	s, p := writeTables(t, scheduleCSV, pointsCSV)
	out, err := run(t, "current-week", "--schedule", s, "--points", p)
	if err != nil {
		t.Fatalf("current-week error = %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %s", out)
	}
	if got["current_week"] != 2 || got["weeks"] != 2 {
		t.Errorf("output = %v", got)
	}
}

func TestSummaryWithScoringConfig(t *testing.T) {
	s, p := writeTables(t, scheduleCSV, pointsCSV)
	cfgPath := filepath.Join(t.TempDir(), "scoring.yaml")
	if err := os.WriteFile(cfgPath, []byte("win_points: 10\nrank_bonus_table: {1: 5, 2: 0}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "summary", "--schedule", s, "--points", p, "--scoring-config", cfgPath)
	if err != nil {
		t.Fatalf("summary error = %v", err)
	}
	var got map[string]models.PlayerSeason
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %s", out)
	}
	if got["Jim"].CumulativeTotal != 15 || got["Dwight"].CumulativeTotal != 0 {
		t.Errorf("summary = %+v", got)
	}
}

func TestMatchupsRequiresPlayedWeek(t *testing.T) {
	s, p := writeTables(t, scheduleCSV, pointsCSV)
	if _, err := run(t, "matchups", "--schedule", s, "--points", p); err == nil {
		t.Error("matchups without --week expected error")
	}
	_, err := run(t, "matchups", "--week", "2", "--schedule", s, "--points", p)
	if !errors.Is(err, scoring.ErrInvalidData) {
		t.Errorf("matchups --week 2 error = %v, want ErrInvalidData", err)
	}
}

func TestStandingsTable(t *testing.T) {
	s, p := writeTables(t, scheduleCSV, pointsCSV)
	out, err := run(t, "standings", "--table", "--schedule", s, "--points", p)
	if err != nil {
		t.Fatalf("standings error = %v", err)
	}
	if !strings.Contains(out, "Standings through week 1") || !strings.Contains(out, "Jim") {
		t.Errorf("table output:\n%s", out)
	}
}

func TestValidate(t *testing.T) {
	s, p := writeTables(t, "Week,Jim,Dwight,Pam\n1,Dwight,Pam,Jim\n", "Week,Jim,Dwight,Pam\n1,,,\n")
	out, err := run(t, "validate", "--schedule", s, "--points", p)
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	if !strings.Contains(out, "ok: 3 players, 1 scheduled weeks, current week 1") || !strings.Contains(out, "warning: week 1") {
		t.Errorf("validate output:\n%s", out)
	}

	s, p = writeTables(t, scheduleCSV, "Week,Jim,Dwight\n1,90,\n")
	if _, err := run(t, "validate", "--schedule", s, "--points", p); !errors.Is(err, scoring.ErrInvalidData) {
		t.Errorf("validate partial week error = %v, want ErrInvalidData", err)
	}
}

func TestScheduleFeedsBackIntoValidate(t *testing.T) {
	out, err := run(t, "schedule", "--players", "Jim,Dwight,Pam,Andy", "--weeks", "6")
	if err != nil {
		t.Fatalf("schedule error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 7 || lines[0] != "Week,Jim,Dwight,Pam,Andy" {
		t.Fatalf("schedule output:\n%s", out)
	}

	points := "Week,Jim,Dwight,Pam,Andy\n1,100,90,80,70\n"
	s, p := writeTables(t, out, points)
	got, err := run(t, "validate", "--schedule", s, "--points", p)
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	if strings.Contains(got, "warning") {
		t.Errorf("generated schedule reported issues:\n%s", got)
	}
}
