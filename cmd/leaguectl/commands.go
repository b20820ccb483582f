package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dosada05/league-stats/config"
	"github.com/Dosada05/league-stats/models"
	"github.com/Dosada05/league-stats/scheduling"
	"github.com/Dosada05/league-stats/scoring"
	"github.com/Dosada05/league-stats/sources"
)

type rootOptions struct {
	schedule      string
	points        string
	source        string
	format        string
	scoringConfig string
	verbose       bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "leaguectl",
		Short:         "Compute fantasy league results from schedule and points tables",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.schedule, "schedule", "data/schedule.csv", "schedule table: file path, URL or published sheet key")
	flags.StringVar(&opts.points, "points", "data/points.csv", "points table: file path, URL or published sheet key")
	flags.StringVar(&opts.source, "source", string(sources.KindLocal), "where tables come from: local or remote")
	flags.StringVar(&opts.format, "format", string(sources.FormatCSV), "table format: csv or html")
	flags.StringVar(&opts.scoringConfig, "scoring-config", "", "YAML scoring policy file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log table loading to stderr")

	root.AddCommand(
		newCurrentWeekCmd(opts),
		newMatchupsCmd(opts),
		newRanksCmd(opts),
		newSummaryCmd(opts),
		newStandingsCmd(opts),
		newWeekCmd(opts),
		newValidateCmd(opts),
		newScheduleCmd(),
	)
	return root
}

// league is one loaded season together with the engine that scores it.
type league struct {
	season models.Season
	engine *scoring.Engine
}

func (o *rootOptions) load(ctx context.Context, stderr io.Writer) (*league, error) {
	cfg := scoring.DefaultConfig()
	if o.scoringConfig != "" {
		fileCfg, err := config.LoadScoringFile(o.scoringConfig, cfg)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	srcCfg := sources.Config{
		Kind:             sources.Kind(strings.ToLower(o.source)),
		ScheduleLocation: o.schedule,
		PointsLocation:   o.points,
		Format:           sources.Format(strings.ToLower(o.format)),
	}
	fetcher, err := sources.NewFetcher(srcCfg, nil)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	loader, err := sources.NewLoader(srcCfg, fetcher, logger)
	if err != nil {
		return nil, err
	}
	season, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &league{season: season, engine: scoring.NewEngine(cfg, nil)}, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newCurrentWeekCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "current-week",
		Short: "Print the first week without scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lg, err := opts.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			week, err := lg.engine.CurrentWeek(lg.season.Points)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]int{
				"current_week": week,
				"weeks":        len(lg.season.Schedule.Rows),
			})
		},
	}
}

func newMatchupsCmd(opts *rootOptions) *cobra.Command {
	var week int
	cmd := &cobra.Command{
		Use:   "matchups",
		Short: "Print head-to-head results for a played week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lg, err := opts.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			results, err := lg.engine.WeeklyMatchupResult(lg.season.Points, lg.season.Schedule, week)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().IntVar(&week, "week", 0, "week number")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

func newRanksCmd(opts *rootOptions) *cobra.Command {
	var week int
	cmd := &cobra.Command{
		Use:   "ranks",
		Short: "Print each player's rank bonus for a played week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lg, err := opts.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			bonuses, err := lg.engine.RankScoring(lg.season.Points, week)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), bonuses)
		},
	}
	cmd.Flags().IntVar(&week, "week", 0, "week number")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print weekly and cumulative totals for every player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lg, err := opts.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			summary, err := lg.engine.SeasonSummary(lg.season.Points, lg.season.Schedule)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
}

func newStandingsCmd(opts *rootOptions) *cobra.Command {
	var (
		week  int
		table bool
	)
	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Print the season stats table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if week < 0 {
				return errors.New("--week must not be negative")
			}
			lg, err := opts.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rows, err := lg.engine.SeasonStats(lg.season.Points, lg.season.Schedule, week)
			if err != nil {
				return err
			}
			if table {
				printStandingsTable(cmd.OutOrStdout(), rows)
				return nil
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().IntVar(&week, "week", 0, "standings as of this week (0 = latest played)")
	cmd.Flags().BoolVar(&table, "table", false, "print a text table instead of JSON")
	return cmd
}

func printStandingsTable(w io.Writer, rows []models.SeasonStanding) {
	through := 0
	if len(rows) > 0 {
		through = rows[0].ThroughWeek
	}
	fmt.Fprintf(w, "Standings through week %d\n", through)
	fmt.Fprintf(w, "%-5s | %-20s | %8s | %8s | %4s | %6s | %6s | %4s | %5s | %5s | %6s\n",
		"Place", "Player", "PF", "PA", "W", "RankPt", "Total", "xW", "CW", "CL", "RemOpp")
	fmt.Fprintln(w, strings.Repeat("-", 102))
	for _, r := range rows {
		fmt.Fprintf(w, "%-5d | %-20s | %8.2f | %8.2f | %4d | %6.1f | %6.2f | %4d | %5d | %5d | %6.2f\n",
			r.Place, r.Player, r.Points, r.PointsAgainst, r.Wins, r.RankPoints, r.TotalPoints,
			r.ExpectedWins, r.CloseWins, r.CloseLosses, r.RemainingOppAvgRankPoints)
	}
}

func newWeekCmd(opts *rootOptions) *cobra.Command {
	var week int
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print the weekly chart for any scheduled week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lg, err := opts.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			view, err := lg.engine.BuildWeekView(lg.season.Points, lg.season.Schedule, week)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), view)
		},
	}
	cmd.Flags().IntVar(&week, "week", 0, "week number")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check both tables and report asymmetric schedule pairings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lg, err := opts.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			week, err := lg.engine.CurrentWeek(lg.season.Points)
			if err != nil {
				return err
			}
			if _, err := lg.engine.SeasonSummary(lg.season.Points, lg.season.Schedule); err != nil {
				return err
			}
			issues, err := scoring.ScheduleIssues(lg.season.Schedule)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ok: %d players, %d scheduled weeks, current week %d\n",
				len(lg.season.Points.Players()), len(lg.season.Schedule.Rows), week)
			for _, issue := range issues {
				fmt.Fprintf(out, "warning: week %d: %s plays %s, but %s plays %s\n",
					issue.Week, issue.Player, issue.Opponent, issue.Opponent, issue.OpponentOpponent)
			}
			return nil
		},
	}
}

func newScheduleCmd() *cobra.Command {
	var (
		players []string
		weeks   int
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate a round-robin schedule table as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := scheduling.NewRoundRobinGenerator()
			table, err := gen.Generate(cmd.Context(), scheduling.GenerateParams{Players: players, Weeks: weeks})
			if err != nil {
				return err
			}
			w := csv.NewWriter(cmd.OutOrStdout())
			if err := w.Write(table.Header); err != nil {
				return err
			}
			if err := w.WriteAll(table.Rows); err != nil {
				return fmt.Errorf("failed to write schedule: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&players, "players", nil, "comma-separated player names")
	cmd.Flags().IntVar(&weeks, "weeks", 0, "season length in weeks (0 = one full round robin)")
	_ = cmd.MarkFlagRequired("players")
	return cmd
}
