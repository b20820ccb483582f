package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/league-stats/models"
)

var (
	ErrSnapshotNotFound = errors.New("standings snapshot not found")
)

const standingColumns = `snapshot_id, through_week, place, player, points, points_against, wins,
		       rank_points, total_points, expected_wins, close_wins, close_losses,
		       remaining_opp_avg_rank_points, created_at`

const schema = `
CREATE TABLE IF NOT EXISTS season_standings (
    snapshot_id                   UUID             NOT NULL,
    through_week                  INTEGER          NOT NULL,
    place                         INTEGER          NOT NULL,
    player                        TEXT             NOT NULL,
    points                        DOUBLE PRECISION NOT NULL,
    points_against                DOUBLE PRECISION NOT NULL,
    wins                          INTEGER          NOT NULL,
    rank_points                   DOUBLE PRECISION NOT NULL,
    total_points                  DOUBLE PRECISION NOT NULL,
    expected_wins                 INTEGER          NOT NULL,
    close_wins                    INTEGER          NOT NULL,
    close_losses                  INTEGER          NOT NULL,
    remaining_opp_avg_rank_points DOUBLE PRECISION NOT NULL,
    created_at                    TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
    PRIMARY KEY (snapshot_id, player)
);
CREATE INDEX IF NOT EXISTS idx_season_standings_week ON season_standings (through_week, created_at DESC);`

type StandingRepository interface {
	EnsureSchema(ctx context.Context) error
	BatchCreate(ctx context.Context, exec SQLExecutor, standings []models.SeasonStanding) error
	ListBySnapshot(ctx context.Context, exec SQLExecutor, snapshotID string) ([]models.SeasonStanding, error)
	// ListLatest returns the newest snapshot for a week; week 0 means the newest snapshot overall.
	ListLatest(ctx context.Context, exec SQLExecutor, throughWeek int) ([]models.SeasonStanding, error)
	// DeleteByWeek removes every snapshot taken through a week and returns their ids.
	DeleteByWeek(ctx context.Context, exec SQLExecutor, throughWeek int) ([]string, error)
	DeleteBySnapshot(ctx context.Context, exec SQLExecutor, snapshotID string) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStandingRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create season_standings schema: %w", err)
	}
	return nil
}

// BatchCreate inserts one snapshot. Without a caller-supplied transaction it opens its own.
func (r *postgresStandingRepository) BatchCreate(ctx context.Context, exec SQLExecutor, standings []models.SeasonStanding) (err error) {
	if len(standings) == 0 {
		return nil
	}

	executor := r.getExecutor(exec)
	if exec == nil {
		tx, errTx := r.db.BeginTx(ctx, nil)
		if errTx != nil {
			return fmt.Errorf("BatchCreate failed to begin transaction: %w", errTx)
		}
		defer func() {
			if p := recover(); p != nil {
				tx.Rollback()
				panic(p)
			} else if err != nil {
				tx.Rollback()
			} else {
				err = tx.Commit()
			}
		}()
		executor = tx
	}

	query := `
		INSERT INTO season_standings
		    (` + standingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	now := time.Now().UTC()
	for i := range standings {
		s := &standings[i]
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		_, err = executor.ExecContext(ctx, query,
			s.SnapshotID, s.ThroughWeek, s.Place, s.Player, s.Points, s.PointsAgainst, s.Wins,
			s.RankPoints, s.TotalPoints, s.ExpectedWins, s.CloseWins, s.CloseLosses,
			s.RemainingOppAvgRankPoints, s.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("BatchCreate failed for player %s: %w", s.Player, err)
		}
	}
	return nil
}

func (r *postgresStandingRepository) scanStanding(rowScanner interface{ Scan(...interface{}) error }) (models.SeasonStanding, error) {
	var s models.SeasonStanding
	err := rowScanner.Scan(
		&s.SnapshotID, &s.ThroughWeek, &s.Place, &s.Player, &s.Points, &s.PointsAgainst, &s.Wins,
		&s.RankPoints, &s.TotalPoints, &s.ExpectedWins, &s.CloseWins, &s.CloseLosses,
		&s.RemainingOppAvgRankPoints, &s.CreatedAt,
	)
	return s, err
}

func (r *postgresStandingRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.SeasonStanding, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.SeasonStanding, 0)
	for rows.Next() {
		s, errScan := r.scanStanding(rows)
		if errScan != nil {
			return nil, errScan
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(standings) == 0 {
		return nil, ErrSnapshotNotFound
	}
	return standings, nil
}

func (r *postgresStandingRepository) ListBySnapshot(ctx context.Context, exec SQLExecutor, snapshotID string) ([]models.SeasonStanding, error) {
	query := `
		SELECT ` + standingColumns + `
		FROM season_standings
		WHERE snapshot_id = $1
		ORDER BY place ASC, player ASC`
	return r.list(ctx, exec, query, snapshotID)
}

func (r *postgresStandingRepository) ListLatest(ctx context.Context, exec SQLExecutor, throughWeek int) ([]models.SeasonStanding, error) {
	query := `
		SELECT ` + standingColumns + `
		FROM season_standings
		WHERE snapshot_id = (
		    SELECT snapshot_id FROM season_standings
		    WHERE ($1 = 0 OR through_week = $1)
		    ORDER BY created_at DESC
		    LIMIT 1)
		ORDER BY place ASC, player ASC`
	return r.list(ctx, exec, query, throughWeek)
}

func (r *postgresStandingRepository) DeleteByWeek(ctx context.Context, exec SQLExecutor, throughWeek int) ([]string, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx,
		`DELETE FROM season_standings WHERE through_week = $1 RETURNING snapshot_id`, throughWeek)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	seen := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrSnapshotNotFound
	}
	return ids, nil
}

func (r *postgresStandingRepository) DeleteBySnapshot(ctx context.Context, exec SQLExecutor, snapshotID string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM season_standings WHERE snapshot_id = $1`, snapshotID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSnapshotNotFound)
}
