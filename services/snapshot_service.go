package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/league-stats/models"
	"github.com/Dosada05/league-stats/repositories"
	"github.com/Dosada05/league-stats/storage"
)

type Snapshot struct {
	ID          string                  `json:"id"`
	ThroughWeek int                     `json:"through_week"`
	CreatedAt   time.Time               `json:"created_at"`
	ObjectKey   string                  `json:"object_key,omitempty"`
	URL         string                  `json:"url,omitempty"`
	Standings   []models.SeasonStanding `json:"standings"`
}

// SnapshotService persists standings to Postgres and publishes them as JSON to the object store.
// Either collaborator may be nil.
type SnapshotService struct {
	repo   repositories.StandingRepository
	store  storage.ObjectStore
	logger *slog.Logger
	newID  func() string
	now    func() time.Time
}

func NewSnapshotService(repo repositories.StandingRepository, store storage.ObjectStore, logger *slog.Logger) *SnapshotService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotService{
		repo:   repo,
		store:  store,
		logger: logger,
		newID:  func() string { return uuid.New().String() },
		now:    time.Now,
	}
}

func (s *SnapshotService) Enabled() bool {
	return s != nil && (s.repo != nil || s.store != nil)
}

func snapshotKey(week int, id string) string {
	return fmt.Sprintf("snapshots/week-%02d/%s.json", week, id)
}

func (s *SnapshotService) Publish(ctx context.Context, standings []models.SeasonStanding) (*Snapshot, error) {
	if !s.Enabled() {
		return nil, ErrSnapshotsDisabled
	}
	if len(standings) == 0 {
		return nil, fmt.Errorf("%w: no standings to publish", ErrValidationFailed)
	}

	snapshot := &Snapshot{
		ID:          s.newID(),
		ThroughWeek: standings[0].ThroughWeek,
		CreatedAt:   s.now().UTC(),
		Standings:   make([]models.SeasonStanding, len(standings)),
	}
	for i, st := range standings {
		st.SnapshotID = snapshot.ID
		st.CreatedAt = snapshot.CreatedAt
		snapshot.Standings[i] = st
	}

	if s.repo != nil {
		if err := s.repo.BatchCreate(ctx, nil, snapshot.Standings); err != nil {
			return nil, fmt.Errorf("failed to save standings snapshot: %w", err)
		}
	}

	if s.store != nil {
		body, err := json.Marshal(snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to encode snapshot: %w", err)
		}
		key := snapshotKey(snapshot.ThroughWeek, snapshot.ID)
		res, err := s.store.Upload(ctx, key, "application/json", bytes.NewReader(body))
		if err != nil {
			if s.repo != nil {
				if errRollback := s.repo.DeleteBySnapshot(ctx, nil, snapshot.ID); errRollback != nil {
					s.logger.Error("failed to remove snapshot rows after upload failure",
						"snapshot_id", snapshot.ID, "error", errRollback)
				}
			}
			return nil, fmt.Errorf("failed to upload snapshot: %w", err)
		}
		snapshot.ObjectKey = res.Key
		snapshot.URL = res.Location
	}

	s.logger.Info("standings snapshot published",
		"snapshot_id", snapshot.ID, "through_week", snapshot.ThroughWeek, "players", len(snapshot.Standings))
	return snapshot, nil
}

// Latest returns the newest stored snapshot for week; 0 means the newest overall.
func (s *SnapshotService) Latest(ctx context.Context, week int) ([]models.SeasonStanding, error) {
	if s == nil || s.repo == nil {
		return nil, ErrSnapshotsDisabled
	}
	standings, err := s.repo.ListLatest(ctx, nil, week)
	if err != nil {
		if errors.Is(err, repositories.ErrSnapshotNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	return standings, nil
}

func (s *SnapshotService) Get(ctx context.Context, id string) ([]models.SeasonStanding, error) {
	if s == nil || s.repo == nil {
		return nil, ErrSnapshotsDisabled
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: invalid snapshot id", ErrValidationFailed)
	}
	standings, err := s.repo.ListBySnapshot(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSnapshotNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}
	return standings, nil
}

// DeleteWeek removes every stored snapshot taken through week, together with its published
// object when an object store is configured.
func (s *SnapshotService) DeleteWeek(ctx context.Context, week int) error {
	if s == nil || s.repo == nil {
		return ErrSnapshotsDisabled
	}
	ids, err := s.repo.DeleteByWeek(ctx, nil, week)
	if err != nil {
		if errors.Is(err, repositories.ErrSnapshotNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete snapshots for week %d: %w", week, err)
	}
	if s.store == nil {
		return nil
	}

	var errs []error
	for _, id := range ids {
		key := snapshotKey(week, id)
		if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("deleted week %d snapshots but failed to remove %d published objects: %w",
			week, len(errs), errors.Join(errs...))
	}
	s.logger.Info("standings snapshots deleted", "through_week", week, "snapshots", len(ids))
	return nil
}
