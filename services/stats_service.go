package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/league-stats/cache"
	"github.com/Dosada05/league-stats/live"
	"github.com/Dosada05/league-stats/models"
	"github.com/Dosada05/league-stats/scoring"
)

type SeasonLoader interface {
	Load(ctx context.Context) (models.Season, error)
}

type Broadcaster interface {
	BroadcastToRoom(roomID string, message live.Message)
}

type CurrentWeekInfo struct {
	CurrentWeek int       `json:"current_week"`
	Weeks       int       `json:"weeks"`
	LoadedAt    time.Time `json:"loaded_at"`
}

type RefreshResult struct {
	CurrentWeekInfo
	Changed bool `json:"changed"`
}

// StatsServiceOptions configures a StatsService. Cache entries are keyed by the season, the
// scoring config and the engine's strategy name, so services sharing a cache must give custom
// strategies distinct names (scoring.NamedStrategy).
type StatsServiceOptions struct {
	Cache       cache.Cache
	CacheTTL    time.Duration
	Broadcaster Broadcaster
	Snapshots   *SnapshotService
	Logger      *slog.Logger
}

// StatsService holds the latest loaded season and answers queries about it.
type StatsService struct {
	engine      *scoring.Engine
	loader      SeasonLoader
	cache       cache.Cache
	cacheTTL    time.Duration
	broadcaster Broadcaster
	snapshots   *SnapshotService
	logger      *slog.Logger
	configKey   string

	refreshMu sync.Mutex

	mu          sync.RWMutex
	season      *models.Season
	currentWeek int
	digest      string
}

type seasonState struct {
	season      models.Season
	currentWeek int
	digest      string
}

func NewStatsService(engine *scoring.Engine, loader SeasonLoader, opts StatsServiceOptions) (*StatsService, error) {
	if engine == nil || loader == nil {
		return nil, errors.New("stats service requires an engine and a loader")
	}
	cfgJSON, err := json.Marshal(struct {
		Strategy string         `json:"strategy"`
		Config   scoring.Config `json:"config"`
	}{engine.StrategyName(), engine.Config()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode scoring config: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsService{
		engine:      engine,
		loader:      loader,
		cache:       opts.Cache,
		cacheTTL:    opts.CacheTTL,
		broadcaster: opts.Broadcaster,
		snapshots:   opts.Snapshots,
		logger:      logger,
		configKey:   digestBytes(cfgJSON),
	}, nil
}

// Refresh reloads both tables. An invalid season is rejected and the previous one stays active.
func (s *StatsService) Refresh(ctx context.Context) (RefreshResult, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	season, err := s.loader.Load(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("failed to load season: %w", err)
	}

	currentWeek, err := s.engine.CurrentWeek(season.Points)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("points table rejected: %w", err)
	}
	if _, err := s.engine.SeasonSummary(season.Points, season.Schedule); err != nil {
		return RefreshResult{}, fmt.Errorf("season rejected: %w", err)
	}

	issues, err := scoring.ScheduleIssues(season.Schedule)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("schedule rejected: %w", err)
	}
	for _, issue := range issues {
		s.logger.Warn("asymmetric schedule pairing",
			"week", issue.Week, "player", issue.Player,
			"opponent", issue.Opponent, "opponent_opponent", issue.OpponentOpponent)
	}

	digest, err := seasonDigest(season)
	if err != nil {
		return RefreshResult{}, err
	}

	s.mu.Lock()
	hadSeason := s.season != nil
	previousWeek := s.currentWeek
	changed := s.digest != digest
	s.season = &season
	s.currentWeek = currentWeek
	s.digest = digest
	s.mu.Unlock()

	result := RefreshResult{
		CurrentWeekInfo: CurrentWeekInfo{
			CurrentWeek: currentWeek,
			Weeks:       len(season.Schedule.Rows),
			LoadedAt:    season.LoadedAt,
		},
		Changed: changed,
	}

	s.logger.Info("season refreshed", "current_week", currentWeek, "weeks", result.Weeks, "changed", changed)

	if changed && s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(live.SeasonRoom, live.Message{Type: live.MessageSeasonUpdated, Payload: result.CurrentWeekInfo})
	}

	if hadSeason && currentWeek > previousWeek && s.snapshots != nil && s.snapshots.Enabled() {
		if _, err := s.PublishSnapshot(ctx, 0); err != nil {
			s.logger.Error("failed to publish snapshot after week advanced", "current_week", currentWeek, "error", err)
		}
	}

	return result, nil
}

// RunRefresher refreshes every interval until ctx is done.
func (s *StatsService) RunRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Error("scheduled refresh failed", "error", err)
			}
		}
	}
}

func (s *StatsService) state() (seasonState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.season == nil {
		return seasonState{}, ErrSeasonNotLoaded
	}
	return seasonState{season: *s.season, currentWeek: s.currentWeek, digest: s.digest}, nil
}

func (st seasonState) weeks() int {
	return len(st.season.Schedule.Rows)
}

func (st seasonState) checkWeek(week int, mustBePlayed bool) error {
	if week < 1 || week > st.weeks() {
		return fmt.Errorf("%w: week %d (schedule has %d weeks)", ErrWeekNotFound, week, st.weeks())
	}
	if mustBePlayed && week >= st.currentWeek {
		return fmt.Errorf("%w: week %d (current week is %d)", ErrWeekNotPlayed, week, st.currentWeek)
	}
	return nil
}

func (s *StatsService) CurrentWeek(ctx context.Context) (CurrentWeekInfo, error) {
	st, err := s.state()
	if err != nil {
		return CurrentWeekInfo{}, err
	}
	return CurrentWeekInfo{CurrentWeek: st.currentWeek, Weeks: st.weeks(), LoadedAt: st.season.LoadedAt}, nil
}

func (s *StatsService) Matchups(ctx context.Context, week int) (map[string]models.MatchupResult, error) {
	st, err := s.state()
	if err != nil {
		return nil, err
	}
	if err := st.checkWeek(week, true); err != nil {
		return nil, err
	}
	return cached(ctx, s, st, fmt.Sprintf("matchups:%d", week), func() (map[string]models.MatchupResult, error) {
		return s.engine.WeeklyMatchupResult(st.season.Points, st.season.Schedule, week)
	})
}

func (s *StatsService) RankBonuses(ctx context.Context, week int) (map[string]float64, error) {
	st, err := s.state()
	if err != nil {
		return nil, err
	}
	if err := st.checkWeek(week, true); err != nil {
		return nil, err
	}
	return cached(ctx, s, st, fmt.Sprintf("ranks:%d", week), func() (map[string]float64, error) {
		return s.engine.RankScoring(st.season.Points, week)
	})
}

func (s *StatsService) Summary(ctx context.Context) (map[string]models.PlayerSeason, error) {
	st, err := s.state()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, st, "summary", func() (map[string]models.PlayerSeason, error) {
		return s.engine.SeasonSummary(st.season.Points, st.season.Schedule)
	})
}

// Standings returns the season stats table as of week; 0 means the latest played week.
func (s *StatsService) Standings(ctx context.Context, week int) ([]models.SeasonStanding, error) {
	st, err := s.state()
	if err != nil {
		return nil, err
	}
	if week != 0 {
		if err := st.checkWeek(week, false); err != nil {
			return nil, err
		}
	}
	return cached(ctx, s, st, fmt.Sprintf("standings:%d", week), func() ([]models.SeasonStanding, error) {
		return s.engine.SeasonStats(st.season.Points, st.season.Schedule, week)
	})
}

func (s *StatsService) WeekView(ctx context.Context, week int) (models.WeekView, error) {
	st, err := s.state()
	if err != nil {
		return models.WeekView{}, err
	}
	if err := st.checkWeek(week, false); err != nil {
		return models.WeekView{}, err
	}
	return cached(ctx, s, st, fmt.Sprintf("week:%d", week), func() (models.WeekView, error) {
		return s.engine.BuildWeekView(st.season.Points, st.season.Schedule, week)
	})
}

func (s *StatsService) Scores(ctx context.Context) ([]models.WeekScore, error) {
	st, err := s.state()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, st, "scores", func() ([]models.WeekScore, error) {
		return s.engine.WeekScores(st.season.Points, st.season.Schedule)
	})
}

func (s *StatsService) ScheduleIssues(ctx context.Context) ([]models.ScheduleIssue, error) {
	st, err := s.state()
	if err != nil {
		return nil, err
	}
	return scoring.ScheduleIssues(st.season.Schedule)
}

// PublishSnapshot stores the standings as of week (0 = latest) through the snapshot service.
func (s *StatsService) PublishSnapshot(ctx context.Context, week int) (*Snapshot, error) {
	if s.snapshots == nil || !s.snapshots.Enabled() {
		return nil, ErrSnapshotsDisabled
	}
	standings, err := s.Standings(ctx, week)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.snapshots.Publish(ctx, standings)
	if err != nil {
		return nil, err
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(live.SeasonRoom, live.Message{Type: live.MessageSnapshotSaved, Payload: snapshot})
	}
	return snapshot, nil
}

// cached runs compute unless an identical query over the same season and config was cached.
// Cache failures are logged and never change the result.
func cached[T any](ctx context.Context, s *StatsService, st seasonState, query string, compute func() (T, error)) (T, error) {
	if s.cache == nil {
		return compute()
	}

	key := digestBytes([]byte(st.digest + "|" + s.configKey + "|" + query))
	if data, err := s.cache.Get(ctx, key); err == nil {
		var out T
		if err := json.Unmarshal(data, &out); err == nil {
			return out, nil
		}
		s.logger.Warn("discarding undecodable cache entry", "query", query)
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("cache read failed", "query", query, "error", err)
	}

	out, err := compute()
	if err != nil {
		return out, err
	}
	if data, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.logger.Warn("cache write failed", "query", query, "error", err)
		}
	}
	return out, nil
}

func seasonDigest(season models.Season) (string, error) {
	data, err := json.Marshal(struct {
		Schedule models.Table `json:"schedule"`
		Points   models.Table `json:"points"`
	}{season.Schedule, season.Points})
	if err != nil {
		return "", fmt.Errorf("failed to encode season: %w", err)
	}
	return digestBytes(data), nil
}

func digestBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
