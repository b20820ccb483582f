package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/Dosada05/league-stats/cache"
	"github.com/Dosada05/league-stats/live"
	"github.com/Dosada05/league-stats/models"
	"github.com/Dosada05/league-stats/repositories"
	"github.com/Dosada05/league-stats/storage"
)

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

func weekOnePoints() models.Table {
	return models.Table{
		Header: []string{"Week", "Jim", "Dwight", "Pam", "Andy"},
		Rows: [][]string{
			{"1", "100", "95", "80", "120"},
			{"2", "", "", "", ""},
		},
	}
}

type fakeLoader struct {
	mu     sync.Mutex
	season models.Season
	err    error
	loads  int
}

func (f *fakeLoader) Load(ctx context.Context) (models.Season, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.err != nil {
		return models.Season{}, f.err
	}
	s := f.season
	s.LoadedAt = time.Date(2024, 9, 10, 12, 0, 0, 0, time.UTC)
	return s, nil
}

func (f *fakeLoader) set(points models.Table) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.season = models.Season{Schedule: leagueSchedule(), Points: points}
	f.err = nil
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []live.Message
}

func (f *fakeBroadcaster) BroadcastToRoom(roomID string, message live.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	message.RoomID = roomID
	f.messages = append(f.messages, message)
}

func (f *fakeBroadcaster) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.messages))
	for i, m := range f.messages {
		out[i] = m.Type
	}
	return out
}

type countingCache struct {
	*cache.Memory
	hits, misses int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.Memory.Get(ctx, key)
	if err != nil {
		c.misses++
	} else {
		c.hits++
	}
	return data, err
}

type fakeStandingRepo struct {
	snapshots map[string][]models.SeasonStanding
	order     []string
}

func newFakeStandingRepo() *fakeStandingRepo {
	return &fakeStandingRepo{snapshots: make(map[string][]models.SeasonStanding)}
}

func (f *fakeStandingRepo) EnsureSchema(ctx context.Context) error { return nil }

func (f *fakeStandingRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, standings []models.SeasonStanding) error {
	id := standings[0].SnapshotID
	f.snapshots[id] = append([]models.SeasonStanding(nil), standings...)
	f.order = append(f.order, id)
	return nil
}

func (f *fakeStandingRepo) ListBySnapshot(ctx context.Context, exec repositories.SQLExecutor, snapshotID string) ([]models.SeasonStanding, error) {
	s, ok := f.snapshots[snapshotID]
	if !ok {
		return nil, repositories.ErrSnapshotNotFound
	}
	return s, nil
}

func (f *fakeStandingRepo) ListLatest(ctx context.Context, exec repositories.SQLExecutor, throughWeek int) ([]models.SeasonStanding, error) {
	for i := len(f.order) - 1; i >= 0; i-- {
		s, ok := f.snapshots[f.order[i]]
		if ok && (throughWeek == 0 || s[0].ThroughWeek == throughWeek) {
			return s, nil
		}
	}
	return nil, repositories.ErrSnapshotNotFound
}

func (f *fakeStandingRepo) DeleteByWeek(ctx context.Context, exec repositories.SQLExecutor, throughWeek int) ([]string, error) {
	var ids []string
	for _, id := range f.order {
		s, ok := f.snapshots[id]
		if ok && s[0].ThroughWeek == throughWeek {
			delete(f.snapshots, id)
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, repositories.ErrSnapshotNotFound
	}
	return ids, nil
}

func (f *fakeStandingRepo) DeleteBySnapshot(ctx context.Context, exec repositories.SQLExecutor, snapshotID string) error {
	if _, ok := f.snapshots[snapshotID]; !ok {
		return repositories.ErrSnapshotNotFound
	}
	delete(f.snapshots, snapshotID)
	return nil
}

type fakeStore struct {
	objects   map[string][]byte
	uploadErr error
	deleteErr error
	deleted   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Upload(ctx context.Context, key, contentType string, r io.Reader) (*storage.UploadResult, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.objects[key] = b
	return &storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key}, nil
}

func (f *fakeStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.objects[key]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStore) GetPublicURL(key string) string { return "https://cdn.example.com/" + key }
