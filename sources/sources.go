// Package sources fetches the league's schedule and points tables.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/league-stats/models"
)

type Kind string

const (
	KindLocal  Kind = "local"
	KindRemote Kind = "remote"
	KindR2     Kind = "r2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

var (
	ErrUnknownKind   = errors.New("unknown data source kind")
	ErrUnknownFormat = errors.New("unknown data format")
	ErrNoLocation    = errors.New("table location is empty")
)

type Config struct {
	Kind             Kind
	ScheduleLocation string
	PointsLocation   string
	Format           Format
}

func (c Config) Validate() error {
	switch c.Kind {
	case KindLocal, KindRemote, KindR2:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
	}
	switch c.Format {
	case FormatCSV, FormatHTML:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.Format)
	}
	if strings.TrimSpace(c.ScheduleLocation) == "" || strings.TrimSpace(c.PointsLocation) == "" {
		return ErrNoLocation
	}
	return nil
}

// Fetcher opens the raw bytes of one table.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (io.ReadCloser, error)
}

type Loader struct {
	cfg     Config
	fetcher Fetcher
	logger  *slog.Logger
	now     func() time.Time
}

func NewLoader(cfg Config, fetcher Fetcher, logger *slog.Logger) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, errors.New("sources: fetcher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{cfg: cfg, fetcher: fetcher, logger: logger, now: time.Now}, nil
}

// Load fetches both tables concurrently.
func (l *Loader) Load(ctx context.Context) (models.Season, error) {
	var schedule, points models.Table

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := l.loadTable(gctx, "schedule", l.cfg.ScheduleLocation)
		schedule = t
		return err
	})
	g.Go(func() error {
		t, err := l.loadTable(gctx, "points", l.cfg.PointsLocation)
		points = t
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Season{}, err
	}

	return models.Season{Schedule: schedule, Points: points, LoadedAt: l.now().UTC()}, nil
}

func (l *Loader) loadTable(ctx context.Context, name, location string) (models.Table, error) {
	start := time.Now()
	rc, err := l.fetcher.Fetch(ctx, location)
	if err != nil {
		return models.Table{}, fmt.Errorf("fetch %s table: %w", name, err)
	}
	defer rc.Close()

	var t models.Table
	switch l.cfg.Format {
	case FormatHTML:
		t, err = ParseHTMLTable(rc)
	default:
		t, err = ParseCSV(rc)
	}
	if err != nil {
		return models.Table{}, fmt.Errorf("parse %s table: %w", name, err)
	}

	l.logger.Debug("table loaded", "table", name, "source", string(l.cfg.Kind),
		"rows", len(t.Rows), "duration", time.Since(start))
	return t, nil
}
