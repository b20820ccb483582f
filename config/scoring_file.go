package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Dosada05/league-stats/scoring"
)

// LoadScoringFile reads a YAML scoring policy. Keys missing from the file keep their value in base.
//
//	win_points: 10
//	rank_bonus_table: {1: 5, 2: 3, 3: 1}
//	close_match_margin: 7.5
func LoadScoringFile(path string, base scoring.Config) (scoring.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scoring.Config{}, fmt.Errorf("failed to read scoring config %s: %w", path, err)
	}

	cfg := base
	cfg.RankBonusTable = nil
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return scoring.Config{}, fmt.Errorf("failed to parse scoring config %s: %w", path, err)
	}
	if cfg.RankBonusTable == nil && len(base.RankBonusTable) > 0 {
		cfg.RankBonusTable = make(map[int]float64, len(base.RankBonusTable))
		for rank, bonus := range base.RankBonusTable {
			cfg.RankBonusTable[rank] = bonus
		}
	}
	if err := cfg.Validate(); err != nil {
		return scoring.Config{}, fmt.Errorf("scoring config %s: %w", path, err)
	}
	return cfg, nil
}
