package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/hotspot-trainer/pkg/grading"
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

// ErrNoScenarios is returned by Reload when the scenarios directory yields
// nothing usable. The live catalog is left untouched in that case.
var ErrNoScenarios = errors.New("no scenarios loaded")

// badgeFile is the on-disk shape of badges.yaml.
type badgeFile struct {
	Version int           `yaml:"version"`
	Badges  []state.Badge `yaml:"badges"`
}

// CatalogLoader reads scenario and badge content from a data directory:
//
//	<dataDir>/scenarios/*.json
//	<dataDir>/badges.yaml
type CatalogLoader struct {
	dataDir string
	logger  *slog.Logger
}

func NewCatalogLoader(dataDir string, logger *slog.Logger) *CatalogLoader {
	if dataDir == "" {
		dataDir = "./data"
	}
	return &CatalogLoader{dataDir: dataDir, logger: logger}
}

// LoadScenarios parses every JSON file under the scenarios directory.
// Unreadable or malformed files are logged and skipped. A scenario without
// an id takes its file name.
func (l *CatalogLoader) LoadScenarios(ctx context.Context) ([]*scenario.Scenario, error) {
	dir := filepath.Join(l.dataDir, "scenarios")
	var out []*scenario.Scenario

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		file, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("Failed to read scenario file", "path", path, "error", err)
			return nil
		}

		var s scenario.Scenario
		if err := json.Unmarshal(file, &s); err != nil {
			l.logger.Warn("Failed to unmarshal scenario file", "path", path, "error", err)
			return nil
		}
		if s.ID == "" {
			s.ID = strings.TrimSuffix(filepath.Base(path), ".json")
		}
		if !s.Difficulty.Valid() {
			l.logger.Warn("Scenario has unknown difficulty", "scenario_id", s.ID, "difficulty", s.Difficulty)
		}

		out = append(out, &s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	slices.SortFunc(out, func(a, b *scenario.Scenario) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// LoadBadges parses badges.yaml. A missing file yields an empty catalog:
// badges are then awarded with id-only metadata.
func (l *CatalogLoader) LoadBadges(ctx context.Context) ([]state.Badge, error) {
	path := filepath.Join(l.dataDir, "badges.yaml")

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Badge catalog not found", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read badge catalog: %w", err)
	}

	var f badgeFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to parse badge catalog %s: %w", path, err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported badges.yaml version: %d", f.Version)
	}

	badges := make([]state.Badge, 0, len(f.Badges))
	for _, badge := range f.Badges {
		if badge.ID == "" {
			l.logger.Warn("Skipping badge without id", "name", badge.Name)
			continue
		}
		badges = append(badges, badge)
	}
	return badges, nil
}

// Reload reads both catalogs from disk and swaps them in whole. Nothing is
// replaced unless both loads succeed.
func (l *CatalogLoader) Reload(ctx context.Context, scenarios *scenario.Catalog, badges *grading.BadgeCatalog) error {
	sc, err := l.LoadScenarios(ctx)
	if err != nil {
		return err
	}
	if len(sc) == 0 {
		return fmt.Errorf("%w from %s", ErrNoScenarios, filepath.Join(l.dataDir, "scenarios"))
	}

	bs, err := l.LoadBadges(ctx)
	if err != nil {
		return err
	}

	scenarios.Replace(sc)
	badges.Replace(bs)
	l.logger.Info("Catalogs loaded", "scenarios", len(sc), "badges", len(bs))
	return nil
}
