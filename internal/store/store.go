// Package store loads player statistics from CSV sources into an immutable,
// key-addressable collection.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/maxviazov/soccer-scout-service/internal/model"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrDataUnavailable is returned when no source could be loaded.
var ErrDataUnavailable = errors.New("data unavailable")

const maxParallelReads = 4

// Source names one statistical category and the CSV file that holds it.
type Source struct {
	Name string `mapstructure:"name" validate:"required"`
	Path string `mapstructure:"path" validate:"required"`
}

// Filter narrows Get results. Zero values disable a filter.
type Filter struct {
	Position   string
	MinMinutes float64
	League     string
}

// Store is read-only after Load.
type Store struct {
	records []*model.PlayerRecord
	byKey   map[model.PlayerKey]*model.PlayerRecord
	metrics []string
	sources []string
	leagues []string
}

// Load reads every source and outer-joins them on the composite key.
// Missing or unreadable sources are skipped with a warning; ErrDataUnavailable
// is returned only when none could be read.
func Load(ctx context.Context, sources []Source, logger zerolog.Logger) (*Store, error) {
	log := logger.With().Str("module", "store").Logger()
	start := time.Now()

	tables := make([]*table, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, src := range sources {
		g.Go(func() error {
			t, err := readTable(gctx, src)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Warn().Err(err).Str("source", src.Name).Str("path", src.Path).Msg("source skipped")
				return nil
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	s := &Store{byKey: make(map[model.PlayerKey]*model.PlayerRecord)}
	claimed := make(map[string]string)
	for _, t := range tables {
		if t == nil {
			continue
		}
		s.merge(t, claimed)
		s.sources = append(s.sources, t.source.Name)
		log.Info().Str("source", t.source.Name).Int("rows", len(t.rows)).Int("columns", len(t.cols)).Msg("source loaded")
	}
	if len(s.sources) == 0 {
		return nil, ErrDataUnavailable
	}

	s.metrics = make([]string, 0, len(claimed))
	for name := range claimed {
		s.metrics = append(s.metrics, name)
	}
	sort.Strings(s.metrics)
	s.leagues = collectLeagues(s.records)

	log.Info().
		Int("players", len(s.records)).
		Int("metrics", len(s.metrics)).
		Strs("sources", s.sources).
		Dur("took", time.Since(start)).
		Msg("player store ready")
	return s, nil
}

// merge folds one table into the store. claimed maps a metric column to the
// source that first defined it; later duplicates get a "<source>_" prefix.
// A name repeated inside one source gets a "_2", "_3" suffix instead.
func (s *Store) merge(t *table, claimed map[string]string) {
	names := make([]string, len(t.cols))
	repeats := make(map[string]int)
	for i, c := range t.cols {
		if c.kind != columnMetric {
			continue
		}
		name := c.name
		if n := repeats[c.name]; n > 0 {
			name = fmt.Sprintf("%s_%d", c.name, n+1)
		}
		repeats[c.name]++
		if owner, ok := claimed[name]; ok && owner != t.source.Name {
			name = t.source.Name + "_" + name
		}
		claimed[name] = t.source.Name
		names[i] = name
	}

	for _, row := range t.rows {
		key := model.PlayerKey{
			League: cell(row, t.key[0]),
			Season: cell(row, t.key[1]),
			Team:   cell(row, t.key[2]),
			Name:   cell(row, t.key[3]),
		}
		if key.Name == "" {
			continue
		}
		rec, ok := s.byKey[key]
		if !ok {
			rec = &model.PlayerRecord{Key: key, Metrics: make(map[string]float64), Row: len(s.records)}
			s.byKey[key] = rec
			s.records = append(s.records, rec)
		}
		for i, c := range t.cols {
			raw := cell(row, c.idx)
			switch c.kind {
			case columnPosition:
				if rec.Position == "" && raw != "" {
					rec.Position = normalizePosition(raw)
				}
			case columnNationality:
				if rec.Nationality == "" && raw != "" {
					rec.Nationality = raw
				}
			default:
				if v, ok := parseNumber(c.name, raw); ok {
					rec.Metrics[names[i]] = v
				}
			}
		}
	}
}

func collectLeagues(records []*model.PlayerRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if _, ok := seen[r.Key.League]; ok || r.Key.League == "" {
			continue
		}
		seen[r.Key.League] = struct{}{}
		out = append(out, r.Key.League)
	}
	sort.Strings(out)
	return out
}

// Get returns records whose name contains namePattern (case-insensitive) and
// that satisfy f. An empty slice means no match.
func (s *Store) Get(namePattern string, f Filter) []*model.PlayerRecord {
	pattern := strings.ToLower(strings.TrimSpace(namePattern))
	out := make([]*model.PlayerRecord, 0)
	for _, r := range s.records {
		if pattern != "" && !strings.Contains(strings.ToLower(r.Key.Name), pattern) {
			continue
		}
		if f.MinMinutes > 0 && r.Minutes() < f.MinMinutes {
			continue
		}
		if !r.PlaysPosition(f.Position) {
			continue
		}
		if f.League != "" && !strings.EqualFold(r.Key.League, f.League) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Lookup returns the record for an exact key.
func (s *Store) Lookup(key model.PlayerKey) (*model.PlayerRecord, bool) {
	r, ok := s.byKey[key]
	return r, ok
}

// All returns every record in load order. The slice is shared; callers must not modify it.
func (s *Store) All() []*model.PlayerRecord { return s.records }

func (s *Store) Len() int { return len(s.records) }

func (s *Store) MetricCount() int { return len(s.metrics) }

// HasMetric reports whether any loaded source defines the column.
func (s *Store) HasMetric(name string) bool {
	i := sort.SearchStrings(s.metrics, name)
	return i < len(s.metrics) && s.metrics[i] == name
}

func (s *Store) Metrics() []string { return append([]string(nil), s.metrics...) }

func (s *Store) Sources() []string { return append([]string(nil), s.sources...) }

func (s *Store) Leagues() []string { return append([]string(nil), s.leagues...) }

// Ping satisfies the readiness probe contract.
func (s *Store) Ping(_ context.Context) error {
	if s == nil || len(s.records) == 0 {
		return ErrDataUnavailable
	}
	return nil
}

// Status summarizes the store for health reporting.
func (s *Store) Status() model.DataStatus {
	if s == nil {
		return model.DataStatus{}
	}
	return model.DataStatus{
		TotalPlayers: len(s.records),
		TotalMetrics: len(s.metrics),
		Sources:      s.Sources(),
		Leagues:      s.Leagues(),
	}
}
