// Package contract holds behaviour suites every QueryLogRepository must pass.
package contract

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/maxviazov/soccer-scout-service/internal/model"
	"github.com/maxviazov/soccer-scout-service/internal/repository"
)

// QueryLogFactory returns an empty repository and its cleanup.
type QueryLogFactory func(t *testing.T) (repository.QueryLogRepository, func())

func entry(id string, at time.Time) model.QueryLogEntry {
	return model.QueryLogEntry{
		ID:              id,
		Query:           "young midfielders under 23",
		Kind:            model.KindYoungProspects,
		Tier:            model.TierPattern,
		Confidence:      0.9,
		ResultCount:     7,
		Cached:          true,
		NarrativeSource: model.NarrativeTemplate,
		DurationMS:      42,
		CreatedAt:       at,
	}
}

func RunQueryLogContract(t *testing.T, makeRepo QueryLogFactory) {
	t.Helper()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("record_and_read_back", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		want := entry("q-1", base)
		if err := repo.Record(ctx, want); err != nil {
			t.Fatalf("record: %v", err)
		}
		res, err := repo.Recent(ctx, repository.Page{Limit: 10})
		if err != nil {
			t.Fatalf("recent: %v", err)
		}
		if res.Total != 1 || len(res.Items) != 1 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		got := res.Items[0]
		if got.ID != want.ID || got.Query != want.Query || got.Kind != want.Kind || got.Tier != want.Tier {
			t.Fatalf("mismatch: %+v", got)
		}
		if got.ResultCount != 7 || !got.Cached || got.Empty || got.DurationMS != 42 {
			t.Fatalf("mismatch: %+v", got)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) {
			t.Fatalf("created_at: got %v want %v", got.CreatedAt, want.CreatedAt)
		}
	})

	t.Run("duplicate_id", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if err := repo.Record(ctx, entry("dup", base)); err != nil {
			t.Fatalf("record: %v", err)
		}
		err := repo.Record(ctx, entry("dup", base))
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("newest_first_with_pagination", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 7; i++ {
			if err := repo.Record(ctx, entry(fmt.Sprintf("q-%d", i), base.Add(time.Duration(i)*time.Minute))); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		first, err := repo.Recent(ctx, repository.Page{Limit: 3})
		if err != nil {
			t.Fatalf("recent: %v", err)
		}
		if len(first.Items) != 3 || first.Total != 7 {
			t.Fatalf("unexpected page: len=%d total=%d", len(first.Items), first.Total)
		}
		if first.Items[0].ID != "q-6" || first.Items[2].ID != "q-4" {
			t.Fatalf("unexpected order: %s..%s", first.Items[0].ID, first.Items[2].ID)
		}
		last, err := repo.Recent(ctx, repository.Page{Limit: 3, Offset: 6})
		if err != nil {
			t.Fatalf("recent: %v", err)
		}
		if len(last.Items) != 1 || last.Items[0].ID != "q-0" {
			t.Fatalf("unexpected last page: %+v", last.Items)
		}
	})

	t.Run("newest_first_within_one_second", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if err := repo.Record(ctx, entry("older", base.Add(100*time.Millisecond))); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if err := repo.Record(ctx, entry("newer", base.Add(150*time.Millisecond))); err != nil {
			t.Fatalf("seed: %v", err)
		}
		res, err := repo.Recent(ctx, repository.Page{Limit: 10})
		if err != nil {
			t.Fatalf("recent: %v", err)
		}
		if len(res.Items) != 2 || res.Items[0].ID != "newer" || res.Items[1].ID != "older" {
			t.Fatalf("unexpected order: %+v", res.Items)
		}
		if !res.Items[1].CreatedAt.Equal(base.Add(100 * time.Millisecond)) {
			t.Fatalf("created_at: got %v", res.Items[1].CreatedAt)
		}
	})

	t.Run("offset_past_end_keeps_total", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 2; i++ {
			if err := repo.Record(ctx, entry(fmt.Sprintf("p-%d", i), base.Add(time.Duration(i)*time.Second))); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		res, err := repo.Recent(ctx, repository.Page{Limit: 10, Offset: 5})
		if err != nil {
			t.Fatalf("recent: %v", err)
		}
		if len(res.Items) != 0 || res.Total != 2 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
	})

	t.Run("concurrent_records", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- repo.Record(ctx, entry(fmt.Sprintf("c-%d", i), base))
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("concurrent record: %v", err)
			}
		}
		res, err := repo.Recent(ctx, repository.Page{Limit: 100})
		if err != nil {
			t.Fatalf("recent: %v", err)
		}
		if res.Total != 20 {
			t.Fatalf("expected 20 entries, got %d", res.Total)
		}
	})

	t.Run("ping", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := repo.Ping(ctx); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})
}
