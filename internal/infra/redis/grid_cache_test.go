package redis

import (
	"context"
	"testing"
	"time"

	"grid-quiz-service/internal/domain"
	"grid-quiz-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type countingFetcher struct {
	GridFetcher
	calls int
}

func (f *countingFetcher) Fetch(ctx context.Context, quizID string) (domain.Quiz, error) {
	f.calls++
	return f.GridFetcher.Fetch(ctx, quizID)
}

func sampleGrid() domain.Quiz {
	q := domain.Quiz{
		Title:         "General",
		MaxDifficulty: 200,
		Categories:    []string{"SCI", "ART"},
		Cells:         map[string]map[int]domain.Cell{},
	}
	for _, c := range q.Categories {
		q.Cells[c] = map[int]domain.Cell{}
		for _, d := range domain.DifficultyRange(q.MaxDifficulty) {
			q.Cells[c][d] = domain.Cell{Text: "q " + c, AnswerText: "a " + c}
		}
	}
	return q
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestGridCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	ctx := context.Background()

	repo := memory.NewQuizRepository()
	id, _ := repo.Create(ctx, sampleGrid())

	fetcher := &countingFetcher{GridFetcher: repo}
	cache := NewGridCache(newClient(mr), fetcher, time.Minute)

	got, err := cache.Fetch(ctx, id)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Title != "General" || got.Cells["ART"][200].Text != "q ART" {
		t.Fatalf("fetched %+v", got)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected one backing fetch, got %d", fetcher.calls)
	}
	if !mr.Exists("quiz:grid:" + id) {
		t.Fatal("expected grid cached in redis")
	}

	// Second call is served from redis.
	if _, err := cache.Fetch(ctx, id); err != nil {
		t.Fatalf("fetch 2: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected cache hit, backing fetches %d", fetcher.calls)
	}
}

func TestGridCacheInvalidateDropsKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	ctx := context.Background()

	repo := memory.NewQuizRepository()
	id, _ := repo.Create(ctx, sampleGrid())
	cache := NewGridCache(newClient(mr), repo, time.Minute)

	_, _ = cache.Fetch(ctx, id)
	cache.Invalidate(ctx, id)
	if mr.Exists("quiz:grid:" + id) {
		t.Fatal("expected key removed")
	}
}

func TestGridCachePropagatesNotFound(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewGridCache(newClient(mr), memory.NewQuizRepository(), time.Minute)
	if _, err := cache.Fetch(context.Background(), "missing-id"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
