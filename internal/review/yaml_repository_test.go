package review

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYAMLRepository(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "reviews")
	repo := NewYAMLRepository(dir)
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	got, err := repo.Get(ctx, "two-sum")
	require.NoError(t, err)
	assert.Nil(t, got)

	first := Schedule(NewSeed("two-sum", now), 4, now)
	second := NewSeed("lru-cache", now)
	require.NoError(t, repo.Upsert(ctx, first))
	require.NoError(t, repo.Upsert(ctx, second))

	got, err = repo.Get(ctx, "two-sum")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first, *got)

	updated := Schedule(first, 5, now.AddDate(0, 0, 1))
	require.NoError(t, repo.Upsert(ctx, updated))

	all, err = repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second, all[0])
	assert.Equal(t, updated, all[1])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temporary files must be cleaned up")
}

func TestYAMLRepository_FileFormat(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := NewYAMLRepository(dir)
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, Schedule(NewSeed("two-sum", now), 5, now)))

	data, err := os.ReadFile(filepath.Join(dir, "two-sum.yml"))
	require.NoError(t, err)
	assert.Equal(t, `item_id: two-sum
last_reviewed: 2025-01-15T10:00:00Z
next_review: 2025-01-16T10:00:00Z
interval_days: 1
repetitions: 1
ease_factor: 2.6
`, string(data))
}

func TestYAMLRepository_InvalidItemID(t *testing.T) {
	ctx := context.Background()
	repo := NewYAMLRepository(t.TempDir())

	for _, id := range []string{"", "  ", "..", "a/b", `a\b`} {
		_, err := repo.Get(ctx, id)
		assert.ErrorIs(t, err, ErrInvalidItemID, "Get(%q)", id)
		assert.ErrorIs(t, repo.Upsert(ctx, Record{ItemID: id}), ErrInvalidItemID, "Upsert(%q)", id)
	}
}

func TestYAMLRepository_BrokenFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("{{not yaml"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	repo := NewYAMLRepository(dir)

	_, err := repo.Get(ctx, "broken")
	assert.Error(t, err)

	_, err = repo.ListAll(ctx)
	assert.Error(t, err)
}

func TestYAMLRepository_DotPrefixedItemID(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := NewYAMLRepository(dir)
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	record := Schedule(NewSeed(".hidden", now), 5, now)
	require.NoError(t, repo.Upsert(ctx, record))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".leftover.abc.tmp"), []byte("partial"), 0o644))

	got, err := repo.Get(ctx, ".hidden")
	require.NoError(t, err)
	require.NotNil(t, got)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Record{record}, all)
	assert.Equal(t, []Record{record}, DueItems(all, record.NextReview))
}
