package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishekuniyalibyte/clover-calculator/internal/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func buildSnap(t *testing.T, template string, opts ...func(*Builder)) *PricingSnapshot {
	t.Helper()
	b := NewBuilder(testComparison()).WithTemplateVersion(template)
	for _, opt := range opts {
		opt(b)
	}
	snap, err := b.Build()
	require.NoError(t, err)
	return snap
}

func at(ts string) func(*Builder) {
	return func(b *Builder) {
		b.WithClock(func() time.Time {
			parsed, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				panic(err)
			}
			return parsed
		})
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	snap := buildSnap(t, "v1")
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, snap.ContentHash, got.ContentHash)
	assert.True(t, got.Sealed())
	assert.True(t, got.Comparison.NetSavings.Equal(snap.Comparison.NetSavings))
}

func TestStoreGetMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "snap_ghost")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestStoreIsWriteOnce(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	snap := buildSnap(t, "v1")
	require.NoError(t, store.Save(ctx, snap))

	// Identical content yields the identical ID; saving again must refuse
	// rather than touch the stored record.
	dup := buildSnap(t, "v1")
	require.Equal(t, snap.ID, dup.ID)
	err := store.Save(ctx, dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write-once")
}

func TestStoreRejectsUnsealed(t *testing.T) {
	store := openTestStore(t)

	err := store.Save(context.Background(), &PricingSnapshot{ID: "snap_raw"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestStoreSupersession(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	prior := buildSnap(t, "v1", at("2026-03-01T10:00:00Z"))
	require.NoError(t, store.Save(ctx, prior))

	correction := buildSnap(t, "v2", at("2026-03-02T10:00:00Z"), func(b *Builder) {
		b.WithSupersedes(prior.ID)
	})
	require.NoError(t, store.Save(ctx, correction))

	// The prior record survives untouched and still verifies.
	got, err := store.Get(ctx, prior.ID)
	require.NoError(t, err)
	require.NoError(t, got.Verify())

	latest, err := store.Latest(ctx, "acme", "prof-1")
	require.NoError(t, err)
	assert.Equal(t, correction.ID, latest.ID)
}

func TestStoreStaleSupersession(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	prior := buildSnap(t, "v1", at("2026-03-01T10:00:00Z"))
	require.NoError(t, store.Save(ctx, prior))

	first := buildSnap(t, "v2", at("2026-03-02T10:00:00Z"), func(b *Builder) {
		b.WithSupersedes(prior.ID)
	})
	require.NoError(t, store.Save(ctx, first))

	// A second writer lost the race: the prior snapshot is already
	// superseded, so the save fails and the caller must re-read.
	second := buildSnap(t, "v3", at("2026-03-02T11:00:00Z"), func(b *Builder) {
		b.WithSupersedes(prior.ID)
	})
	err := store.Save(ctx, second)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeStaleSupersession))

	// Nothing from the failed save leaked in.
	_, err = store.Get(ctx, second.ID)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestStoreSupersedeMissingSnapshot(t *testing.T) {
	store := openTestStore(t)

	orphan := buildSnap(t, "v2", func(b *Builder) {
		b.WithSupersedes("snap_ghost")
	})
	err := store.Save(context.Background(), orphan)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestStoreHistory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	prior := buildSnap(t, "v1", at("2026-03-01T10:00:00Z"))
	require.NoError(t, store.Save(ctx, prior))
	correction := buildSnap(t, "v2", at("2026-03-02T10:00:00Z"), func(b *Builder) {
		b.WithSupersedes(prior.ID)
	})
	require.NoError(t, store.Save(ctx, correction))

	history, err := store.History(ctx, "acme", "prof-1")
	require.NoError(t, err)
	require.Len(t, history, 2, "superseded records stay in the audit chain")
	assert.Equal(t, prior.ID, history[0].ID)
	assert.Equal(t, correction.ID, history[1].ID)
}

func TestStoreLatestMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Latest(context.Background(), "acme", "nobody")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}
