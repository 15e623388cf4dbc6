package status

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "assets", Key("assets", ""))
	assert.Equal(t, "work-orders/5", Key("work-orders", "5"))
}

func TestRegistry_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewRegistry(nil)

	r.Register("users", "1h")
	st, ok := r.Get("users")
	require.True(t, ok)
	assert.Equal(t, SyncPhaseIdle, st.Phase)
	assert.Equal(t, "1h", st.Schedule)

	require.True(t, r.TryStart(ctx, "users", "run-1", t0))
	assert.False(t, r.TryStart(ctx, "users", "run-2", t0), "second start must be rejected while syncing")

	st, _ = r.Get("users")
	assert.Equal(t, SyncPhaseSyncing, st.Phase)
	assert.Equal(t, "run-1", st.RunID)
	assert.Equal(t, 1, st.AttemptCount)

	r.Fail(ctx, "users", errors.New("db down"), time.Second)
	st, _ = r.Get("users")
	assert.Equal(t, SyncPhaseFailed, st.Phase)
	assert.Equal(t, "db down", st.Message)

	require.True(t, r.TryStart(ctx, "users", "run-3", t0.Add(time.Minute)))
	st, _ = r.Get("users")
	assert.Equal(t, 2, st.AttemptCount)
	assert.Empty(t, st.Message)

	done := t0.Add(2 * time.Minute)
	r.Complete(ctx, "users", Outcome{Rows: 10, Documents: 8, Duration: 90 * time.Second}, done)
	st, _ = r.Get("users")
	assert.Equal(t, SyncPhaseComplete, st.Phase)
	assert.Zero(t, st.AttemptCount)
	assert.Equal(t, 8, st.Documents)
	assert.Equal(t, "1m30s", st.Duration)
	require.NotNil(t, st.LastSyncTime)
	assert.Equal(t, done, *st.LastSyncTime)
	assert.Equal(t, "1h", st.Schedule)
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	r.Register("assets", "")
	st, _ := r.Get("assets")
	st.Phase = SyncPhaseFailed

	again, _ := r.Get("assets")
	assert.Equal(t, SyncPhaseIdle, again.Phase)

	_, ok := r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_ListSorted(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	for _, k := range []string{"users", "assets", "work-orders/9", "companies"} {
		r.Register(k, "")
	}

	var keys []string
	for _, st := range r.List() {
		keys = append(keys, st.Job)
	}
	assert.Equal(t, []string{"assets", "companies", "users", "work-orders/9"}, keys)
}

func TestRegistry_ConcurrentStart(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	var (
		wg      stdsync.WaitGroup
		mu      stdsync.Mutex
		started int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.TryStart(context.Background(), "assets", "run", t0) {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, started)
}

func TestRegistry_PersistAndLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	r := NewRegistry(NewFileStatusPersistence(dir))
	r.Register("assets", "30m")
	require.True(t, r.TryStart(ctx, "assets", "run-1", t0))
	r.Complete(ctx, "assets", Outcome{Rows: 3, Documents: 4, Duration: time.Second}, t0)
	require.True(t, r.TryStart(ctx, "users", "run-2", t0))

	_, err := os.Stat(filepath.Join(dir, StatusFileName))
	require.NoError(t, err)

	restored := NewRegistry(NewFileStatusPersistence(dir))
	require.NoError(t, restored.Load(ctx))

	assets, ok := restored.Get("assets")
	require.True(t, ok)
	assert.Equal(t, SyncPhaseComplete, assets.Phase)
	assert.Equal(t, 4, assets.Documents)

	users, ok := restored.Get("users")
	require.True(t, ok)
	assert.Equal(t, SyncPhaseFailed, users.Phase)
	assert.Equal(t, "interrupted by restart", users.Message)
}

func TestRegistry_LoadWithoutPersistence(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewRegistry(nil).Load(context.Background()))
}
