package jsonstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name    string  `json:"name"`
	Entries []int64 `json:"entries"`
}

func openTestStore(t *testing.T) (*Store[testDoc], string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docs.json")
	s, err := Open[testDoc](path, 10*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestGetAbsent(t *testing.T) {
	s, _ := openTestStore(t)
	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestSetGetRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)

	doc := testDoc{Name: "cup", Entries: []int64{1, 2, 3}}
	require.NoError(t, s.Set("a", doc))

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, doc, got)
}

func TestGetReturnsDeepCopy(t *testing.T) {
	s, _ := openTestStore(t)
	require.NoError(t, s.Set("a", testDoc{Name: "cup", Entries: []int64{1, 2}}))

	first, ok := s.Get("a")
	require.True(t, ok)
	first.Entries[0] = 99
	first.Name = "mutated"

	second, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "cup", second.Name)
	assert.Equal(t, []int64{1, 2}, second.Entries)
}

func TestDelete(t *testing.T) {
	s, _ := openTestStore(t)
	require.NoError(t, s.Set("a", testDoc{Name: "x"}))
	require.NoError(t, s.Delete("a"))
	_, ok := s.Get("a")
	assert.False(t, ok)

	// Deleting an absent key is a no-op.
	require.NoError(t, s.Delete("a"))
}

func TestAll(t *testing.T) {
	s, _ := openTestStore(t)
	require.NoError(t, s.Set("a", testDoc{Name: "x"}))
	require.NoError(t, s.Set("b", testDoc{Name: "y"}))

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "x", all["a"].Name)
	assert.Equal(t, "y", all["b"].Name)
}

func TestFlushAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")

	s, err := Open[testDoc](path, time.Hour) // debounce far away, flush manually
	require.NoError(t, err)
	doc := testDoc{Name: "cup", Entries: []int64{7, 8}}
	require.NoError(t, s.Set("k", doc))
	require.NoError(t, s.Flush())
	require.NoError(t, s.Close())

	reloaded, err := Open[testDoc](path, time.Hour)
	require.NoError(t, err)
	defer reloaded.Close()

	got, ok := reloaded.Get("k")
	require.True(t, ok)
	assert.Equal(t, doc, got)
}

func TestFlushNoopWhenClean(t *testing.T) {
	s, path := openTestStore(t)
	require.NoError(t, s.Flush())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "clean flush should not create a file")
}

func TestDebouncedFlushCoalesces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	s, err := Open[testDoc](path, 20*time.Millisecond)
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Set("k", testDoc{Name: "v", Entries: []int64{int64(i)}}))
	}

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, time.Second, 5*time.Millisecond, "debounced flush never hit disk")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"9"`)
}

func TestFlushFailureRetriesWithoutNewMutation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	// Occupy the target path with a directory so the rename step of every
	// flush fails.
	require.NoError(t, os.Mkdir(path, 0o755))

	s, err := Open[testDoc](path, 10*time.Millisecond)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("k", testDoc{Name: "pending"}))

	// Let at least one flush attempt fail, then unblock the path. The
	// writer must recover on its own without another Set.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.Remove(path))

	require.Eventually(t, func() bool {
		raw, err := os.ReadFile(path)
		return err == nil && len(raw) > 0
	}, 2*time.Second, 10*time.Millisecond, "failed flush was never retried")
}

func TestCorruptFileResetsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := Open[testDoc](path, time.Hour)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 0, s.Len())

	// The corrupt bytes are preserved for manual recovery.
	_, statErr := os.Stat(path + ".corrupt")
	assert.NoError(t, statErr)
}

func TestMissingFileStartsEmpty(t *testing.T) {
	s, _ := openTestStore(t)
	assert.Equal(t, 0, s.Len())
}

func TestCloseFlushesPendingWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	s, err := Open[testDoc](path, time.Hour) // debounce never fires
	require.NoError(t, err)

	require.NoError(t, s.Set("k", testDoc{Name: "pending"}))
	require.NoError(t, s.Close())

	reloaded, err := Open[testDoc](path, time.Hour)
	require.NoError(t, err)
	defer reloaded.Close()
	_, ok := reloaded.Get("k")
	assert.True(t, ok)
}

func TestMutateAfterClose(t *testing.T) {
	s, _ := openTestStore(t)
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Set("k", testDoc{}), ErrClosed)
	assert.ErrorIs(t, s.Delete("k"), ErrClosed)
}
