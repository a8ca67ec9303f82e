package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryguy/jsrun/internal/core"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewRunHashesSource(t *testing.T) {
	o := &core.Outcome{Kind: core.CompileError, SessionID: "abc", Duration: 1500 * time.Microsecond}
	r := NewRun(o, core.LangJS, "((", "http")

	assert.Equal(t, "abc", r.SessionID)
	assert.Equal(t, "compile_error", r.Outcome)
	assert.Equal(t, int64(1500), r.DurationUS)
	assert.Len(t, r.SourceHash, 64)
	assert.NotContains(t, r.SourceHash, "((")
}

func TestRecordAndRecent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, id := range []string{"one", "two", "three"} {
		r := NewRun(&core.Outcome{SessionID: id}, core.LangJS, id, "http")
		r.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, s.Record(ctx, r))
	}

	runs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "three", runs[0].SessionID)
	assert.Equal(t, "two", runs[1].SessionID)
	assert.Equal(t, "success", runs[0].Outcome)
	assert.True(t, runs[0].CreatedAt.Equal(base.Add(2*time.Second)))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRecordRejectsDuplicateSession(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	r := NewRun(&core.Outcome{SessionID: "same"}, core.LangJS, "1", "http")
	require.NoError(t, s.Record(ctx, r))
	assert.Error(t, s.Record(ctx, r))
}

func TestRecentEmpty(t *testing.T) {
	runs, err := testStore(t).Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NotNil(t, runs)
}

func TestOpenFileReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), NewRun(&core.Outcome{SessionID: "x"}, core.LangTS, "1", "ws")))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
