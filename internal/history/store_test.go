package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/fragpipe/pipeline"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func report(started time.Time, failAt int, n int) *pipeline.Report {
	r := &pipeline.Report{
		RunID:   uuid.New(),
		Started: started,
		Elapsed: 12 * time.Millisecond,
	}
	for i := range n {
		o := pipeline.Outcome{
			Index:       i,
			Kind:        pipeline.KindProcess,
			Description: "task",
			Duration:    1500 * time.Microsecond,
		}
		switch {
		case failAt >= 0 && i == failAt:
			o.Status = pipeline.StatusFailed
			o.Err = errors.New("boom")
			o.Message = "boom"
		case failAt >= 0 && i > failAt:
			o.Status = pipeline.StatusSkipped
			o.Duration = 0
		}
		r.Outcomes = append(r.Outcomes, o)
	}
	return r
}

func TestStore_RecordAndGet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	r := report(started, 1, 3)
	require.NoError(t, s.Record(ctx, "clean.fp", r))

	run, err := s.Get(ctx, r.RunID.String())
	require.NoError(t, err)
	assert.Equal(t, "clean.fp", run.Script)
	assert.False(t, run.OK)
	assert.True(t, run.Started.Equal(started))
	assert.Equal(t, 12*time.Millisecond, run.Elapsed)

	require.Len(t, run.Tasks, 3)
	assert.Equal(t, "OK", run.Tasks[0].Status)
	assert.Equal(t, "process", run.Tasks[0].Kind)
	assert.Equal(t, 1500*time.Microsecond, run.Tasks[0].Duration)
	assert.Equal(t, "Failed", run.Tasks[1].Status)
	assert.Equal(t, "boom", run.Tasks[1].Message)
	assert.Equal(t, "Skipped", run.Tasks[2].Status)
}

func TestStore_Recent(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	var ids []string
	for i := range 4 {
		r := report(base.Add(time.Duration(i)*time.Minute), -1, 1)
		require.NoError(t, s.Record(ctx, "s", r))
		ids = append(ids, r.RunID.String())
	}

	runs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[3], runs[0].ID)
	assert.Equal(t, ids[2], runs[1].ID)
	assert.True(t, runs[0].OK)
	assert.Empty(t, runs[0].Tasks)

	none, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_GetMissing(t *testing.T) {
	s := openTemp(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStore_DuplicateRun(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	r := report(time.Now(), -1, 2)

	require.NoError(t, s.Record(ctx, "a", r))
	require.Error(t, s.Record(ctx, "a", r))

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1, "failed record must roll back")
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, "x", report(time.Now(), -1, 1)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, path, s.Path())

	runs, err := s.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStore_Memory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Record(context.Background(), "m", report(time.Now(), -1, 1)))
	runs, err := s.Recent(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
