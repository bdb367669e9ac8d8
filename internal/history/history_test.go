package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleRun(source string, merges int) Run {
	return Run{
		StartedAt:    time.UnixMilli(1_700_000_000_000),
		Duration:     1500 * time.Millisecond,
		Source:       source,
		Chars:        1000,
		InitialVocab: 40,
		FinalVocab:   40 + merges,
		MaxVocab:     55,
		Merges:       merges,
		FinalSeqLen:  1000 - merges*3,
		StopReason:   "max vocabulary size reached",
	}
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer s.Close()

	first := sampleRun("a.txt", 15)
	first.ModelID = "toy"
	id1, err := s.Record(ctx, first)
	require.NoError(t, err)

	id2, err := s.Record(ctx, sampleRun("b.txt", 3))
	require.NoError(t, err)
	require.Greater(t, id2, id1)

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first
	require.Equal(t, "b.txt", runs[0].Source)
	require.Equal(t, "", runs[0].ModelID)

	got := runs[1]
	require.Equal(t, id1, got.ID)
	require.Equal(t, "toy", got.ModelID)
	require.Equal(t, first.StartedAt, got.StartedAt)
	require.Equal(t, first.Duration, got.Duration)
	require.Equal(t, 15, got.Merges)
	require.Equal(t, 55, got.FinalVocab)
	require.Equal(t, first.StopReason, got.StopReason)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestRecentLimit(t *testing.T) {
	ctx := context.Background()
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 5; i++ {
		_, err := s.Record(ctx, sampleRun("corpus.txt", i))
		require.NoError(t, err)
	}

	runs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, 4, runs[0].Merges)
	require.Equal(t, 3, runs[1].Merges)
}

func TestReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(ctx, sampleRun("corpus.txt", 1))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
