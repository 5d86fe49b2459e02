package sqlite

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/changelog"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/store/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJournal_RestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	repoAddr := models.NewRepositoryAddress(testRepo)
	notes := models.NewModelAddress(testRepo, "notes")
	tmp := models.NewModelAddress(testRepo, "tmp")
	field := notes.Child("n1").Child("title")

	p := memory.New(testRepo, testLogger(), memory.WithJournal(s))
	cmds := []*models.Command{
		models.NewAddCommand(repoAddr, models.RevisionNew, "notes"),
		models.NewAddCommand(repoAddr, models.RevisionNew, "tmp"),
		models.NewTransaction(notes,
			models.NewAddCommand(notes, models.RevisionNew, "n1"),
			models.NewAddCommand(notes.Child("n1"), models.RevisionThisTransaction, "title"),
			models.NewChangeValueCommand(field, models.RevisionThisTransaction, models.StringValue("hello")),
		),
		models.NewChangeValueCommand(field, 1, models.StringValue("world")),
		models.NewAddCommand(tmp, models.RevisionNew, "x"),
		models.NewRemoveCommand(tmp, models.RevisionForced),
	}
	for _, cmd := range cmds {
		rev, err := p.ExecuteCommand(ctx, "alice", cmd)
		require.NoError(t, err)
		require.GreaterOrEqual(t, rev, int64(0), cmd.String())
	}

	tombstones, err := s.LoadTombstones(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[models.ID]int64{"tmp": 2}, tombstones)

	logs, err := s.LoadModelLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Len(t, logs["notes"], 3)

	restored := memory.New(testRepo, testLogger(), memory.WithJournal(s))
	n, err := s.Restore(ctx, restored)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	want, _, err := p.GetModelSnapshot(ctx, notes)
	require.NoError(t, err)
	got, ok, err := restored.GetModelSnapshot(ctx, notes)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, want.EqualState(got))

	entries, err := restored.GetEvents(ctx, notes, 0, changelog.Unbounded)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	// tmp продолжает нумерацию после надгробия
	rev, err := restored.ExecuteCommand(ctx, "alice", models.NewAddCommand(repoAddr, models.RevisionNew, "tmp"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), rev)

	tombstones, err = s.LoadTombstones(ctx)
	require.NoError(t, err)
	assert.Contains(t, tombstones, models.ID("tmp"), "tombstone stays until overwritten")
}

func TestJournal_DuplicateRevision(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	model := models.NewModelAddress(testRepo, "notes")
	entry := &models.Event{
		Kind:          models.ChangeAdd,
		Target:        model.Parent(),
		ChangedEntity: model,
	}

	require.NoError(t, s.SaveEvent(ctx, model, entry))
	assert.Error(t, s.SaveEvent(ctx, model, entry))
}

func TestJournal_Clear(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	p := memory.New(testRepo, testLogger(), memory.WithJournal(s))
	repoAddr := models.NewRepositoryAddress(testRepo)
	_, err := p.ExecuteCommand(ctx, "alice", models.NewAddCommand(repoAddr, models.RevisionNew, "a"))
	require.NoError(t, err)
	_, err = p.ExecuteCommand(ctx, "alice", models.NewRemoveCommand(models.NewModelAddress(testRepo, "a"), models.RevisionForced))
	require.NoError(t, err)
	_, err = p.ExecuteCommand(ctx, "alice", models.NewAddCommand(repoAddr, models.RevisionNew, "b"))
	require.NoError(t, err)

	require.NoError(t, p.Clear(ctx))

	logs, err := s.LoadModelLogs(ctx)
	require.NoError(t, err)
	assert.Empty(t, logs)
	tombstones, err := s.LoadTombstones(ctx)
	require.NoError(t, err)
	assert.Empty(t, tombstones)
}
