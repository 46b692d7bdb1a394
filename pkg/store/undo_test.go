package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/averin/marque/pkg/bookmark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoAdd(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := mustAdd(t, s, "https://go.dev", "Go", "go")

	report, err := s.Undo(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Undone)
	require.Len(t, report.Units, 1)
	assert.Equal(t, OpAdd, report.Units[0].Op)
	assert.Equal(t, 1, report.Units[0].Rows)

	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNoSuchID)
	assert.Equal(t, 0, countRows(t, s, "undo_log"))
}

func TestUndoUpdateRestoresSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := mustAdd(t, s, "https://go.dev", "Go", "go,lang")

	before, err := s.Get(ctx, id)
	require.NoError(t, err)

	_, err = s.Update(ctx, One(id), FieldChanges{
		Title:   strPtr("changed"),
		Private: boolPtr(true),
	}, "+extra")
	require.NoError(t, err)

	report, err := s.Undo(ctx, 1)
	require.NoError(t, err)
	require.Len(t, report.Units, 1)
	assert.Equal(t, OpUpdate, report.Units[0].Op)

	after, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUndoDeleteRestoresOriginalID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustAdd(t, s, "https://a.example", "a", "")
	id := mustAdd(t, s, "https://b.example", "b", "tagged")

	before, err := s.Get(ctx, id)
	require.NoError(t, err)

	_, err = s.Delete(ctx, One(id), true)
	require.NoError(t, err)

	report, err := s.Undo(ctx, 1)
	require.NoError(t, err)
	require.Len(t, report.Units, 1)
	assert.Equal(t, OpDelete, report.Units[0].Op)
	assert.Empty(t, report.Units[0].Remaps)

	after, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUndoDeleteRemapsTakenID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustAdd(t, s, "https://a.example", "a", "")
	mustAdd(t, s, "https://b.example", "b", "")

	// Compaction moves id 2 into the freed slot, so the undone row
	// finds its original id occupied.
	_, err := s.Delete(ctx, One(1), false)
	require.NoError(t, err)

	moved, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://b.example", moved.URL)

	report, err := s.Undo(ctx, 1)
	require.NoError(t, err)
	require.Len(t, report.Units, 1)
	require.Len(t, report.Units[0].Remaps, 1)
	assert.Equal(t, Remap{OldID: 1, NewID: 2}, report.Units[0].Remaps[0])

	restored, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", restored.URL)
}

func TestPlainBulkUpdateIsOneUnit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		mustAdd(t, s, fmt.Sprintf("https://site%03d.example", i), "site", "")
	}

	_, err := s.Update(ctx, All(), FieldChanges{Description: strPtr("bulk")}, "")
	require.NoError(t, err)

	report, err := s.Undo(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Undone)
	require.Len(t, report.Units, 1)
	assert.Equal(t, 100, report.Units[0].Rows)

	all, err := s.All(ctx, true)
	require.NoError(t, err)
	for _, b := range all {
		assert.Empty(t, b.Description)
	}
	assert.Equal(t, 100, countRows(t, s, "undo_log"))
}

func TestTagUpdatesUndoRowByRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		mustAdd(t, s, fmt.Sprintf("https://site%d.example", i), "site", "")
	}

	_, err := s.Update(ctx, All(), FieldChanges{}, "+shared")
	require.NoError(t, err)

	// The newest unit covers only the last row written.
	report, err := s.Undo(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Undone)
	assert.Equal(t, 1, report.Units[0].Rows)

	all, err := s.All(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, bookmark.EmptyTags, all[4].Tags)
	for _, b := range all[:4] {
		assert.Equal(t, ",shared,", b.Tags)
	}

	report, err = s.Undo(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Undone)

	all, err = s.All(ctx, true)
	require.NoError(t, err)
	for _, b := range all {
		assert.Equal(t, bookmark.EmptyTags, b.Tags)
	}
}

func TestAddManyUndoesAsOneUnit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ids, err := s.AddMany(ctx, []bookmark.Bookmark{
		{URL: "https://a.example", Title: "a"},
		{URL: "https://b.example", Title: "b"},
		{URL: "https://c.example", Title: "c"},
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	report, err := s.Undo(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Undone)
	assert.Equal(t, 3, report.Units[0].Rows)
	assert.Equal(t, 0, countRows(t, s, "bookmarks"))
}

func TestUndoEmptyLog(t *testing.T) {
	s := newTestStore(t)
	report, err := s.Undo(context.Background(), 1)
	assert.ErrorIs(t, err, ErrEmptyLog)
	assert.Equal(t, 0, report.Undone)
}

func TestUndoShortfallIsSoft(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustAdd(t, s, "https://a.example", "a", "")

	report, err := s.Undo(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Requested)
	assert.Equal(t, 1, report.Undone)
	assert.Equal(t, 2, report.Shortfall())
}

func TestUndoRejectsNonPositiveCount(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Undo(context.Background(), 0)
	assert.Error(t, err)
}

func TestUndoFullHistoryRestoresPriorState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustAdd(t, s, "https://a.example", "a", "one")
	mustAdd(t, s, "https://b.example", "b", "two")

	before, err := s.All(ctx, true)
	require.NoError(t, err)

	_, err = s.Update(ctx, One(1), FieldChanges{Title: strPtr("renamed")}, "")
	require.NoError(t, err)
	_, err = s.Delete(ctx, One(2), true)
	require.NoError(t, err)

	report, err := s.Undo(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Undone)

	after, err := s.All(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	report, err = s.Undo(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Undone)

	empty, err := s.All(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, 0, countRows(t, s, "undo_log"))
}

func TestUndoConflictingRestoreFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustAdd(t, s, "https://a.example", "a", "")
	mustAdd(t, s, "https://b.example", "b", "")

	// Forge an update entry whose snapshot would move row 2 onto row
	// 1's url. The restore must fail hard instead of clobbering.
	_, err := s.db.Exec(
		`INSERT INTO undo_log (ts, operation, bookmark_id, url, title, tags, desc, flags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(), string(OpUpdate), 2, "https://a.example", "b", bookmark.EmptyTags, "", 0)
	require.NoError(t, err)

	report, err := s.Undo(ctx, 1)
	assert.ErrorIs(t, err, ErrDuplicateURL)
	assert.Equal(t, 0, report.Undone)

	// The failed unit must leave both the row and its log entry alone.
	unchanged, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "https://b.example", unchanged.URL)
	assert.Equal(t, 3, countRows(t, s, "undo_log"))
}
