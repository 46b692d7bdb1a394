package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/averin/marque/pkg/bookmark"
)

// recordAdd appends an ADD entry inside the caller's transaction. The
// snapshot is just the new row's id since reversal is a delete.
func recordAdd(ctx context.Context, tx *sql.Tx, bookmarkID int64, batchID *string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO undo_log (ts, operation, bookmark_id, batch_id) VALUES (?, ?, ?, ?)",
		time.Now().Unix(), string(OpAdd), bookmarkID, batchID)
	if err != nil {
		return unavailable("record add", err)
	}
	return nil
}

// recordSnapshot appends an UPDATE or DELETE entry carrying the full
// pre-mutation state of the row, inside the caller's transaction.
func recordSnapshot(ctx context.Context, tx *sql.Tx, op Op, b bookmark.Bookmark, batchID *string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO undo_log (ts, operation, bookmark_id, batch_id, url, title, tags, desc, flags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(), string(op), b.ID, batchID, b.URL, b.Title, b.Tags, b.Description, int64(b.Flags))
	if err != nil {
		return unavailable("record snapshot", err)
	}
	return nil
}

// logEntry is one row of the undo log.
type logEntry struct {
	seq        int64
	op         Op
	bookmarkID int64
	batchID    sql.NullString
	url        sql.NullString
	title      sql.NullString
	tags       sql.NullString
	desc       sql.NullString
	flags      sql.NullInt64
}

func (e logEntry) snapshot() bookmark.Bookmark {
	return bookmark.Bookmark{
		ID:          e.bookmarkID,
		URL:         e.url.String,
		Title:       e.title.String,
		Tags:        e.tags.String,
		Description: e.desc.String,
		Flags:       bookmark.Flag(e.flags.Int64),
	}
}

// Undo reverts the n most recent logical units, one transaction per
// unit. When the log runs out early the report carries the shortfall;
// ErrEmptyLog is returned only when nothing could be undone at all.
func (s *Store) Undo(ctx context.Context, n int) (UndoReport, error) {
	if n <= 0 {
		return UndoReport{}, fmt.Errorf("undo count must be positive, got %d", n)
	}

	report := UndoReport{Requested: n}
	for i := 0; i < n; i++ {
		unit, ok, err := s.undoOne(ctx)
		if err != nil {
			report.Undone = len(report.Units)
			return report, err
		}
		if !ok {
			break
		}
		report.Units = append(report.Units, unit)
	}

	report.Undone = len(report.Units)
	if report.Undone == 0 {
		return report, ErrEmptyLog
	}
	if report.Shortfall() > 0 {
		s.logger.Warn().Int("requested", n).Int("undone", report.Undone).Msg("undo log exhausted before request was met")
	}
	return report, nil
}

// undoOne reverts the newest logical unit: the whole batch of the
// newest entry, or just that entry when it is un-batched. Consumed
// entries are deleted in the same transaction as their reversal.
func (s *Store) undoOne(ctx context.Context) (UndoUnit, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UndoUnit{}, false, unavailable("begin undo", err)
	}
	defer tx.Rollback()

	newest, err := scanEntry(tx.QueryRowContext(ctx,
		selectEntry+" ORDER BY sequence DESC LIMIT 1"))
	if errors.Is(err, sql.ErrNoRows) {
		return UndoUnit{}, false, nil
	}
	if err != nil {
		return UndoUnit{}, false, unavailable("read undo log", err)
	}

	entries := []logEntry{newest}
	if newest.batchID.Valid {
		entries, err = s.batchEntries(ctx, tx, newest.batchID.String)
		if err != nil {
			return UndoUnit{}, false, err
		}
	}

	unit := UndoUnit{Op: newest.op}
	for _, e := range entries {
		if err := s.revert(ctx, tx, e, &unit); err != nil {
			return UndoUnit{}, false, err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM undo_log WHERE sequence = ?", e.seq); err != nil {
			return UndoUnit{}, false, unavailable("consume undo entry", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return UndoUnit{}, false, unavailable("commit undo", err)
	}
	s.logger.Info().Str("operation", string(unit.Op)).Int("rows", unit.Rows).Msg("undo applied")
	return unit, true, nil
}

// batchEntries loads every entry of a batch, newest first, so the batch
// reverses in strict reverse sequence order.
func (s *Store) batchEntries(ctx context.Context, tx *sql.Tx, batchID string) ([]logEntry, error) {
	rows, err := tx.QueryContext(ctx,
		selectEntry+" WHERE batch_id = ? ORDER BY sequence DESC", batchID)
	if err != nil {
		return nil, unavailable("read undo batch", err)
	}
	defer rows.Close()

	var entries []logEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, unavailable("scan undo entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate undo batch", err)
	}
	return entries, nil
}

// revert applies the reversal of one log entry inside the undo
// transaction and tallies it on the unit.
func (s *Store) revert(ctx context.Context, tx *sql.Tx, e logEntry, unit *UndoUnit) error {
	switch e.op {
	case OpAdd:
		res, err := tx.ExecContext(ctx, "DELETE FROM bookmarks WHERE id = ?", e.bookmarkID)
		if err != nil {
			return unavailable("undo add", err)
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			s.logger.Warn().Int64("id", e.bookmarkID).Msg("undo add: row already gone")
			return nil
		}
		unit.Rows++
		return nil

	case OpUpdate:
		snap := e.snapshot()
		res, err := tx.ExecContext(ctx,
			"UPDATE bookmarks SET url = ?, title = ?, tags = ?, desc = ?, flags = ? WHERE id = ?",
			snap.URL, snap.Title, snap.Tags, snap.Description, int64(snap.Flags), snap.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("cannot restore %s: %w", snap.URL, ErrDuplicateURL)
			}
			return unavailable("undo update", err)
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			s.logger.Warn().Int64("id", snap.ID).Msg("undo update: row missing")
			return nil
		}
		unit.Rows++
		return nil

	case OpDelete:
		snap := e.snapshot()
		var taken bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM bookmarks WHERE id = ?)", snap.ID).Scan(&taken)
		if err != nil {
			return unavailable("check id freshness", err)
		}

		if !taken {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO bookmarks (id, url, title, tags, desc, flags) VALUES (?, ?, ?, ?, ?, ?)",
				snap.ID, snap.URL, snap.Title, snap.Tags, snap.Description, int64(snap.Flags))
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("cannot restore %s: %w", snap.URL, ErrDuplicateURL)
				}
				return unavailable("undo delete", err)
			}
			unit.Rows++
			return nil
		}

		// The original id now belongs to another live row, so the
		// restore gets a new id and the remap is reported.
		res, err := tx.ExecContext(ctx,
			"INSERT INTO bookmarks (url, title, tags, desc, flags) VALUES (?, ?, ?, ?, ?)",
			snap.URL, snap.Title, snap.Tags, snap.Description, int64(snap.Flags))
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("cannot restore %s: %w", snap.URL, ErrDuplicateURL)
			}
			return unavailable("undo delete", err)
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return unavailable("read restored id", err)
		}
		unit.Rows++
		unit.Remaps = append(unit.Remaps, Remap{OldID: snap.ID, NewID: newID})
		s.logger.Warn().Int64("old_id", snap.ID).Int64("new_id", newID).Msg("undo delete: id was taken, row restored under new id")
		return nil

	default:
		return fmt.Errorf("unknown undo operation %q", e.op)
	}
}

const selectEntry = "SELECT sequence, operation, bookmark_id, batch_id, url, title, tags, desc, flags FROM undo_log"

func scanEntry(row rowScanner) (logEntry, error) {
	var e logEntry
	var op string
	err := row.Scan(&e.seq, &op, &e.bookmarkID, &e.batchID, &e.url, &e.title, &e.tags, &e.desc, &e.flags)
	if err != nil {
		return logEntry{}, err
	}
	e.op = Op(op)
	return e, nil
}
