// Package store implements the transactional bookmark catalogue: the
// bookmarks table, the undo log that makes every mutation reversible,
// and execution of search plans built by pkg/query.
//
// Every mutating operation runs as one transaction spanning the row
// change and its undo-log entry, so a crash can never separate the two.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/averin/marque/pkg/bookmark"
	"github.com/averin/marque/pkg/query"
	"github.com/averin/marque/pkg/tags"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Op identifies one mutation kind, both in the undo log and in hook
// callbacks.
type Op string

const (
	// OpAdd inserts a new bookmark.
	OpAdd Op = "ADD"
	// OpUpdate overwrites fields of an existing bookmark.
	OpUpdate Op = "UPDATE"
	// OpDelete removes a bookmark.
	OpDelete Op = "DELETE"
)

// Hooks receives mutation lifecycle callbacks. PreMutate runs before
// the transaction opens; it may rewrite the pending bookmark in place
// or abort the whole command by returning an error, in which case no
// row or log write happens. PostMutate runs after commit and is
// observational only.
type Hooks interface {
	PreMutate(ctx context.Context, op Op, b *bookmark.Bookmark) error
	PostMutate(ctx context.Context, op Op, b bookmark.Bookmark)
}

// FieldChanges carries the optional field overwrites of an update
// command. Nil members leave the field untouched. Tag changes travel
// separately as a tag expression.
type FieldChanges struct {
	URL         *string
	Title       *string
	Description *string
	Immutable   *bool
	Private     *bool
}

func (c FieldChanges) empty() bool {
	return c.URL == nil && c.Title == nil && c.Description == nil &&
		c.Immutable == nil && c.Private == nil
}

// Config holds store configuration.
type Config struct {
	// Path is the sqlite database file.
	Path string
	// Logger receives store events; a disabled logger is fine.
	Logger zerolog.Logger
	// Hooks is the optional plugin dispatch called around mutations.
	Hooks Hooks
}

// Store is the bookmark catalogue backed by one sqlite file.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
	hooks  Hooks
}

// New opens (creating if needed) the catalogue database and prepares
// its schema.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("database path is required")
	}

	db, err := sql.Open(driverName, cfg.Path+"?_fts5=1&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{
		db:     db,
		logger: cfg.Logger.With().Str("component", "store").Logger(),
		hooks:  cfg.Hooks,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts a bookmark and returns its new id. The URL must not map
// to an active row already.
func (s *Store) Add(ctx context.Context, b bookmark.Bookmark) (int64, error) {
	b.URL = strings.TrimSpace(b.URL)
	if b.URL == "" {
		return 0, errors.New("url is required")
	}
	b.Tags = bookmark.CanonicalTags(bookmark.SplitTags(b.Tags))

	if s.hooks != nil {
		if err := s.hooks.PreMutate(ctx, OpAdd, &b); err != nil {
			return 0, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, unavailable("begin add", err)
	}
	defer tx.Rollback()

	id, err := s.insertBookmark(ctx, tx, b, nil)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, unavailable("commit add", err)
	}

	b.ID = id
	if s.hooks != nil {
		s.hooks.PostMutate(ctx, OpAdd, b)
	}

	s.logger.Info().Int64("id", id).Str("url", b.URL).Msg("bookmark added")
	return id, nil
}

// AddMany inserts records in one transaction sharing one ADD batch, so
// the whole import becomes a single logical undo unit. Any duplicate
// URL aborts the entire batch.
func (s *Store) AddMany(ctx context.Context, records []bookmark.Bookmark) ([]int64, error) {
	if len(records) == 0 {
		return nil, nil
	}

	pending := make([]bookmark.Bookmark, len(records))
	copy(pending, records)
	for i := range pending {
		pending[i].URL = strings.TrimSpace(pending[i].URL)
		if pending[i].URL == "" {
			return nil, fmt.Errorf("record %d: url is required", i)
		}
		pending[i].Tags = bookmark.CanonicalTags(bookmark.SplitTags(pending[i].Tags))
		if s.hooks != nil {
			if err := s.hooks.PreMutate(ctx, OpAdd, &pending[i]); err != nil {
				return nil, err
			}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin bulk add", err)
	}
	defer tx.Rollback()

	batch := uuid.NewString()
	ids := make([]int64, 0, len(pending))
	for i := range pending {
		id, err := s.insertBookmark(ctx, tx, pending[i], &batch)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit bulk add", err)
	}

	if s.hooks != nil {
		for i := range pending {
			pending[i].ID = ids[i]
			s.hooks.PostMutate(ctx, OpAdd, pending[i])
		}
	}

	s.logger.Info().Int("count", len(ids)).Msg("bookmarks added in bulk")
	return ids, nil
}

// insertBookmark performs the duplicate check, the row insert and the
// ADD log entry inside the caller's transaction.
func (s *Store) insertBookmark(ctx context.Context, tx *sql.Tx, b bookmark.Bookmark, batchID *string) (int64, error) {
	var existing int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM bookmarks WHERE url = ?", b.URL).Scan(&existing)
	switch {
	case err == nil:
		return 0, fmt.Errorf("%w: %s (id %d)", ErrDuplicateURL, b.URL, existing)
	case !errors.Is(err, sql.ErrNoRows):
		return 0, unavailable("check url", err)
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO bookmarks (url, title, tags, desc, flags) VALUES (?, ?, ?, ?, ?)",
		b.URL, b.Title, b.Tags, b.Description, int64(b.Flags))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateURL, b.URL)
		}
		return 0, unavailable("insert bookmark", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, unavailable("read new id", err)
	}

	if err := recordAdd(ctx, tx, id, batchID); err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns the bookmark with the given id.
func (s *Store) Get(ctx context.Context, id int64) (bookmark.Bookmark, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	b, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return bookmark.Bookmark{}, fmt.Errorf("%w: %d", ErrNoSuchID, id)
	}
	if err != nil {
		return bookmark.Bookmark{}, unavailable("get bookmark", err)
	}
	return b, nil
}

// All returns every bookmark ordered by ascending id. Private rows are
// excluded unless includePrivate is set.
func (s *Store) All(ctx context.Context, includePrivate bool) ([]bookmark.Bookmark, error) {
	q := selectColumns
	if !includePrivate {
		q += fmt.Sprintf(" WHERE (flags & %d) = 0", bookmark.FlagPrivate)
	}
	q += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, unavailable("list bookmarks", err)
	}
	defer rows.Close()
	return collectBookmarks(rows)
}

// List returns the bookmarks a selector addresses, ordered by
// ascending id. Private rows are included; listing is id-addressed
// browsing, not search.
func (s *Store) List(ctx context.Context, sel Selector) ([]bookmark.Bookmark, error) {
	return s.selectRows(ctx, sel)
}

// Update applies field changes and an optional tag expression to the
// selected rows. A single-id selector that misses is ErrNoSuchID; a
// range or all selector silently operates on whatever exists.
func (s *Store) Update(ctx context.Context, sel Selector, changes FieldChanges, tagExpr string) (UpdateReport, error) {
	if changes.empty() && tagExpr == "" {
		return UpdateReport{}, errors.New("nothing to update: no field changes or tag expression")
	}

	var ops []tags.Operation
	if tagExpr != "" {
		var err error
		ops, err = tags.Parse(tagExpr)
		if err != nil {
			return UpdateReport{}, err
		}
	}

	targets, err := s.selectRows(ctx, sel)
	if err != nil {
		return UpdateReport{}, err
	}
	if len(targets) == 0 {
		return UpdateReport{}, nil
	}
	if changes.URL != nil && len(targets) > 1 {
		return UpdateReport{}, errors.New("url can only be changed for a single bookmark")
	}

	proposals := make([]bookmark.Bookmark, len(targets))
	for i, cur := range targets {
		next := cur
		if changes.URL != nil {
			next.URL = strings.TrimSpace(*changes.URL)
			if next.URL == "" {
				return UpdateReport{}, errors.New("url cannot be set to empty")
			}
		}
		if changes.Title != nil {
			next.Title = *changes.Title
		}
		if changes.Description != nil {
			next.Description = *changes.Description
		}
		if changes.Immutable != nil {
			next.Flags = setFlag(next.Flags, bookmark.FlagImmutable, *changes.Immutable)
		}
		if changes.Private != nil {
			next.Flags = setFlag(next.Flags, bookmark.FlagPrivate, *changes.Private)
		}
		if len(ops) > 0 {
			next.Tags = bookmark.CanonicalTags(tags.Apply(cur.TagList(), ops))
		}
		proposals[i] = next
	}

	if s.hooks != nil {
		for i := range proposals {
			if err := s.hooks.PreMutate(ctx, OpUpdate, &proposals[i]); err != nil {
				return UpdateReport{}, err
			}
		}
	}

	// Tag mutations get a fresh batch per row; a plain multi-row field
	// update shares one batch for the whole command.
	tagged := len(ops) > 0
	var shared *string
	if !tagged && len(targets) > 1 {
		id := uuid.NewString()
		shared = &id
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UpdateReport{}, unavailable("begin update", err)
	}
	defer tx.Rollback()

	for i, cur := range targets {
		batch := shared
		if tagged {
			id := uuid.NewString()
			batch = &id
		}
		if err := recordSnapshot(ctx, tx, OpUpdate, cur, batch); err != nil {
			return UpdateReport{}, err
		}

		p := proposals[i]
		_, err := tx.ExecContext(ctx,
			"UPDATE bookmarks SET url = ?, title = ?, tags = ?, desc = ?, flags = ? WHERE id = ?",
			p.URL, p.Title, p.Tags, p.Description, int64(p.Flags), p.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return UpdateReport{}, fmt.Errorf("%w: %s", ErrDuplicateURL, p.URL)
			}
			return UpdateReport{}, unavailable("update bookmark", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return UpdateReport{}, unavailable("commit update", err)
	}

	if s.hooks != nil {
		for _, p := range proposals {
			s.hooks.PostMutate(ctx, OpUpdate, p)
		}
	}

	s.logger.Info().Int("rows", len(targets)).Str("selector", sel.String()).Msg("bookmarks updated")
	return UpdateReport{Updated: len(targets)}, nil
}

// Delete removes the selected rows, recording one DELETE batch for the
// whole command. With retainOrder false the store compacts ids so they
// stay contiguous; compaction moves are deliberate id reassignments and
// are not undo logged.
func (s *Store) Delete(ctx context.Context, sel Selector, retainOrder bool) (DeleteReport, error) {
	targets, err := s.selectRows(ctx, sel)
	if err != nil {
		return DeleteReport{}, err
	}
	if len(targets) == 0 {
		return DeleteReport{}, nil
	}

	if s.hooks != nil {
		for i := range targets {
			if err := s.hooks.PreMutate(ctx, OpDelete, &targets[i]); err != nil {
				return DeleteReport{}, err
			}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DeleteReport{}, unavailable("begin delete", err)
	}
	defer tx.Rollback()

	var batch *string
	if len(targets) > 1 {
		id := uuid.NewString()
		batch = &id
	}

	freed := make([]int64, 0, len(targets))
	for _, cur := range targets {
		if err := recordSnapshot(ctx, tx, OpDelete, cur, batch); err != nil {
			return DeleteReport{}, err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM bookmarks WHERE id = ?", cur.ID); err != nil {
			return DeleteReport{}, unavailable("delete bookmark", err)
		}
		freed = append(freed, cur.ID)
	}

	if !retainOrder {
		if err := compact(ctx, tx, freed); err != nil {
			return DeleteReport{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return DeleteReport{}, unavailable("commit delete", err)
	}

	if s.hooks != nil {
		for _, cur := range targets {
			s.hooks.PostMutate(ctx, OpDelete, cur)
		}
	}

	s.logger.Info().Int("rows", len(targets)).Str("selector", sel.String()).Bool("retain_order", retainOrder).Msg("bookmarks deleted")
	return DeleteReport{Deleted: len(targets)}, nil
}

// compact moves the current highest-id row into each freed slot in
// ascending order, keeping ids contiguous after a delete.
func compact(ctx context.Context, tx *sql.Tx, freed []int64) error {
	for _, slot := range freed {
		var maxID sql.NullInt64
		if err := tx.QueryRowContext(ctx, "SELECT MAX(id) FROM bookmarks").Scan(&maxID); err != nil {
			return unavailable("find max id", err)
		}
		if !maxID.Valid || maxID.Int64 <= slot {
			continue
		}
		if _, err := tx.ExecContext(ctx, "UPDATE bookmarks SET id = ? WHERE id = ?", slot, maxID.Int64); err != nil {
			return unavailable("compact ids", err)
		}
	}
	return nil
}

// Search executes a query plan. Private rows are excluded unless
// includePrivate is set. Results are ordered by ascending id.
func (s *Store) Search(ctx context.Context, plan *query.Plan, includePrivate bool) ([]bookmark.Bookmark, error) {
	if plan == nil {
		return nil, errors.New("nil query plan")
	}

	var (
		rows *sql.Rows
		err  error
	)
	if plan.Mode == query.ModeNormal {
		q := `SELECT b.id, b.url, b.title, b.tags, b.desc, b.flags
			FROM bookmarks_fts
			JOIN bookmarks b ON b.id = bookmarks_fts.rowid
			WHERE bookmarks_fts MATCH ?`
		if !includePrivate {
			q += fmt.Sprintf(" AND (b.flags & %d) = 0", bookmark.FlagPrivate)
		}
		q += " ORDER BY b.id ASC"
		rows, err = s.db.QueryContext(ctx, q, plan.Match)
	} else {
		q := selectColumns + " WHERE (" + plan.Where + ")"
		if !includePrivate {
			q += fmt.Sprintf(" AND (flags & %d) = 0", bookmark.FlagPrivate)
		}
		q += " ORDER BY id ASC"
		rows, err = s.db.QueryContext(ctx, q, plan.Args...)
	}
	if err != nil {
		return nil, unavailable("search", err)
	}
	defer rows.Close()

	found, err := collectBookmarks(rows)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("mode", string(plan.Mode)).Int("hits", len(found)).Msg("search executed")
	return found, nil
}

// selectRows resolves a selector to the bookmarks it targets, ordered
// by ascending id.
func (s *Store) selectRows(ctx context.Context, sel Selector) ([]bookmark.Bookmark, error) {
	switch sel.Kind {
	case SelectorOne:
		b, err := s.Get(ctx, sel.ID)
		if err != nil {
			return nil, err
		}
		return []bookmark.Bookmark{b}, nil
	case SelectorRange:
		rows, err := s.db.QueryContext(ctx,
			selectColumns+" WHERE id BETWEEN ? AND ? ORDER BY id ASC", sel.Lo, sel.Hi)
		if err != nil {
			return nil, unavailable("resolve range", err)
		}
		defer rows.Close()
		return collectBookmarks(rows)
	case SelectorAll:
		rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY id ASC")
		if err != nil {
			return nil, unavailable("resolve all", err)
		}
		defer rows.Close()
		return collectBookmarks(rows)
	default:
		return nil, fmt.Errorf("unknown selector kind %q", sel.Kind)
	}
}

const selectColumns = "SELECT id, url, title, tags, desc, flags FROM bookmarks"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookmark(row rowScanner) (bookmark.Bookmark, error) {
	var b bookmark.Bookmark
	var flags int64
	if err := row.Scan(&b.ID, &b.URL, &b.Title, &b.Tags, &b.Description, &flags); err != nil {
		return bookmark.Bookmark{}, err
	}
	b.Flags = bookmark.Flag(flags)
	return b, nil
}

func collectBookmarks(rows *sql.Rows) ([]bookmark.Bookmark, error) {
	var found []bookmark.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, unavailable("scan bookmark", err)
		}
		found = append(found, b)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate bookmarks", err)
	}
	return found, nil
}

func setFlag(flags, bit bookmark.Flag, on bool) bookmark.Flag {
	if on {
		return flags | bit
	}
	return flags &^ bit
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
