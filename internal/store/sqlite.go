package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkravets/daybook/internal/common"
	"github.com/mkravets/daybook/internal/dbx"
	"github.com/mkravets/daybook/internal/journal"
)

// SQLiteRepository implements Store on a SQLite database. Timestamps are
// stored as integer Unix milliseconds, so callers should not rely on
// sub-millisecond precision surviving a round-trip.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns a repository bound to db. The schema must
// already be in place; see Open for the migrating constructor.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrStorage, err)
}

func (r *SQLiteRepository) Get(ctx context.Context, date string) (*journal.Entry, error) {
	return r.get(ctx, date, true)
}

func (r *SQLiteRepository) Lookup(ctx context.Context, date string) (*journal.Entry, error) {
	return r.get(ctx, date, false)
}

func (r *SQLiteRepository) get(ctx context.Context, date string, skipTombstones bool) (*journal.Entry, error) {
	query := `SELECT date, content, modified_at, deleted FROM entries WHERE date=?`
	if skipTombstones {
		query += ` AND deleted=0`
	}
	row := r.db.QueryRowContext(ctx, query, date)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %s: %w", date, common.ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("get entry", err)
	}
	return e, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, e *journal.Entry) error {
	query := `INSERT INTO entries (date, content, modified_at, deleted)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET content = excluded.content,
				modified_at = excluded.modified_at,
				deleted = excluded.deleted
	`
	_, err := r.db.ExecContext(ctx, query, e.Date, e.Content, e.ModifiedAt.UnixMilli(), boolToInt(e.Deleted))
	if err != nil {
		return storageErr("put entry", err)
	}
	return nil
}

func (r *SQLiteRepository) PutIfNewer(ctx context.Context, e *journal.Entry) (time.Time, bool, error) {
	var winner time.Time
	var applied bool

	// The conditional upsert and the winner read must observe the same
	// state, hence the transaction.
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `INSERT INTO entries (date, content, modified_at, deleted)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(date) DO UPDATE SET content = excluded.content,
					modified_at = excluded.modified_at,
					deleted = excluded.deleted
				WHERE excluded.modified_at > entries.modified_at
		`
		res, err := tx.ExecContext(ctx, query, e.Date, e.Content, e.ModifiedAt.UnixMilli(), boolToInt(e.Deleted))
		if err != nil {
			return err
		}
		ra, err := res.RowsAffected()
		if err != nil {
			return err
		}
		applied = ra > 0

		var ms int64
		if err := tx.QueryRowContext(ctx, `SELECT modified_at FROM entries WHERE date=?`, e.Date).Scan(&ms); err != nil {
			return err
		}
		winner = time.UnixMilli(ms).UTC()
		return nil
	})
	if err != nil {
		return time.Time{}, false, storageErr("put entry if newer", err)
	}
	return winner, applied, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, date string, at time.Time) error {
	query := `UPDATE entries SET deleted=1, content='', modified_at=? WHERE date=? AND deleted=0`
	res, err := r.db.ExecContext(ctx, query, at.UnixMilli(), date)
	if err != nil {
		return storageErr("delete entry", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return storageErr("delete entry", err)
	}
	if ra == 0 {
		return fmt.Errorf("entry %s: %w", date, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]journal.Entry, error) {
	query := `SELECT date, content, modified_at, deleted FROM entries WHERE deleted=0 ORDER BY date DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr("list entries", err)
	}
	defer rows.Close()

	var result []journal.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, storageErr("list entries", err)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list entries", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Catalog(ctx context.Context) (journal.Catalog, error) {
	query := `SELECT date, modified_at, deleted FROM entries`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr("read catalog", err)
	}
	defer rows.Close()

	catalog := journal.Catalog{}
	for rows.Next() {
		var date string
		var ms int64
		var deleted int
		if err := rows.Scan(&date, &ms, &deleted); err != nil {
			return nil, storageErr("read catalog", err)
		}
		catalog[date] = journal.CatalogItem{ModifiedAt: time.UnixMilli(ms).UTC(), Deleted: deleted != 0}
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("read catalog", err)
	}
	return catalog, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*journal.Entry, error) {
	var e journal.Entry
	var ms int64
	var deleted int
	if err := s.Scan(&e.Date, &e.Content, &ms, &deleted); err != nil {
		return nil, err
	}
	e.ModifiedAt = time.UnixMilli(ms).UTC()
	e.Deleted = deleted != 0
	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
