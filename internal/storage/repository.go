package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tempo/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist or belongs to another user.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable, for readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateUser inserts a new user and returns its id. A taken username returns
// an error from the unique constraint.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, first_name, last_name, contact_no, email, password_hash)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.Username, u.FirstName, u.LastName, u.ContactNo, u.Email, u.PasswordHash)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", id, "username", u.Username)
	return id, nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, first_name, last_name, contact_no, email, password_hash
		FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.ContactNo, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, first_name, last_name, contact_no, email, password_hash
		FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.ContactNo, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]core.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []core.Project
	for rows.Next() {
		var p core.Project
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *SQLiteRepository) ListTasksByProject(ctx context.Context, projectID int64) ([]core.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, name FROM tasks WHERE project_id = ? ORDER BY name`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []core.Task
	for rows.Next() {
		var t core.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CreateEntry inserts a timesheet entry and returns its id. New entries start
// in sync_status pending.
func (r *SQLiteRepository) CreateEntry(ctx context.Context, e core.Entry) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (user_id, project_id, task_id, activity, hours, overtime, description, entry_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.ProjectID, e.TaskID, e.Activity, e.Hours, overtimeParam(e.Overtime), e.Description, e.Date.String())
	if err != nil {
		return 0, fmt.Errorf("create entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("entry insert id: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", id,
		"user_id", e.UserID,
		"project_id", e.ProjectID,
		"hours", e.Hours,
		"date", e.Date.String())

	return id, nil
}

// GetEntry loads one entry, scoped by owner. Another user's entry id behaves
// exactly like a missing one.
func (r *SQLiteRepository) GetEntry(ctx context.Context, userID, id int64) (core.Entry, error) {
	var (
		e        core.Entry
		overtime sql.NullFloat64
		date     string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, project_id, task_id, activity, hours, overtime, description, entry_date
		FROM entries WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&e.ID, &e.UserID, &e.ProjectID, &e.TaskID, &e.Activity, &e.Hours, &overtime, &e.Description, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, ErrNotFound
	}
	if err != nil {
		return core.Entry{}, fmt.Errorf("get entry: %w", err)
	}

	e.Overtime = overtimeValue(overtime)
	e.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Entry{}, fmt.Errorf("parse entry date: %w", err)
	}
	return e, nil
}

// UpdateEntry replaces every mutable field of an entry, scoped by owner. The
// version is bumped and the row goes back to pending so the mirror catches up.
func (r *SQLiteRepository) UpdateEntry(ctx context.Context, e core.Entry) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries
		SET project_id = ?, task_id = ?, activity = ?, hours = ?, overtime = ?,
		    description = ?, entry_date = ?, version = version + 1,
		    sync_status = 'pending', synced_at = NULL
		WHERE id = ? AND user_id = ?`,
		e.ProjectID, e.TaskID, e.Activity, e.Hours, overtimeParam(e.Overtime),
		e.Description, e.Date.String(), e.ID, e.UserID)
	if err != nil {
		return 0, fmt.Errorf("update entry: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update entry rows affected: %w", err)
	}
	if affected == 0 {
		return 0, ErrNotFound
	}

	var version int64
	if err := r.db.QueryRowContext(ctx, `SELECT version FROM entries WHERE id = ?`, e.ID).Scan(&version); err != nil {
		return 0, fmt.Errorf("read entry version: %w", err)
	}

	slog.InfoContext(ctx, "Entry updated", "id", e.ID, "user_id", e.UserID, "version", version)
	return version, nil
}

// DeleteEntry removes an entry, scoped by owner.
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Entry deleted", "id", id, "user_id", userID)
	return nil
}

// EntryListing is an entry joined to its project and task names for list views.
type EntryListing struct {
	ID          int64
	Project     string
	Task        string
	Activity    string
	Hours       float64
	Overtime    core.Overtime
	Description string
	Date        core.Date
}

// ListEntries returns all of a user's entries with joined names, ordered by
// the given sort column.
func (r *SQLiteRepository) ListEntries(ctx context.Context, userID int64, sortBy SortColumn) ([]EntryListing, error) {
	query := `
		SELECT e.id, p.name, t.name, e.activity, e.hours, e.overtime, e.description, e.entry_date
		FROM entries e
		JOIN projects p ON p.id = e.project_id
		JOIN tasks t ON t.id = e.task_id
		WHERE e.user_id = ?
		ORDER BY ` + sortBy.orderClause()

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var listings []EntryListing
	for rows.Next() {
		var (
			l        EntryListing
			overtime sql.NullFloat64
			date     string
		)
		if err := rows.Scan(&l.ID, &l.Project, &l.Task, &l.Activity, &l.Hours, &overtime, &l.Description, &date); err != nil {
			return nil, fmt.Errorf("scan entry listing: %w", err)
		}
		l.Overtime = overtimeValue(overtime)
		if l.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse entry date: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// FetchEntriesInRange implements report.RangeFetcher over the inclusive
// [start, end] window.
func (r *SQLiteRepository) FetchEntriesInRange(ctx context.Context, userID int64, start, end core.Date) ([]core.EntryRow, error) {
	return r.fetchRows(ctx, `
		SELECT p.name, t.name, e.activity, e.hours, e.overtime, e.entry_date
		FROM entries e
		JOIN projects p ON p.id = e.project_id
		JOIN tasks t ON t.id = e.task_id
		WHERE e.user_id = ? AND e.entry_date >= ? AND e.entry_date <= ?
		ORDER BY e.entry_date, e.id`,
		userID, start.String(), end.String())
}

// FetchEntriesInWeek implements report.WeekFetcher over the half-open
// [weekStart, weekStart+7d) window.
func (r *SQLiteRepository) FetchEntriesInWeek(ctx context.Context, userID int64, weekStart core.Date) ([]core.EntryRow, error) {
	return r.fetchRows(ctx, `
		SELECT p.name, t.name, e.activity, e.hours, e.overtime, e.entry_date
		FROM entries e
		JOIN projects p ON p.id = e.project_id
		JOIN tasks t ON t.id = e.task_id
		WHERE e.user_id = ? AND e.entry_date >= ? AND e.entry_date < ?
		ORDER BY e.entry_date, e.id`,
		userID, weekStart.String(), weekStart.AddDays(7).String())
}

func (r *SQLiteRepository) fetchRows(ctx context.Context, query string, args ...any) ([]core.EntryRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch entry rows: %w", err)
	}
	defer rows.Close()

	var result []core.EntryRow
	for rows.Next() {
		var (
			row      core.EntryRow
			overtime sql.NullFloat64
			date     string
		)
		if err := rows.Scan(&row.Project, &row.Task, &row.Activity, &row.Hours, &overtime, &date); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		row.Overtime = overtimeValue(overtime)
		if row.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse entry date: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// SyncEntry is an entry joined to its names, as the sheet mirror needs it.
type SyncEntry struct {
	ID          int64
	Project     string
	Task        string
	Activity    string
	Hours       float64
	Overtime    core.Overtime
	Description string
	Date        core.Date
}

// GetSyncEntry loads one entry with joined names for the sync worker. Not
// user-scoped: the worker acts on ids it was handed by the queue.
func (r *SQLiteRepository) GetSyncEntry(ctx context.Context, id int64) (SyncEntry, error) {
	var (
		e        SyncEntry
		overtime sql.NullFloat64
		date     string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT e.id, p.name, t.name, e.activity, e.hours, e.overtime, e.description, e.entry_date
		FROM entries e
		JOIN projects p ON p.id = e.project_id
		JOIN tasks t ON t.id = e.task_id
		WHERE e.id = ?`, id).
		Scan(&e.ID, &e.Project, &e.Task, &e.Activity, &e.Hours, &overtime, &e.Description, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return SyncEntry{}, ErrNotFound
	}
	if err != nil {
		return SyncEntry{}, fmt.Errorf("get sync entry: %w", err)
	}

	e.Overtime = overtimeValue(overtime)
	if e.Date, err = core.ParseDate(date); err != nil {
		return SyncEntry{}, fmt.Errorf("parse entry date: %w", err)
	}
	return e, nil
}

// PendingSyncEntry is the minimal shape the worker needs to requeue a row.
type PendingSyncEntry struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

// GetPendingSyncEntries returns entries still waiting for the sheet mirror.
func (r *SQLiteRepository) GetPendingSyncEntries(ctx context.Context, limit int) ([]PendingSyncEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version, created_at FROM entries
		WHERE sync_status = 'pending'
		ORDER BY created_at
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync entries: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncEntry
	for rows.Next() {
		var p PendingSyncEntry
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync entry: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSynced records a successful mirror append.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE entries SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}

	slog.InfoContext(ctx, "Entry marked as synced", "id", id)
	return nil
}

// MarkSyncError records a failed mirror append; the periodic sweep retries it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE entries SET sync_status = 'error' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}

	slog.WarnContext(ctx, "Entry marked with sync error", "id", id)
	return nil
}

func overtimeParam(o core.Overtime) any {
	if !o.Valid {
		return nil
	}
	return o.Hours
}

func overtimeValue(n sql.NullFloat64) core.Overtime {
	if !n.Valid {
		return core.NoOvertime()
	}
	return core.SomeOvertime(n.Float64)
}
