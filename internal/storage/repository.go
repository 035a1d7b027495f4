package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"portfolio/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint.
	ErrDuplicate = errors.New("duplicate row")
)

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

// CreateUser inserts a new user row. Returns ErrDuplicate when the username
// is already taken; the table is left unchanged in that case.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, username, password_hash) VALUES (?, ?, ?, ?)`,
		u.FirstName, u.LastName, u.Username, u.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("create user %q: %w", u.Username, ErrDuplicate)
		}
		return 0, fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "id", id, "username", u.Username)
	return id, nil
}

// UserByUsername returns the user with the given username, or ErrNotFound.
func (r *SQLiteRepository) UserByUsername(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, username, password_hash FROM users WHERE username = ?`,
		username).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// UserCount returns the number of registered users.
func (r *SQLiteRepository) UserCount(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// CreateEntry inserts a product entry row for a user.
func (r *SQLiteRepository) CreateEntry(ctx context.Context, e core.Entry) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO products (user_id, product_name, product_category, product_amount, product_year, product_month)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Name, e.Category, e.Amount.String(), e.Year, e.Month)
	if err != nil {
		return 0, fmt.Errorf("create entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("entry insert id: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved",
		"id", id,
		"user_id", e.UserID,
		"product_name", e.Name,
		"product_category", e.Category,
		"product_year", e.Year)

	return id, nil
}

// EntryByID returns a single entry by its row id.
func (r *SQLiteRepository) EntryByID(ctx context.Context, id int64) (core.Entry, error) {
	var (
		e      core.Entry
		amount string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, product_name, product_category, product_amount, product_year, product_month
		 FROM products WHERE id = ?`, id).
		Scan(&e.ID, &e.UserID, &e.Name, &e.Category, &amount, &e.Year, &e.Month)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Entry{}, fmt.Errorf("get entry by id: %w", err)
	}

	e.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return core.Entry{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	return e, nil
}

// Categories returns the distinct product categories across all users, as
// offered by the entry form's category picker.
func (r *SQLiteRepository) Categories(ctx context.Context) ([]string, error) {
	return r.stringList(ctx,
		`SELECT DISTINCT product_category FROM products ORDER BY product_category`)
}

// ProductNames returns the distinct product names recorded by one user.
func (r *SQLiteRepository) ProductNames(ctx context.Context, userID int64) ([]string, error) {
	return r.stringList(ctx,
		`SELECT DISTINCT product_name FROM products WHERE user_id = ? ORDER BY product_name`, userID)
}

func (r *SQLiteRepository) stringList(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query list: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan list row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SeriesByName returns the (year, amount) pairs for one product name,
// unaggregated and in insertion order. Entries sharing a year stay as
// separate points.
func (r *SQLiteRepository) SeriesByName(ctx context.Context, userID int64, name string) ([]core.SeriesPoint, error) {
	return r.series(ctx,
		`SELECT product_year, CAST(product_amount AS REAL)
		 FROM products WHERE user_id = ? AND product_name = ?
		 ORDER BY id`, userID, name)
}

// SeriesByCategory returns one (year, amount) pair per distinct year, with
// the amount summed over all of the user's entries in that category.
func (r *SQLiteRepository) SeriesByCategory(ctx context.Context, userID int64, category string) ([]core.SeriesPoint, error) {
	return r.series(ctx,
		`SELECT product_year, SUM(CAST(product_amount AS REAL))
		 FROM products WHERE user_id = ? AND product_category = ?
		 GROUP BY product_year ORDER BY product_year`, userID, category)
}

func (r *SQLiteRepository) series(ctx context.Context, query string, args ...any) ([]core.SeriesPoint, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	var points []core.SeriesPoint
	for rows.Next() {
		var p core.SeriesPoint
		if err := rows.Scan(&p.Year, &p.Amount); err != nil {
			return nil, fmt.Errorf("scan series row: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// PendingSyncEntry is the minimal data carried in sync queue messages.
type PendingSyncEntry struct {
	ID      int64
	Version int64
}

// PendingSyncEntries returns entries not yet exported to the sheet.
func (r *SQLiteRepository) PendingSyncEntries(ctx context.Context, limit int) ([]PendingSyncEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sync_version FROM products WHERE sync_status = 'pending' ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync entries: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncEntry
	for rows.Next() {
		var p PendingSyncEntry
		if err := rows.Scan(&p.ID, &p.Version); err != nil {
			return nil, fmt.Errorf("scan pending entry: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkEntrySynced marks an entry as successfully exported.
func (r *SQLiteRepository) MarkEntrySynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET sync_status = 'synced', synced_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	slog.InfoContext(ctx, "Entry marked as synced", "id", id)
	return nil
}

// MarkEntrySyncError marks an entry as having failed export.
func (r *SQLiteRepository) MarkEntrySyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET sync_status = 'error' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	slog.WarnContext(ctx, "Entry marked with sync error", "id", id)
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
