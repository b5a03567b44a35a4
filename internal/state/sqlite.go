package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// DefaultCompletionTimeout bounds each completion lookup.
const DefaultCompletionTimeout = 250 * time.Millisecond

const (
	settingWorkspace   = "workspace"
	settingEnvironment = "environment:" // + workspace
	settingLastRequest = "last_request:" // + workspace
)

// SQLiteStore implements the store on top of SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger

	completionTimeout time.Duration
}

// NewSQLiteStore creates a new SQLite store instance. A nil logger discards
// output.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{
		logger:            logger,
		completionTimeout: DefaultCompletionTimeout,
	}
}

// NewSQLiteStoreWithDB wraps an already opened database.
func NewSQLiteStoreWithDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	s := NewSQLiteStore(logger)
	s.db = db
	return s
}

// SetCompletionTimeout changes the bound on completion lookups.
func (s *SQLiteStore) SetCompletionTimeout(d time.Duration) {
	if d > 0 {
		s.completionTimeout = d
	}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection: the shell is single threaded and an in-memory
	// database only lives as long as its connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened store", slog.String("path", path))
	return nil
}

// Path returns the path the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// --- Settings ---

func (s *SQLiteStore) getSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) putSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) deleteSetting(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to clear setting %s: %w", key, err)
	}
	return nil
}

// --- Workspaces ---

// ActiveWorkspace returns the workspace everything is scoped to.
func (s *SQLiteStore) ActiveWorkspace(ctx context.Context) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}
	ws, ok, err := s.getSetting(ctx, settingWorkspace)
	if err != nil {
		return "", err
	}
	if !ok || ws == "" {
		return DefaultWorkspace, nil
	}
	return ws, nil
}

// SetWorkspace makes name the active workspace, creating it if needed.
func (s *SQLiteStore) SetWorkspace(ctx context.Context, name string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if name == "" {
		return fmt.Errorf("workspace name is empty")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workspaces (name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		name, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	if err := s.putSetting(ctx, settingWorkspace, name); err != nil {
		return err
	}

	s.logger.Debug("switched workspace", slog.String("workspace", name))
	return nil
}

// ListWorkspaces returns every workspace name.
func (s *SQLiteStore) ListWorkspaces(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	return s.queryStrings(ctx, "list workspaces", `SELECT name FROM workspaces ORDER BY name`)
}

// --- Environments ---

// ActiveEnvironment returns the active environment of the active workspace,
// or "" when none is set.
func (s *SQLiteStore) ActiveEnvironment(ctx context.Context) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return "", err
	}
	env, _, err := s.getSetting(ctx, settingEnvironment+ws)
	return env, err
}

// SetEnvironment makes name the active environment. An empty name clears it.
func (s *SQLiteStore) SetEnvironment(ctx context.Context, name string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return err
	}
	if name == "" {
		return s.deleteSetting(ctx, settingEnvironment+ws)
	}
	if err := s.ensureEnvironment(ctx, ws, name); err != nil {
		return err
	}
	if err := s.putSetting(ctx, settingEnvironment+ws, name); err != nil {
		return err
	}

	s.logger.Debug("switched environment", slog.String("workspace", ws), slog.String("environment", name))
	return nil
}

func (s *SQLiteStore) ensureEnvironment(ctx context.Context, ws, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO environments (workspace, name, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(workspace, name) DO NOTHING`,
		ws, name, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create environment: %w", err)
	}
	return nil
}

// ListEnvironments returns the environments of the active workspace: those
// created explicitly and those referenced by variables.
func (s *SQLiteStore) ListEnvironments(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return nil, err
	}
	return s.queryStrings(ctx, "list environments",
		`SELECT name FROM environments WHERE workspace = ?
		 UNION
		 SELECT environment FROM variables WHERE workspace = ?
		 ORDER BY 1`,
		ws, ws,
	)
}

// --- Last request ---

// LastRequest returns the name of the request run most recently in the
// active workspace, or "".
func (s *SQLiteStore) LastRequest(ctx context.Context) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return "", err
	}
	name, _, err := s.getSetting(ctx, settingLastRequest+ws)
	return name, err
}

// SetLastRequest records name as the most recently run request.
func (s *SQLiteStore) SetLastRequest(ctx context.Context, name string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return err
	}
	return s.putSetting(ctx, settingLastRequest+ws, name)
}

// Counts summarizes the active workspace.
func (s *SQLiteStore) Counts(ctx context.Context) (Counts, error) {
	if s.db == nil {
		return Counts{}, fmt.Errorf("database not opened")
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return Counts{}, err
	}

	var c Counts
	err = s.db.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM requests WHERE workspace = ?),
		   (SELECT COUNT(DISTINCT name) FROM variables WHERE workspace = ?),
		   (SELECT COUNT(*) FROM (
		      SELECT name FROM environments WHERE workspace = ?
		      UNION SELECT environment FROM variables WHERE workspace = ?)),
		   (SELECT COUNT(*) FROM workspaces)`,
		ws, ws, ws, ws,
	).Scan(&c.Requests, &c.Variables, &c.Environments, &c.Workspaces)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count: %w", err)
	}
	return c, nil
}

// queryStrings runs a query selecting one text column.
func (s *SQLiteStore) queryStrings(ctx context.Context, what, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to %s: %w", what, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}
	return out, nil
}

// placeholders returns "?, ?, ?" for n values.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// stringArgs converts values for a variadic query call.
func stringArgs(prefix []any, values []string) []any {
	args := make([]any, 0, len(prefix)+len(values))
	args = append(args, prefix...)
	for _, v := range values {
		args = append(args, v)
	}
	return args
}
