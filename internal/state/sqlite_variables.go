package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// SetVariable stores the value of a variable in one environment of the
// active workspace, replacing an existing value.
func (s *SQLiteStore) SetVariable(ctx context.Context, name, environment, value string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if name == "" || environment == "" {
		return fmt.Errorf("variable name and environment are required")
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO variables (id, workspace, name, environment, value, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(workspace, name, environment) DO UPDATE SET
		   value = excluded.value, updated_at = excluded.updated_at`,
		generateID(), ws, name, environment, value, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to set variable: %w", err)
	}

	s.logger.Debug("set variable",
		slog.String("workspace", ws),
		slog.String("name", name),
		slog.String("environment", environment))
	return nil
}

// ListVariables returns every variable value of the active workspace,
// ordered by name and environment.
func (s *SQLiteStore) ListVariables(ctx context.Context) ([]*Variable, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, workspace, name, environment, value, updated_at
		 FROM variables WHERE workspace = ? ORDER BY name, environment`,
		ws,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list variables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var vars []*Variable
	for rows.Next() {
		v := &Variable{}
		if err := rows.Scan(&v.ID, &v.Workspace, &v.Name, &v.Environment, &v.Value, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan variable: %w", err)
		}
		vars = append(vars, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list variables: %w", err)
	}
	return vars, nil
}

// LookupVariable returns the value of a variable in one environment.
func (s *SQLiteStore) LookupVariable(ctx context.Context, name, environment string) (string, bool, error) {
	if s.db == nil {
		return "", false, fmt.Errorf("database not opened")
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return "", false, err
	}

	var value string
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM variables WHERE workspace = ? AND name = ? AND environment = ?`,
		ws, name, environment,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up variable: %w", err)
	}
	return value, true, nil
}

// DeleteVariables deletes variables of the active workspace. Each key is a
// variable name, which removes the value in every environment, or the ID of
// a single value.
func (s *SQLiteStore) DeleteVariables(ctx context.Context, keys []string) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	if len(keys) == 0 {
		return 0, nil
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return 0, err
	}

	in := placeholders(len(keys))
	args := stringArgs([]any{ws}, keys)
	args = stringArgs(args, keys)
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM variables WHERE workspace = ? AND (name IN (`+in+`) OR id IN (`+in+`))`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete variables: %w", err)
	}
	n, _ := result.RowsAffected()
	s.logger.Debug("deleted variables", slog.String("workspace", ws), slog.Int64("count", n))
	return n, nil
}

// VariableNames returns the distinct variable names of the active workspace.
func (s *SQLiteStore) VariableNames(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return nil, err
	}
	return s.queryStrings(ctx, "list variable names",
		`SELECT DISTINCT name FROM variables WHERE workspace = ? ORDER BY name`, ws)
}

// VariableIDs returns the IDs of every variable value of the active
// workspace.
func (s *SQLiteStore) VariableIDs(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return nil, err
	}
	return s.queryStrings(ctx, "list variable ids",
		`SELECT id FROM variables WHERE workspace = ? ORDER BY name, environment`, ws)
}
