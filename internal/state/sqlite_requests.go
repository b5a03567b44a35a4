package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// SaveRequest stores a request in the active workspace, replacing any request
// with the same name. It fills in ID, Workspace and timestamps.
func (s *SQLiteStore) SaveRequest(ctx context.Context, req *Request) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if req.Name == "" {
		return fmt.Errorf("request name is empty")
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return err
	}
	if req.Method == "" {
		req.Method = "GET"
	}
	req.Method = strings.ToUpper(req.Method)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	id := generateID()
	err = tx.QueryRowContext(ctx,
		`INSERT INTO requests (id, workspace, name, method, url, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(workspace, name) DO UPDATE SET
		   method = excluded.method, url = excluded.url, body = excluded.body,
		   updated_at = excluded.updated_at
		 RETURNING id, created_at`,
		id, ws, req.Name, req.Method, req.URL, req.Body, now, now,
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM request_options WHERE request_id = ?`, req.ID); err != nil {
		return fmt.Errorf("failed to replace request headers: %w", err)
	}
	for i, h := range req.Headers {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO request_options (id, request_id, name, value, position) VALUES (?, ?, ?, ?, ?)`,
			generateID(), req.ID, HeaderName(h), h, i,
		)
		if err != nil {
			return fmt.Errorf("failed to save request header: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit request: %w", err)
	}

	req.Workspace = ws
	req.UpdatedAt = now
	s.logger.Debug("saved request",
		slog.String("workspace", ws),
		slog.String("name", req.Name),
		slog.Int("headers", len(req.Headers)))
	return nil
}

// GetRequest retrieves a request of the active workspace by name.
func (s *SQLiteStore) GetRequest(ctx context.Context, name string) (*Request, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return nil, err
	}

	req := &Request{}
	err = s.db.QueryRowContext(ctx,
		`SELECT id, workspace, name, method, url, body, created_at, updated_at
		 FROM requests WHERE workspace = ? AND name = ?`,
		ws, name,
	).Scan(&req.ID, &req.Workspace, &req.Name, &req.Method, &req.URL, &req.Body, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("request %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	headers, err := s.headers(ctx, []string{req.ID})
	if err != nil {
		return nil, err
	}
	req.Headers = headers[req.ID]
	return req, nil
}

// ListRequests returns the requests of the active workspace ordered by name.
func (s *SQLiteStore) ListRequests(ctx context.Context) ([]*Request, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, workspace, name, method, url, body, created_at, updated_at
		 FROM requests WHERE workspace = ? ORDER BY name`,
		ws,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reqs []*Request
	var ids []string
	for rows.Next() {
		req := &Request{}
		if err := rows.Scan(&req.ID, &req.Workspace, &req.Name, &req.Method, &req.URL, &req.Body, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		reqs = append(reqs, req)
		ids = append(ids, req.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	headers, err := s.headers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, req := range reqs {
		req.Headers = headers[req.ID]
	}
	return reqs, nil
}

// headers loads the header lines of the given requests in one query.
func (s *SQLiteStore) headers(ctx context.Context, ids []string) (map[string][]string, error) {
	result := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT request_id, value FROM request_options
		 WHERE request_id IN (`+placeholders(len(ids))+`)
		 ORDER BY request_id, position`,
		stringArgs(nil, ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load request headers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id, value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, fmt.Errorf("failed to scan request header: %w", err)
		}
		result[id] = append(result[id], value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load request headers: %w", err)
	}
	return result, nil
}

// DeleteRequests deletes requests of the active workspace by name and
// returns how many were removed.
func (s *SQLiteStore) DeleteRequests(ctx context.Context, names []string) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	if len(names) == 0 {
		return 0, nil
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM requests WHERE workspace = ? AND name IN (`+placeholders(len(names))+`)`,
		stringArgs([]any{ws}, names)...,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete requests: %w", err)
	}
	n, _ := result.RowsAffected()
	s.logger.Debug("deleted requests", slog.String("workspace", ws), slog.Int64("count", n))
	return n, nil
}

// DeleteOptions removes headers with the given names from every request of
// the active workspace. Header names compare case-insensitively.
func (s *SQLiteStore) DeleteOptions(ctx context.Context, names []string) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	if len(names) == 0 {
		return 0, nil
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM request_options
		 WHERE name IN (`+placeholders(len(names))+`)
		   AND request_id IN (SELECT id FROM requests WHERE workspace = ?)`,
		append(stringArgs(nil, names), ws)...,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete options: %w", err)
	}
	n, _ := result.RowsAffected()
	s.logger.Debug("deleted options", slog.String("workspace", ws), slog.Int64("count", n))
	return n, nil
}

// RequestNames returns the request names of the active workspace.
func (s *SQLiteStore) RequestNames(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return nil, err
	}
	return s.queryStrings(ctx, "list request names",
		`SELECT name FROM requests WHERE workspace = ? ORDER BY name`, ws)
}

// OptionNames returns the distinct header names used in the active
// workspace.
func (s *SQLiteStore) OptionNames(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	ws, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return nil, err
	}
	return s.queryStrings(ctx, "list option names",
		`SELECT DISTINCT o.name FROM request_options o
		 JOIN requests r ON r.id = o.request_id
		 WHERE r.workspace = ? ORDER BY o.name`, ws)
}

// HeadersForSuffix returns the distinct header lines of requests whose name
// has the given suffix (see NameSuffix).
func (s *SQLiteStore) HeadersForSuffix(ctx context.Context, suffix string) ([]string, error) {
	reqs, err := s.ListRequests(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []string
	for _, req := range reqs {
		if NameSuffix(req.Name) != suffix {
			continue
		}
		for _, h := range req.Headers {
			if !seen[h] {
				seen[h] = true
				out = append(out, h)
			}
		}
	}
	return out, nil
}
