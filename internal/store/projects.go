package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const projectColumns = "id, name, source_path, status, target_language, dub_path, error_message, created_at, updated_at"

func scanProject(scanner rowScanner) (*Project, error) {
	var (
		p          Project
		status     string
		language   sql.NullString
		dubPath    sql.NullString
		errMessage sql.NullString
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&p.ID, &p.Name, &p.SourcePath, &status, &language, &dubPath, &errMessage, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	p.Status = Status(status)
	p.TargetLanguage = language.String
	p.DubPath = dubPath.String
	p.ErrorMessage = errMessage.String
	p.CreatedAt = parseTime(createdRaw)
	p.UpdatedAt = parseTime(updatedRaw)
	return &p, nil
}

// CreateProject registers a source video. The name defaults to the file name without extension.
func (s *Store) CreateProject(ctx context.Context, name, sourcePath string) (*Project, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return nil, errors.New("source path is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		base := filepath.Base(sourcePath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	timestamp := formatTime(time.Now())
	res, err := s.execWithRetry(ctx,
		`INSERT INTO projects (name, source_path, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		name, sourcePath, StatusIdle, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetProject(ctx, id)
}

// GetProject fetches a project by identifier. It returns nil when no project matches.
func (s *Store) GetProject(ctx context.Context, id int64) (*Project, error) {
	row := s.db.QueryRowContext(orBackground(ctx), `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// ListProjects returns every project, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(orBackground(ctx), `SELECT `+projectColumns+` FROM projects ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// UpdateProject persists every mutable project field.
func (s *Store) UpdateProject(ctx context.Context, project *Project) error {
	if project == nil {
		return errors.New("project is nil")
	}
	project.UpdatedAt = time.Now().UTC()
	_, err := s.execWithRetry(ctx,
		`UPDATE projects
         SET name = ?, source_path = ?, status = ?, target_language = ?, dub_path = ?,
             error_message = ?, updated_at = ?
         WHERE id = ?`,
		project.Name,
		project.SourcePath,
		project.Status,
		orNull(project.TargetLanguage),
		orNull(project.DubPath),
		orNull(project.ErrorMessage),
		formatTime(project.UpdatedAt),
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// SetStatus records a processing status. The error message is cleared unless status is StatusError.
func (s *Store) SetStatus(ctx context.Context, id int64, status Status, message string) error {
	if status != StatusError {
		message = ""
	}
	_, err := s.execWithRetry(ctx,
		`UPDATE projects SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		status, orNull(message), formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("set project status: %w", err)
	}
	return nil
}

// ResetInterrupted returns projects left in a processing status to StatusError and marks
// running renders failed. It runs at startup, when no work from this process can be in flight.
func (s *Store) ResetInterrupted(ctx context.Context) (int64, error) {
	placeholders := make([]string, 0, len(processingStatuses))
	args := []any{StatusError, InterruptedReason, formatTime(time.Now())}
	for status := range processingStatuses {
		placeholders = append(placeholders, "?")
		args = append(args, status)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE projects SET status = ?, error_message = ?, updated_at = ?
         WHERE status IN (`+strings.Join(placeholders, ",")+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("reset interrupted projects: %w", err)
	}
	affected, _ := res.RowsAffected()

	if _, err := s.execWithRetry(ctx,
		`UPDATE renders SET state = ?, error_message = ?, finished_at = ? WHERE state = ?`,
		RenderFailed, InterruptedReason, formatTime(time.Now()), RenderRunning,
	); err != nil {
		return affected, fmt.Errorf("reset interrupted renders: %w", err)
	}
	return affected, nil
}

// Summarize counts projects by lifecycle bucket.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	ctx = orBackground(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM projects GROUP BY status`)
	if err != nil {
		return Summary{}, fmt.Errorf("project stats: %w", err)
	}
	defer rows.Close()

	var summary Summary
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Summary{}, err
		}
		summary.Projects += count
		switch {
		case status == StatusCompleted:
			summary.Completed += count
		case status == StatusError:
			summary.Failed += count
		case status.IsProcessing():
			summary.Processing += count
		}
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM renders`).Scan(&summary.Renders); err != nil {
		return Summary{}, fmt.Errorf("render count: %w", err)
	}
	return summary, nil
}
