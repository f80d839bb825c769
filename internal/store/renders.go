package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const renderColumns = "id, project_id, job_id, state, progress, frames, audio, artifact_path, mime_type, size_bytes, error_message, started_at, finished_at"

func scanRender(scanner rowScanner) (*Render, error) {
	var (
		r           Render
		audio       sql.NullString
		artifact    sql.NullString
		mime        sql.NullString
		size        sql.NullInt64
		errMessage  sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(&r.ID, &r.ProjectID, &r.JobID, &r.State, &r.Progress, &r.Frames,
		&audio, &artifact, &mime, &size, &errMessage, &startedRaw, &finishedRaw); err != nil {
		return nil, err
	}
	r.Audio = audio.String
	r.ArtifactPath = artifact.String
	r.MIMEType = mime.String
	r.SizeBytes = size.Int64
	r.ErrorMessage = errMessage.String
	r.StartedAt = parseTime(startedRaw)
	r.FinishedAt = parseNullTime(finishedRaw)
	return &r, nil
}

// StartRender records a running render job.
func (s *Store) StartRender(ctx context.Context, projectID int64, jobID string) (*Render, error) {
	if jobID == "" {
		return nil, errors.New("job id is required")
	}
	started := time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO renders (project_id, job_id, state, started_at) VALUES (?, ?, ?, ?)`,
		projectID, jobID, RenderRunning, formatTime(started),
	)
	if err != nil {
		return nil, fmt.Errorf("insert render: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &Render{ID: id, ProjectID: projectID, JobID: jobID, State: RenderRunning, StartedAt: started}, nil
}

// FinishRender stores the terminal outcome of a render job.
func (s *Store) FinishRender(ctx context.Context, r *Render) error {
	if r == nil {
		return errors.New("render is nil")
	}
	if r.FinishedAt == nil {
		now := time.Now().UTC()
		r.FinishedAt = &now
	}
	var size any
	if r.SizeBytes > 0 {
		size = r.SizeBytes
	}
	_, err := s.execWithRetry(ctx,
		`UPDATE renders
         SET state = ?, progress = ?, frames = ?, audio = ?, artifact_path = ?, mime_type = ?,
             size_bytes = ?, error_message = ?, finished_at = ?
         WHERE id = ?`,
		r.State, r.Progress, r.Frames,
		orNull(r.Audio),
		orNull(r.ArtifactPath),
		orNull(r.MIMEType),
		size,
		orNull(r.ErrorMessage),
		nullableTime(r.FinishedAt),
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("finish render: %w", err)
	}
	return nil
}

// ListRenders returns a project's render history, newest first.
func (s *Store) ListRenders(ctx context.Context, projectID int64) ([]*Render, error) {
	rows, err := s.db.QueryContext(orBackground(ctx),
		`SELECT `+renderColumns+` FROM renders WHERE project_id = ? ORDER BY id DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list renders: %w", err)
	}
	defer rows.Close()

	var renders []*Render
	for rows.Next() {
		r, err := scanRender(rows)
		if err != nil {
			return nil, fmt.Errorf("scan render: %w", err)
		}
		renders = append(renders, r)
	}
	return renders, rows.Err()
}
