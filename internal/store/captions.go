package store

import (
	"context"
	"database/sql"
	"fmt"

	"dubstudio/internal/captions"
)

// SaveCaptions replaces the project's caption set in one transaction. Order is preserved.
func (s *Store) SaveCaptions(ctx context.Context, projectID int64, caps []captions.Caption) error {
	ctx = orBackground(ctx)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM captions WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("clear captions: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO captions (project_id, position, caption_id, start_seconds, end_seconds, text)
             VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare caption insert: %w", err)
		}
		defer stmt.Close()
		for i, c := range caps {
			if _, err := stmt.ExecContext(ctx, projectID, i, c.ID, c.Start, c.End, c.Text); err != nil {
				return fmt.Errorf("insert caption %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// LoadCaptions returns the project's caption set in stored order.
func (s *Store) LoadCaptions(ctx context.Context, projectID int64) ([]captions.Caption, error) {
	rows, err := s.db.QueryContext(orBackground(ctx),
		`SELECT caption_id, start_seconds, end_seconds, text FROM captions
         WHERE project_id = ? ORDER BY position`, projectID)
	if err != nil {
		return nil, fmt.Errorf("load captions: %w", err)
	}
	defer rows.Close()

	var caps []captions.Caption
	for rows.Next() {
		var c captions.Caption
		if err := rows.Scan(&c.ID, &c.Start, &c.End, &c.Text); err != nil {
			return nil, fmt.Errorf("scan caption: %w", err)
		}
		caps = append(caps, c)
	}
	return caps, rows.Err()
}

// CaptionCount returns the number of stored captions for a project.
func (s *Store) CaptionCount(ctx context.Context, projectID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(orBackground(ctx), `SELECT COUNT(1) FROM captions WHERE project_id = ?`, projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count captions: %w", err)
	}
	return count, nil
}
