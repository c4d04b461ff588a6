package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/coursedesk/internal/database"
	"github.com/jask/coursedesk/internal/prefs"
)

// Maintenance houses destructive local actions surfaced through the CLI.
type Maintenance struct {
	DB        *sql.DB
	PrefsPath string
}

// Reset forgets everything stored locally: the saved credential and UI
// preferences. The schema stays so the client can start again right away.
// Nothing is sent to the backend.
func (s *Maintenance) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM client_state"); err != nil {
			return fmt.Errorf("reset client_state: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	if s.PrefsPath != "" {
		if err := prefs.Remove(s.PrefsPath); err != nil {
			return fmt.Errorf("remove prefs: %w", err)
		}
	}
	return nil
}
