package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Warning is a moderation case. Case ids are sequential per guild and never reused.
type Warning struct {
	GuildID     string
	CaseID      int
	UserID      string
	ModeratorID string
	Reason      string
	CreatedAt   time.Time
	EditedAt    time.Time
}

// AddWarning allocates the next case id and stores the warning in one transaction.
func (s *Store) AddWarning(ctx context.Context, guildID, userID, moderatorID, reason string, at time.Time) (Warning, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Warning{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO case_counters (guild_id, last_case) VALUES (?, 1)
		ON CONFLICT(guild_id) DO UPDATE SET last_case = last_case + 1
	`, guildID)
	if err != nil {
		return Warning{}, err
	}

	var caseID int
	if err = tx.QueryRowContext(ctx, `SELECT last_case FROM case_counters WHERE guild_id = ?`, guildID).Scan(&caseID); err != nil {
		return Warning{}, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO warnings (guild_id, case_id, user_id, moderator_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, guildID, caseID, userID, moderatorID, reason, at.Unix())
	if err != nil {
		return Warning{}, err
	}
	if err = tx.Commit(); err != nil {
		return Warning{}, err
	}
	return Warning{
		GuildID:     guildID,
		CaseID:      caseID,
		UserID:      userID,
		ModeratorID: moderatorID,
		Reason:      reason,
		CreatedAt:   time.Unix(at.Unix(), 0).UTC(),
	}, nil
}

func (s *Store) ListWarnings(ctx context.Context, guildID, userID string) ([]Warning, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT guild_id, case_id, user_id, moderator_id, reason, created_at, edited_at
		FROM warnings
		WHERE guild_id = ? AND user_id = ?
		ORDER BY case_id
	`, guildID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warnings []Warning
	for rows.Next() {
		warning, err := scanWarning(rows)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, warning)
	}
	return warnings, rows.Err()
}

// GetWarning returns ok=false when the case does not exist.
func (s *Store) GetWarning(ctx context.Context, guildID string, caseID int) (Warning, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT guild_id, case_id, user_id, moderator_id, reason, created_at, edited_at
		FROM warnings
		WHERE guild_id = ? AND case_id = ?
	`, guildID, caseID)
	warning, err := scanWarning(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Warning{}, false, nil
		}
		return Warning{}, false, err
	}
	return warning, true, nil
}

func (s *Store) UpdateWarningReason(ctx context.Context, guildID string, caseID int, reason string, at time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE warnings SET reason = ?, edited_at = ? WHERE guild_id = ? AND case_id = ?
	`, reason, at.Unix(), guildID, caseID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (s *Store) DeleteWarning(ctx context.Context, guildID string, caseID int) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM warnings WHERE guild_id = ? AND case_id = ?`, guildID, caseID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// ClearWarnings removes every warning of a user and returns how many were deleted.
func (s *Store) ClearWarnings(ctx context.Context, guildID, userID string) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM warnings WHERE guild_id = ? AND user_id = ?`, guildID, userID)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWarning(row rowScanner) (Warning, error) {
	var warning Warning
	var created int64
	var edited sql.NullInt64
	if err := row.Scan(&warning.GuildID, &warning.CaseID, &warning.UserID, &warning.ModeratorID, &warning.Reason, &created, &edited); err != nil {
		return Warning{}, err
	}
	warning.CreatedAt = time.Unix(created, 0).UTC()
	warning.EditedAt = unixOrZero(edited)
	return warning, nil
}
