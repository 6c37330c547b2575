package storage

import (
	"context"
	"time"
)

type ModAction struct {
	ID          int64
	GuildID     string
	ModeratorID string
	TargetID    string
	Action      string
	Reason      string
	CreatedAt   time.Time
}

func (s *Store) AddModAction(ctx context.Context, action ModAction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mod_log (guild_id, moderator_id, target_id, action, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, action.GuildID, action.ModeratorID, action.TargetID, action.Action, action.Reason, action.CreatedAt.Unix())
	return err
}

func (s *Store) ListModActions(ctx context.Context, guildID string, since time.Time) ([]ModAction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, moderator_id, target_id, action, reason, created_at
		FROM mod_log
		WHERE guild_id = ? AND created_at >= ?
		ORDER BY created_at DESC, id DESC
	`, guildID, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []ModAction
	for rows.Next() {
		var action ModAction
		var created int64
		if err := rows.Scan(&action.ID, &action.GuildID, &action.ModeratorID, &action.TargetID, &action.Action, &action.Reason, &created); err != nil {
			return nil, err
		}
		action.CreatedAt = time.Unix(created, 0).UTC()
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

func (s *Store) CleanupModActions(ctx context.Context, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	_, err := s.db.ExecContext(ctx, `DELETE FROM mod_log WHERE created_at < ?`, cutoff.Unix())
	return err
}
