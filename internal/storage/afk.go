package storage

import (
	"context"
	"time"
)

type AFKStatus struct {
	GuildID string
	UserID  string
	Reason  string
	Since   time.Time
}

func (s *Store) SetAFK(ctx context.Context, status AFKStatus) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO afk_status (guild_id, user_id, reason, since) VALUES (?, ?, ?, ?)
		ON CONFLICT(guild_id, user_id) DO UPDATE SET reason = excluded.reason, since = excluded.since
	`, status.GuildID, status.UserID, status.Reason, status.Since.Unix())
	return err
}

func (s *Store) ClearAFK(ctx context.Context, guildID, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM afk_status WHERE guild_id = ? AND user_id = ?`, guildID, userID)
	return err
}

// ListAFK returns every stored AFK status, used to warm the in-memory cache.
func (s *Store) ListAFK(ctx context.Context) ([]AFKStatus, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT guild_id, user_id, reason, since FROM afk_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []AFKStatus
	for rows.Next() {
		var status AFKStatus
		var since int64
		if err := rows.Scan(&status.GuildID, &status.UserID, &status.Reason, &since); err != nil {
			return nil, err
		}
		status.Since = time.Unix(since, 0).UTC()
		statuses = append(statuses, status)
	}
	return statuses, rows.Err()
}
