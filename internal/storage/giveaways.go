package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type GiveawayResult struct {
	GiveawayID  string
	GuildID     string
	ChannelID   string
	HostID      string
	Prize       string
	WinnerCount int
	EndTime     time.Time
	EndedAt     time.Time
	Entrants    []string
	Winners     []string
}

// SaveGiveawayResult inserts or replaces the result of a giveaway draw.
func (s *Store) SaveGiveawayResult(ctx context.Context, result GiveawayResult) error {
	entrants, err := json.Marshal(nonNil(result.Entrants))
	if err != nil {
		return err
	}
	winners, err := json.Marshal(nonNil(result.Winners))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO giveaway_results (
			giveaway_id, guild_id, channel_id, host_id, prize, winner_count,
			end_time, ended_at, entrants, winners
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(giveaway_id) DO UPDATE SET
			entrants = excluded.entrants,
			winners = excluded.winners,
			ended_at = excluded.ended_at
	`,
		result.GiveawayID,
		result.GuildID,
		result.ChannelID,
		result.HostID,
		result.Prize,
		result.WinnerCount,
		result.EndTime.Unix(),
		result.EndedAt.Unix(),
		string(entrants),
		string(winners),
	)
	return err
}

func (s *Store) GetGiveawayResult(ctx context.Context, giveawayID string) (GiveawayResult, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT giveaway_id, guild_id, channel_id, host_id, prize, winner_count,
		end_time, ended_at, entrants, winners
		FROM giveaway_results WHERE giveaway_id = ?
	`, giveawayID)

	var result GiveawayResult
	var endTime, endedAt int64
	var entrants, winners string
	err := row.Scan(&result.GiveawayID, &result.GuildID, &result.ChannelID, &result.HostID, &result.Prize,
		&result.WinnerCount, &endTime, &endedAt, &entrants, &winners)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GiveawayResult{}, false, nil
		}
		return GiveawayResult{}, false, err
	}
	result.EndTime = time.Unix(endTime, 0).UTC()
	result.EndedAt = time.Unix(endedAt, 0).UTC()
	if err := json.Unmarshal([]byte(entrants), &result.Entrants); err != nil {
		return GiveawayResult{}, false, err
	}
	if err := json.Unmarshal([]byte(winners), &result.Winners); err != nil {
		return GiveawayResult{}, false, err
	}
	return result, true, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
