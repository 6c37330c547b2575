package giveaway

import "time"

// Record is a running giveaway. ID is the id of its announcement message.
type Record struct {
	ID          string    `json:"id"`
	GuildID     string    `json:"guild_id"`
	ChannelID   string    `json:"channel_id"`
	HostID      string    `json:"host_id,omitempty"`
	Prize       string    `json:"prize"`
	EndTime     time.Time `json:"end_time"`
	WinnerCount int       `json:"winner_count"`
}

// EndedRecord waits in the ended set until CleanupAt.
type EndedRecord struct {
	Record
	EndedAt   time.Time `json:"ended_at"`
	CleanupAt time.Time `json:"cleanup_at"`
}

// Snapshot is the persisted form of the store.
type Snapshot struct {
	Active       []Record            `json:"active"`
	Ended        []EndedRecord       `json:"ended"`
	Participants map[string][]string `json:"participants"`
}

// Outcome describes a completed draw.
type Outcome struct {
	Record    Record
	Entrants  int
	Requested int
	Winners   []string
}

func (o Outcome) NoParticipants() bool { return o.Entrants == 0 }
