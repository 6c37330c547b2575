package analytics

import (
	"context"
	"sort"
	"time"

	"guildkeeper/internal/storage"
)

type Source interface {
	ListModActions(ctx context.Context, guildID string, since time.Time) ([]storage.ModAction, error)
}

type Service struct {
	store Source
}

func New(store Source) *Service {
	return &Service{store: store}
}

type Count struct {
	Key   string
	Total int
}

// Report summarises moderation activity for /modstats.
type Report struct {
	Since       time.Time
	Total       int
	ByAction    map[string]int
	ByModerator map[string]int
}

func (s *Service) Report(ctx context.Context, guildID string, since time.Time) (Report, error) {
	actions, err := s.store.ListModActions(ctx, guildID, since)
	if err != nil {
		return Report{}, err
	}

	report := Report{Since: since, ByAction: make(map[string]int), ByModerator: make(map[string]int)}
	for _, action := range actions {
		report.Total++
		report.ByAction[action.Action]++
		report.ByModerator[action.ModeratorID]++
	}
	return report, nil
}

// TopModerators returns at most limit moderators ordered by action count.
func (r Report) TopModerators(limit int) []Count {
	return ranked(r.ByModerator, limit)
}

func (r Report) Actions() []Count {
	return ranked(r.ByAction, 0)
}

func ranked(counts map[string]int, limit int) []Count {
	out := make([]Count, 0, len(counts))
	for key, total := range counts {
		out = append(out, Count{Key: key, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// PeriodStart maps a /modstats period name to the start of its window.
func PeriodStart(period string, now time.Time) time.Time {
	switch period {
	case "day":
		return now.Add(-24 * time.Hour)
	case "month":
		return now.AddDate(0, -1, 0)
	case "all":
		return time.Unix(0, 0).UTC()
	default:
		return now.AddDate(0, 0, -7)
	}
}
