package giveaway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// OpenRedis connects and pings a Redis server for the snapshot backend.
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("empty redis addr")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// RedisPersister stores the snapshot documents as string keys under a prefix.
type RedisPersister struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisPersister(client redis.UniversalClient, prefix string) *RedisPersister {
	if prefix == "" {
		prefix = "guildkeeper:giveaways"
	}
	return &RedisPersister{client: client, prefix: prefix}
}

func (p *RedisPersister) key(name string) string {
	return p.prefix + ":" + name
}

func (p *RedisPersister) Load(ctx context.Context) (Snapshot, error) {
	values, err := p.client.MGet(ctx, p.key("active"), p.key("ended"), p.key("participants")).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Snapshot{}, fmt.Errorf("load giveaway snapshot: %w", err)
	}

	var snapshot Snapshot
	targets := []any{&snapshot.Active, &snapshot.Ended, &snapshot.Participants}
	for i, value := range values {
		raw, ok := value.(string)
		if !ok || raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), targets[i]); err != nil {
			return Snapshot{}, fmt.Errorf("decode giveaway snapshot: %w", err)
		}
	}
	return snapshot, nil
}

func (p *RedisPersister) Save(ctx context.Context, snapshot Snapshot) error {
	active, err := json.Marshal(nonNilRecords(snapshot.Active))
	if err != nil {
		return err
	}
	ended, err := json.Marshal(nonNilEnded(snapshot.Ended))
	if err != nil {
		return err
	}
	participants := snapshot.Participants
	if participants == nil {
		participants = map[string][]string{}
	}
	entrants, err := json.Marshal(participants)
	if err != nil {
		return err
	}

	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, p.key("active"), active, 0)
		pipe.Set(ctx, p.key("ended"), ended, 0)
		pipe.Set(ctx, p.key("participants"), entrants, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save giveaway snapshot: %w", err)
	}
	return nil
}
