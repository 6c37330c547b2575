package giveaway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Persister saves and restores full store snapshots.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}

const (
	activeFile       = "active.json"
	endedFile        = "ended.json"
	participantsFile = "participants.json"
)

// JSONPersister keeps the snapshot as three JSON documents in a directory.
type JSONPersister struct {
	dir string
}

func NewJSONPersister(dir string) (*JSONPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create giveaway dir: %w", err)
	}
	return &JSONPersister{dir: dir}, nil
}

// Load treats missing, empty or truncated documents as empty.
func (p *JSONPersister) Load(ctx context.Context) (Snapshot, error) {
	_ = ctx
	var snapshot Snapshot
	for _, doc := range []struct {
		name   string
		decode func([]byte) error
	}{
		{activeFile, func(data []byte) error { return json.Unmarshal(data, &snapshot.Active) }},
		{endedFile, func(data []byte) error { return json.Unmarshal(data, &snapshot.Ended) }},
		{participantsFile, func(data []byte) error { return json.Unmarshal(data, &snapshot.Participants) }},
	} {
		data, err := p.read(doc.name)
		if err != nil {
			return Snapshot{}, err
		}
		if data == nil {
			continue
		}
		if err := doc.decode(data); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s: %w", doc.name, err)
		}
	}
	return snapshot, nil
}

func (p *JSONPersister) Save(ctx context.Context, snapshot Snapshot) error {
	_ = ctx
	if err := p.write(activeFile, nonNilRecords(snapshot.Active)); err != nil {
		return err
	}
	if err := p.write(endedFile, nonNilEnded(snapshot.Ended)); err != nil {
		return err
	}
	participants := snapshot.Participants
	if participants == nil {
		participants = map[string][]string{}
	}
	return p.write(participantsFile, participants)
}

func (p *JSONPersister) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(p.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) == 0 || !json.Valid(data) {
		return nil, nil
	}
	return data, nil
}

func (p *JSONPersister) write(name string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(p.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(p.dir, name)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func nonNilRecords(records []Record) []Record {
	if records == nil {
		return []Record{}
	}
	return records
}

func nonNilEnded(records []EndedRecord) []EndedRecord {
	if records == nil {
		return []EndedRecord{}
	}
	return records
}
