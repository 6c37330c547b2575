package giveaway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleIsItsOwnInverse(t *testing.T) {
	registry := NewRegistry()
	registry.Open("g1")
	registry.Toggle("g1", "a")
	before := registry.Snapshot("g1")

	assert.Equal(t, Joined, registry.Toggle("g1", "b"))
	assert.Equal(t, 2, registry.Count("g1"))
	assert.Equal(t, Left, registry.Toggle("g1", "b"))
	assert.Equal(t, before, registry.Snapshot("g1"))
}

func TestToggleNeverDuplicates(t *testing.T) {
	registry := NewRegistry()
	for i := 0; i < 5; i++ {
		registry.Toggle("g1", "a")
	}
	assert.Equal(t, []string{"a"}, registry.Snapshot("g1").Sorted())
}

func TestSnapshotIsACopy(t *testing.T) {
	registry := NewRegistry()
	registry.Toggle("g1", "a")
	snapshot := registry.Snapshot("g1")
	snapshot["b"] = struct{}{}
	assert.Equal(t, 1, registry.Count("g1"))
}

func TestUnknownAndCleared(t *testing.T) {
	registry := NewRegistry()
	assert.Equal(t, 0, registry.Snapshot("missing").Len())

	registry.Toggle("g1", "a")
	registry.Clear("g1")
	assert.Equal(t, 0, registry.Count("g1"))
	assert.NotContains(t, registry.export(), "g1")
}

func TestOpenKeepsEntrants(t *testing.T) {
	registry := NewRegistry()
	registry.Toggle("g1", "a")
	registry.Open("g1")
	assert.Equal(t, 1, registry.Count("g1"))
}
