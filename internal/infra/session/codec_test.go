package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/ouchibox/internal/domain/queue"
)

func TestEncodeDecodeQueue_RoundTrip(t *testing.T) {
	q := &queue.PlayQueue{
		Source:         queue.Source{Type: "album", ID: "al1", Reliability: 5},
		TrackIDs:       []string{"t2", "t1", "t3"},
		CanonicalOrder: []string{"t1", "t2", "t3"},
		Index:          1,
		State:          queue.StatePlaying,
		CanShuffle:     true,
		IsShuffled:     true,
		NowPlaying:     "t1",
		OffsetMillis:   123456,
		FailureCount:   2,
	}

	enc, err := EncodeQueue(q)
	require.NoError(t, err)

	// Round-trip the attribute map through the store so values come back
	// the way an external JSON store returns them (numbers as float64).
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s1", map[string]any{QueueKey: enc}))
	attrs, err := store.Load(ctx, "s1")
	require.NoError(t, err)

	decoded, ok := DecodeQueue(attrs)
	require.True(t, ok)
	assert.Equal(t, q, decoded)
}

func TestDecodeQueue_Degraded(t *testing.T) {
	tests := []struct {
		name  string
		attrs map[string]any
	}{
		{
			name:  "missing attribute",
			attrs: map[string]any{},
		},
		{
			name:  "nil attribute",
			attrs: map[string]any{QueueKey: nil},
		},
		{
			name:  "wrong shape",
			attrs: map[string]any{QueueKey: map[string]any{"track_ids": map[string]any{"oops": true}}},
		},
		{
			name:  "empty track list",
			attrs: map[string]any{QueueKey: map[string]any{"track_ids": []any{}, "index": float64(0)}},
		},
		{
			name: "index out of range",
			attrs: map[string]any{QueueKey: map[string]any{
				"track_ids": []any{"t1", "t2"},
				"index":     float64(7),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := DecodeQueue(tt.attrs)
			assert.False(t, ok)
			assert.Nil(t, q)
		})
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	attrs := map[string]any{"greeting": "こんにちは", "count": float64(3)}
	require.NoError(t, store.Save(ctx, "s1", attrs))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, attrs, loaded)

	// Sessions are independent.
	require.NoError(t, store.Save(ctx, "s2", map[string]any{"other": true}))
	loaded, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, attrs, loaded)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}
