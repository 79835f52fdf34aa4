package session

import (
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ouchibox/internal/domain/queue"
)

// QueueKey is the attribute under which the play queue is stored.
const QueueKey = "play_queue"

// DecodeQueue extracts the play queue from a session attribute map. Any
// missing, malformed, or out-of-range queue degrades to "no active queue";
// corruption is never propagated.
func DecodeQueue(attrs map[string]any) (*queue.PlayQueue, bool) {
	raw, ok := attrs[QueueKey]
	if !ok || raw == nil {
		return nil, false
	}

	var q queue.PlayQueue
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &q,
		WeaklyTypedInput: true, // numbers arrive as float64 from JSON stores
	})
	if err != nil {
		return nil, false
	}
	if err := dec.Decode(raw); err != nil {
		zlog.Warn().Msgf("session: discarding corrupt play queue: %v", err)
		return nil, false
	}
	if !q.Valid() {
		return nil, false
	}
	return &q, true
}

// EncodeQueue renders the play queue into its attribute-map form.
func EncodeQueue(q *queue.PlayQueue) (map[string]any, error) {
	var m map[string]any
	if err := mapstructure.Decode(q, &m); err != nil {
		return nil, err
	}
	return m, nil
}
