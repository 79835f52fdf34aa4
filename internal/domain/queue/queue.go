// Package queue provides the session-scoped play queue entity.
package queue

import "github.com/osa030/ouchibox/internal/domain/catalog"

// State represents the playback state of the queue.
type State int

const (
	StateRequested State = iota // Play directive issued, start not yet confirmed
	StatePlaying                // External player confirmed playback
	StatePaused                 // Paused by the user
	StateStopped                // Playback ended; queue instance is terminal
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateRequested:
		return "requested"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Source records which resolved entity originated the queue.
type Source struct {
	Type        catalog.EntityType `mapstructure:"type"`
	ID          string             `mapstructure:"id"`
	Reliability int                `mapstructure:"reliability"`
}

// PlayQueue is the per-session playback queue. Every field is always
// present with a state-appropriate default; nothing is conditionally
// shaped. It has no in-memory lifetime beyond one turn: it is loaded from
// the session store at turn start and written back after every mutation.
type PlayQueue struct {
	Source         Source   `mapstructure:"source"`
	TrackIDs       []string `mapstructure:"track_ids"`
	CanonicalOrder []string `mapstructure:"canonical_order"`
	Index          int      `mapstructure:"index"`
	State          State    `mapstructure:"state"`
	CanShuffle     bool     `mapstructure:"can_shuffle"`
	IsShuffled     bool     `mapstructure:"is_shuffled"`
	NowPlaying     string   `mapstructure:"now_playing"`
	OffsetMillis   int64    `mapstructure:"offset_millis"`
	FailureCount   int      `mapstructure:"failure_count"`
}

// Valid reports whether the queue holds a playable position.
func (q *PlayQueue) Valid() bool {
	return q != nil && len(q.TrackIDs) > 0 && q.Index >= 0 && q.Index < len(q.TrackIDs)
}

// CurrentTrackID returns the track id at the current position.
func (q *PlayQueue) CurrentTrackID() string {
	return q.TrackIDs[q.Index]
}

// Len returns the number of tracks in the queue.
func (q *PlayQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.TrackIDs)
}
