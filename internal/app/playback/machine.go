package playback

import (
	"math/rand"
	"strconv"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ouchibox/internal/domain/queue"
)

// failureThreshold is the number of consecutive playback failures after
// which the queue is abandoned.
const failureThreshold = 5

// Speech codes attached to decisions. The turn layer maps them to the
// configured user-facing messages.
const (
	CodeNone           = ""
	CodeStopped        = "stopped"
	CodePlaybackFailed = "playback_failed"
)

// Decision is the outcome of applying one event to a queue.
type Decision struct {
	Queue    *queue.PlayQueue         // Resulting queue state; nil means the queue was cleared
	Play     *queue.PlayDirective     // Play directive to emit, if any
	Controls []queue.ControlDirective // Control directives to emit, in order
	Code     string                   // Speech code, CodeNone for a silent response
	Changed  bool                     // Whether the queue must be persisted
}

// Machine applies lifecycle and transport events to a play queue. It holds
// no queue state itself; every transition is a pure function of the queue
// and the event, plus the injected random source for shuffles.
type Machine struct {
	rng *rand.Rand
}

// NewMachine creates a state machine. A nil rng falls back to a time-seeded
// source.
func NewMachine(rng *rand.Rand) *Machine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Machine{rng: rng}
}

// Start emits the initial replace-all directive for a freshly created queue.
func Start(q *queue.PlayQueue) Decision {
	q.State = queue.StateRequested
	return Decision{
		Queue:   q,
		Play:    replaceAll(q, 0),
		Changed: true,
	}
}

// Apply evolves the queue by one event. A missing or invalid queue degrades
// to a silent no-op for every event that needs one; stop and start-over
// clear the session regardless.
func (m *Machine) Apply(q *queue.PlayQueue, ev Event) Decision {
	switch ev.Type {
	case EventLoopOn, EventLoopOff, EventRepeat, EventStopped:
		// Accepted but deliberately unsupported.
		zlog.Debug().Msgf("playback: ignoring event %s", ev.Type)
		return Decision{Queue: q}
	case EventStop, EventStartOver:
		return clearQueue(CodeStopped)
	}

	if !q.Valid() {
		zlog.Debug().Msgf("playback: no active queue, ignoring event %s", ev.Type)
		return Decision{Queue: q}
	}

	switch ev.Type {
	case EventStarted:
		q.State = queue.StatePlaying
		q.NowPlaying = ev.Token
		return Decision{Queue: q, Changed: true}

	case EventFinished:
		q.State = queue.StateStopped
		return Decision{Queue: q, Changed: true}

	case EventNearlyFinished:
		return m.nearlyFinished(q)

	case EventFailed:
		return m.failed(q, ev)

	case EventPause:
		if ev.Activity != ActivityPlaying {
			return Decision{Queue: q}
		}
		q.OffsetMillis = ev.OffsetMillis
		q.State = queue.StatePaused
		return Decision{
			Queue:    q,
			Controls: []queue.ControlDirective{queue.ControlStop},
			Changed:  true,
		}

	case EventResume:
		if ev.Activity != ActivityPaused || q.State != queue.StatePaused {
			return Decision{Queue: q}
		}
		offset := q.OffsetMillis
		q.State = queue.StateRequested
		return Decision{Queue: q, Play: replaceAll(q, offset), Changed: true}

	case EventNext:
		return m.step(q, ev, 1)

	case EventPrevious:
		return m.step(q, ev, -1)

	case EventShuffleOn:
		if !q.CanShuffle || q.IsShuffled {
			return Decision{Queue: q}
		}
		tracks := make([]string, len(q.CanonicalOrder))
		copy(tracks, q.CanonicalOrder)
		m.rng.Shuffle(len(tracks), func(i, j int) {
			tracks[i], tracks[j] = tracks[j], tracks[i]
		})
		q.TrackIDs = tracks
		q.IsShuffled = true
		q.Index = 0
		q.State = queue.StateRequested
		return Decision{Queue: q, Play: replaceAll(q, 0), Changed: true}

	case EventShuffleOff:
		if !q.IsShuffled {
			return Decision{Queue: q}
		}
		tracks := make([]string, len(q.CanonicalOrder))
		copy(tracks, q.CanonicalOrder)
		q.TrackIDs = tracks
		q.IsShuffled = false
		q.Index = 0
		q.State = queue.StateRequested
		return Decision{Queue: q, Play: replaceAll(q, 0), Changed: true}
	}

	return Decision{Queue: q}
}

// nearlyFinished advances the position and enqueues the next track without
// interrupting current playback. The expected-previous token carries the
// pre-advance index value, which the external player uses to validate
// ordering.
func (m *Machine) nearlyFinished(q *queue.PlayQueue) Decision {
	prev := q.Index
	q.Index = (q.Index + 1) % len(q.TrackIDs)
	return Decision{
		Queue: q,
		Play: &queue.PlayDirective{
			Behavior:              queue.BehaviorEnqueue,
			TrackID:               q.CurrentTrackID(),
			ExpectedPreviousToken: strconv.Itoa(prev),
		},
		Changed: true,
	}
}

// failed counts the failure and either abandons the queue or drops the
// failed track and retries from the clamped position.
func (m *Machine) failed(q *queue.PlayQueue, ev Event) Decision {
	q.FailureCount++
	if q.FailureCount > failureThreshold {
		zlog.Warn().Msgf("playback: failure threshold exceeded, clearing queue (failures=%d)", q.FailureCount)
		return clearQueue(CodePlaybackFailed)
	}

	// Drop the failed track and retry from the clamped position.
	kept := q.TrackIDs[:0:0]
	removed := false
	for _, id := range q.TrackIDs {
		if !removed && id == ev.Token {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	q.TrackIDs = kept
	if len(q.TrackIDs) == 0 {
		return clearQueue(CodeNone)
	}
	q.Index %= len(q.TrackIDs)
	q.State = queue.StateRequested
	return Decision{Queue: q, Play: replaceAll(q, 0), Changed: true}
}

// step moves the position for next/previous transport commands. The
// position is located via the now-playing token; a token that is absent or
// sits at position 0 leaves the queue untouched. The index-0 boundary is
// inherited behavior kept pending product confirmation, not a wraparound.
func (m *Machine) step(q *queue.PlayQueue, ev Event, delta int) Decision {
	if ev.Activity != ActivityPlaying {
		return Decision{Queue: q}
	}
	pos := -1
	for i, id := range q.TrackIDs {
		if id == q.NowPlaying {
			pos = i
			break
		}
	}
	if pos <= 0 {
		return Decision{Queue: q}
	}
	n := len(q.TrackIDs)
	q.Index = ((pos+delta)%n + n) % n
	q.State = queue.StateRequested
	q.OffsetMillis = 0
	return Decision{Queue: q, Play: replaceAll(q, 0), Changed: true}
}

// clearQueue abandons the queue and tells the player to flush and stop.
func clearQueue(code string) Decision {
	return Decision{
		Queue:    nil,
		Controls: []queue.ControlDirective{queue.ControlClearQueue, queue.ControlStop},
		Code:     code,
		Changed:  true,
	}
}

// replaceAll builds a replace-all play directive for the current position.
func replaceAll(q *queue.PlayQueue, offset int64) *queue.PlayDirective {
	return &queue.PlayDirective{
		Behavior:     queue.BehaviorReplaceAll,
		TrackID:      q.CurrentTrackID(),
		OffsetMillis: offset,
	}
}
