// Package playback provides the queue state machine driven by lifecycle
// and transport events.
package playback

// EventType represents a playback lifecycle or transport event.
type EventType int

const (
	EventStarted        EventType = iota // External player confirmed playback of a token
	EventFinished                        // Current track finished
	EventStopped                         // External player reported a stop
	EventNearlyFinished                  // Lookahead signal before the current track ends
	EventFailed                          // Playback of a token failed
	EventPause                           // User asked to pause
	EventResume                          // User asked to resume
	EventNext                            // User asked for the next track
	EventPrevious                        // User asked for the previous track
	EventShuffleOn                       // User asked to shuffle
	EventShuffleOff                      // User asked to stop shuffling
	EventLoopOn                          // Loop request (accepted, not supported)
	EventLoopOff                         // Loop-off request (accepted, not supported)
	EventRepeat                          // Repeat request (accepted, not supported)
	EventStop                            // User asked to stop/cancel
	EventStartOver                       // User asked to start over
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return "unknown"
}

var eventNames = map[EventType]string{
	EventStarted:        "started",
	EventFinished:       "finished",
	EventStopped:        "stopped",
	EventNearlyFinished: "nearly_finished",
	EventFailed:         "failed",
	EventPause:          "pause",
	EventResume:         "resume",
	EventNext:           "next",
	EventPrevious:       "previous",
	EventShuffleOn:      "shuffle_on",
	EventShuffleOff:     "shuffle_off",
	EventLoopOn:         "loop_on",
	EventLoopOff:        "loop_off",
	EventRepeat:         "repeat",
	EventStop:           "stop",
	EventStartOver:      "start_over",
}

// ParseEventType parses an event name as carried on the wire.
func ParseEventType(name string) (EventType, bool) {
	for e, n := range eventNames {
		if n == name {
			return e, true
		}
	}
	return 0, false
}

// Activity is the player activity reported by the external player alongside
// a transport command.
type Activity int

const (
	ActivityUnknown Activity = iota
	ActivityPlaying
	ActivityPaused
	ActivityStopped
)

// String returns the string representation of the activity.
func (a Activity) String() string {
	switch a {
	case ActivityPlaying:
		return "playing"
	case ActivityPaused:
		return "paused"
	case ActivityStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ParseActivity parses a reported player activity.
func ParseActivity(name string) Activity {
	switch name {
	case "playing":
		return ActivityPlaying
	case "paused":
		return ActivityPaused
	case "stopped":
		return ActivityStopped
	default:
		return ActivityUnknown
	}
}

// Event is one lifecycle or transport event applied to the queue.
type Event struct {
	Type         EventType
	Activity     Activity // Externally reported player activity, if any
	OffsetMillis int64    // Playback offset reported with the event
	Token        string   // Track token for started/failed events
}
