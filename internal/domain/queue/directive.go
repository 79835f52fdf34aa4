package queue

// PlayBehavior selects how the external player treats a play directive.
type PlayBehavior string

const (
	BehaviorReplaceAll PlayBehavior = "replace_all" // Replace the player queue and start immediately
	BehaviorEnqueue    PlayBehavior = "enqueue"     // Append without interrupting current playback
)

// PlayDirective instructs the host to play a track. TrackURL is filled in
// by the turn layer from the track's stored relative path and the
// configured base URL.
type PlayDirective struct {
	Behavior              PlayBehavior `json:"behavior"`
	TrackID               string       `json:"track_id"`
	TrackURL              string       `json:"track_url,omitempty"`
	OffsetMillis          int64        `json:"offset_millis"`
	ExpectedPreviousToken string       `json:"expected_previous_token,omitempty"`
}

// ControlDirective is a simple player-control token for the host.
type ControlDirective string

const (
	ControlClearQueue ControlDirective = "clear_queue"
	ControlStop       ControlDirective = "stop"
)
