// Package skill provides the JSON turn endpoint the voice host calls.
package skill

import "github.com/osa030/ouchibox/internal/app/selector"

// Turn request types.
const (
	TurnLaunch       = "launch"
	TurnPlay         = "play"
	TurnQuery        = "query"
	TurnEvent        = "event"
	TurnHelp         = "help"
	TurnFallback     = "fallback"
	TurnSessionEnded = "session_ended"
)

// HintDTO is one slot-resolution candidate extracted by the host's speech
// grammar.
type HintDTO struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// HintsDTO groups the per-slot hint lists of a play turn.
type HintsDTO struct {
	Artist []HintDTO `json:"artist,omitempty"`
	Album  []HintDTO `json:"album,omitempty"`
	Title  []HintDTO `json:"title,omitempty"`
}

// EventDTO carries one playback lifecycle or transport event.
type EventDTO struct {
	Type         string `json:"type"`
	Activity     string `json:"activity,omitempty"`
	OffsetMillis int64  `json:"offset_millis,omitempty"`
	Token        string `json:"token,omitempty"`
}

// TurnRequest is the envelope for one interaction turn.
type TurnRequest struct {
	SessionID string    `json:"session_id,omitempty"`
	Type      string    `json:"type"`
	Hints     *HintsDTO `json:"hints,omitempty"`
	Event     *EventDTO `json:"event,omitempty"`
	Reason    string    `json:"reason,omitempty"` // session_ended only
}

func toHints(dtos []HintDTO) []selector.Hint {
	hints := make([]selector.Hint, 0, len(dtos))
	for _, d := range dtos {
		hints = append(hints, selector.Hint{ID: d.ID, Name: d.Name})
	}
	return hints
}
