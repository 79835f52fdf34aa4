package playback

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/ouchibox/internal/domain/queue"
)

func testQueue(tracks ...string) *queue.PlayQueue {
	ids := make([]string, len(tracks))
	copy(ids, tracks)
	canonical := make([]string, len(tracks))
	copy(canonical, tracks)
	return &queue.PlayQueue{
		Source:         queue.Source{Type: "album", ID: "al1", Reliability: 5},
		TrackIDs:       ids,
		CanonicalOrder: canonical,
		Index:          0,
		State:          queue.StateRequested,
		CanShuffle:     true,
	}
}

func testMachine() *Machine {
	return NewMachine(rand.New(rand.NewSource(1)))
}

func TestStart(t *testing.T) {
	q := testQueue("t1", "t2")
	d := Start(q)

	assert.True(t, d.Changed)
	assert.Equal(t, queue.StateRequested, d.Queue.State)
	assert.Equal(t, &queue.PlayDirective{
		Behavior: queue.BehaviorReplaceAll,
		TrackID:  "t1",
	}, d.Play)
}

func TestMachine_Apply_Lifecycle(t *testing.T) {
	m := testMachine()

	q := testQueue("t1", "t2")
	d := m.Apply(q, Event{Type: EventStarted, Token: "t1"})
	assert.True(t, d.Changed)
	assert.Equal(t, queue.StatePlaying, d.Queue.State)
	assert.Equal(t, "t1", d.Queue.NowPlaying)

	d = m.Apply(q, Event{Type: EventFinished})
	assert.True(t, d.Changed)
	assert.Equal(t, queue.StateStopped, d.Queue.State)
}

func TestMachine_Apply_NearlyFinished(t *testing.T) {
	tests := []struct {
		name          string
		index         int
		wantIndex     int
		wantTrackID   string
		wantPrevToken string
	}{
		{
			name:          "advance from head",
			index:         0,
			wantIndex:     1,
			wantTrackID:   "t2",
			wantPrevToken: "0",
		},
		{
			name:          "advance mid-queue",
			index:         1,
			wantIndex:     2,
			wantTrackID:   "t3",
			wantPrevToken: "1",
		},
		{
			name:          "wrap at tail",
			index:         2,
			wantIndex:     0,
			wantTrackID:   "t1",
			wantPrevToken: "2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMachine()
			q := testQueue("t1", "t2", "t3")
			q.Index = tt.index

			d := m.Apply(q, Event{Type: EventNearlyFinished})

			assert.True(t, d.Changed)
			assert.Equal(t, tt.wantIndex, d.Queue.Index)
			assert.Equal(t, queue.BehaviorEnqueue, d.Play.Behavior)
			assert.Equal(t, tt.wantTrackID, d.Play.TrackID)
			assert.Equal(t, tt.wantPrevToken, d.Play.ExpectedPreviousToken)
		})
	}
}

func TestMachine_Apply_Failed_RemovesTrack(t *testing.T) {
	m := testMachine()
	q := testQueue("t1", "t2", "t3")

	d := m.Apply(q, Event{Type: EventFailed, Token: "t2"})

	assert.True(t, d.Changed)
	assert.Equal(t, []string{"t1", "t3"}, d.Queue.TrackIDs)
	assert.Equal(t, 1, d.Queue.FailureCount)
	assert.Equal(t, queue.StateRequested, d.Queue.State)
	assert.Equal(t, queue.BehaviorReplaceAll, d.Play.Behavior)
}

func TestMachine_Apply_Failed_ClampsIndex(t *testing.T) {
	m := testMachine()
	q := testQueue("t1", "t2")
	q.Index = 1

	d := m.Apply(q, Event{Type: EventFailed, Token: "t2"})

	assert.Equal(t, []string{"t1"}, d.Queue.TrackIDs)
	assert.Equal(t, 0, d.Queue.Index)
	assert.Equal(t, "t1", d.Play.TrackID)
}

func TestMachine_Apply_Failed_EmptyQueueClears(t *testing.T) {
	m := testMachine()
	q := testQueue("t1")

	d := m.Apply(q, Event{Type: EventFailed, Token: "t1"})

	assert.Nil(t, d.Queue)
	assert.Equal(t, CodeNone, d.Code)
	assert.Equal(t, []queue.ControlDirective{queue.ControlClearQueue, queue.ControlStop}, d.Controls)
}

func TestMachine_Apply_Failed_ThresholdAbandonsQueue(t *testing.T) {
	m := testMachine()
	q := testQueue("t1", "t2", "t3", "t4", "t5", "t6", "t7")

	// Five failures remove tracks and keep retrying.
	for i := 0; i < 5; i++ {
		d := m.Apply(q, Event{Type: EventFailed, Token: q.TrackIDs[0]})
		assert.NotNil(t, d.Queue, "failure %d should keep the queue", i+1)
		assert.Equal(t, i+1, d.Queue.FailureCount)
	}

	// The sixth failure crosses the threshold.
	d := m.Apply(q, Event{Type: EventFailed, Token: q.TrackIDs[0]})
	assert.Nil(t, d.Queue)
	assert.Equal(t, CodePlaybackFailed, d.Code)
	assert.Equal(t, []queue.ControlDirective{queue.ControlClearQueue, queue.ControlStop}, d.Controls)
}

func TestMachine_Apply_PauseResume(t *testing.T) {
	m := testMachine()
	q := testQueue("t1", "t2")
	q.State = queue.StatePlaying
	q.NowPlaying = "t1"

	// Pause while the player reports it is not playing is ignored.
	d := m.Apply(q, Event{Type: EventPause, Activity: ActivityStopped, OffsetMillis: 1000})
	assert.False(t, d.Changed)
	assert.Equal(t, queue.StatePlaying, q.State)

	d = m.Apply(q, Event{Type: EventPause, Activity: ActivityPlaying, OffsetMillis: 42000})
	assert.True(t, d.Changed)
	assert.Equal(t, queue.StatePaused, d.Queue.State)
	assert.Equal(t, int64(42000), d.Queue.OffsetMillis)
	assert.Equal(t, []queue.ControlDirective{queue.ControlStop}, d.Controls)

	// Resume replays the current track from the recorded offset.
	d = m.Apply(q, Event{Type: EventResume, Activity: ActivityPaused})
	assert.True(t, d.Changed)
	assert.Equal(t, queue.StateRequested, d.Queue.State)
	assert.Equal(t, &queue.PlayDirective{
		Behavior:     queue.BehaviorReplaceAll,
		TrackID:      "t1",
		OffsetMillis: 42000,
	}, d.Play)
}

func TestMachine_Apply_Resume_RequiresPausedState(t *testing.T) {
	m := testMachine()
	q := testQueue("t1", "t2")
	q.State = queue.StatePlaying

	d := m.Apply(q, Event{Type: EventResume, Activity: ActivityPaused})
	assert.False(t, d.Changed)
	assert.Nil(t, d.Play)
}

func TestMachine_Apply_NextPrevious(t *testing.T) {
	tests := []struct {
		name       string
		eventType  EventType
		activity   Activity
		nowPlaying string
		wantIndex  int
		wantMoved  bool
	}{
		{
			name:       "next from middle",
			eventType:  EventNext,
			activity:   ActivityPlaying,
			nowPlaying: "t2",
			wantIndex:  2,
			wantMoved:  true,
		},
		{
			name:       "previous from middle",
			eventType:  EventPrevious,
			activity:   ActivityPlaying,
			nowPlaying: "t2",
			wantIndex:  0,
			wantMoved:  true,
		},
		{
			name:       "next wraps at tail",
			eventType:  EventNext,
			activity:   ActivityPlaying,
			nowPlaying: "t3",
			wantIndex:  0,
			wantMoved:  true,
		},
		{
			name:       "head position is a no-op",
			eventType:  EventNext,
			activity:   ActivityPlaying,
			nowPlaying: "t1",
			wantMoved:  false,
		},
		{
			name:       "unknown token is a no-op",
			eventType:  EventNext,
			activity:   ActivityPlaying,
			nowPlaying: "t9",
			wantMoved:  false,
		},
		{
			name:       "ignored unless playing",
			eventType:  EventNext,
			activity:   ActivityPaused,
			nowPlaying: "t2",
			wantMoved:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMachine()
			q := testQueue("t1", "t2", "t3")
			q.State = queue.StatePlaying
			q.NowPlaying = tt.nowPlaying
			q.OffsetMillis = 5000

			d := m.Apply(q, Event{Type: tt.eventType, Activity: tt.activity})

			if !tt.wantMoved {
				assert.False(t, d.Changed)
				assert.Nil(t, d.Play)
				return
			}
			assert.True(t, d.Changed)
			assert.Equal(t, tt.wantIndex, d.Queue.Index)
			assert.Equal(t, queue.StateRequested, d.Queue.State)
			assert.Equal(t, int64(0), d.Queue.OffsetMillis)
			assert.Equal(t, q.TrackIDs[tt.wantIndex], d.Play.TrackID)
		})
	}
}

func TestMachine_Apply_ShuffleRoundTrip(t *testing.T) {
	m := testMachine()
	q := testQueue("t1", "t2", "t3", "t4", "t5")
	q.State = queue.StatePlaying

	d := m.Apply(q, Event{Type: EventShuffleOn})
	assert.True(t, d.Changed)
	assert.True(t, d.Queue.IsShuffled)
	assert.Equal(t, 0, d.Queue.Index)
	assert.ElementsMatch(t, d.Queue.CanonicalOrder, d.Queue.TrackIDs)
	assert.Equal(t, []string{"t1", "t2", "t3", "t4", "t5"}, d.Queue.CanonicalOrder)
	assert.Equal(t, queue.BehaviorReplaceAll, d.Play.Behavior)

	// Shuffling an already shuffled queue is a no-op.
	d = m.Apply(q, Event{Type: EventShuffleOn})
	assert.False(t, d.Changed)

	d = m.Apply(q, Event{Type: EventShuffleOff})
	assert.True(t, d.Changed)
	assert.False(t, d.Queue.IsShuffled)
	assert.Equal(t, []string{"t1", "t2", "t3", "t4", "t5"}, d.Queue.TrackIDs)
	assert.Equal(t, 0, d.Queue.Index)
}

func TestMachine_Apply_ShuffleOn_RequiresEligibleQueue(t *testing.T) {
	m := testMachine()
	q := testQueue("t1", "t2")
	q.CanShuffle = false

	d := m.Apply(q, Event{Type: EventShuffleOn})
	assert.False(t, d.Changed)
	assert.Nil(t, d.Play)
}

func TestMachine_Apply_StopClearsWithoutQueue(t *testing.T) {
	m := testMachine()

	for _, evType := range []EventType{EventStop, EventStartOver} {
		d := m.Apply(nil, Event{Type: evType})
		assert.Nil(t, d.Queue)
		assert.True(t, d.Changed)
		assert.Equal(t, CodeStopped, d.Code)
		assert.Equal(t, []queue.ControlDirective{queue.ControlClearQueue, queue.ControlStop}, d.Controls)
	}
}

func TestMachine_Apply_UnsupportedEventsIgnored(t *testing.T) {
	m := testMachine()
	q := testQueue("t1")
	q.State = queue.StatePlaying

	for _, evType := range []EventType{EventLoopOn, EventLoopOff, EventRepeat, EventStopped} {
		d := m.Apply(q, Event{Type: evType})
		assert.False(t, d.Changed, "event %s", evType)
		assert.Nil(t, d.Play)
		assert.Equal(t, queue.StatePlaying, q.State)
	}
}

func TestMachine_Apply_InvalidQueueIgnored(t *testing.T) {
	m := testMachine()

	d := m.Apply(nil, Event{Type: EventStarted, Token: "t1"})
	assert.False(t, d.Changed)
	assert.Nil(t, d.Play)

	empty := &queue.PlayQueue{}
	d = m.Apply(empty, Event{Type: EventNearlyFinished})
	assert.False(t, d.Changed)
	assert.Nil(t, d.Play)
}
