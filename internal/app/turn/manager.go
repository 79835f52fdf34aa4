// Package turn orchestrates one stateless interaction turn: load the
// session's queue, apply the request, persist the result.
package turn

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ouchibox/internal/app/playback"
	"github.com/osa030/ouchibox/internal/app/selector"
	"github.com/osa030/ouchibox/internal/domain/catalog"
	"github.com/osa030/ouchibox/internal/domain/queue"
	"github.com/osa030/ouchibox/internal/infra/config"
	"github.com/osa030/ouchibox/internal/infra/session"
)

// Response is what a turn hands back to the host platform: speech to
// synthesize plus player directives.
type Response struct {
	Speech   string                   `json:"speech,omitempty"`
	Reprompt string                   `json:"reprompt,omitempty"`
	Play     *queue.PlayDirective     `json:"play,omitempty"`
	Controls []queue.ControlDirective `json:"controls,omitempty"`
}

// Manager owns the collaborators of a turn. The catalog handle is shared
// and read-only; everything session-scoped flows through the store.
type Manager struct {
	cat     *catalog.Catalog
	sel     *selector.Selector
	machine *playback.Machine
	store   session.Store
	cfg     *config.Config
}

// NewManager creates a turn manager.
func NewManager(cat *catalog.Catalog, sel *selector.Selector, machine *playback.Machine, store session.Store, cfg *config.Config) *Manager {
	return &Manager{cat: cat, sel: sel, machine: machine, store: store, cfg: cfg}
}

// Launch handles the skill-open turn.
func (m *Manager) Launch() *Response {
	return &Response{Speech: m.cfg.Messages.Welcome}
}

// Help handles the help turn.
func (m *Manager) Help() *Response {
	return &Response{Speech: m.cfg.Messages.Help, Reprompt: m.cfg.Messages.HelpReprompt}
}

// Fallback handles unrecognized requests.
func (m *Manager) Fallback() *Response {
	return &Response{Speech: m.cfg.Messages.Fallback, Reprompt: m.cfg.Messages.HelpReprompt}
}

// Play resolves the hint set into a fresh play queue and starts it.
// Resolution misses are user-visible speech, never errors; only a failed
// session save is returned as an error.
func (m *Manager) Play(ctx context.Context, sessionID string, artists, albums, titles []selector.Hint) (*Response, error) {
	interp, err := m.sel.Select(artists, albums, titles)
	if err != nil {
		return &Response{Speech: m.cfg.Messages.NotFound}, nil
	}
	zlog.Debug().Msgf("turn: selected %s %s (reliability=%d)", interp.Type, interp.ID, interp.Reliability)

	q, err := m.sel.Expand(interp)
	if err != nil {
		return &Response{Speech: m.expansionMiss(interp)}, nil
	}

	d := playback.Start(q)
	resp := m.render(d)
	resp.Speech = m.startSpeech(interp)
	if err := m.persist(ctx, sessionID, d); err != nil {
		return nil, err
	}
	return resp, nil
}

// HandleEvent applies one lifecycle or transport event to the session's
// queue.
func (m *Manager) HandleEvent(ctx context.Context, sessionID string, ev playback.Event) (*Response, error) {
	q := m.loadQueue(ctx, sessionID)
	d := m.machine.Apply(q, ev)
	resp := m.render(d)
	if d.Code != playback.CodeNone {
		resp.Speech = m.cfg.GetMessage(d.Code)
	}
	if d.Changed {
		if err := m.persist(ctx, sessionID, d); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// NowPlaying answers "what is playing" for the session. Anything short of
// an actively playing queue yields a silent response.
func (m *Manager) NowPlaying(ctx context.Context, sessionID string) (*Response, error) {
	q := m.loadQueue(ctx, sessionID)
	if q == nil || q.State != queue.StatePlaying || q.NowPlaying == "" {
		return &Response{}, nil
	}
	title, ok := m.cat.Title(q.NowPlaying)
	if !ok {
		return &Response{}, nil
	}

	var speech string
	if artist, ok := m.cat.Entity(catalog.TypeArtist, title.ArtistID); ok {
		speech += fmt.Sprintf(m.cfg.Messages.NowPlayingBy, artist.SpeechName())
	}
	if title.AlbumID != "" {
		if album, ok := m.cat.Entity(catalog.TypeAlbum, title.AlbumID); ok {
			speech += fmt.Sprintf(m.cfg.Messages.NowPlayingFrom, album.SpeechName())
		}
	}
	speech += fmt.Sprintf(m.cfg.Messages.NowPlaying, catalog.WrapForeignSpans(title.Name))
	return &Response{Speech: speech}, nil
}

// startSpeech builds the confirmation utterance for a newly started queue.
// Title playback starts silently, as the original skill does.
func (m *Manager) startSpeech(interp *selector.Interpretation) string {
	ent, ok := m.cat.Entity(interp.Type, interp.ID)
	if !ok {
		return ""
	}
	switch interp.Type {
	case catalog.TypeArtist:
		return fmt.Sprintf(m.cfg.Messages.PlayArtist, ent.SpeechName())
	case catalog.TypeAlbum:
		return fmt.Sprintf(m.cfg.Messages.PlayAlbum, ent.SpeechName())
	default:
		return ""
	}
}

// expansionMiss builds the "found the entity, but nothing playable"
// utterance (e.g. an artist with only karaoke tracks).
func (m *Manager) expansionMiss(interp *selector.Interpretation) string {
	ent, ok := m.cat.Entity(interp.Type, interp.ID)
	if !ok {
		return m.cfg.Messages.NotFound
	}
	switch interp.Type {
	case catalog.TypeArtist:
		return fmt.Sprintf(m.cfg.Messages.NotFoundArtist, ent.SpeechName())
	case catalog.TypeAlbum:
		return fmt.Sprintf(m.cfg.Messages.NotFoundAlbum, ent.SpeechName())
	default:
		return m.cfg.Messages.NotFound
	}
}

// loadQueue fetches and decodes the session's queue. Missing sessions and
// corrupt state both degrade to "no active queue".
func (m *Manager) loadQueue(ctx context.Context, sessionID string) *queue.PlayQueue {
	attrs, err := m.store.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			zlog.Warn().Msgf("turn: failed to load session %s: %v", sessionID, err)
		}
		return nil
	}
	q, _ := session.DecodeQueue(attrs)
	return q
}

// persist writes the decision's queue state back to the session store. A
// cleared queue removes the attribute entirely.
func (m *Manager) persist(ctx context.Context, sessionID string, d playback.Decision) error {
	attrs, err := m.store.Load(ctx, sessionID)
	if err != nil {
		attrs = make(map[string]any)
	}
	if d.Queue == nil {
		delete(attrs, session.QueueKey)
	} else {
		enc, err := session.EncodeQueue(d.Queue)
		if err != nil {
			return errors.Wrap(err, "failed to encode play queue")
		}
		attrs[session.QueueKey] = enc
	}
	if err := m.store.Save(ctx, sessionID, attrs); err != nil {
		return errors.Wrap(err, "failed to save session")
	}
	return nil
}

// render converts a machine decision into a host response, resolving the
// playback URL from the track's stored relative path.
func (m *Manager) render(d playback.Decision) *Response {
	resp := &Response{Controls: d.Controls}
	if d.Play != nil {
		p := *d.Play
		p.TrackURL = m.trackURL(p.TrackID)
		resp.Play = &p
	}
	return resp
}

// trackURL joins the configured base URL with the track's relative path.
func (m *Manager) trackURL(trackID string) string {
	title, ok := m.cat.Title(trackID)
	if !ok {
		return ""
	}
	base, err := url.Parse(m.cfg.Media.BaseURL)
	if err != nil {
		zlog.Warn().Msgf("turn: invalid media base URL: %v", err)
		return ""
	}
	return base.JoinPath(title.Path).String()
}
