package skill

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ouchibox/internal/app/playback"
	"github.com/osa030/ouchibox/internal/app/turn"
	"github.com/osa030/ouchibox/internal/infra/config"
)

// TurnResponse is the envelope returned for one turn.
type TurnResponse struct {
	SessionID string `json:"session_id"`
	*turn.Response
}

// Handler serves the turn endpoint.
type Handler struct {
	mgr *turn.Manager
	cfg *config.Config
}

// NewHandler creates a skill handler.
func NewHandler(mgr *turn.Manager, cfg *config.Config) *Handler {
	return &Handler{mgr: mgr, cfg: cfg}
}

// Register mounts the handler on a mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/turn", h.handleTurn)
}

// handleTurn runs one turn. Every failure inside the turn is converted to a
// safe spoken response; the host never sees an unhandled error. The generic
// exception utterance is the secondary safety net, not the primary path.
func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	zlog.Debug().Msgf("skill: turn request: session=%s type=%s", req.SessionID, req.Type)

	resp := h.dispatch(r, &req)
	if resp == nil {
		resp = &turn.Response{Speech: h.cfg.Messages.Exception}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(TurnResponse{SessionID: req.SessionID, Response: resp}); err != nil {
		zlog.Error().Msgf("skill: failed to write response: %v", err)
	}
}

// dispatch routes a turn request to the manager. Panics and hard errors
// fall through to the caller's generic response.
func (h *Handler) dispatch(r *http.Request, req *TurnRequest) (resp *turn.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			zlog.Error().Msgf("skill: panic in turn handler: %v", rec)
			resp = nil
		}
	}()

	ctx := r.Context()
	switch req.Type {
	case TurnLaunch:
		return h.mgr.Launch()
	case TurnHelp:
		return h.mgr.Help()
	case TurnFallback:
		return h.mgr.Fallback()
	case TurnSessionEnded:
		zlog.Info().Msgf("skill: session ended: session=%s reason=%s", req.SessionID, req.Reason)
		return &turn.Response{}
	case TurnQuery:
		resp, err := h.mgr.NowPlaying(ctx, req.SessionID)
		if err != nil {
			zlog.Error().Msgf("skill: query turn failed: %v", err)
			return nil
		}
		return resp
	case TurnPlay:
		hints := req.Hints
		if hints == nil {
			hints = &HintsDTO{}
		}
		resp, err := h.mgr.Play(ctx, req.SessionID,
			toHints(hints.Artist), toHints(hints.Album), toHints(hints.Title))
		if err != nil {
			zlog.Error().Msgf("skill: play turn failed: %v", err)
			return nil
		}
		return resp
	case TurnEvent:
		if req.Event == nil {
			return &turn.Response{}
		}
		evType, ok := playback.ParseEventType(req.Event.Type)
		if !ok {
			zlog.Warn().Msgf("skill: unknown event type %q", req.Event.Type)
			return &turn.Response{}
		}
		resp, err := h.mgr.HandleEvent(ctx, req.SessionID, playback.Event{
			Type:         evType,
			Activity:     playback.ParseActivity(req.Event.Activity),
			OffsetMillis: req.Event.OffsetMillis,
			Token:        req.Event.Token,
		})
		if err != nil {
			zlog.Error().Msgf("skill: event turn failed: %v", err)
			return nil
		}
		return resp
	default:
		return h.mgr.Fallback()
	}
}
