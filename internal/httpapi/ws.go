package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/text/language"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
	"github.com/p-n-ai/pai-quiz/internal/session"
)

// Client event types.
const (
	clientSelect  = "select"
	clientSubmit  = "submit"
	clientAdvance = "advance"
	clientRestart = "restart"
	clientSound   = "sound"
	clientReload  = "reload"
)

// Server event types.
const (
	serverView    = "view"
	serverSummary = "summary"
	serverCue     = "cue"
	serverError   = "error"
)

type clientEvent struct {
	Type    string      `json:"type"`
	Answer  quiz.Answer `json:"answer"`
	Enabled *bool       `json:"enabled,omitempty"`
}

type serverEvent struct {
	Type    string           `json:"type"`
	View    *viewResponse    `json:"view,omitempty"`
	Summary *summaryResponse `json:"summary,omitempty"`
	Cue     quiz.Cue         `json:"cue,omitempty"`
	Sound   string           `json:"sound,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// handleSessionWS drives a session over a WebSocket. Each client event is
// answered with the resulting view; cues arrive as they are played.
func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	view, err := s.sessions.View(id)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	tag := s.lang(r)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "session_id", id, "error", err)
		return
	}
	defer conn.CloseNow()

	cues, cancel, err := s.sessions.Subscribe(id)
	if err != nil {
		conn.Close(websocket.StatusPolicyViolation, "session not found")
		return
	}
	defer cancel()

	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	go func() {
		for c := range cues {
			if err := wsjson.Write(ctx, conn, serverEvent{Type: serverCue, Cue: c, Sound: c.Sound()}); err != nil {
				return
			}
		}
		if ctx.Err() == nil {
			// The session was deleted or evicted.
			conn.Close(websocket.StatusGoingAway, "session closed")
		}
	}()

	resp := s.localizeView(id, view, tag)
	if err := wsjson.Write(ctx, conn, serverEvent{Type: serverView, View: &resp}); err != nil {
		return
	}

	for {
		var ev clientEvent
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					slog.Debug("websocket read ended", "session_id", id, "error", err)
				}
			}
			return
		}

		if err := s.handleClientEvent(ctx, conn, id, ev, tag); err != nil {
			return
		}
	}
}

func (s *Server) handleClientEvent(ctx context.Context, conn *websocket.Conn, id string, ev clientEvent, tag language.Tag) error {
	var (
		res session.Result
		err error
	)
	switch ev.Type {
	case clientSelect:
		res, err = s.sessions.Select(id, ev.Answer)
	case clientSubmit:
		res, err = s.sessions.Submit(id)
	case clientAdvance:
		res, err = s.sessions.Advance(id)
	case clientRestart:
		res, err = s.sessions.Restart(id)
	case clientReload:
		res, err = s.sessions.Reload(ctx, id)
	case clientSound:
		if ev.Enabled == nil {
			res, err = s.sessions.ToggleSound(id)
		} else {
			res, err = s.sessions.SetSound(id, *ev.Enabled)
		}
	default:
		return wsjson.Write(ctx, conn, serverEvent{Type: serverError, Error: "unknown event type: " + ev.Type})
	}
	if err != nil {
		return wsjson.Write(ctx, conn, serverEvent{Type: serverError, Error: err.Error()})
	}

	resp := s.localizeView(id, res.View, tag)
	accepted := res.Accepted
	resp.Accepted = &accepted
	if err := wsjson.Write(ctx, conn, serverEvent{Type: serverView, View: &resp}); err != nil {
		return err
	}

	if ev.Type == clientAdvance && res.Accepted && res.Phase == quiz.PhaseCompleted {
		sum, ok, err := s.sessions.Summary(id)
		if err != nil || !ok {
			return nil
		}
		return wsjson.Write(ctx, conn, serverEvent{Type: serverSummary, Summary: s.localizeSummary(id, sum, tag)})
	}
	return nil
}
