package httpapi

import (
	"errors"
	"net/http"

	"golang.org/x/text/language"

	"github.com/p-n-ai/pai-quiz/internal/catalog"
	"github.com/p-n-ai/pai-quiz/internal/locale"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
	"github.com/p-n-ai/pai-quiz/internal/session"
)

// viewText carries the localized strings of a view.
type viewText struct {
	Feedback string `json:"feedback,omitempty"`
	Next     string `json:"next,omitempty"`
	Sound    string `json:"sound"`
	Error    string `json:"error,omitempty"`
}

type viewResponse struct {
	SessionID string `json:"sessionId"`
	Accepted  *bool  `json:"accepted,omitempty"`
	quiz.View
	Lang    string           `json:"lang"`
	Dir     string           `json:"dir"`
	Text    viewText         `json:"text"`
	Summary *summaryResponse `json:"summary,omitempty"`
}

type summaryResponse struct {
	SessionID string `json:"sessionId,omitempty"`
	quiz.Summary
	Message   string `json:"message"`
	ScoreText string `json:"scoreText"`
	Lang      string `json:"lang"`
	Dir       string `json:"dir"`
}

func (s *Server) localizeView(id string, v quiz.View, tag language.Tag) viewResponse {
	resp := viewResponse{
		SessionID: id,
		View:      v,
		Lang:      tag.String(),
		Dir:       locale.Dir(tag),
	}

	if v.Question != nil && v.Question.Kind == quiz.KindTrueFalse {
		opts := make([]quiz.OptionView, len(v.Question.Options))
		copy(opts, v.Question.Options)
		for i := range opts {
			key := locale.KeyFalse
			if truth, _ := opts[i].Answer.Truth(); truth {
				key = locale.KeyTrue
			}
			opts[i].Label = s.locale.Text(tag, key)
		}
		q := *v.Question
		q.Options = opts
		resp.View.Question = &q
	}

	if v.Feedback != nil {
		if v.Feedback.Correct {
			resp.Text.Feedback = s.locale.Text(tag, locale.KeyCorrect)
		} else {
			resp.Text.Feedback = s.locale.Text(tag, locale.KeyIncorrect, v.Feedback.CorrectText)
		}
	}
	switch v.Next {
	case quiz.NextQuestion:
		resp.Text.Next = s.locale.Text(tag, locale.KeyNextQuestion)
	case quiz.NextResults:
		resp.Text.Next = s.locale.Text(tag, locale.KeyShowResults)
	}

	resp.Text.Sound = s.locale.Text(tag, locale.KeySoundOn)
	if v.SoundEnabled {
		resp.Text.Sound = s.locale.Text(tag, locale.KeySoundOff)
	}

	if v.Phase == quiz.PhaseFailed {
		resp.Text.Error = s.errorText(v.Err, tag)
	}
	return resp
}

func (s *Server) errorText(err error, tag language.Tag) string {
	switch {
	case errors.Is(err, quiz.ErrEmptyQuiz):
		return s.locale.Text(tag, locale.KeyEmptyQuiz)
	case errors.Is(err, catalog.ErrNotFound):
		return s.locale.Text(tag, locale.KeyQuizNotFound)
	default:
		return s.locale.Text(tag, locale.KeyLoadFailed)
	}
}

func (s *Server) localizeSummary(id string, sum quiz.Summary, tag language.Tag) *summaryResponse {
	return &summaryResponse{
		SessionID: id,
		Summary:   sum,
		Message:   s.locale.Tier(tag, sum.Tier),
		ScoreText: s.locale.Text(tag, locale.KeyScore, sum.Score, sum.Total),
		Lang:      tag.String(),
		Dir:       locale.Dir(tag),
	}
}

func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, id string, res session.Result) {
	resp := s.localizeView(id, res.View, s.lang(r))
	accepted := res.Accepted
	resp.Accepted = &accepted
	writeJSON(w, http.StatusOK, resp)
}

// handleCreateCourseSession starts a quiz reached through its course page.
// The course must exist.
func (s *Server) handleCreateCourseSession(w http.ResponseWriter, r *http.Request) {
	if _, err := s.catalog.Course(r.Context(), r.PathValue("courseID")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, s.locale.Text(s.lang(r), locale.KeyCourseNotFound))
			return
		}
		writeLookupError(w, err)
		return
	}
	s.handleCreateSession(w, r)
}

// handleCreateSession starts a session and loads its quiz. A quiz that
// fails to load still creates a session, reported with the failed phase
// so the client can retry with reload.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, view := s.sessions.Create(r.Context(), r.PathValue("quizID"))

	status := http.StatusCreated
	if view.Phase == quiz.PhaseFailed {
		status = http.StatusOK
	}
	w.Header().Set("Location", "/api/v1/sessions/"+id)
	writeJSON(w, status, s.localizeView(id, view, s.lang(r)))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	view, err := s.sessions.View(id)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	tag := s.lang(r)
	resp := s.localizeView(id, view, tag)
	if view.Phase == quiz.PhaseCompleted {
		if sum, ok, err := s.sessions.Summary(id); err == nil && ok {
			resp.Summary = s.localizeSummary("", sum, tag)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.PathValue("id")); err != nil {
		writeLookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// transition adapts a body-less session transition to a handler.
func (s *Server) transition(fn func(id string) (session.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		res, err := fn(id)
		if err != nil {
			writeLookupError(w, err)
			return
		}
		s.writeResult(w, r, id, res)
	}
}

type selectRequest struct {
	Answer quiz.Answer `json:"answer"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	id := r.PathValue("id")
	res, err := s.sessions.Select(id, req.Answer)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	s.writeResult(w, r, id, res)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, err := s.sessions.Reload(r.Context(), id)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	s.writeResult(w, r, id, res)
}

type soundRequest struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) handleSound(w http.ResponseWriter, r *http.Request) {
	var req soundRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}
	id := r.PathValue("id")
	res, err := s.sessions.SetSound(id, *req.Enabled)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	s.writeResult(w, r, id, res)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sum, ok, err := s.sessions.Summary(id)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusConflict, "quiz not completed")
		return
	}
	writeJSON(w, http.StatusOK, s.localizeSummary(id, sum, s.lang(r)))
}
