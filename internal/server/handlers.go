package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/rbright/mockview/internal/metrics"
	"github.com/rbright/mockview/internal/questionbank"
	"github.com/rbright/mockview/internal/report"
	"github.com/rbright/mockview/internal/session"
	"github.com/rbright/mockview/internal/speaker"
)

// CookieName carries the session id.
const CookieName = "mockview_session"

const defaultSampleRate = 16000

var errBadRequest = errors.New("bad request")

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type catalogResponse struct {
	Roles  []questionbank.Role                                      `json:"roles"`
	Types  []questionbank.InterviewType                             `json:"types"`
	Counts map[questionbank.Role]map[questionbank.InterviewType]int `json:"counts"`
	Total  int                                                      `json:"total"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	bank := s.Bank()
	resp := catalogResponse{
		Roles:  bank.Roles(),
		Types:  bank.Types(),
		Counts: make(map[questionbank.Role]map[questionbank.InterviewType]int),
		Total:  bank.Total(),
	}
	for _, role := range resp.Roles {
		counts := make(map[questionbank.InterviewType]int, len(resp.Types))
		for _, kind := range resp.Types {
			counts[kind] = bank.Count(role, kind)
		}
		resp.Counts[role] = counts
	}
	writeJSON(w, http.StatusOK, resp)
}

type metricsResponse struct {
	metrics.Snapshot
	ActiveSessions int `json:"active_sessions"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, metricsResponse{
		Snapshot:       s.cfg.Metrics.GetSnapshot(),
		ActiveSessions: s.sessions.len(),
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	e, err := s.session(w, r)
	if err != nil {
		writeError(w, statusFor(err), err, "")
		return
	}
	e.mu.Lock()
	view := newView(e.state, "")
	e.mu.Unlock()
	writeJSON(w, http.StatusOK, view)
}

type selectRequest struct {
	Role string `json:"role"`
	Type string `json:"type"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err, "")
		return
	}
	s.mutate(w, r, http.StatusOK, func(_ context.Context, st session.Session) (session.Session, string, error) {
		next, err := st.SelectCombo(s.Bank(), questionbank.Role(req.Role), questionbank.InterviewType(req.Type))
		if err != nil {
			return st, "", err
		}
		s.cfg.Metrics.IncrementCombosSelected()
		return next, "", nil
	})
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err, "")
		return
	}
	s.mutate(w, r, http.StatusOK, func(_ context.Context, st session.Session) (session.Session, string, error) {
		next, resp, err := st.SubmitAnswer(req.Answer)
		if err != nil {
			if errors.Is(err, session.ErrEmptyAnswer) || errors.Is(err, session.ErrCompleted) {
				s.cfg.Metrics.IncrementAnswer(false)
			}
			return st, "", err
		}

		s.cfg.Metrics.IncrementAnswer(true)
		if next.Completed() {
			s.cfg.Metrics.IncrementInterviewsCompleted()
			s.cfg.Cues.Play(speaker.CueCompleted)
		} else {
			s.cfg.Cues.Play(speaker.CueAccepted)
		}
		return next, answerNotice(resp), nil
	})
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, http.StatusOK, func(_ context.Context, st session.Session) (session.Session, string, error) {
		next, err := st.RetryLast()
		if err != nil {
			return st, "", err
		}
		s.cfg.Metrics.IncrementRetries()
		return next, "", nil
	})
}

// handleVoice transcribes a 16-bit little-endian mono PCM body. An empty body
// records on the host instead when server capture is configured.
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	sample, err := readSample(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err, "")
		return
	}

	recognizer := s.cfg.Recognizer
	if len(sample.PCM) == 0 && s.cfg.Capture != nil {
		recognizer = s.capturingRecognizer()
	}

	s.mutate(w, r, http.StatusOK, func(ctx context.Context, st session.Session) (session.Session, string, error) {
		next, result := st.CaptureVoice(ctx, recognizer, sample, s.cfg.VoiceTimeout)
		if errors.Is(result.Err, session.ErrCompleted) {
			return st, "", result.Err
		}
		s.cfg.Metrics.IncrementVoiceCapture(result.OK())
		if !result.OK() {
			s.logger.Warn("voice capture failed", "session", st.ID(), "error", result.Err.Error())
			return st, result.Message(), result.Err
		}
		return next, result.Message(), nil
	})
}

func (s *Server) capturingRecognizer() session.Recognizer {
	return session.RecognizerFunc(func(ctx context.Context, sample session.Sample) (string, error) {
		pcm, err := s.cfg.Capture(ctx)
		if err != nil {
			return "", fmt.Errorf("capture audio: %w", err)
		}
		sample.PCM = pcm
		sample.SampleRate = defaultSampleRate
		return s.cfg.Recognizer.Recognize(ctx, sample)
	})
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, http.StatusAccepted, func(_ context.Context, st session.Session) (session.Session, string, error) {
		if err := st.PlayQuestion(s.cfg.Speaker, s.logger); err != nil {
			return st, "", err
		}
		s.cfg.Metrics.IncrementPlaybackRequests()
		return st, "", nil
	})
}

func (s *Server) handleReportJSON(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, report.FormatJSON, func(responses []session.Response) ([]byte, error) {
		return report.JSON(responses)
	})
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, report.FormatPDF, func(responses []session.Response) ([]byte, error) {
		var out bytes.Buffer
		if err := report.PDF(&out, responses); err != nil {
			return nil, err
		}
		return out.Bytes(), nil
	})
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, format report.Format, render func([]session.Response) ([]byte, error)) {
	id, responses, err := s.snapshot(w, r)
	if err != nil {
		writeError(w, statusFor(err), err, "")
		return
	}
	body, err := render(responses)
	if err != nil {
		s.logger.Error("report export failed", "session", id, "format", string(format), "error", err.Error())
		writeError(w, http.StatusInternalServerError, err, "")
		return
	}
	s.cfg.Metrics.IncrementReportsExported()

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": report.FileName(id, format),
	}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	_, responses, err := s.snapshot(w, r)
	if err != nil {
		writeError(w, statusFor(err), err, "")
		return
	}
	fragment, err := report.SummaryHTML(responses)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, "")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "<!doctype html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head><body>\n", report.Title)
	_, _ = w.Write(fragment)
	_, _ = io.WriteString(w, "</body></html>\n")
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (string, []session.Response, error) {
	e, err := s.session(w, r)
	if err != nil {
		return "", nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.ID(), e.state.Responses(), nil
}

type transition func(ctx context.Context, st session.Session) (session.Session, string, error)

// mutate applies one transition under the session lock, stores the result,
// and pushes the new view to websocket subscribers before releasing the lock
// so concurrent mutations publish in order.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, status int, apply transition) {
	e, err := s.session(w, r)
	if err != nil {
		writeError(w, statusFor(err), err, "")
		return
	}

	e.mu.Lock()
	next, notice, err := apply(r.Context(), e.state)
	if err == nil {
		e.state = next
	}
	view := newView(e.state, notice)
	if err == nil {
		s.hub.publish(view.SessionID, view)
	}
	e.mu.Unlock()

	if err != nil {
		if notice == "" {
			notice = noticeFor(err)
		}
		writeError(w, statusFor(err), err, notice)
		return
	}
	writeJSON(w, status, view)
}

// session returns the caller's session, creating one and setting the cookie if needed.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*entry, error) {
	e, cookie, err := s.resolveSession(r)
	if err != nil {
		return nil, err
	}
	if cookie != nil {
		http.SetCookie(w, cookie)
	}
	return e, nil
}

// resolveSession finds the session named by the request cookie. A new session
// comes back with the cookie that names it.
func (s *Server) resolveSession(r *http.Request) (*entry, *http.Cookie, error) {
	if c, err := r.Cookie(CookieName); err == nil && session.ValidID(c.Value) {
		if e, ok := s.sessions.get(c.Value); ok {
			return e, nil, nil
		}
	}

	bank := s.Bank()
	roles, types := bank.Roles(), bank.Types()
	if len(roles) == 0 || len(types) == 0 {
		return nil, nil, session.ErrEmptyQuestionList
	}

	for {
		st, err := session.New(session.NewID(), bank, roles[0], types[0])
		if err != nil {
			return nil, nil, err
		}
		e, ok := s.sessions.add(st)
		if !ok {
			continue
		}
		s.cfg.Metrics.IncrementSessionsStarted()
		s.logger.Info("session started", "session", st.ID(), "role", string(st.Role()), "type", string(st.Type()))
		return e, &http.Cookie{
			Name:     CookieName,
			Value:    st.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}, nil
	}
}

func readSample(w http.ResponseWriter, r *http.Request) (session.Sample, error) {
	sample := session.Sample{SampleRate: defaultSampleRate}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, params, err := mime.ParseMediaType(ct)
		if err != nil {
			return sample, fmt.Errorf("%w: content type: %w", errBadRequest, err)
		}
		switch mediaType {
		case "audio/l16", "application/octet-stream":
		default:
			return sample, fmt.Errorf("%w: unsupported audio type %q", errBadRequest, mediaType)
		}
		if rate := params["rate"]; rate != "" {
			n, err := strconv.Atoi(rate)
			if err != nil || n <= 0 {
				return sample, fmt.Errorf("%w: invalid sample rate %q", errBadRequest, rate)
			}
			sample.SampleRate = n
		}
	}

	pcm, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxVoiceBody))
	if err != nil {
		return sample, fmt.Errorf("%w: read audio: %w", errBadRequest, err)
	}
	sample.PCM = pcm
	return sample, nil
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: decode body: %w", errBadRequest, err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, session.ErrEmptyAnswer),
		errors.Is(err, session.ErrNothingToRetry),
		errors.Is(err, questionbank.ErrUnknownRole),
		errors.Is(err, questionbank.ErrUnknownType):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrCompleted),
		errors.Is(err, session.ErrEmptyQuestionList):
		return http.StatusConflict
	case errors.Is(err, session.ErrTranscription):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func noticeFor(err error) string {
	switch {
	case errors.Is(err, session.ErrEmptyAnswer):
		return "Enter an answer before submitting."
	case errors.Is(err, session.ErrCompleted):
		return completedNotice
	case errors.Is(err, session.ErrTranscription):
		return "Voice not recognized. Type your answer."
	default:
		return ""
	}
}

type errorResponse struct {
	Error  string `json:"error"`
	Notice string `json:"notice,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error, notice string) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Notice: notice})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
