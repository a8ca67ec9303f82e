package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/cryguy/jsrun/internal/core"
	"github.com/cryguy/jsrun/internal/history"
)

const (
	headerOutcome   = "X-Outcome"
	headerSessionID = "X-Session-ID"
)

const maxRecentLimit = 1000

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := renderPage(loadPage(s.cfg.Server.IDEPath), map[string]string{
		"jsrun-backend": s.runner.Backend(),
		"jsrun-timeout": timeoutText(s.cfg.Engine.ExecutionTimeoutMS),
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func timeoutText(ms int) string {
	if ms <= 0 {
		return "none"
	}
	return (time.Duration(ms) * time.Millisecond).String()
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	lang, err := core.ParseLang(r.URL.Query().Get("lang"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "script too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "reading request body", http.StatusBadRequest)
		return
	}
	if !utf8.Valid(body) {
		http.Error(w, "request body is not valid UTF-8", http.StatusBadRequest)
		return
	}

	src := string(body)
	out := s.runner.ExecuteLang(r.Context(), lang, src)
	s.record(r, out, lang, src, "http")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set(headerOutcome, out.Kind.String())
	w.Header().Set(headerSessionID, out.SessionID)
	w.WriteHeader(s.status(out))
	io.WriteString(w, out.Body())
}

// status is 200 for every outcome unless strict statuses are enabled.
func (s *Server) status(o *core.Outcome) int {
	if !s.cfg.Server.StrictStatus {
		return http.StatusOK
	}
	switch o.Kind {
	case core.Success:
		return http.StatusOK
	case core.CompileError, core.RuntimeError:
		return http.StatusUnprocessableEntity
	case core.TimeoutError:
		return http.StatusGatewayTimeout
	default:
		return http.StatusServiceUnavailable
	}
}

// record stores out in the run history. Failures are logged, never
// reported to the client.
func (s *Server) record(r *http.Request, out *core.Outcome, lang core.Lang, src, transport string) {
	log.Printf("jsrun: %s session %s: %s in %v", transport, out.SessionID, out.Kind, out.Duration)
	if s.store == nil {
		return
	}
	if err := s.store.Record(r.Context(), history.NewRun(out, lang, src, transport)); err != nil {
		log.Printf("jsrun: recording run %s: %v", out.SessionID, err)
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.History.RecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxRecentLimit)
	}

	runs, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("jsrun: listing runs: %v", err)
		http.Error(w, "listing runs", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}
