package api

import (
	"fmt"
	"net/http"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionCreateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.sessions.CreateSession(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create session: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, SessionCreateResponse{SessionID: session.ID})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.ListSessions()
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": ids,
		"count":    len(ids),
	})
}

func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.sessions.DestroySession(sessionID); err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, snapshotOf(session.CPU, session.WatchedCSRs))
}

// handleStep handles POST /sessions/{id}/step, advancing the CPU by
// req.Count steps (default 1) and stopping early on fault or halt.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req StepRequest
	_ = readJSON(r, &req) // an empty body just means "step once"
	count := req.Count
	if count <= 0 {
		count = 1
	}

	for i := 0; i < count; i++ {
		stepErr := session.CPU.Step()
		s.broadcaster.BroadcastState(sessionID, map[string]any{"pc": session.CPU.Regs.GetPC()})
		if stepErr != nil {
			s.broadcaster.BroadcastExecutionEvent(sessionID, "stopped", map[string]any{"reason": stepErr.Error()})
			break
		}
	}

	writeJSON(w, http.StatusOK, snapshotOf(session.CPU, session.WatchedCSRs))
}

// handleRun handles POST /sessions/{id}/run, stepping until the CPU halts,
// faults, or a safety cycle cap is hit.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	const maxCycles = 10_000_000
	for i := 0; i < maxCycles; i++ {
		if stepErr := session.CPU.Step(); stepErr != nil {
			s.broadcaster.BroadcastExecutionEvent(sessionID, "stopped", map[string]any{"reason": stepErr.Error()})
			break
		}
	}

	writeJSON(w, http.StatusOK, snapshotOf(session.CPU, session.WatchedCSRs))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	session.CPU.Reset()
	s.broadcaster.BroadcastExecutionEvent(sessionID, "reset", nil)
	writeJSON(w, http.StatusOK, snapshotOf(session.CPU, session.WatchedCSRs))
}
