package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/intakehq/intake/internal/conversation"
	"github.com/intakehq/intake/internal/provider"
)

const maxRequestBody = 1 << 20 // 1 MiB

// TurnRequest is the JSON body for POST /openai.
type TurnRequest struct {
	Prompt string `json:"prompt"`
	UID    string `json:"uid"`
}

// TurnResponse is the JSON reply for POST /openai.
type TurnResponse struct {
	Reply string `json:"reply"`
}

// FinalizeRequest is the JSON body for POST /finalize.
type FinalizeRequest struct {
	UID string `json:"uid"`
}

// FinalizeResponse is the JSON reply for POST /finalize.
type FinalizeResponse struct {
	Message string `json:"message"`
}

// HistoryTurn is one entry in the history response.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryResponse is the JSON reply for GET /history.
type HistoryResponse struct {
	ChatHistory []HistoryTurn `json:"chatHistory"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleTurn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TurnRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		reply, err := s.conv.Turn(r.Context(), req.UID, req.Prompt)
		if err != nil {
			s.writeFlowError(w, r, "turn", err)
			return
		}

		writeJSON(w, http.StatusOK, TurnResponse{Reply: reply})
	}
}

func (s *Server) handleFinalize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FinalizeRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		msg, err := s.conv.Finalize(r.Context(), req.UID)
		if err != nil {
			s.writeFlowError(w, r, "finalize", err)
			return
		}

		writeJSON(w, http.StatusOK, FinalizeResponse{Message: msg})
	}
}

func (s *Server) handleHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := r.URL.Query().Get("uid")

		msgs, err := s.conv.History(r.Context(), uid)
		if err != nil {
			s.writeFlowError(w, r, "history", err)
			return
		}

		resp := HistoryResponse{ChatHistory: make([]HistoryTurn, 0, len(msgs))}
		for _, m := range msgs {
			resp.ChatHistory = append(resp.ChatHistory, HistoryTurn{
				Role:    string(m.Role),
				Content: m.Content,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// writeFlowError maps an orchestrator error to an HTTP status. Validation
// failures are the caller's fault; everything else is reported as an
// internal failure without leaking provider details.
func (s *Server) writeFlowError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, conversation.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, provider.ErrRateLimit):
		s.logger.Warn("provider rate limited", "op", op, "error", err)
		writeError(w, http.StatusServiceUnavailable, "service busy, retry later")
	default:
		s.logger.Error("request failed", "op", op, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
