package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/service"
)

type SessionHandler struct {
	svc *service.SessionService
}

func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type createSessionRequest struct {
	Question string `json:"question"`
}

type advanceStageResponse struct {
	Session *domain.Session   `json:"session"`
	Graph   *domain.GraphData `json:"graph,omitempty"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.svc.CreateSession(r.Context(), req.Question)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (h *SessionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	session, err := h.svc.GetSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get session")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sessions, err := h.svc.ListSessions(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}

	writeJSON(w, http.StatusOK, sessions)
}

func (h *SessionHandler) AdvanceStage(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	session, graph, err := h.svc.AdvanceStage(r.Context(), id)
	if err != nil {
		h.writeStageError(w, session, err)
		return
	}

	writeJSON(w, http.StatusOK, advanceStageResponse{Session: session, Graph: graph})
}

func (h *SessionHandler) RunAll(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	session, graph, err := h.svc.RunAll(r.Context(), id)
	if err != nil {
		h.writeStageError(w, session, err)
		return
	}

	writeJSON(w, http.StatusOK, advanceStageResponse{Session: session, Graph: graph})
}

func (h *SessionHandler) writeStageError(w http.ResponseWriter, session *domain.Session, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var ve *domain.ValidationError
	var se *domain.StageError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &se):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   se.Error(),
			"session": session,
		})
	default:
		writeError(w, http.StatusInternalServerError, "stage execution failed")
	}
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, false
	}
	return id, true
}
