package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/service"
)

type GraphHandler struct {
	svc *service.SessionService
}

func NewGraphHandler(svc *service.SessionService) *GraphHandler {
	return &GraphHandler{svc: svc}
}

func (h *GraphHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	graph, err := h.svc.GetGraph(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to export graph")
		return
	}

	writeJSON(w, http.StatusOK, graph)
}

// Snapshot serves the graph export persisted after a specific stage.
func (h *GraphHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	stage, err := strconv.Atoi(chi.URLParam(r, "stage"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "stage must be an integer")
		return
	}

	graph, err := h.svc.StageSnapshot(r.Context(), id, stage)
	if err != nil {
		var vErr *domain.ValidationError
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, domain.ErrSnapshotNotFound):
			writeError(w, http.StatusNotFound, "no snapshot for stage")
		case errors.As(err, &vErr):
			writeError(w, http.StatusBadRequest, vErr.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		}
		return
	}

	writeJSON(w, http.StatusOK, graph)
}
