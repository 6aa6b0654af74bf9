package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/domain"
	"github.com/SaptaDey/asr-nexus-explorer-sub000/internal/service"
)

// NetworkHandler exposes the multi-layer network views of a session graph.
type NetworkHandler struct {
	svc *service.SessionService
}

func NewNetworkHandler(svc *service.SessionService) *NetworkHandler {
	return &NetworkHandler{svc: svc}
}

type layersResponse struct {
	Layers      []domain.NetworkLayer         `json:"layers"`
	Connections []domain.InterLayerConnection `json:"connections"`
}

type analysisResponse struct {
	Metrics    []domain.LayerMetrics      `json:"layer_metrics"`
	CrossLayer *domain.CrossLayerAnalysis `json:"cross_layer"`
}

type customLayersRequest struct {
	Definitions []domain.LayerDefinitionSpec `json:"definitions"`
}

func (h *NetworkHandler) Layers(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	layers, conns, err := h.svc.Layers(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to build layers")
		return
	}
	if conns == nil {
		conns = []domain.InterLayerConnection{}
	}

	writeJSON(w, http.StatusOK, layersResponse{Layers: layers, Connections: conns})
}

// CustomLayers partitions the graph with caller-supplied definitions
// instead of the defaults.
func (h *NetworkHandler) CustomLayers(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req customLayersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Definitions) == 0 {
		writeError(w, http.StatusBadRequest, "definitions must not be empty")
		return
	}

	layers, conns, err := h.svc.LayersWith(r.Context(), id, req.Definitions)
	if err != nil {
		var vErr *domain.ValidationError
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.As(err, &vErr):
			writeError(w, http.StatusBadRequest, vErr.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to build layers")
		}
		return
	}
	if conns == nil {
		conns = []domain.InterLayerConnection{}
	}

	writeJSON(w, http.StatusOK, layersResponse{Layers: layers, Connections: conns})
}

func (h *NetworkHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	metrics, cross, err := h.svc.Analysis(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to analyze layers")
		return
	}

	writeJSON(w, http.StatusOK, analysisResponse{Metrics: metrics, CrossLayer: cross})
}
