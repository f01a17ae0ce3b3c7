package api

import (
	"net/http"

	"github.com/okian/sfscore/internal/domain/model"
	"github.com/okian/sfscore/pkg/logger"
)

// ScoreHandler handles /api/score.
type ScoreHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps Dependencies, log logger.Logger) *ScoreHandler {
	return &ScoreHandler{deps: deps, log: log}
}

type scoreResponse struct {
	Found bool         `json:"found"`
	Score *model.Score `json:"score"`
}

type scoreUpdatedResponse struct {
	OK           bool     `json:"ok"`
	ExternalCode string   `json:"externalCode"`
	Updated      []string `json:"updated"`
}

// HandleGetScore handles GET /api/score?username=.
func (h *ScoreHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.HandleGetScore"

	s, err := h.deps.LookupScore(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		writeFailure(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{Found: s != nil, Score: s})
}

// HandleCreateScore handles POST /api/score.
func (h *ScoreHandler) HandleCreateScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.HandleCreateScore"

	var body map[string]any
	if err := readBody(r, &body); err != nil {
		writeFailure(r.Context(), w, h.log, op, err)
		return
	}
	created, err := h.deps.CreateScore(r.Context(), body)
	if err != nil {
		writeFailure(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, createdResponse{OK: true, Created: created})
}

// HandleUpdateScore handles PUT /api/score.
func (h *ScoreHandler) HandleUpdateScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.HandleUpdateScore"

	var req updateRequest
	if err := readBody(r, &req); err != nil {
		writeFailure(r.Context(), w, h.log, op, err)
		return
	}
	updates, err := req.fields()
	if err != nil {
		writeFailure(r.Context(), w, h.log, op, err)
		return
	}
	res, err := h.deps.UpdateScore(r.Context(), req.Username, updates)
	if err != nil {
		writeFailure(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreUpdatedResponse{OK: true, ExternalCode: res.ExternalCode, Updated: res.Updated})
}
