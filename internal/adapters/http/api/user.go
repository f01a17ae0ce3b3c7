package api

import (
	"net/http"

	service "github.com/okian/sfscore/internal/app"
	"github.com/okian/sfscore/internal/domain/model"
	"github.com/okian/sfscore/pkg/logger"
)

// UserHandler handles /api/user.
type UserHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(deps Dependencies, log logger.Logger) *UserHandler {
	return &UserHandler{deps: deps, log: log}
}

type userResponse struct {
	Found bool        `json:"found"`
	User  *model.User `json:"user"`
}

type userUpdatedResponse struct {
	OK      bool     `json:"ok"`
	UserID  string   `json:"userId"`
	Updated []string `json:"updated"`
}

// HandleGetUser handles GET /api/user?username= or ?userid=.
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.HandleGetUser"

	q := r.URL.Query()
	userID := q.Get("userid")
	if userID == "" {
		userID = q.Get("userId")
	}
	u, err := h.deps.LookupUser(r.Context(), service.UserQuery{UserID: userID, Username: q.Get("username")})
	if err != nil {
		writeFailure(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Found: u != nil, User: u})
}

// HandleCreateUser handles POST /api/user.
func (h *UserHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.HandleCreateUser"

	var body map[string]any
	if err := readBody(r, &body); err != nil {
		writeFailure(r.Context(), w, h.log, op, err)
		return
	}
	created, err := h.deps.CreateUser(r.Context(), body)
	if err != nil {
		writeFailure(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, createdResponse{OK: true, Created: created})
}

// HandleUpdateUser handles PUT /api/user.
func (h *UserHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.HandleUpdateUser"

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
	res, err := h.deps.UpdateUser(r.Context(), req.Username, updates)
	if err != nil {
		writeFailure(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, userUpdatedResponse{OK: true, UserID: res.UserID, Updated: res.Updated})
}
