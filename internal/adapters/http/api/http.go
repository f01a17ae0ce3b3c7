// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/sfscore/internal/app"
	"github.com/okian/sfscore/internal/domain/model"
	"github.com/okian/sfscore/pkg/logger"
)

// maxBodyBytes bounds inbound JSON bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. *service.Service implements it.
type Dependencies interface {
	LookupUser(ctx context.Context, q service.UserQuery) (*model.User, error)
	CreateUser(ctx context.Context, input map[string]any) (json.RawMessage, error)
	UpdateUser(ctx context.Context, username string, updates map[string]any) (*service.UserUpdate, error)

	LookupScore(ctx context.Context, username string) (*model.Score, error)
	CreateScore(ctx context.Context, input map[string]any) (json.RawMessage, error)
	UpdateScore(ctx context.Context, username string, updates map[string]any) (*service.ScoreUpdate, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	userHandler   *UserHandler
	scoreHandler  *ScoreHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		healthHandler: NewHealthHandler(),
		userHandler:   NewUserHandler(deps, log),
		scoreHandler:  NewScoreHandler(deps, log),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(ctx context.Context, r chi.Router) {
	if r == nil {
		panic("api: nil router")
	}

	r.Get("/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	r.Method(http.MethodGet, "/metrics", s.healthHandler.MetricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/user", MetricsMiddleware(s.userHandler.HandleGetUser, "user"))
		r.Post("/user", MetricsMiddleware(s.userHandler.HandleCreateUser, "user"))
		r.Put("/user", MetricsMiddleware(s.userHandler.HandleUpdateUser, "user"))

		r.Get("/score", MetricsMiddleware(s.scoreHandler.HandleGetScore, "score"))
		r.Post("/score", MetricsMiddleware(s.scoreHandler.HandleCreateScore, "score"))
		r.Put("/score", MetricsMiddleware(s.scoreHandler.HandleUpdateScore, "score"))

		r.NotFound(NotFound)
		r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusMethodNotAllowed, codeMethod, nil)
		})
	})
}

// NotFound answers with the JSON not-found body.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, codeNotFound, nil)
}

// updateRequest mirrors the OpenAPI schema for PUT /api/user and /api/score.
type updateRequest struct {
	Username string          `json:"username"`
	Updates  json.RawMessage `json:"updates"`
}

// fields decodes Updates; anything but a JSON object is a validation error.
func (u updateRequest) fields() (map[string]any, error) {
	var out map[string]any
	if len(u.Updates) == 0 {
		return nil, nil
	}
	if err := decodeJSON(u.Updates, &out); err != nil {
		return nil, badRequest("updates must be a non-empty object")
	}
	return out, nil
}

type okResponse struct {
	OK bool `json:"ok"`
}

type createdResponse struct {
	OK      bool            `json:"ok"`
	Created json.RawMessage `json:"created"`
}

type errorResponse struct {
	Code        string          `json:"code"`
	Message     string          `json:"message"`
	Status      int             `json:"status,omitempty"`
	ContentType string          `json:"contentType,omitempty"`
	BodyPreview *string         `json:"bodyPreview,omitempty"`
	Details     json.RawMessage `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// readBody decodes a JSON request body into v. An empty body leaves v untouched.
func readBody(r *http.Request, v any) error {
	raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return badRequest("request body too large or unreadable")
	}
	if len(raw) == 0 {
		return nil
	}
	if err := decodeJSON(raw, v); err != nil {
		return badRequest("invalid JSON body")
	}
	return nil
}

// decodeJSON keeps numbers as json.Number so they reach upstream unchanged.
func decodeJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data")
	}
	return nil
}
