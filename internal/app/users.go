package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/sfscore/internal/adapters/odata"
	"github.com/okian/sfscore/internal/domain/model"
)

// UserQuery identifies a user by id or username; UserID wins when both are set.
type UserQuery struct {
	UserID   string
	Username string
}

// LookupUser returns the first user matching q, or nil when none does.
func (s *Service) LookupUser(ctx context.Context, q UserQuery) (*model.User, error) {
	const op = "service.LookupUser"

	id, name := strings.TrimSpace(q.UserID), strings.TrimSpace(q.Username)
	var filter string
	switch {
	case id != "":
		filter = odata.Eq(model.UserFieldUserID, id)
	case name != "":
		filter = odata.Eq(model.UserFieldUsername, name)
	default:
		return nil, invalid(op, "username or userid is required")
	}

	resp, err := s.upstream.Do(ctx, odata.Request{
		Entity:  s.userEntity,
		Query:   odata.Query{Filter: filter, Select: model.UserSelect},
		Timeout: s.readTimeout,
	})
	if err != nil {
		return nil, err
	}
	recs, err := resp.Results()
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	u := model.UserFromRecord(recs[0])
	return &u, nil
}

// CreateUser creates a user from caller input. userId defaults to username.
func (s *Service) CreateUser(ctx context.Context, input map[string]any) (json.RawMessage, error) {
	const op = "service.CreateUser"

	username := strings.TrimSpace(model.Text(input[model.UserFieldUsername]))
	if username == "" {
		return nil, invalid(op, "username is required")
	}
	userID := strings.TrimSpace(model.Text(input[model.UserFieldUserID]))
	if userID == "" {
		userID = username
	}

	payload := model.UserCreatable.Pick(input, true)
	payload[model.UserFieldUserID] = userID
	payload[model.UserFieldUsername] = username

	resp, err := s.upstream.Do(ctx, odata.Request{
		Method:  http.MethodPost,
		Entity:  s.userEntity,
		Body:    payload,
		Timeout: s.writeTimeout,
	})
	if err != nil {
		return nil, err
	}
	return resp.Entity(), nil
}

// UserUpdate is the outcome of UpdateUser.
type UserUpdate struct {
	UserID  string
	Updated []string
}

// UpdateUser merges the allowed subset of updates into the user with the
// given username.
func (s *Service) UpdateUser(ctx context.Context, username string, updates map[string]any) (*UserUpdate, error) {
	const op = "service.UpdateUser"

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid(op, "username is required")
	}
	if len(updates) == 0 {
		return nil, invalid(op, "updates must be a non-empty object")
	}
	fields := model.UserUpdatable.Pick(updates, false)
	if len(fields) == 0 {
		return nil, invalid(op, "no updatable fields in updates")
	}

	userID, err := s.resolveUserID(ctx, username)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, notFound(op, "user not found for username")
	}

	if _, err := s.upstream.Do(ctx, odata.Request{
		Entity:  s.userEntity,
		Key:     userID,
		Body:    fields,
		Merge:   true,
		Timeout: s.writeTimeout,
	}); err != nil {
		return nil, err
	}
	return &UserUpdate{UserID: userID, Updated: model.Keys(fields)}, nil
}
