package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/sfscore/internal/adapters/odata"
	"github.com/okian/sfscore/internal/domain/model"
	"github.com/okian/sfscore/pkg/logger"
	"github.com/okian/sfscore/pkg/metrics"
)

// Invalid externalCode on score creation.
const msgInvalidExternalCode = "Invalid externalCode: must match an existing User userId or username"

// LookupScore returns the canonical score of username, or nil when there is none.
func (s *Service) LookupScore(ctx context.Context, username string) (*model.Score, error) {
	const op = "service.LookupScore"

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid(op, "username is required")
	}

	keys := s.scoreKeys(ctx, op, username)
	resp, err := s.upstream.Do(ctx, odata.Request{
		Entity: s.scoreEntity,
		Query: odata.Query{
			Filter: odata.AnyEq([]string{model.ScoreFieldExternalCode}, keys...),
			Select: model.ScoreSelect(s.withStreak),
		},
		Timeout: s.readTimeout,
	})
	if err != nil {
		return nil, err
	}
	recs, err := resp.Results()
	if err != nil {
		return nil, err
	}

	scores := make([]model.Score, 0, len(recs))
	for _, rec := range recs {
		scores = append(scores, model.ScoreFromRecord(rec, s.withStreak))
	}
	best, ok := s.selector.Select(scores)
	if !ok {
		return nil, nil
	}
	return &best, nil
}

// ScoreUpdate is the outcome of UpdateScore.
type ScoreUpdate struct {
	ExternalCode string
	Updated      []string
}

// UpdateScore merges the allowed subset of updates into the score record of
// username. The record's key is re-resolved on every call.
func (s *Service) UpdateScore(ctx context.Context, username string, updates map[string]any) (*ScoreUpdate, error) {
	const op = "service.UpdateScore"

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid(op, "username is required")
	}
	if len(updates) == 0 {
		return nil, invalid(op, "updates must be a non-empty object")
	}
	fields := model.ScoreUpdatable(s.withStreak).Pick(updates, false)
	if len(fields) == 0 {
		return nil, invalid(op, "no updatable fields in updates")
	}

	key, err := s.scoreKey(ctx, s.scoreKeys(ctx, op, username))
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, notFound(op, "score record not found for username")
	}

	if _, err := s.upstream.Do(ctx, odata.Request{
		Entity:  s.scoreEntity,
		Key:     key,
		Body:    fields,
		Merge:   true,
		Locale:  s.localeFor(fields),
		Timeout: s.writeTimeout,
	}); err != nil {
		return nil, err
	}
	return &ScoreUpdate{ExternalCode: key, Updated: model.Keys(fields)}, nil
}

// CreateScore creates a score record. input carries externalCode or username
// plus optional externalName, cust_Score and cust_Streak.
func (s *Service) CreateScore(ctx context.Context, input map[string]any) (json.RawMessage, error) {
	const op = "service.CreateScore"

	code := strings.TrimSpace(model.Text(input[model.ScoreFieldExternalCode]))
	if code == "" {
		code = strings.TrimSpace(model.Text(input[model.UserFieldUsername]))
	}
	if code == "" {
		return nil, invalid(op, "externalCode or username is required")
	}

	matched, ok, err := s.matchUser(ctx, code)
	switch {
	case err != nil:
		// Unverified; the create call reports any real problem.
		metrics.RecordResolutionFallback(op)
		s.logger.Debug(ctx, "externalCode validation failed, using caller value",
			logger.String("externalCode", code),
			logger.Error(err),
		)
	case !ok:
		return nil, invalid(op, msgInvalidExternalCode)
	default:
		code = matched
	}

	allowed := model.FieldSet{model.ScoreFieldExternalName, model.ScoreFieldScore}
	if s.withStreak {
		allowed = append(allowed, model.ScoreFieldStreak)
	}
	payload := allowed.Pick(input, true)
	payload[model.ScoreFieldExternalCode] = code

	resp, err := s.upstream.Do(ctx, odata.Request{
		Method:  http.MethodPost,
		Entity:  s.scoreEntity,
		Body:    payload,
		Locale:  s.localeFor(payload),
		Timeout: s.writeTimeout,
	})
	if err != nil {
		return nil, err
	}
	return resp.Entity(), nil
}

// localeFor returns the configured locale when fields writes a localized field.
func (s *Service) localeFor(fields map[string]any) string {
	for _, f := range model.ScoreLocalized {
		if _, ok := fields[f]; ok {
			return s.locale
		}
	}
	return ""
}
