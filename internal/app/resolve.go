package service

import (
	"context"
	"time"

	"github.com/okian/sfscore/internal/adapters/odata"
	"github.com/okian/sfscore/internal/config"
	"github.com/okian/sfscore/internal/domain/model"
	"github.com/okian/sfscore/pkg/logger"
	"github.com/okian/sfscore/pkg/metrics"
)

// lookup finds the first record of entity where any of fields equals any of
// values, projecting selects.
type lookup struct {
	entity  string
	fields  []string
	values  []string
	selects []string
	timeout time.Duration
}

// first returns the first matching record, or nil when none matched.
func (s *Service) first(ctx context.Context, l lookup) (map[string]any, error) {
	resp, err := s.upstream.Do(ctx, odata.Request{
		Entity:  l.entity,
		Query:   odata.Query{Filter: odata.AnyEq(l.fields, l.values...), Select: l.selects},
		Timeout: l.timeout,
	})
	if err != nil {
		return nil, err
	}
	recs, err := resp.Results()
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

// resolveUserID returns the userId of the first user with username, or ""
// when there is none.
func (s *Service) resolveUserID(ctx context.Context, username string) (string, error) {
	rec, err := s.first(ctx, lookup{
		entity:  s.userEntity,
		fields:  []string{model.UserFieldUsername},
		values:  []string{username},
		selects: []string{model.UserFieldUserID},
		timeout: s.lookupTimeout,
	})
	if err != nil || rec == nil {
		return "", err
	}
	return model.Text(rec[model.UserFieldUserID]), nil
}

// scoreKeys returns the externalCode candidates for username: the resolved
// userId first when known, username always last. Resolution failures fall
// back to username alone.
func (s *Service) scoreKeys(ctx context.Context, op, username string) []string {
	userID, err := s.resolveUserID(ctx, username)
	if err != nil {
		metrics.RecordResolutionFallback(op)
		s.logger.Debug(ctx, "userId resolution failed, using username",
			logger.String("op", op),
			logger.String("username", username),
			logger.Error(err),
		)
	}
	if userID == "" || userID == username {
		return []string{username}
	}
	return []string{userID, username}
}

// scoreKey returns the externalCode of the first score record stored under
// any of keys, or "" when there is none.
func (s *Service) scoreKey(ctx context.Context, keys []string) (string, error) {
	rec, err := s.first(ctx, lookup{
		entity:  s.scoreEntity,
		fields:  []string{model.ScoreFieldExternalCode},
		values:  keys,
		selects: []string{model.ScoreFieldExternalCode},
		timeout: s.lookupTimeout,
	})
	if err != nil || rec == nil {
		return "", err
	}
	return model.Text(rec[model.ScoreFieldExternalCode]), nil
}

// matchUser finds the user whose userId or username equals code and returns
// the identifier configured as the score externalCode. ok is false when
// nothing matched.
func (s *Service) matchUser(ctx context.Context, code string) (string, bool, error) {
	rec, err := s.first(ctx, lookup{
		entity:  s.userEntity,
		fields:  []string{model.UserFieldUserID, model.UserFieldUsername},
		values:  []string{code},
		selects: []string{model.UserFieldUserID, model.UserFieldUsername},
		timeout: s.lookupTimeout,
	})
	if err != nil || rec == nil {
		return "", false, err
	}

	id := model.Text(rec[model.UserFieldUserID])
	name := model.Text(rec[model.UserFieldUsername])
	primary, other := id, name
	if s.codeSource == config.SourceUsername {
		primary, other = name, id
	}
	switch {
	case primary != "":
		return primary, true, nil
	case other != "":
		return other, true, nil
	default:
		return code, true, nil
	}
}
