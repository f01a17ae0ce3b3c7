// Package service implements the user and score workflows behind the HTTP API.
package service

import (
	"context"
	"time"

	"github.com/okian/sfscore/internal/adapters/odata"
	"github.com/okian/sfscore/internal/config"
	"github.com/okian/sfscore/internal/domain/scoring"
	"github.com/okian/sfscore/pkg/logger"
)

// Upstream issues OData calls. *odata.Client implements it.
type Upstream interface {
	Do(ctx context.Context, req odata.Request) (*odata.Response, error)
}

// Service runs every request against the upstream; it holds no per-request
// state and is safe for concurrent use.
type Service struct {
	upstream Upstream
	selector scoring.Selector
	logger   logger.Logger

	withStreak  bool
	codeSource  string
	locale      string
	userEntity  string
	scoreEntity string

	lookupTimeout time.Duration
	readTimeout   time.Duration
	writeTimeout  time.Duration
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStreak toggles streak support. Off selects the first-record variant.
func WithStreak(enabled bool) Option {
	return func(s *Service) {
		s.withStreak = enabled
	}
}

// WithExternalCodeSource chooses which User field becomes a new score's
// externalCode: config.SourceUserID or config.SourceUsername.
func WithExternalCodeSource(source string) Option {
	return func(s *Service) {
		if source == config.SourceUserID || source == config.SourceUsername {
			s.codeSource = source
		}
	}
}

// WithLocale sets the Accept-Language sent with localized writes.
func WithLocale(locale string) Option {
	return func(s *Service) {
		if locale != "" {
			s.locale = locale
		}
	}
}

// WithEntities sets the user and score entity set names.
func WithEntities(user, score string) Option {
	return func(s *Service) {
		if user != "" {
			s.userEntity = user
		}
		if score != "" {
			s.scoreEntity = score
		}
	}
}

// WithTimeouts sets the per-call timeouts for resolution lookups, reads and writes.
func WithTimeouts(lookup, read, write time.Duration) Option {
	return func(s *Service) {
		if lookup > 0 {
			s.lookupTimeout = lookup
		}
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
	}
}

// New creates a service over the given upstream.
func New(upstream Upstream, opts ...Option) *Service {
	def := config.New()
	s := &Service{
		upstream:      upstream,
		logger:        logger.Nop(),
		withStreak:    def.StreakEnabled,
		codeSource:    def.ExternalCodeSource,
		locale:        def.Locale,
		userEntity:    def.UserEntity,
		scoreEntity:   def.ScoreEntity,
		lookupTimeout: def.LookupTimeout,
		readTimeout:   def.ReadTimeout,
		writeTimeout:  def.WriteTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.selector = scoring.New(s.withStreak)
	return s
}

// FromConfig maps the loaded configuration onto service options.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithStreak(cfg.StreakEnabled),
		WithExternalCodeSource(cfg.ExternalCodeSource),
		WithLocale(cfg.Locale),
		WithEntities(cfg.UserEntity, cfg.ScoreEntity),
		WithTimeouts(cfg.LookupTimeout, cfg.ReadTimeout, cfg.WriteTimeout),
	}
}

// StreakEnabled reports whether streak support is on.
func (s *Service) StreakEnabled() bool { return s.withStreak }
