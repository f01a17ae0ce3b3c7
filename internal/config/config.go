// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and SFSCORE_* env vars.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"strconv"
	"time"
)

// External code sources accepted by ExternalCodeSource.
const (
	SourceUserID   = "userId"
	SourceUsername = "username"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Port is the HTTP listen port.
	Port int `koanf:"port"`

	// BaseURL is the OData v2 service root, e.g. https://api.example.com/odata/v2.
	BaseURL string `koanf:"base_url"`

	// Token is the pre-obtained bearer token sent upstream.
	Token string `koanf:"token"`

	// CompanyID is sent as the tenant header when set.
	CompanyID string `koanf:"company_id"`

	// Locale is sent as Accept-Language when a localized field is written.
	Locale string `koanf:"locale"`

	// ExternalCodeSource picks which User field becomes a new score's externalCode.
	ExternalCodeSource string `koanf:"external_code_source"`

	// UserEntity and ScoreEntity name the upstream entity sets.
	UserEntity  string `koanf:"user_entity"`
	ScoreEntity string `koanf:"score_entity"`

	// StreakEnabled turns on cust_Streak handling and best-of score selection.
	StreakEnabled bool `koanf:"streak_enabled"`

	// Per-call upstream budgets.
	LookupTimeout time.Duration `koanf:"lookup_timeout"`
	ReadTimeout   time.Duration `koanf:"read_timeout"`
	WriteTimeout  time.Duration `koanf:"write_timeout"`

	// PreviewLimit caps the body preview of non-JSON upstream responses.
	PreviewLimit int `koanf:"preview_limit"`

	// StaticAliases are extra paths that serve the front-end document.
	StaticAliases []string `koanf:"static_aliases"`

	// CORSOrigins lists allowed origins; "*" allows all.
	CORSOrigins []string `koanf:"cors_origins"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Port:               8080,
		Locale:             "en-US",
		ExternalCodeSource: SourceUserID,
		UserEntity:         "User",
		ScoreEntity:        "cust_TriviaScore",
		StreakEnabled:      true,
		LookupTimeout:      10 * time.Second,
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       30 * time.Second,
		PreviewLimit:       500,
		StaticAliases:      []string{"/trivia", "/Trivia", "/TRIVIA", "/trivai", "/game", "/Game"},
		CORSOrigins:        []string{"*"},
		ShutdownTimeout:    30 * time.Second,
	}
}

// Addr returns the listen address for Port.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
