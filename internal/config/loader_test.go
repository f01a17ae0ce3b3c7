package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/sfscore/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When base_url is not set anywhere", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails before anything can start", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "base_url must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When only base_url is set", func() {
			_ = os.Setenv("SFSCORE_BASE_URL", "https://api.example.com/odata/v2/")

			cfg, err := config.Load(ctx)

			convey.Convey("Then defaults fill the rest and the trailing slash is trimmed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BaseURL, convey.ShouldEqual, "https://api.example.com/odata/v2")
				convey.So(cfg.Port, convey.ShouldEqual, 8080)
				convey.So(cfg.Token, convey.ShouldBeEmpty)
				convey.So(cfg.ScoreEntity, convey.ShouldEqual, "cust_TriviaScore")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SFSCORE_BASE_URL", "https://api.example.com/odata/v2")
			_ = os.Setenv("SFSCORE_TOKEN", "Bearer abc123")
			_ = os.Setenv("SFSCORE_COMPANY_ID", "ACME")
			_ = os.Setenv("SFSCORE_PORT", "9090")
			_ = os.Setenv("SFSCORE_LOCALE", "de-DE")
			_ = os.Setenv("SFSCORE_EXTERNAL_CODE_SOURCE", "USERNAME")
			_ = os.Setenv("SFSCORE_STREAK_ENABLED", "false")
			_ = os.Setenv("SFSCORE_LOOKUP_TIMEOUT", "5s")
			_ = os.Setenv("SFSCORE_STATIC_ALIASES", "/quiz,/Quiz")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Token, convey.ShouldEqual, "abc123")
				convey.So(cfg.CompanyID, convey.ShouldEqual, "ACME")
				convey.So(cfg.Port, convey.ShouldEqual, 9090)
				convey.So(cfg.Locale, convey.ShouldEqual, "de-DE")
				convey.So(cfg.ExternalCodeSource, convey.ShouldEqual, config.SourceUsername)
				convey.So(cfg.StreakEnabled, convey.ShouldBeFalse)
				convey.So(cfg.LookupTimeout, convey.ShouldEqual, 5*time.Second)
				convey.So(cfg.StaticAliases, convey.ShouldResemble, []string{"/quiz", "/Quiz"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
base_url: "https://file.example.com/odata/v2"
port: 7070
score_entity: cust_Scores
write_timeout: 45s
static_aliases:
  - /play
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SFSCORE_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BaseURL, convey.ShouldEqual, "https://file.example.com/odata/v2")
				convey.So(cfg.Port, convey.ShouldEqual, 7070)
				convey.So(cfg.ScoreEntity, convey.ShouldEqual, "cust_Scores")
				convey.So(cfg.WriteTimeout, convey.ShouldEqual, 45*time.Second)
				convey.So(cfg.StaticAliases, convey.ShouldResemble, []string{"/play"})
				convey.So(cfg.ReadTimeout, convey.ShouldEqual, 15*time.Second) // from defaults
			})

			convey.Convey("And environment variables override file values", func() {
				_ = os.Setenv("SFSCORE_PORT", "6060")

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, 6060)
				convey.So(cfg.ScoreEntity, convey.ShouldEqual, "cust_Scores")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SFSCORE_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SFSCORE_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When values fail validation", func() {
			_ = os.Setenv("SFSCORE_BASE_URL", "https://api.example.com")

			convey.Convey("Then a relative base_url is rejected", func() {
				_ = os.Setenv("SFSCORE_BASE_URL", "api.example.com/odata")
				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "absolute http(s) URL")
			})

			convey.Convey("Then an unknown external_code_source is rejected", func() {
				_ = os.Setenv("SFSCORE_EXTERNAL_CODE_SOURCE", "email")
				_, err := config.Load(ctx)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})

			convey.Convey("Then an out of range port is rejected", func() {
				_ = os.Setenv("SFSCORE_PORT", "70000")
				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
			})

			convey.Convey("Then a non-numeric port is rejected", func() {
				_ = os.Setenv("SFSCORE_PORT", "not_a_number")
				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
			})

			convey.Convey("Then an unknown log format is rejected", func() {
				_ = os.Setenv("SFSCORE_LOG_FORMAT", "xml")
				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
			})

			convey.Convey("Then a zero timeout is rejected", func() {
				_ = os.Setenv("SFSCORE_READ_TIMEOUT", "0s")
				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"SFSCORE_CONFIG",
		"SFSCORE_BASE_URL",
		"SFSCORE_TOKEN",
		"SFSCORE_COMPANY_ID",
		"SFSCORE_PORT",
		"SFSCORE_LOCALE",
		"SFSCORE_EXTERNAL_CODE_SOURCE",
		"SFSCORE_STREAK_ENABLED",
		"SFSCORE_LOOKUP_TIMEOUT",
		"SFSCORE_READ_TIMEOUT",
		"SFSCORE_STATIC_ALIASES",
		"SFSCORE_LOG_FORMAT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "sfscore-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
