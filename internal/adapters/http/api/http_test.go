package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/sfscore/internal/adapters/http/api"
	"github.com/okian/sfscore/internal/adapters/odata"
	service "github.com/okian/sfscore/internal/app"
	"github.com/okian/sfscore/internal/domain/model"
)

// mockDeps records what the handlers asked for and returns canned results.
type mockDeps struct {
	calls int

	userQuery service.UserQuery
	user      *model.User
	score     *model.Score
	username  string
	input     map[string]any
	updates   map[string]any
	created   json.RawMessage
	err       error
}

func (m *mockDeps) LookupUser(_ context.Context, q service.UserQuery) (*model.User, error) {
	m.calls++
	m.userQuery = q
	return m.user, m.err
}

func (m *mockDeps) CreateUser(_ context.Context, input map[string]any) (json.RawMessage, error) {
	m.calls++
	m.input = input
	return m.created, m.err
}

func (m *mockDeps) UpdateUser(_ context.Context, username string, updates map[string]any) (*service.UserUpdate, error) {
	m.calls++
	m.username, m.updates = username, updates
	if m.err != nil {
		return nil, m.err
	}
	return &service.UserUpdate{UserID: "u100", Updated: model.Keys(updates)}, nil
}

func (m *mockDeps) LookupScore(_ context.Context, username string) (*model.Score, error) {
	m.calls++
	m.username = username
	return m.score, m.err
}

func (m *mockDeps) CreateScore(_ context.Context, input map[string]any) (json.RawMessage, error) {
	m.calls++
	m.input = input
	return m.created, m.err
}

func (m *mockDeps) UpdateScore(_ context.Context, username string, updates map[string]any) (*service.ScoreUpdate, error) {
	m.calls++
	m.username, m.updates = username, updates
	if m.err != nil {
		return nil, m.err
	}
	return &service.ScoreUpdate{ExternalCode: "u100", Updated: model.Keys(updates)}, nil
}

func newRouter(deps api.Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(api.RequestID)
	api.NewServer(deps, nil).Register(context.Background(), r)
	return r
}

func do(h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestHealth(t *testing.T) {
	Convey("Given the API router", t, func() {
		deps := &mockDeps{err: errors.New("must not be called")}
		h := newRouter(deps)

		Convey("When GET /health", func() {
			rec, body := do(h, http.MethodGet, "/health", "")

			Convey("Then it answers ok without touching the service", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(body["ok"], ShouldEqual, true)
				So(deps.calls, ShouldEqual, 0)
				So(rec.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
			})
		})

		Convey("When GET /metrics", func() {
			_, _ = do(h, http.MethodGet, "/health", "")
			rec, _ := do(h, http.MethodGet, "/metrics", "")

			Convey("Then the request counters are exposed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "sfscore_proxy_http_requests_total")
			})
		})

		Convey("When an unknown API path is requested", func() {
			rec, body := do(h, http.MethodGet, "/api/nope", "")

			Convey("Then a JSON 404 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(body["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When a caller supplies a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			Convey("Then it is echoed", func() {
				So(rec.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
			})
		})
	})
}

func TestUserEndpoints(t *testing.T) {
	Convey("Given the API router", t, func() {
		deps := &mockDeps{}
		h := newRouter(deps)

		Convey("When the user exists", func() {
			deps.user = &model.User{UserID: "u100", Username: "jdoe"}
			rec, body := do(h, http.MethodGet, "/api/user?username=jdoe", "")

			Convey("Then found is true with the flat user", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(body["found"], ShouldEqual, true)
				So(body["user"].(map[string]any)["userId"], ShouldEqual, "u100")
				So(deps.userQuery.Username, ShouldEqual, "jdoe")
			})
		})

		Convey("When userId is passed in either spelling", func() {
			_, _ = do(h, http.MethodGet, "/api/user?userId=u7&username=x", "")
			So(deps.userQuery.UserID, ShouldEqual, "u7")
			_, _ = do(h, http.MethodGet, "/api/user?userid=u8", "")
			So(deps.userQuery.UserID, ShouldEqual, "u8")
		})

		Convey("When the user does not exist", func() {
			rec, body := do(h, http.MethodGet, "/api/user?username=ghost", "")

			Convey("Then found is false and user is null", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(body["found"], ShouldEqual, false)
				So(body, ShouldContainKey, "user")
				So(body["user"], ShouldBeNil)
			})
		})

		Convey("When the service rejects the input", func() {
			deps.err = &service.Error{Kind: service.ErrValidation, Msg: "username or userid is required"}
			rec, body := do(h, http.MethodGet, "/api/user", "")

			Convey("Then a validation error is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "validation_error")
				So(body["message"], ShouldEqual, "username or userid is required")
			})
		})

		Convey("When creating a user", func() {
			deps.created = json.RawMessage(`{"userId":"new"}`)
			rec, body := do(h, http.MethodPost, "/api/user", `{"username":"new","score":1.50}`)

			Convey("Then the upstream payload is relayed and numbers are preserved", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(body["ok"], ShouldEqual, true)
				So(body["created"].(map[string]any)["userId"], ShouldEqual, "new")
				So(deps.input["score"], ShouldEqual, json.Number("1.50"))
			})
		})

		Convey("When the body is not JSON", func() {
			rec, body := do(h, http.MethodPost, "/api/user", `{nope`)

			Convey("Then it is rejected before the service", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "validation_error")
				So(deps.calls, ShouldEqual, 0)
			})
		})

		Convey("When updating a user", func() {
			rec, body := do(h, http.MethodPut, "/api/user", `{"username":"jdoe","updates":{"email":"j@x"}}`)

			Convey("Then the update result is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(body["userId"], ShouldEqual, "u100")
				So(body["updated"], ShouldResemble, []any{"email"})
				So(deps.username, ShouldEqual, "jdoe")
			})
		})

		Convey("When updates is not an object", func() {
			rec, body := do(h, http.MethodPut, "/api/user", `{"username":"jdoe","updates":[1]}`)

			Convey("Then it is a validation error", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(body["message"], ShouldEqual, "updates must be a non-empty object")
				So(deps.calls, ShouldEqual, 0)
			})
		})

		Convey("When the user to update is unknown", func() {
			deps.err = &service.Error{Kind: service.ErrNotFound, Msg: "user not found for username"}
			rec, body := do(h, http.MethodPut, "/api/user", `{"username":"ghost","updates":{"email":"x"}}`)

			Convey("Then it is a 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(body["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When the method is not routed", func() {
			rec, _ := do(h, http.MethodDelete, "/api/user", "")
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestScoreEndpoints(t *testing.T) {
	Convey("Given the API router", t, func() {
		deps := &mockDeps{}
		h := newRouter(deps)

		Convey("When a score exists", func() {
			streak := 3.0
			deps.score = &model.Score{ExternalCode: "u100", Score: 95, Streak: &streak}
			rec, body := do(h, http.MethodGet, "/api/score?username=jdoe", "")

			Convey("Then the flat score is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(body["found"], ShouldEqual, true)
				sc := body["score"].(map[string]any)
				So(sc["score"], ShouldEqual, float64(95))
				So(sc["streak"], ShouldEqual, float64(3))
				So(deps.username, ShouldEqual, "jdoe")
			})
		})

		Convey("When no score exists", func() {
			rec, body := do(h, http.MethodGet, "/api/score?username=ghost", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(body["found"], ShouldEqual, false)
			So(body["score"], ShouldBeNil)
		})

		Convey("When updating a score", func() {
			rec, body := do(h, http.MethodPut, "/api/score", `{"username":"jdoe","updates":{"cust_Score":7}}`)

			Convey("Then the key and updated fields are reported", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(body["ok"], ShouldEqual, true)
				So(body["externalCode"], ShouldEqual, "u100")
				So(body["updated"], ShouldResemble, []any{"cust_Score"})
			})
		})

		Convey("When creating a score returns no payload", func() {
			rec, body := do(h, http.MethodPost, "/api/score", `{"username":"jdoe"}`)

			Convey("Then created is null", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(body, ShouldContainKey, "created")
				So(body["created"], ShouldBeNil)
				So(deps.input["username"], ShouldEqual, "jdoe")
			})
		})

		Convey("When upstream returned HTML", func() {
			deps.err = &odata.FormatError{Status: http.StatusUnauthorized, ContentType: "text/html", Preview: "<html>"}
			rec, body := do(h, http.MethodGet, "/api/score?username=jdoe", "")

			Convey("Then status, content type and preview are relayed", func() {
				So(rec.Code, ShouldEqual, http.StatusUnauthorized)
				So(body["code"], ShouldEqual, "upstream_format_error")
				So(body["status"], ShouldEqual, float64(401))
				So(body["contentType"], ShouldEqual, "text/html")
				So(body["bodyPreview"], ShouldEqual, "<html>")
			})
		})

		Convey("When upstream sent no status", func() {
			deps.err = &odata.FormatError{ContentType: "", Preview: ""}
			rec, body := do(h, http.MethodGet, "/api/score?username=jdoe", "")

			Convey("Then 502 is used and the empty preview is still present", func() {
				So(rec.Code, ShouldEqual, http.StatusBadGateway)
				So(body, ShouldContainKey, "bodyPreview")
			})
		})

		Convey("When upstream returned a JSON error", func() {
			deps.err = &odata.StatusError{Status: http.StatusForbidden, Body: []byte(`{"error":{"code":"403"}}`)}
			rec, body := do(h, http.MethodPut, "/api/score", `{"username":"jdoe","updates":{"cust_Score":1}}`)

			Convey("Then the upstream body is in details", func() {
				So(rec.Code, ShouldEqual, http.StatusForbidden)
				So(body["code"], ShouldEqual, "upstream_error")
				So(body["details"], ShouldResemble, map[string]any{"error": map[string]any{"code": "403"}})
			})
		})

		Convey("When the service fails unexpectedly", func() {
			deps.err = errors.New("dial tcp: connection refused")
			rec, body := do(h, http.MethodGet, "/api/score?username=jdoe", "")

			Convey("Then a 500 carries the message", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				So(body["code"], ShouldEqual, "internal_error")
				So(body["message"], ShouldEqual, "dial tcp: connection refused")
			})
		})
	})
}

func TestCORS(t *testing.T) {
	Convey("Given the CORS middleware", t, func() {
		r := chi.NewRouter()
		r.Use(api.CORS(nil))
		api.NewServer(&mockDeps{}, nil).Register(context.Background(), r)

		Convey("When a preflight arrives", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/score", nil)
			req.Header.Set("Origin", "https://game.example.com")
			req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			Convey("Then any origin is allowed", func() {
				So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
				So(rec.Header().Get("Access-Control-Allow-Methods"), ShouldContainSubstring, http.MethodPut)
			})
		})
	})
}
