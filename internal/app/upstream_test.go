package service_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/okian/sfscore/internal/adapters/odata"
)

// call is one request seen by the fake upstream.
type call struct {
	Method  string
	XMethod string
	Path    string
	Filter  string
	Select  string
	Locale  string
	Body    map[string]any
}

// reply overrides the fake's answer for one entity path.
type reply struct {
	status      int
	contentType string
	body        string
}

// fakeOData is a tiny in-memory OData service. GETs evaluate `f eq 'v'`
// clauses joined with or; writes are recorded and answered with 201/204.
type fakeOData struct {
	t *testing.T

	mu      sync.Mutex
	calls   []call
	data    map[string][]map[string]any
	replies map[string]reply
}

func newFakeOData(t *testing.T) (*fakeOData, *odata.Client) {
	f := &fakeOData{t: t, data: map[string][]map[string]any{}, replies: map[string]reply{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c, err := odata.New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return f, c
}

func (f *fakeOData) seed(entity string, recs ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[entity] = append(f.data[entity], recs...)
}

func (f *fakeOData) override(entity string, r reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[entity] = r
}

func (f *fakeOData) seen() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

// writes returns the calls that were not plain reads.
func (f *fakeOData) writes() []call {
	var out []call
	for _, c := range f.seen() {
		if c.Method != http.MethodGet {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeOData) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := call{
		Method:  r.Method,
		XMethod: r.Header.Get("X-HTTP-Method"),
		Path:    strings.TrimPrefix(r.URL.Path, "/"),
		Filter:  r.URL.Query().Get("$filter"),
		Select:  r.URL.Query().Get("$select"),
		Locale:  r.Header.Get("Accept-Language"),
	}
	if b, _ := io.ReadAll(r.Body); len(b) > 0 {
		_ = json.Unmarshal(b, &c.Body)
	}

	f.mu.Lock()
	f.calls = append(f.calls, c)
	entity := c.Path
	if i := strings.IndexByte(entity, '('); i >= 0 {
		entity = entity[:i]
	}
	rep, overridden := f.replies[entity]
	recs := f.data[entity]
	f.mu.Unlock()

	if overridden {
		if rep.contentType != "" {
			w.Header().Set("Content-Type", rep.contentType)
		}
		w.WriteHeader(rep.status)
		_, _ = io.WriteString(w, rep.body)
		return
	}

	switch {
	case r.Method == http.MethodGet:
		matched := []map[string]any{}
		for _, rec := range recs {
			if matches(rec, c.Filter) {
				matched = append(matched, rec)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"d": map[string]any{"results": matched}})
	case c.XMethod == "MERGE":
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusCreated, map[string]any{"d": c.Body})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func matches(rec map[string]any, filter string) bool {
	if filter == "" {
		return true
	}
	for _, clause := range strings.Split(filter, " or ") {
		field, lit, ok := strings.Cut(clause, " eq ")
		if !ok {
			continue
		}
		lit = strings.TrimSuffix(strings.TrimPrefix(lit, "'"), "'")
		lit = strings.ReplaceAll(lit, "''", "'")
		if v, _ := rec[field].(string); v == lit {
			return true
		}
	}
	return false
}
