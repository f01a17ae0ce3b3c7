package odata

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrDecode is wrapped when a JSON response body cannot be parsed.
var ErrDecode = errors.New("odata: invalid JSON response")

// FormatError reports an upstream response that was not JSON.
type FormatError struct {
	Status      int
	ContentType string
	Preview     string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("odata: non-JSON response (status %d, content type %q)", e.Status, e.ContentType)
}

// HTTPStatus is the status to relay downstream; 502 when upstream sent none.
func (e *FormatError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusBadGateway
	}
	return e.Status
}

// StatusError reports a JSON upstream response outside the 2xx range.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("odata: upstream status %d", e.Status)
}

// Details returns the upstream body as JSON. A body that is not valid JSON
// is returned as a JSON string and an empty body as null.
func (e *StatusError) Details() json.RawMessage {
	if len(e.Body) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(e.Body) {
		return json.RawMessage(e.Body)
	}
	b, _ := json.Marshal(string(e.Body))
	return b
}
