package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrUnsupported is returned by backends that have no knowledge base.
	ErrUnsupported = errors.New("operation not supported by this backend")
	ErrNotCSV      = errors.New("file is not a CSV file")
)

const maxErrorBody = 8 << 10

// Error is a non-2xx response from the backend. Unparsed is set when the
// body was empty or not JSON; Body then keeps the raw text for logs.
type Error struct {
	StatusCode int
	Detail     string
	Unparsed   bool
	Body       string
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
	case e.Body != "":
		return fmt.Sprintf("backend returned %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
	}
	return fmt.Sprintf("backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// DetailOf returns the server supplied detail of err, or "" when err is not a
// backend rejection or carries no detail.
func DetailOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// IsRejection reports whether err is the backend answering with a non-2xx
// JSON response, as opposed to the request failing in transit. A non-2xx
// response that is not JSON usually comes from a proxy and counts as a
// transport failure.
func IsRejection(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && !apiErr.Unparsed
}

// newError builds an *Error from a failed response. FastAPI puts the reason
// in "detail", which is a string for HTTPException and a list for request
// validation failures.
func newError(resp *http.Response) *Error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		apiErr.Unparsed = true
		return apiErr
	}

	if !json.Valid(body) {
		apiErr.Unparsed = true
		apiErr.Body = strings.TrimSpace(string(body))
		return apiErr
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 || string(payload.Detail) == "null" {
		return apiErr
	}

	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		apiErr.Detail = detail
		return apiErr
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		apiErr.Detail = strings.Join(msgs, "; ")
		return apiErr
	}

	apiErr.Detail = string(payload.Detail)
	return apiErr
}
