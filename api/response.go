package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"

	serrors "github.com/jrsteele09/go-storefront-client/internal/errors"
)

// Error carries the backend's rejection back to the caller. The Message field
// is what a UI would surface as a notification.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// Unwrap maps backend failures onto the client error taxonomy so callers can
// branch with errors.Is.
func (e *Error) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return serrors.ErrNotFound
	}
	return serrors.ErrRequestRejected
}

// envelope is the portion of a backend response body common to all endpoints.
type envelope struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Err     string `json:"error,omitempty"`
}

func (e envelope) message() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Detail != "":
		return e.Detail
	default:
		return e.Err
	}
}

// decodeResponse consumes a response, decoding a 2xx body into out and
// mapping anything else onto *Error. Successful responses with an explicit
// "success": false flag are treated as rejections as well.
func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "api.decodeResponse ReadAll")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		_ = json.Unmarshal(body, &env) // best effort, body may not be JSON
		return &Error{Status: resp.StatusCode, Message: env.message()}
	}

	if len(body) > 0 {
		var env envelope
		if err := json.Unmarshal(body, &env); err == nil && env.Success != nil && !*env.Success {
			return &Error{Status: resp.StatusCode, Message: env.message()}
		}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "api.decodeResponse Unmarshal")
	}
	return nil
}
