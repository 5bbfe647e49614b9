// Package request holds helpers for reading HTTP request input.
package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSON decodes the request body into v. An empty body yields
// ErrEmptyBody; trailing data after the first JSON value is rejected.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)

	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return ErrEmptyBody
	}
	if err != nil {
		return err
	}

	if dec.More() {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}
