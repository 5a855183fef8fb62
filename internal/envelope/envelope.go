// Package envelope implements the generic "failable response" parsing
// pattern every vendor client uses: decode the response body once as a
// vendor-specific error envelope, ask it whether the call actually
// succeeded, and only then decode the same bytes into the caller's target
// type. A vendor that returns HTTP 200 with an application-level failure
// buried in the JSON body is the common case this guards against.
package envelope

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/protobuf/encoding/protowire"

	verrors "mangavault/pkg/errors"
)

// FailableResponse is implemented by a vendor's error-envelope type. It is
// decoded first; RaiseForStatus reports whether the call should be treated
// as failed even though the transport succeeded.
type FailableResponse interface {
	RaiseForStatus() error
	FormatError() string
}

// ParseError carries enough context about a malformed response body to
// debug it after the fact, without leaking the full body into a log line
// by default.
type ParseError struct {
	StatusCode int
	URL        string
	Body       string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("envelope: parse response (status=%d url=%s): %v", e.StatusCode, e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ApiError wraps a vendor-reported application-level failure, after its
// envelope's RaiseForStatus returned an error.
type ApiError struct {
	Message string
	Cause   error
}

func (e *ApiError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("envelope: vendor error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("envelope: vendor error: %s", e.Message)
}

func (e *ApiError) Unwrap() error { return e.Cause }

// ParseJSON decodes resp's body directly into a T, with no failable
// envelope check. Used for endpoints that only ever return the happy-path
// shape (e.g. image descrambling metadata).
func ParseJSON[T any](resp *http.Response) (T, error) {
	var zero T

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, verrors.ErrTransport.Wrap(err)
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, verrors.ErrResponseParse.Wrap(&ParseError{
			StatusCode: resp.StatusCode,
			URL:        resp.Request.URL.String(),
			Body:       string(body),
			Err:        err,
		})
	}

	return out, nil
}

// ParseFailableJSON decodes resp's body as E first. If E.RaiseForStatus
// reports an error, that is returned as an *ApiError and T is never
// touched. Otherwise the same bytes are re-decoded into T.
func ParseFailableJSON[T any, E FailableResponse](resp *http.Response) (T, error) {
	var zero T

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, verrors.ErrTransport.Wrap(err)
	}

	var envl E
	if err := json.Unmarshal(body, &envl); err != nil {
		return zero, verrors.ErrResponseParse.Wrap(&ParseError{
			StatusCode: resp.StatusCode,
			URL:        resp.Request.URL.String(),
			Body:       string(body),
			Err:        err,
		})
	}

	if raiseErr := envl.RaiseForStatus(); raiseErr != nil {
		return zero, verrors.ErrUpstreamApplication.Wrap(&ApiError{
			Message: envl.FormatError(),
			Cause:   raiseErr,
		})
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, verrors.ErrResponseParse.Wrap(&ParseError{
			StatusCode: resp.StatusCode,
			URL:        resp.Request.URL.String(),
			Body:       string(body),
			Err:        err,
		})
	}

	return out, nil
}

// ProtobufMessage is implemented by any type that can encode/decode itself
// on a length-delimited protowire stream. Vendor protobuf payloads in this
// module are small enough that a hand-rolled field-by-field (de)serializer
// per message type is clearer than depending on protoc-generated bindings.
type ProtobufMessage interface {
	MarshalWire() []byte
	UnmarshalWire([]byte) error
}

// ParseProtobuf decodes a successful response body as T via protowire. A
// non-2xx status is reported without attempting to decode the body, since
// vendors that speak protobuf on success usually speak plain text or HTML
// on failure.
func ParseProtobuf[T ProtobufMessage](resp *http.Response, out T) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return verrors.ErrUpstreamApplication.WithDetails("status_code", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return verrors.ErrTransport.Wrap(err)
	}

	if err := out.UnmarshalWire(body); err != nil {
		return verrors.ErrResponseParse.Wrap(&ParseError{
			StatusCode: resp.StatusCode,
			URL:        resp.Request.URL.String(),
			Err:        err,
		})
	}

	return nil
}

// AppendTag writes a protowire field tag for use by ProtobufMessage
// implementations, kept here so every vendor message encodes tags the same
// way rather than importing protowire directly in a dozen places.
func AppendTag(buf []byte, field protowire.Number, typ protowire.Type) []byte {
	return protowire.AppendTag(buf, field, typ)
}
