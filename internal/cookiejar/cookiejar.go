// Package cookiejar models the web vendor client's session cookies. Each
// cookie's value on the wire is a URL-encoded JSON object rather than a
// bare string, so a round trip through here needs both a URL decode and a
// JSON decode (and the reverse on the way out).
package cookiejar

import (
	"encoding/json"
	"net/url"

	verrors "mangavault/pkg/errors"
)

// Entry is one session cookie's value and expiry, as carried inside the
// URL-encoded JSON blob that is the actual cookie value on the wire.
type Entry struct {
	Value   string `json:"value"`
	Expires int64  `json:"expires"`
}

// DecodeEntry parses a raw cookie value (URL-encoded JSON) into an Entry.
func DecodeEntry(raw string) (Entry, error) {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return Entry{}, verrors.ErrResponseParse.Wrap(err)
	}

	var e Entry
	if err := json.Unmarshal([]byte(decoded), &e); err != nil {
		return Entry{}, verrors.ErrResponseParse.Wrap(err)
	}

	return e, nil
}

// EncodeEntry serializes an Entry back to its raw, URL-encoded cookie
// value form.
func EncodeEntry(e Entry) (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", verrors.ErrInternal.Wrap(err)
	}
	return url.QueryEscape(string(data)), nil
}

// Jar is the full set of named session cookies a web-variant vendor
// account needs to replay its session: an opaque session token plus the
// three informational entries the account was created with.
type Jar struct {
	// SessionToken is the vendor's bearer/session cookie (e.g. the
	// upstream's "uwt"); it carries no structured value of its own.
	SessionToken string   `json:"session_token"`
	Birthday     Entry    `json:"birthday"`
	TermsOfServiceAdult Entry `json:"terms_of_service_adult"`
	PrivacyPolicy       Entry `json:"privacy_policy"`
}
