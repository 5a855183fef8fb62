// Package signer computes the deterministic request-signature hashes the
// web and mobile vendor clients attach to outgoing API calls. Neither
// scheme involves a secret key: they exist to bind a request's query
// parameters to a session value (the web birthday cookie, the mobile user
// token) so a replayed or tampered request fails server-side validation.
package signer

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"sort"
)

// hashKV hashes a single key/value pair as hex(SHA256(key)) + "_" +
// hex(SHA512(value)).
func hashKV(key, value string) string {
	k := sha256.Sum256([]byte(key))
	v := sha512.Sum512([]byte(value))
	return fmt.Sprintf("%x_%x", k, v)
}

// WebSign computes the web-client request signature.
//
// Every query parameter is hashed with hashKV, the hashes are joined with
// commas and SHA256'd, then that digest is concatenated (as hex) with the
// hashKV of the session's birthday cookie value and its expiry, and the
// whole thing is SHA512'd.
func WebSign(queryParams map[string]string, birthday, birthdayExpires string) string {
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	joined := ""
	for i, k := range keys {
		if i > 0 {
			joined += ","
		}
		joined += hashKV(k, queryParams[k])
	}

	qiHashed := sha256.Sum256([]byte(joined))
	birthExpireHash := hashKV(birthday, birthdayExpires)

	merged := sha512.Sum512([]byte(fmt.Sprintf("%x%s", qiHashed, birthExpireHash)))
	return fmt.Sprintf("%x", merged)
}

// MobileSign computes the mobile-client request signature.
//
// userToken is inserted into the parameter set under the key "hash_key",
// then every value (including userToken's own) is MD5'd and the digests
// are fed, in ascending key order, into a single running SHA256.
func MobileSign(queryParams map[string]string, userToken string) string {
	merged := make(map[string]string, len(queryParams)+1)
	for k, v := range queryParams {
		merged[k] = v
	}
	merged["hash_key"] = userToken

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		v := md5.Sum([]byte(merged[k]))
		h.Write(v[:])
	}

	return fmt.Sprintf("%x", h.Sum(nil))
}
