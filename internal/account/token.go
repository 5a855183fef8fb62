package account

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiryHint best-effort decodes rawToken as a JWT and returns its
// "exp" claim, without verifying the signature — vendors sign their own
// tokens with keys we don't have, so the only use for this is populating
// Account.TokenExpiry as an informational hint for the batch loop ("this
// session is probably stale, re-authenticate"), never as an authorization
// check.
func TokenExpiryHint(rawToken string) (time.Time, bool) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(rawToken, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}
