package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry returns the earlier of the upstream JWT's exp claim and
// fallback. Opaque tokens, tokens without exp and tokens already expired at
// now get fallback.
//
// The signature is not checked: the storefront does not hold the issuer's
// key and only uses the claim to bound its own session lifetime.
func TokenExpiry(token string, now, fallback time.Time) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fallback
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback
	}
	if !exp.After(now) || exp.After(fallback) {
		return fallback
	}
	return exp.Time
}
