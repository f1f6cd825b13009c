// Package authtest mints access tokens for tests.
package authtest

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("medclient-test-secret")

// Token returns an HS256 token expiring at exp carrying role as "roles".
// A zero exp omits the claim.
func Token(t testing.TB, exp time.Time, role string) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "tester"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	if role != "" {
		claims["roles"] = []string{"ROLE_" + role}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// Valid is a token for role valid for an hour.
func Valid(t testing.TB, role string) string {
	return Token(t, time.Now().Add(time.Hour), role)
}

// Expired is a token for role that expired a minute ago.
func Expired(t testing.TB, role string) string {
	return Token(t, time.Now().Add(-time.Minute), role)
}
