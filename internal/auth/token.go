package auth

import (
	"encoding/json"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/medpractice-client/internal/domain"
)

// Claims are the unverified claims the client reads from its access token.
// The signature is the backend's business; the client only needs expiry and role.
type Claims struct {
	ExpiresAt time.Time
	HasExpiry bool
	Subject   string
	Role      domain.Role

	// expMillis keeps the raw claim so comparisons never overflow int64.
	expMillis float64
}

// ParseClaims decodes the payload of a three-part token without verifying it.
func ParseClaims(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, jwt.ErrTokenMalformed
	}

	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return Claims{}, jwt.ErrTokenMalformed
	}
	raw := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Claims{}, jwt.ErrTokenMalformed
	}

	var claims Claims
	if exp, present := raw["exp"]; present {
		seconds, ok := exp.(float64)
		if !ok {
			return Claims{}, jwt.ErrInvalidType
		}
		claims.HasExpiry = true
		claims.expMillis = seconds * 1000
		claims.ExpiresAt = time.UnixMilli(clampMillis(claims.expMillis))
	}
	claims.Subject, _ = raw["sub"].(string)
	claims.Role = roleClaim(raw)
	return claims, nil
}

// IsExpired reports whether token is expired at now: exp*1000 < now in
// milliseconds. Undecodable tokens are expired; a token without exp is not.
func IsExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}
	claims, err := ParseClaims(token)
	if err != nil {
		return true
	}
	if !claims.HasExpiry {
		return false
	}
	return claims.expMillis < float64(now.UnixMilli())
}

// ExpiresWithin reports whether a decodable token with an expiry expires
// before now+d.
func ExpiresWithin(token string, now time.Time, d time.Duration) bool {
	claims, err := ParseClaims(token)
	if err != nil || !claims.HasExpiry {
		return false
	}
	return claims.expMillis < float64(now.Add(d).UnixMilli())
}

// maxExpiryMillis is the last instant time.Time still encodes as JSON.
var maxExpiryMillis = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC).UnixMilli()

func clampMillis(ms float64) int64 {
	switch {
	case ms >= float64(maxExpiryMillis):
		return maxExpiryMillis
	case ms <= 0:
		return 0
	}
	return int64(ms)
}

// roleClaim accepts the shapes seen in practice: "roles" as list or
// comma-separated string, "role", or "userType".
func roleClaim(raw jwt.MapClaims) domain.Role {
	switch roles := raw["roles"].(type) {
	case []interface{}:
		for _, r := range roles {
			if s, ok := r.(string); ok {
				if role := domain.ParseRole(s); role != "" {
					return role
				}
			}
		}
	case string:
		for _, s := range strings.Split(roles, ",") {
			if role := domain.ParseRole(s); role != "" {
				return role
			}
		}
	}
	for _, key := range []string{"role", "userType"} {
		if s, ok := raw[key].(string); ok {
			if role := domain.ParseRole(s); role != "" {
				return role
			}
		}
	}
	return ""
}
