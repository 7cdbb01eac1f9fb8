package session

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// Claims mirrors the authorization claims the API transmits via its
// JWTs. The client never verifies signatures (that is the server's
// job); claims are decoded only for display.
type Claims struct {
	jwt.StandardClaims
	Username string   `json:"username,omitempty"`
	Name     string   `json:"name,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// DecodeClaims parses the token payload without verifying it.
func DecodeClaims(token string) (*Claims, error) {
	claims := new(Claims)
	parser := new(jwt.Parser)
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(err, "parsing token claims")
	}
	return claims, nil
}
