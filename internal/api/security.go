package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// signToken embeds the role claim so the auth middleware can build the
// request's auth context without a database round-trip.
func (s *Server) signToken(userID int64, username, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
