package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// authContext carries the authenticated caller through a single request.
// It is rebuilt from token claims on every request; there is no process
// level session state.
type authContext struct {
	UserID   int64
	Username string
	Role     string
}

type ctxKey string

const (
	authContextKey ctxKey = "auth"
	requestIDKey   ctxKey = "request_id"
)

const adminRole = "admin"

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) authRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, errors.New("unexpected signing method")
			}
			return s.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		uid, err := parseTokenUserID(claims["sub"])
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token subject")
			return
		}

		auth := authContext{
			UserID:   uid,
			Username: fmt.Sprint(claims["username"]),
			Role:     strings.ToLower(strings.TrimSpace(fmt.Sprint(claims["role"]))),
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authContextKey, auth)))
	})
}

func (s *Server) adminRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth, ok := authFrom(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "missing auth context")
			return
		}
		if auth.Role != adminRole {
			respondError(w, http.StatusForbidden, "administrator role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func authFrom(r *http.Request) (authContext, bool) {
	auth, ok := r.Context().Value(authContextKey).(authContext)
	return auth, ok
}

func requestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

func parseTokenUserID(raw any) (int64, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, errors.New("non-integer subject")
		}
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		return strconv.ParseInt(fmt.Sprint(raw), 10, 64)
	}
}
