package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := s.users.UserByUsername(ctx, in.Username)
	if err != nil || strings.ToLower(strings.TrimSpace(u.Status)) != "active" {
		respondError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := s.signToken(u.ID, u.Username, u.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"user": map[string]any{
			"id":       u.ID,
			"username": u.Username,
			"fullName": u.FullName,
			"role":     u.Role,
		},
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid auth context")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user": map[string]any{
			"id":       auth.UserID,
			"username": auth.Username,
			"role":     auth.Role,
		},
	})
}
