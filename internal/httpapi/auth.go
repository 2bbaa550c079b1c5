package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid or missing token")

// Authenticator verifies bearer tokens issued by the auth service. Issuance
// is not this service's concern; only the shared HMAC secret is.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an Authenticator for the shared signing secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// UserID extracts and verifies the caller's user id from the Authorization
// header.
func (a *Authenticator) UserID(r *http.Request) (string, error) {
	raw := parseBearerToken(r.Header.Get("Authorization"))
	if raw == "" {
		return "", errInvalidToken
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errInvalidToken
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return "", errInvalidToken
	}
	return id, nil
}

func parseBearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// authenticate resolves the caller or writes a 401 and reports false.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := s.auth.UserID(r)
	if err != nil {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}
