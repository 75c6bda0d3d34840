package auth

import (
	"net/http"
	"strings"
)

// ExtractBearerToken pulls the bearer token off an HTTP request. The token may
// arrive in the Authorization header or, for websocket clients that cannot set
// headers, in the "token" query parameter.
func ExtractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", ErrInvalidToken
		}
		return parts[1], nil
	}
	if tok := r.URL.Query().Get("token"); tok != "" {
		return tok, nil
	}
	return "", ErrMissingToken
}
