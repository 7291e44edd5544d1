package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"relaybackend/utils"
)

// AdminAuthMiddleware authenticates admin API callers with a static bearer key
type AdminAuthMiddleware struct {
	apiKey string
}

func NewAdminAuthMiddleware(apiKey string) *AdminAuthMiddleware {
	utils.AssertInvariant(apiKey != "", "admin API key cannot be empty")
	return &AdminAuthMiddleware{apiKey: apiKey}
}

// WithAuth wraps an HTTP handler with bearer key authentication
func (m *AdminAuthMiddleware) WithAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Printf("❌ Missing Authorization header from %s", r.RemoteAddr)
			m.writeErrorResponse(w, "missing authorization header", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Printf("❌ Invalid Authorization header format from %s", r.RemoteAddr)
			m.writeErrorResponse(w, "invalid authorization header format", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(m.apiKey)) != 1 {
			log.Printf("❌ Invalid admin API key from %s", r.RemoteAddr)
			m.writeErrorResponse(w, "invalid api key", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

func (m *AdminAuthMiddleware) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Printf("❌ Failed to encode error response: %v", err)
	}
}
