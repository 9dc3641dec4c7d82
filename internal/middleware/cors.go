package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"views-api/pkg/logger"
)

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// DefaultCORSConfig returns the permissive configuration the counter widget
// needs: any origin may GET or POST counts.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	}
}

// CORS creates a CORS middleware. OPTIONS preflights are answered directly
// with 204 and no body.
func CORS(config *CORSConfig, log *logger.Logger) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultCORSConfig()
	}

	allowedOrigins := make(map[string]bool)
	for _, origin := range config.AllowedOrigins {
		allowedOrigins[origin] = true
	}

	allowAny := allowedOrigins["*"]
	allowedMethods := strings.Join(config.AllowedMethods, ", ")
	allowedHeaders := strings.Join(config.AllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			switch {
			case allowAny && origin != "":
				w.Header().Set("Access-Control-Allow-Origin", origin)
			case allowAny:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowedOrigins[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}

			if allowedMethods != "" {
				w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
			}
			if allowedHeaders != "" {
				w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
			}
			if config.MaxAge > 0 {
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
			}

			if r.Method == http.MethodOptions {
				log.WithFields(map[string]interface{}{
					"origin": origin,
					"path":   r.URL.Path,
				}).Debug("CORS preflight")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
