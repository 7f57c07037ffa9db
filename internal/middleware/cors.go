package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows browser calls from origins. An empty list allows any origin.
func CORS(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Backup-Passphrase"},
		ExposedHeaders: []string{"X-Plateful-Fallback"},
	}
	if len(origins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return cors.New(opts).Handler
}
