package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Write timeout stays above the dispatch budget
// so a slow transaction surfaces as a domain error, not a dropped
// connection.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
