package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server. writeTimeout must cover the slowest handler,
// which is a submission running to its own deadline.
func New(addr string, handler http.Handler, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}
}
