package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server. The write timeout leaves headroom over the
// pipeline's own cap so a filter response is never cut off.
func New(addr string, handler http.Handler, pipelineTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      pipelineTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
