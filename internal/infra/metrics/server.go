package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-file-relay/internal/infra/api"
)

// NewServer returns the admin listener serving /metrics on port.
func NewServer(port int, logger *zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           api.Chain(mux, api.TraceID(), api.Recover(logger)),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
