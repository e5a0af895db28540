package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once
	// pending collects every relay and bot collector declared in this package.
	pending []prometheus.Collector
)

func register(cs ...prometheus.Collector) {
	pending = append(pending, cs...)
}

// MustRegister publishes the relay bot collectors on the default registry.
// Both serve and tests call it; only the first call registers.
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(pending...)
	})
}

// norm folds label values so "/Price" and "price" share a series.
func norm(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "/"))
}
