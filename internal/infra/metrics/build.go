package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(filerelayBuildInfo)
}

var filerelayBuildInfo = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "filerelay_build_info",
		Help: "Always 1; labels carry the running file relay version, commit and Go runtime.",
	},
	[]string{"version", "commit", "goversion"},
)

// SetBuildInfo is called once from serve with values injected via -ldflags.
func SetBuildInfo(version, commit string) {
	filerelayBuildInfo.Reset()
	filerelayBuildInfo.WithLabelValues(version, commit, runtime.Version()).Set(1)
}
