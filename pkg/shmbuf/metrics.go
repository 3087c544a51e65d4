package shmbuf

import "github.com/prometheus/client_golang/prometheus"

var (
	allocationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shmbuf_allocations_total",
		Help: "Total number of shared memory regions allocated.",
	})
	releasesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shmbuf_releases_total",
		Help: "Total number of shared memory regions released.",
	})
	liveRegions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shmbuf_live_regions",
		Help: "Number of currently mapped shared memory regions.",
	})
	mappedBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shmbuf_mapped_bytes",
		Help: "Bytes currently mapped across live regions.",
	})
	savesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shmbuf_saves_total",
		Help: "Total number of whole-region file dumps.",
	})
	loadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shmbuf_loads_total",
		Help: "Total number of buffers reconstructed from files.",
	})
)

func init() {
	prometheus.MustRegister(
		allocationsTotal,
		releasesTotal,
		liveRegions,
		mappedBytes,
		savesTotal,
		loadsTotal,
	)
}
