package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/outofforest/flashring"
)

// Collector turns ring events into prometheus metrics. Wear leveling is only
// verifiable when erase pressure is visible, so payload writes are labeled
// per sector.
type Collector struct {
	pushes       prometheus.Counter
	pops         prometheus.Counter
	compactions  prometheus.Counter
	reclaimed    prometheus.Counter
	formats      prometheus.Counter
	corrupt      prometheus.Gauge
	sectorWrites *prometheus.CounterVec
}

// NewCollector registers the ring metric set and returns the collector. Its
// Observe method plugs into flashring.New as the observer.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		pushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flashring_pushes_total",
			Help: "Total number of payloads pushed to flash",
		}),
		pops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flashring_pops_total",
			Help: "Total number of payloads popped from flash",
		}),
		compactions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flashring_compactions_total",
			Help: "Total number of bulk reclamations of consumed sectors",
		}),
		reclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flashring_reclaimed_sectors_total",
			Help: "Total number of sectors reclaimed by compactions",
		}),
		formats: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flashring_formats_total",
			Help: "Total number of automatic formats of the status region",
		}),
		corrupt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "flashring_corrupt_sectors",
			Help: "Number of sectors with a status byte outside the defined values",
		}),
		sectorWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flashring_sector_writes_total",
			Help: "Payload writes per data sector, a proxy for wear",
		}, []string{"sector"}),
	}
	reg.MustRegister(c.pushes, c.pops, c.compactions, c.reclaimed, c.formats, c.corrupt, c.sectorWrites)
	return c
}

// Observe implements the ring observer.
func (c *Collector) Observe(e flashring.Event) {
	switch e.Kind {
	case flashring.EventPushed:
		c.pushes.Inc()
		c.sectorWrites.WithLabelValues(strconv.FormatInt(e.Sector, 10)).Inc()
	case flashring.EventPopped:
		c.pops.Inc()
	case flashring.EventCompacted:
		c.compactions.Inc()
		c.reclaimed.Add(float64(e.Count))
	case flashring.EventFormatted:
		c.formats.Inc()
	case flashring.EventCorruptDetected:
		c.corrupt.Set(float64(e.Count))
	}
}
