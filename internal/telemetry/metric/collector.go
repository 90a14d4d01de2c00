package metric

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GrantCounter reports the number of stored access grants.
type GrantCounter interface {
	Count(ctx context.Context) (int, error)
}

// Collector exports values read from storage at scrape time.
type Collector struct {
	grants  GrantCounter
	timeout time.Duration

	grantsDesc *prometheus.Desc
	upDesc     *prometheus.Desc
}

// NewCollector creates a collector over grants.
func NewCollector(grants GrantCounter) *Collector {
	return &Collector{
		grants:  grants,
		timeout: 2 * time.Second,
		grantsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "access", "grants"),
			"Number of e-mail addresses with export access.",
			nil, nil,
		),
		upDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "access", "store_up"),
			"Whether the access store answered the last scrape (1) or not (0).",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.grantsDesc
	ch <- c.upDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	n, err := c.grants.Count(ctx)
	if err != nil {
		ch <- prometheus.MustNewConstMetric(c.upDesc, prometheus.GaugeValue, 0)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.upDesc, prometheus.GaugeValue, 1)
	ch <- prometheus.MustNewConstMetric(c.grantsDesc, prometheus.GaugeValue, float64(n))
}
