// Package metrics exposes live connections as Prometheus gauges. Grounded
// on the collector pattern of the example pack's TCPInfoCollector: a
// registry of tracked objects walked by Collect, each field described by a
// table of {desc, supplier} pairs rather than one hardcoded metric per
// field.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tcpstack/gotcp/pkg/tcp"
)

type gaugeInfo struct {
	desc     *prometheus.Desc
	supplier func(c *tcp.Connection) float64
}

type connEntry struct {
	conn   *tcp.Connection
	labels []string
}

// ConnectionCollector is a prometheus.Collector that reports live gauges
// for every tcp.Connection registered with it, labeled by the caller's own
// connectionLabels (e.g. remote address, interface name).
type ConnectionCollector struct {
	mu    sync.Mutex
	conns map[string]connEntry

	gauges []gaugeInfo
}

// NewConnectionCollector constructs a collector whose metrics are
// prefixed with prefix_ and labeled with connectionLabels (values supplied
// per-connection via Add) plus constLabels (fixed for the process).
func NewConnectionCollector(prefix string, connectionLabels []string, constLabels prometheus.Labels) *ConnectionCollector {
	c := &ConnectionCollector{conns: make(map[string]connEntry)}
	c.addGauges(prefix, connectionLabels, constLabels)
	return c
}

func (c *ConnectionCollector) addGauges(prefix string, labels []string, constLabels prometheus.Labels) {
	def := func(name, help string, supplier func(*tcp.Connection) float64) {
		c.gauges = append(c.gauges, gaugeInfo{
			desc:     prometheus.NewDesc(prefix+"_"+name, help, labels, constLabels),
			supplier: supplier,
		})
	}

	def("bytes_in_flight", "unacknowledged outbound sequence numbers", func(c *tcp.Connection) float64 {
		return float64(c.BytesInFlight())
	})
	def("unassembled_bytes", "inbound bytes held out of order", func(c *tcp.Connection) float64 {
		return float64(c.UnassembledBytes())
	})
	def("consecutive_retransmissions", "back-to-back retransmissions with no forward progress", func(c *tcp.Connection) float64 {
		return float64(c.ConsecutiveRetransmissions())
	})
	def("current_rto_ms", "current retransmission timeout", func(c *tcp.Connection) float64 {
		return float64(c.CurrentRTO())
	})
	def("ms_since_last_segment_received", "milliseconds since a segment last arrived", func(c *tcp.Connection) float64 {
		return float64(c.TimeSinceLastSegmentReceived())
	})
	def("remaining_inbound_capacity", "bytes the inbound stream can still buffer", func(c *tcp.Connection) float64 {
		return float64(c.RemainingInboundCapacity())
	})
	def("active", "1 if the connection still needs ticking, 0 otherwise", func(c *tcp.Connection) float64 {
		if c.Active() {
			return 1
		}
		return 0
	})
}

// Describe implements prometheus.Collector.
func (c *ConnectionCollector) Describe(descs chan<- *prometheus.Desc) {
	for _, g := range c.gauges {
		descs <- g.desc
	}
}

// Collect implements prometheus.Collector: it walks every registered
// connection and emits one gauge sample per metric, removing any
// connection that is no longer active.
func (c *ConnectionCollector) Collect(out chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, entry := range c.conns {
		if !entry.conn.Active() {
			delete(c.conns, id)
			continue
		}
		for _, g := range c.gauges {
			out <- prometheus.MustNewConstMetric(g.desc, prometheus.GaugeValue, g.supplier(entry.conn), entry.labels...)
		}
	}
}

// Add registers conn for scraping, labeled with labelValues in the order
// given to NewConnectionCollector.
func (c *ConnectionCollector) Add(conn *tcp.Connection, labelValues []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns[conn.ID()] = connEntry{conn: conn, labels: labelValues}
}

// Remove unregisters a connection, e.g. once its caller has torn it down.
func (c *ConnectionCollector) Remove(conn *tcp.Connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conns, conn.ID())
}
