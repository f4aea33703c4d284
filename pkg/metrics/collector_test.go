package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tcpstack/gotcp/pkg/tcp"
)

func TestConnectionCollectorDescribe(t *testing.T) {
	c := NewConnectionCollector("gotcp", []string{"conn_id"}, nil)

	descs := make(chan *prometheus.Desc, 64)
	c.Describe(descs)
	close(descs)

	n := 0
	for range descs {
		n++
	}
	if n == 0 {
		t.Errorf("expected at least one metric descriptor")
	}
}

func TestConnectionCollectorCollectsRegisteredConnections(t *testing.T) {
	c := NewConnectionCollector("gotcp", []string{"conn_id"}, nil)
	conn := tcp.NewConnection(tcp.NewConfig(), nil)
	conn.Connect()

	c.Add(conn, []string{conn.ID()})

	metrics := make(chan prometheus.Metric, 64)
	c.Collect(metrics)
	close(metrics)

	n := 0
	for range metrics {
		n++
	}
	if n == 0 {
		t.Errorf("expected metrics for the registered connection")
	}
}

func TestConnectionCollectorRemove(t *testing.T) {
	c := NewConnectionCollector("gotcp", []string{"conn_id"}, nil)
	conn := tcp.NewConnection(tcp.NewConfig(), nil)
	conn.Connect()

	c.Add(conn, []string{conn.ID()})
	c.Remove(conn)

	metrics := make(chan prometheus.Metric, 64)
	c.Collect(metrics)
	close(metrics)

	n := 0
	for range metrics {
		n++
	}
	if n != 0 {
		t.Errorf("expected no metrics after removing the connection, got %d", n)
	}
}
