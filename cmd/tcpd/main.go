// Command tcpd runs a single user-space TCP connection over a TUN device:
// it reads raw IPv4 datagrams from the tunnel, hands TCP segments to a
// Connection, and writes whatever the Connection queues back out.
package main

import (
	"encoding/binary"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tcpstack/gotcp/internal/config"
	"github.com/tcpstack/gotcp/internal/tuntap"
	"github.com/tcpstack/gotcp/pkg/logger"
	"github.com/tcpstack/gotcp/pkg/metrics"
	"github.com/tcpstack/gotcp/pkg/netif"
	"github.com/tcpstack/gotcp/pkg/tcp"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional, defaults apply otherwise)")
	listen := flag.Bool("listen", false, "wait for an incoming SYN instead of sending one")
	flag.Parse()

	logger.Banner("gotcp", version)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Fatal("loading config: %v", err)
		}
		cfg = loaded
	}

	log := logger.New(cfg.LogLevelValue())

	dev, err := tuntap.Open(cfg.TUNDevice)
	if err != nil {
		logger.Fatal("opening TUN device: %v", err)
	}
	defer dev.Close()
	log.Infof("opened TUN device %s", dev.Name())

	localIP, err := parseIPv4(cfg.LocalIP)
	if err != nil {
		logger.Fatal("parsing local_ip: %v", err)
	}
	peerIP, err := parseIPv4(cfg.PeerIP)
	if err != nil {
		logger.Fatal("parsing peer_ip: %v", err)
	}

	conn := tcp.NewConnection(cfg.TCPConfig(), log)
	collector := metrics.NewConnectionCollector("gotcp", []string{"conn_id"}, nil)
	collector.Add(conn, []string{conn.ID()})
	prometheus.MustRegister(collector)

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, log)
	}

	if !*listen {
		conn.Connect()
		flushOut(conn, dev, localIP, peerIP, log)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	readErr := make(chan error, 1)
	inbound := make(chan []byte, 16)
	go readLoop(dev, inbound, readErr)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case sig := <-sigCh:
			log.Warnf("received signal %v, closing connection", sig)
			conn.Close()
			flushOut(conn, dev, localIP, peerIP, log)
			return

		case err := <-readErr:
			log.Errorf("TUN read error: %v", err)
			return

		case dgram := <-inbound:
			parsed, ok := netif.ParseIPv4Datagram(dgram)
			if !ok || parsed.Protocol != netif.ProtocolTCP {
				continue
			}
			seg, err := tcp.ParseSegment(parsed.Payload)
			if err != nil {
				log.Debugf("dropping malformed segment: %v", err)
				continue
			}
			conn.SegmentReceived(seg)
			flushOut(conn, dev, localIP, peerIP, log)

		case now := <-ticker.C:
			conn.Tick(uint64(now.Sub(last).Milliseconds()))
			last = now
			flushOut(conn, dev, localIP, peerIP, log)
			if !conn.Active() {
				log.Successf("connection finished")
				return
			}
		}
	}
}

func readLoop(dev tuntap.Device, out chan<- []byte, errs chan<- error) {
	for {
		dgram, err := dev.Read()
		if err != nil {
			errs <- err
			return
		}
		out <- dgram
	}
}

func flushOut(conn *tcp.Connection, dev tuntap.Device, localIP, peerIP uint32, log *logger.Logger) {
	for _, seg := range conn.PopSegmentsOut() {
		wire := seg.Serialize(0, 0)
		dgram := netif.BuildIPv4Datagram(localIP, peerIP, netif.ProtocolTCP, 64, wire)
		if err := dev.Write(dgram); err != nil {
			log.Errorf("writing to TUN device: %v", err)
		}
	}
}

func serveMetrics(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Infof("serving metrics on %s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("metrics server: %v", err)
	}
}

func parseIPv4(s string) (uint32, error) {
	ip4 := net.ParseIP(s).To4()
	if ip4 == nil {
		return 0, os.ErrInvalid
	}
	return binary.BigEndian.Uint32(ip4), nil
}
