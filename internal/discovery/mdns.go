// Package discovery advertises and finds relays on the local network via
// multicast DNS, so peers on a LAN can join a board without exchanging
// addresses by hand.
package discovery

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"

	"pkt.systems/pslog"
)

// ServiceType is the mDNS service identity relays announce under.
const ServiceType = "_scrawl._tcp"

const lookupTimeout = 3 * time.Second

// Advertiser announces a running relay until Close is called.
type Advertiser struct {
	server *mdns.Server
	log    pslog.Logger
}

// Advertise announces a relay listening on port.
func Advertise(ctx context.Context, port int) (*Advertiser, error) {
	log := pslog.Ctx(ctx)
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("discovery hostname: %w", err)
	}
	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, []string{"scrawl relay"})
	if err != nil {
		return nil, fmt.Errorf("discovery service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("discovery server: %w", err)
	}
	log.Info("discovery advertising", "service", ServiceType, "instance", host, "port", port)
	return &Advertiser{server: server, log: log}, nil
}

// Close stops the announcement.
func (a *Advertiser) Close() error {
	a.log.Debug("discovery advertising stopped")
	return a.server.Shutdown()
}

// Browse returns host:port addresses of relays currently announcing on the
// local network. It blocks for up to lookupTimeout, or until ctx is
// cancelled, whichever comes first.
func Browse(ctx context.Context) ([]string, error) {
	log := pslog.Ctx(ctx)
	entries := make(chan *mdns.ServiceEntry, 16)
	results := make(chan []string, 1)
	go func() {
		var addrs []string
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			addr := net.JoinHostPort(e.AddrV4.String(), fmt.Sprintf("%d", e.Port))
			log.Debug("discovery found relay", "addr", addr, "name", e.Name)
			addrs = append(addrs, addr)
		}
		results <- addrs
	}()
	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = lookupTimeout
	errs := make(chan error, 1)
	go func() {
		err := mdns.Query(params)
		close(entries)
		errs <- err
	}()
	select {
	case err := <-errs:
		if err != nil {
			return nil, fmt.Errorf("discovery lookup: %w", err)
		}
		return <-results, nil
	case <-ctx.Done():
		// The query goroutine finishes on its own timeout; its entries are
		// discarded by the collector.
		return nil, ctx.Err()
	}
}
