package net

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"

	"localboard/internal/logging"
)

const ServiceType = "_localboard._tcp"

const roomField = "room="

// Host is a hub found on the local network.
type Host struct {
	Name string
	Addr string
	Room string
}

// Link returns the share link for h.
func (h Host) Link() string {
	return Scheme + "://" + h.Addr + "/" + h.Room
}

// Advertise announces a hub serving room on port. Shut the returned server
// down to stop advertising.
func Advertise(port int, room string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(
		host,
		ServiceType,
		"",
		"",
		port,
		nil,
		[]string{"LocalBoard", roomField + room},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	logging.Logger().Info("advertising hub", "service", ServiceType, "port", port, "room", room)
	return server, nil
}

// Browse looks for advertised hubs for timeout and returns what it found.
func Browse(timeout time.Duration) ([]Host, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan []Host)
	go func() {
		var hosts []Host
		for e := range entries {
			if h, ok := hostFromEntry(e); ok {
				hosts = append(hosts, h)
			}
		}
		done <- hosts
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	hosts := <-done
	if err != nil {
		return hosts, fmt.Errorf("mDNS lookup failed: %w", err)
	}
	logging.Logger().Debug("browse finished", "found", len(hosts))
	return hosts, nil
}

func hostFromEntry(e *mdns.ServiceEntry) (Host, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Host{}, false
	}
	h := Host{Name: e.Host, Addr: fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port)}
	for _, field := range e.InfoFields {
		if room, ok := strings.CutPrefix(field, roomField); ok {
			h.Room = room
		}
	}
	return h, true
}
