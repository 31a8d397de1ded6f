package net

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"localboard/internal/logging"
)

// Scheme prefixes share links handed from a host to its guests.
const Scheme = "localboard"

// ErrNotShareLink is returned when parsing a string that is not a share link.
var ErrNotShareLink = errors.New("not a localboard link")

// GetOutgoingIP finds the preferred local IP address for the host to share.
func GetOutgoingIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// no route out; look at the interfaces instead
		return localIPFallback()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

func localIPFallback() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", fmt.Errorf("could not list interface addresses: %w", err)
	}
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.String(), nil
		}
	}
	logging.Logger().Warn("no suitable local IP found, share link uses loopback")
	return "127.0.0.1", nil
}

// ShareLink builds localboard://<host>:<port>/<room>.
func ShareLink(host string, port int, room string) string {
	u := url.URL{Scheme: Scheme, Host: net.JoinHostPort(host, strconv.Itoa(port)), Path: "/" + room}
	return u.String()
}

// IsShareLink reports whether s looks like a share link.
func IsShareLink(s string) bool {
	return strings.HasPrefix(s, Scheme+"://")
}

// ParseShareLink splits a share link into the hub address and room. Both
// must be present.
func ParseShareLink(link string) (addr, room string, err error) {
	if !IsShareLink(link) {
		return "", "", fmt.Errorf("%q: %w", link, ErrNotShareLink)
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", "", fmt.Errorf("parse share link: %w", err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("%q has no host: %w", link, ErrNotShareLink)
	}
	room = strings.Trim(u.Path, "/")
	if room == "" {
		return "", "", fmt.Errorf("%q has no room: %w", link, ErrNotShareLink)
	}
	return u.Host, room, nil
}
