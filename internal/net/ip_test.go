package net

import (
	"net"
	"testing"

	"github.com/hashicorp/mdns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareLinkRoundTrip(t *testing.T) {
	link := ShareLink("192.168.1.20", 8888, "main")
	assert.Equal(t, "localboard://192.168.1.20:8888/main", link)
	assert.True(t, IsShareLink(link))

	addr, room, err := ParseShareLink(link)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20:8888", addr)
	assert.Equal(t, "main", room)
}

func TestParseShareLink(t *testing.T) {
	tests := []struct {
		link     string
		addr     string
		room     string
		notShare bool
	}{
		{link: "localboard://10.0.0.1:9000", notShare: true},
		{link: "localboard://10.0.0.1:9000/", notShare: true},
		{link: "localboard://10.0.0.1:9000//", notShare: true},
		{link: "localboard://host:1/design", addr: "host:1", room: "design"},
		{link: "http://10.0.0.1:9000/main", notShare: true},
		{link: "localboard://", notShare: true},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			addr, room, err := ParseShareLink(tt.link)
			if tt.notShare {
				assert.ErrorIs(t, err, ErrNotShareLink)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.addr, addr)
			assert.Equal(t, tt.room, room)
		})
	}
}

func TestHostFromEntry(t *testing.T) {
	h, ok := hostFromEntry(&mdns.ServiceEntry{
		Host:       "laptop.local.",
		AddrV4:     net.IPv4(10, 0, 0, 7),
		Port:       8888,
		InfoFields: []string{"LocalBoard", "room=sketch"},
	})
	require.True(t, ok)
	assert.Equal(t, Host{Name: "laptop.local.", Addr: "10.0.0.7:8888", Room: "sketch"}, h)
	assert.Equal(t, "localboard://10.0.0.7:8888/sketch", h.Link())

	_, ok = hostFromEntry(&mdns.ServiceEntry{Host: "v6only", Port: 8888})
	assert.False(t, ok)
}
