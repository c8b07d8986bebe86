package api

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"
	"time"
)

// DefaultDialTimeout bounds a reachability dial.
const DefaultDialTimeout = 3 * time.Second

// DialReachability considers the network connected when a TCP connection to
// the API host can be opened.
type DialReachability struct {
	Address string
	Timeout time.Duration
}

// NewDialReachability derives the dial address from the API base URL.
// It returns nil when the URL has no host, which disables the pre-check.
func NewDialReachability(baseURL string) *DialReachability {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return &DialReachability{
		Address: net.JoinHostPort(u.Hostname(), port),
		Timeout: DefaultDialTimeout,
	}
}

// IsConnected dials the address once. A refused connection still proves the
// network is up; only the API process is down. A nil receiver has nothing to
// dial and reports connected.
func (r *DialReachability) IsConnected(ctx context.Context) bool {
	if r == nil {
		return true
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", r.Address)
	if err != nil {
		return errors.Is(err, syscall.ECONNREFUSED)
	}
	_ = conn.Close()
	return true
}
