// Package netx holds small HTTP helpers that sit outside the RPC channel.
package netx

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/matthias/internal/common"
)

// Echo services that answer a GET with the caller's address as plain text.
var (
	IPv4URL = "https://ipv4.icanhazip.com/"
	IPv6URL = "https://ipv6.icanhazip.com/"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// PublicIPv4 asks the IPv4 echo service for this host's public address.
func PublicIPv4(ctx context.Context) (string, error) {
	return lookup(ctx, IPv4URL)
}

// PublicIPv6 asks the IPv6 echo service for this host's public address.
func PublicIPv6(ctx context.Context) (string, error) {
	return lookup(ctx, IPv6URL)
}

// lookup maps every failure to common.ErrConnectionRefused, keeping the
// underlying cause in the message.
func lookup(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrConnectionRefused, err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrConnectionRefused, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", common.ErrConnectionRefused, resp.Status)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrConnectionRefused, err)
	}

	addr := strings.TrimSpace(string(b))
	if net.ParseIP(addr) == nil {
		return "", fmt.Errorf("%w: unexpected body %q", common.ErrConnectionRefused, addr)
	}
	return addr, nil
}
