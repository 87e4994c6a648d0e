package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/matthias/internal/netx"
)

// lookupIPv4 and lookupIPv6 are seams for tests.
var (
	lookupIPv4 = netx.PublicIPv4
	lookupIPv6 = netx.PublicIPv6
)

// PublicIP prints the addresses other users can reach this host on when it
// runs a server.
func (a *App) PublicIP(ctx context.Context) error {
	v4, err4 := lookupIPv4(ctx)
	v6, err6 := lookupIPv6(ctx)
	if err4 != nil && err6 != nil {
		return err4
	}
	if err4 == nil {
		fmt.Fprintf(a.out, "IPv4: %s\n", v4)
	}
	if err6 == nil {
		fmt.Fprintf(a.out, "IPv6: %s\n", v6)
	}
	return nil
}
