package client

import "github.com/dmitrijs2005/matthias/internal/common"

// Aliases kept so callers of this package can match transport failures
// without importing common.
var (
	ErrUnavailable  = common.ErrUnavailable
	ErrUnauthorized = common.ErrUnauthorized
)
