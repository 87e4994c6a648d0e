package services

import (
	"errors"

	"github.com/dmitrijs2005/matthias/internal/common"
)

func rejectReason(err error) string {
	switch {
	case errors.Is(err, common.ErrIndexOutOfRange), errors.Is(err, common.ErrNotFound):
		return "out_of_range"
	case errors.Is(err, common.ErrWrongPayloadKind):
		return "wrong_kind"
	case errors.Is(err, common.ErrNotOwner):
		return "not_owner"
	case errors.Is(err, common.ErrInvalidFormat):
		return "invalid_client"
	default:
		return "internal"
	}
}
