package types

import (
	sharederrors "github.com/mechx-labs/mechx/x/shared/errors"
)

var (
	ErrZeroAddress      = sharederrors.ErrZeroAddress
	ErrWrongArrayLength = sharederrors.ErrWrongArrayLength
	ErrOverflow         = sharederrors.ErrOverflow
	ErrOwnerOnly        = sharederrors.ErrOwnerOnly
	ErrMarketplaceOnly  = sharederrors.ErrMarketplaceOnly
)
