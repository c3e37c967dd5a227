package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// addressFromKey decodes a length-prefixed address that starts at offset.
func addressFromKey(key []byte, offset int) sdk.AccAddress {
	size := int(key[offset])
	return sdk.AccAddress(key[offset+1 : offset+1+size])
}
