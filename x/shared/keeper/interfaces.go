package keeper

import (
	"context"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// =============================================================================
// External Collaborator Interfaces (Versioned)
// =============================================================================

// ServiceRegistryV1 resolves service identities. Both calls are fallible.
// Version 1.0 - Initial release for devnet
type ServiceRegistryV1 interface {
	// OwnerOf returns the controlling account (typically a multisig) of a service.
	OwnerOf(ctx context.Context, serviceID uint64) (sdk.AccAddress, error)

	// Exists reports whether the service id has been minted.
	Exists(ctx context.Context, serviceID uint64) (bool, error)
}

// ServiceRegistryV1Extended extends V1 with deployment state.
type ServiceRegistryV1Extended interface {
	ServiceRegistryV1

	// IsDeployed reports whether the service is in the deployed state.
	IsDeployed(ctx context.Context, serviceID uint64) (bool, error)
}

// TokenV1 is an ERC20-like fungible token ledger. Tokens are addressed by
// their token address so one ledger can host several tokens.
// Version 1.0 - Initial release for devnet
type TokenV1 interface {
	BalanceOf(ctx context.Context, token, owner sdk.AccAddress) (sdkmath.Int, error)
	Allowance(ctx context.Context, token, owner, spender sdk.AccAddress) (sdkmath.Int, error)
	Transfer(ctx context.Context, token, from, to sdk.AccAddress, amount sdkmath.Int) error

	// TransferFrom moves amount from owner to recipient on behalf of spender,
	// consuming spender's allowance.
	TransferFrom(ctx context.Context, token, spender, owner, recipient sdk.AccAddress, amount sdkmath.Int) error
}

// SubscriptionV1 is a multi-token credit ledger (balance of owner for id).
// Version 1.0 - Initial release for devnet
type SubscriptionV1 interface {
	BalanceOf(ctx context.Context, collection, owner sdk.AccAddress, tokenID uint64) (sdkmath.Int, error)

	// Burn consumes credits held by owner.
	Burn(ctx context.Context, collection, owner sdk.AccAddress, tokenID uint64, amount sdkmath.Int) error

	// Mint credits owner with amount, used to hand back unused reservations.
	Mint(ctx context.Context, collection, owner sdk.AccAddress, tokenID uint64, amount sdkmath.Int) error
}

// =============================================================================
// Version Constants
// =============================================================================

const (
	// ServiceRegistryVersion is the current service registry interface version.
	ServiceRegistryVersion = "v1.0.0"

	// TokenVersion is the current token interface version.
	TokenVersion = "v1.0.0"

	// SubscriptionVersion is the current subscription interface version.
	SubscriptionVersion = "v1.0.0"
)
