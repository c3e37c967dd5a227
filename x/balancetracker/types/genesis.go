package types

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// AccountBalance is a balance held by the tracker on behalf of an account.
type AccountBalance struct {
	Address string   `json:"address"`
	Amount  math.Int `json:"amount"`
}

// GenesisState is the state of one tracker instance.
type GenesisState struct {
	Owner             string           `json:"owner,omitempty"`
	MechBalances      []AccountBalance `json:"mech_balances"`
	RequesterBalances []AccountBalance `json:"requester_balances"`
	CollectedFees     math.Int         `json:"collected_fees"`
	Reserved          math.Int         `json:"reserved"`
	Subscription      *Subscription    `json:"subscription,omitempty"`
}

// DefaultGenesis returns an empty tracker state.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		MechBalances:      []AccountBalance{},
		RequesterBalances: []AccountBalance{},
		CollectedFees:     math.ZeroInt(),
		Reserved:          math.ZeroInt(),
	}
}

func validateBalances(kind string, balances []AccountBalance) error {
	seen := make(map[string]bool, len(balances))
	for _, b := range balances {
		if _, err := sdk.AccAddressFromBech32(b.Address); err != nil {
			return fmt.Errorf("invalid %s address %s: %w", kind, b.Address, err)
		}
		if b.Amount.IsNil() || b.Amount.IsNegative() {
			return fmt.Errorf("invalid %s balance for %s", kind, b.Address)
		}
		if seen[b.Address] {
			return fmt.Errorf("duplicate %s balance for %s", kind, b.Address)
		}
		seen[b.Address] = true
	}
	return nil
}

// Validate performs basic genesis state validation
func (gs GenesisState) Validate() error {
	if gs.Owner != "" {
		if _, err := sdk.AccAddressFromBech32(gs.Owner); err != nil {
			return fmt.Errorf("invalid owner: %w", err)
		}
	}
	if err := validateBalances("mech", gs.MechBalances); err != nil {
		return err
	}
	if err := validateBalances("requester", gs.RequesterBalances); err != nil {
		return err
	}
	if gs.CollectedFees.IsNil() || gs.CollectedFees.IsNegative() {
		return fmt.Errorf("collected fees must be non-negative")
	}
	if gs.Reserved.IsNil() || gs.Reserved.IsNegative() {
		return fmt.Errorf("reserved must be non-negative")
	}
	if gs.Subscription != nil {
		if err := gs.Subscription.Validate(); err != nil {
			return fmt.Errorf("invalid subscription: %w", err)
		}
	}
	return nil
}
