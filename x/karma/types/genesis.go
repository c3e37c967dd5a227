package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// MechKarma is the karma of a single mech.
type MechKarma struct {
	Mech  string `json:"mech"`
	Karma int64  `json:"karma"`
}

// RequesterMechKarma is the karma a requester has recorded for a mech.
type RequesterMechKarma struct {
	Requester string `json:"requester"`
	Mech      string `json:"mech"`
	Karma     int64  `json:"karma"`
}

// GenesisState defines the karma module's genesis state.
type GenesisState struct {
	Owner              string               `json:"owner,omitempty"`
	Marketplaces       []string             `json:"marketplaces"`
	MechKarma          []MechKarma          `json:"mech_karma"`
	RequesterMechKarma []RequesterMechKarma `json:"requester_mech_karma"`
}

// DefaultGenesis returns the default karma genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Marketplaces:       []string{},
		MechKarma:          []MechKarma{},
		RequesterMechKarma: []RequesterMechKarma{},
	}
}

// Validate performs basic genesis state validation
func (gs GenesisState) Validate() error {
	if gs.Owner != "" {
		if _, err := sdk.AccAddressFromBech32(gs.Owner); err != nil {
			return fmt.Errorf("invalid owner: %w", err)
		}
	}

	seen := make(map[string]bool)
	for _, m := range gs.Marketplaces {
		if _, err := sdk.AccAddressFromBech32(m); err != nil {
			return fmt.Errorf("invalid marketplace %s: %w", m, err)
		}
		if seen[m] {
			return fmt.Errorf("duplicate marketplace %s", m)
		}
		seen[m] = true
	}

	seen = make(map[string]bool)
	for _, mk := range gs.MechKarma {
		if _, err := sdk.AccAddressFromBech32(mk.Mech); err != nil {
			return fmt.Errorf("invalid mech %s: %w", mk.Mech, err)
		}
		if seen[mk.Mech] {
			return fmt.Errorf("duplicate mech karma for %s", mk.Mech)
		}
		seen[mk.Mech] = true
	}

	seen = make(map[string]bool)
	for _, rk := range gs.RequesterMechKarma {
		if _, err := sdk.AccAddressFromBech32(rk.Requester); err != nil {
			return fmt.Errorf("invalid requester %s: %w", rk.Requester, err)
		}
		if _, err := sdk.AccAddressFromBech32(rk.Mech); err != nil {
			return fmt.Errorf("invalid mech %s: %w", rk.Mech, err)
		}
		pair := rk.Requester + "/" + rk.Mech
		if seen[pair] {
			return fmt.Errorf("duplicate requester mech karma for %s", pair)
		}
		seen[pair] = true
	}

	return nil
}
