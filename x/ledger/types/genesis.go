package types

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// TokenBalance is a token holding.
type TokenBalance struct {
	Token   string   `json:"token"`
	Owner   string   `json:"owner"`
	Balance math.Int `json:"balance"`
}

// Allowance is a spender approval.
type Allowance struct {
	Token   string   `json:"token"`
	Owner   string   `json:"owner"`
	Spender string   `json:"spender"`
	Amount  math.Int `json:"amount"`
}

// CreditBalance is a subscription credit holding.
type CreditBalance struct {
	Collection string   `json:"collection"`
	Owner      string   `json:"owner"`
	TokenID    uint64   `json:"token_id"`
	Balance    math.Int `json:"balance"`
}

// Service is a registered service identity.
type Service struct {
	ID       uint64 `json:"id"`
	Owner    string `json:"owner"`
	Deployed bool   `json:"deployed"`
}

// GenesisState defines the ledger module's genesis state.
type GenesisState struct {
	TokenBalances  []TokenBalance  `json:"token_balances"`
	Allowances     []Allowance     `json:"allowances"`
	CreditBalances []CreditBalance `json:"credit_balances"`
	Services       []Service       `json:"services"`
	NextServiceID  uint64          `json:"next_service_id"`
}

// DefaultGenesis returns an empty ledger whose first service id is 1.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		TokenBalances:  []TokenBalance{},
		Allowances:     []Allowance{},
		CreditBalances: []CreditBalance{},
		Services:       []Service{},
		NextServiceID:  1,
	}
}

func checkAddrs(addrs ...string) error {
	for _, a := range addrs {
		if _, err := sdk.AccAddressFromBech32(a); err != nil {
			return fmt.Errorf("invalid address %q: %w", a, err)
		}
	}
	return nil
}

func checkAmount(amount math.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// Validate performs basic genesis state validation.
func (gs GenesisState) Validate() error {
	for _, b := range gs.TokenBalances {
		if err := checkAddrs(b.Token, b.Owner); err != nil {
			return err
		}
		if err := checkAmount(b.Balance); err != nil {
			return err
		}
	}
	for _, a := range gs.Allowances {
		if err := checkAddrs(a.Token, a.Owner, a.Spender); err != nil {
			return err
		}
		if err := checkAmount(a.Amount); err != nil {
			return err
		}
	}
	for _, c := range gs.CreditBalances {
		if err := checkAddrs(c.Collection, c.Owner); err != nil {
			return err
		}
		if err := checkAmount(c.Balance); err != nil {
			return err
		}
	}

	seen := make(map[uint64]bool)
	for _, s := range gs.Services {
		if s.ID == 0 || s.ID >= gs.NextServiceID {
			return fmt.Errorf("service id %d outside [1, %d)", s.ID, gs.NextServiceID)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate service %d", s.ID)
		}
		seen[s.ID] = true
		if err := checkAddrs(s.Owner); err != nil {
			return err
		}
	}
	if gs.NextServiceID == 0 {
		return fmt.Errorf("next service id must be positive")
	}
	return nil
}
