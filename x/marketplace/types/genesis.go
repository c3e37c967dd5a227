package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// FactoryStatus is an allow-list entry for a mech factory.
type FactoryStatus struct {
	Factory string `json:"factory"`
	Active  bool   `json:"active"`
}

// TrackerBinding maps a payment type to a balance tracker address.
type TrackerBinding struct {
	PaymentType PaymentType `json:"payment_type"`
	Tracker     string      `json:"tracker"`
}

// AccountNonce is the next unused nonce of a requester.
type AccountNonce struct {
	Account string `json:"account"`
	Nonce   uint64 `json:"nonce"`
}

// Counter is one stored request or delivery counter.
type Counter struct {
	Kind    uint8  `json:"kind"`
	Account string `json:"account"`
	Value   uint64 `json:"value"`
}

// GenesisState defines the marketplace module's genesis state.
type GenesisState struct {
	Params           Params           `json:"params"`
	Owner            string           `json:"owner,omitempty"`
	FactoryStatuses  []FactoryStatus  `json:"factory_statuses"`
	TrackerBindings  []TrackerBinding `json:"tracker_bindings"`
	Mechs            []Mech           `json:"mechs"`
	Requests         []Request        `json:"requests"`
	Nonces           []AccountNonce   `json:"nonces"`
	Counters         []Counter        `json:"counters"`
	NumTotalRequests uint64           `json:"num_total_requests"`
	MechNonce        uint64           `json:"mech_nonce"`
}

// DefaultGenesis returns the default marketplace genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:          DefaultParams(),
		FactoryStatuses: []FactoryStatus{},
		TrackerBindings: []TrackerBinding{},
		Mechs:           []Mech{},
		Requests:        []Request{},
		Nonces:          []AccountNonce{},
		Counters:        []Counter{},
	}
}

// Validate performs basic genesis state validation
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	if gs.Owner != "" {
		if _, err := sdk.AccAddressFromBech32(gs.Owner); err != nil {
			return fmt.Errorf("invalid owner: %w", err)
		}
	}

	for _, fs := range gs.FactoryStatuses {
		if _, err := sdk.AccAddressFromBech32(fs.Factory); err != nil {
			return fmt.Errorf("invalid factory %s: %w", fs.Factory, err)
		}
	}

	bound := make(map[PaymentType]bool)
	for _, tb := range gs.TrackerBindings {
		if tb.PaymentType.IsZero() {
			return fmt.Errorf("tracker binding with zero payment type")
		}
		if _, err := sdk.AccAddressFromBech32(tb.Tracker); err != nil {
			return fmt.Errorf("invalid tracker %s: %w", tb.Tracker, err)
		}
		if bound[tb.PaymentType] {
			return fmt.Errorf("duplicate tracker binding for %s", tb.PaymentType)
		}
		bound[tb.PaymentType] = true
	}

	mechs := make(map[string]Mech)
	for _, m := range gs.Mechs {
		if err := m.Validate(); err != nil {
			return err
		}
		if _, dup := mechs[m.Address]; dup {
			return fmt.Errorf("duplicate mech %s", m.Address)
		}
		mechs[m.Address] = m
	}

	requests := make(map[RequestID]bool)
	for _, r := range gs.Requests {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("invalid request %s: %w", r.ID, err)
		}
		if requests[r.ID] {
			return fmt.Errorf("duplicate request %s", r.ID)
		}
		if _, ok := mechs[r.PriorityMech]; !ok {
			return fmt.Errorf("request %s names unknown priority mech %s", r.ID, r.PriorityMech)
		}
		requests[r.ID] = true
	}

	for _, n := range gs.Nonces {
		if _, err := sdk.AccAddressFromBech32(n.Account); err != nil {
			return fmt.Errorf("invalid nonce account %s: %w", n.Account, err)
		}
	}
	for _, c := range gs.Counters {
		if c.Kind < CounterRequests || c.Kind > CounterServiceDeliveries {
			return fmt.Errorf("unknown counter kind %d", c.Kind)
		}
		if _, err := sdk.AccAddressFromBech32(c.Account); err != nil {
			return fmt.Errorf("invalid counter account %s: %w", c.Account, err)
		}
	}

	return nil
}
