package keeper

import (
	"context"
	"strconv"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/ledger/types"
)

// SubscriptionLedger is the multi-token credit view of the ledger. Its BalanceOf
// differs in shape from the token ledger, so it is a separate type.
type SubscriptionLedger struct {
	k *Keeper
}

// Subscriptions returns the credit ledger backed by k.
func (k *Keeper) Subscriptions() SubscriptionLedger {
	return SubscriptionLedger{k: k}
}

// BalanceOf returns the credits owner holds of (collection, tokenID).
func (s SubscriptionLedger) BalanceOf(ctx context.Context, collection, owner sdk.AccAddress, tokenID uint64) (math.Int, error) {
	return s.k.getInt(ctx, types.SubscriptionBalanceKey(collection, owner, tokenID)), nil
}

// Mint credits owner with amount.
func (s SubscriptionLedger) Mint(ctx context.Context, collection, owner sdk.AccAddress, tokenID uint64, amount math.Int) error {
	if owner.Empty() {
		return types.ErrZeroAddress.Wrap("owner")
	}
	if err := checkPositive(amount); err != nil {
		return err
	}

	key := types.SubscriptionBalanceKey(collection, owner, tokenID)
	balance, err := s.k.getInt(ctx, key).SafeAdd(amount)
	if err != nil {
		return types.ErrOverflow.Wrapf("credits of %s", owner)
	}
	s.k.setInt(ctx, key, balance)
	emit(ctx, types.EventTypeCreditsMinted, s.attrs(collection, owner, tokenID, amount)...)
	return nil
}

// Burn consumes amount of owner's credits.
func (s SubscriptionLedger) Burn(ctx context.Context, collection, owner sdk.AccAddress, tokenID uint64, amount math.Int) error {
	if err := checkPositive(amount); err != nil {
		return err
	}

	key := types.SubscriptionBalanceKey(collection, owner, tokenID)
	balance := s.k.getInt(ctx, key)
	if balance.LT(amount) {
		return types.ErrInsufficientBalance.Wrapf("credits %s, required %s", balance, amount)
	}

	s.k.setInt(ctx, key, balance.Sub(amount))
	emit(ctx, types.EventTypeCreditsBurned, s.attrs(collection, owner, tokenID, amount)...)
	return nil
}

func (s SubscriptionLedger) attrs(collection, owner sdk.AccAddress, tokenID uint64, amount math.Int) []sdk.Attribute {
	return []sdk.Attribute{
		sdk.NewAttribute(types.AttributeKeyCollection, collection.String()),
		sdk.NewAttribute(types.AttributeKeyOwner, owner.String()),
		sdk.NewAttribute(types.AttributeKeyTokenID, strconv.FormatUint(tokenID, 10)),
		sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
	}
}

// IterateCredits walks every non-zero credit holding.
func (s SubscriptionLedger) IterateCredits(ctx context.Context, cb func(collection, owner sdk.AccAddress, tokenID uint64, balance math.Int) (stop bool)) {
	s.k.iterateInts(ctx, types.SubscriptionBalancePrefix, func(key []byte, v math.Int) bool {
		addrs, rest := types.SplitAddresses(key, 2)
		return cb(addrs[0], addrs[1], sdk.BigEndianToUint64(rest), v)
	})
}
