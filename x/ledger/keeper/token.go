package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/mechx-labs/mechx/x/ledger/types"
)

// BalanceOf returns the token balance of owner.
func (k Keeper) BalanceOf(ctx context.Context, token, owner sdk.AccAddress) (math.Int, error) {
	return k.getInt(ctx, types.TokenBalanceKey(token, owner)), nil
}

// Allowance returns how much spender may move from owner.
func (k Keeper) Allowance(ctx context.Context, token, owner, spender sdk.AccAddress) (math.Int, error) {
	return k.getInt(ctx, types.AllowanceKey(token, owner, spender)), nil
}

// Approve sets the allowance of spender over owner's balance.
func (k Keeper) Approve(ctx context.Context, token, owner, spender sdk.AccAddress, amount math.Int) error {
	if owner.Empty() || spender.Empty() {
		return types.ErrZeroAddress.Wrap("owner and spender are required")
	}
	if amount.IsNil() || amount.IsNegative() {
		return types.ErrNegativeAmount
	}

	k.setInt(ctx, types.AllowanceKey(token, owner, spender), amount)
	emit(ctx, types.EventTypeTokenApproval,
		sdk.NewAttribute(types.AttributeKeyToken, token.String()),
		sdk.NewAttribute(types.AttributeKeyOwner, owner.String()),
		sdk.NewAttribute(types.AttributeKeySpender, spender.String()),
		sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
	)
	return nil
}

// MintTokens credits to with amount of token.
func (k Keeper) MintTokens(ctx context.Context, token, to sdk.AccAddress, amount math.Int) error {
	if to.Empty() {
		return types.ErrZeroAddress.Wrap("recipient")
	}
	if err := checkPositive(amount); err != nil {
		return err
	}

	key := types.TokenBalanceKey(token, to)
	balance, err := k.getInt(ctx, key).SafeAdd(amount)
	if err != nil {
		return types.ErrOverflow.Wrapf("token balance of %s", to)
	}
	k.setInt(ctx, key, balance)
	emit(ctx, types.EventTypeTokenTransfer,
		sdk.NewAttribute(types.AttributeKeyToken, token.String()),
		sdk.NewAttribute(types.AttributeKeyTo, to.String()),
		sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
	)
	return nil
}

// Transfer moves amount of token from from to to.
func (k Keeper) Transfer(ctx context.Context, token, from, to sdk.AccAddress, amount math.Int) error {
	if from.Empty() || to.Empty() {
		return types.ErrZeroAddress.Wrap("sender and recipient are required")
	}
	if err := checkPositive(amount); err != nil {
		return err
	}

	fromKey := types.TokenBalanceKey(token, from)
	balance := k.getInt(ctx, fromKey)
	if balance.LT(amount) {
		return types.ErrInsufficientBalance.Wrapf("token balance %s, required %s", balance, amount)
	}

	toKey := types.TokenBalanceKey(token, to)
	if !from.Equals(to) {
		if _, err := k.getInt(ctx, toKey).SafeAdd(amount); err != nil {
			return types.ErrOverflow.Wrapf("token balance of %s", to)
		}
	}

	k.setInt(ctx, fromKey, balance.Sub(amount))
	k.setInt(ctx, toKey, k.getInt(ctx, toKey).Add(amount))

	emit(ctx, types.EventTypeTokenTransfer,
		sdk.NewAttribute(types.AttributeKeyToken, token.String()),
		sdk.NewAttribute(types.AttributeKeyFrom, from.String()),
		sdk.NewAttribute(types.AttributeKeyTo, to.String()),
		sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
	)
	return nil
}

// TransferFrom moves amount from owner to recipient, consuming spender's allowance.
func (k Keeper) TransferFrom(ctx context.Context, token, spender, owner, recipient sdk.AccAddress, amount math.Int) error {
	allowanceKey := types.AllowanceKey(token, owner, spender)
	allowance := k.getInt(ctx, allowanceKey)
	if allowance.LT(amount) {
		return types.ErrInsufficientAllowance.Wrapf("allowance %s, required %s", allowance, amount)
	}

	if err := k.Transfer(ctx, token, owner, recipient, amount); err != nil {
		return err
	}
	k.setInt(ctx, allowanceKey, allowance.Sub(amount))
	return nil
}

// IterateTokenBalances walks every non-zero token holding.
func (k Keeper) IterateTokenBalances(ctx context.Context, cb func(token, owner sdk.AccAddress, balance math.Int) (stop bool)) {
	k.iterateInts(ctx, types.TokenBalancePrefix, func(key []byte, v math.Int) bool {
		addrs, _ := types.SplitAddresses(key, 2)
		return cb(addrs[0], addrs[1], v)
	})
}

// IterateAllowances walks every non-zero allowance.
func (k Keeper) IterateAllowances(ctx context.Context, cb func(token, owner, spender sdk.AccAddress, amount math.Int) (stop bool)) {
	k.iterateInts(ctx, types.AllowancePrefix, func(key []byte, v math.Int) bool {
		addrs, _ := types.SplitAddresses(key, 3)
		return cb(addrs[0], addrs[1], addrs[2], v)
	})
}
