package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/crypto/hd"
	cryptotypes "github.com/cosmos/cosmos-sdk/crypto/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/go-bip39"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mechx-labs/mechx/app"
	"github.com/mechx-labs/mechx/app/telemetry"
	bttypes "github.com/mechx-labs/mechx/x/balancetracker/types"
	mptypes "github.com/mechx-labs/mechx/x/marketplace/types"
)

const (
	flagMnemonic = "mnemonic"
	flagRequests = "requests"
	flagRate     = "rate"
	flagVariant  = "variant"

	// mnemonicEntropyBits yields a 24-word mnemonic.
	mnemonicEntropyBits = 256
)

// SimulationResult reports one scripted marketplace round.
type SimulationResult struct {
	Mnemonic   string              `json:"mnemonic,omitempty"`
	Variant    string              `json:"variant"`
	Operator   string              `json:"operator"`
	Requester  string              `json:"requester"`
	Mech       string              `json:"mech"`
	RequestIDs []mptypes.RequestID `json:"request_ids"`
	Delivered  []bool              `json:"delivered"`
	Paid       math.Int            `json:"paid"`
	Drained    math.Int            `json:"drained"`
	MechKarma  int64               `json:"mech_karma"`
	Events     int                 `json:"events"`
	Height     int64               `json:"height"`
}

// SimulateCmd runs a request, delivery and payout round on an in-memory chain.
func SimulateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a scripted marketplace round on an in-memory chain",
		Long: `Derive an operator and a requester from a BIP39 mnemonic, then create a
mech, submit requests, deliver them, pay the operator out and drain fees.

When --mnemonic is empty a fresh 24-word mnemonic is generated and reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadNodeConfig(v)
			if err != nil {
				return err
			}
			mnemonic, _ := cmd.Flags().GetString(flagMnemonic)
			requests, _ := cmd.Flags().GetInt(flagRequests)
			rate, _ := cmd.Flags().GetInt64(flagRate)
			variantName, _ := cmd.Flags().GetString(flagVariant)

			variant, err := bttypes.ParseVariant(variantName)
			if err != nil {
				return err
			}
			if variant.IsSubscription() {
				return fmt.Errorf("simulate supports direct variants only, got %s", variant)
			}

			result, err := Simulate(cmd.Context(), cfg.AppConfig(), mnemonic, variant, requests, math.NewInt(rate))
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	cmd.Flags().String(flagMnemonic, "", "BIP39 mnemonic the accounts are derived from")
	cmd.Flags().Int(flagRequests, 3, "number of requests to submit")
	cmd.Flags().Int64(flagRate, 1000, "max delivery rate of the mech")
	cmd.Flags().String(flagVariant, bttypes.VariantFixedPriceNative.String(), "payment variant of the mech")
	return cmd
}

// NewMnemonic returns a fresh 24-word BIP39 mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	return bip39.NewMnemonic(entropy)
}

// DeriveKey derives the secp256k1 key at account index of mnemonic.
func DeriveKey(mnemonic string, index uint32) (cryptotypes.PrivKey, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}
	path := hd.CreateHDPath(app.CoinType, index, 0).String()
	bz, err := hd.Secp256k1.Derive()(mnemonic, "", path)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return hd.Secp256k1.Generate()(bz), nil
}

// Simulate runs one marketplace round for a direct payment variant.
func Simulate(ctx context.Context, cfg app.Config, mnemonic string, variant bttypes.Variant, requests int, rate math.Int) (*SimulationResult, error) {
	if requests <= 0 {
		return nil, fmt.Errorf("requests must be positive")
	}
	if !rate.IsPositive() {
		return nil, fmt.Errorf("rate must be positive")
	}

	result := &SimulationResult{Variant: variant.String(), Paid: math.ZeroInt(), Drained: math.ZeroInt()}
	if mnemonic == "" {
		var err error
		if mnemonic, err = NewMnemonic(); err != nil {
			return nil, err
		}
		result.Mnemonic = mnemonic
	}

	operatorKey, err := DeriveKey(mnemonic, 0)
	if err != nil {
		return nil, err
	}
	requesterKey, err := DeriveKey(mnemonic, 1)
	if err != nil {
		return nil, err
	}
	operator := sdk.AccAddress(operatorKey.PubKey().Address())
	requester := sdk.AccAddress(requesterKey.PubKey().Address())
	result.Operator = operator.String()
	result.Requester = requester.String()

	mechApp, err := app.New(log.NewNopLogger(), dbm.NewMemDB(), cfg)
	if err != nil {
		return nil, err
	}
	mechApp.SetBlockTime(time.Now().UTC())
	if err := mechApp.InitChain(app.NewDefaultGenesisState(cfg)); err != nil {
		return nil, err
	}

	total := rate.MulRaw(int64(requests))
	pt := mechApp.PaymentType(variant)
	tracker := mechApp.Tracker(variant)

	step := func(op string, fn func(ctx sdk.Context) error) error {
		_, span := telemetry.StartMarketplaceSpan(ctx, op, telemetry.MechAttr(result.Mech))
		events, err := mechApp.Execute(fn)
		telemetry.End(span, err)
		result.Events += len(events)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	var mech sdk.AccAddress
	err = step("create", func(ctx sdk.Context) error {
		serviceID, err := mechApp.LedgerKeeper.RegisterService(ctx, operator)
		if err != nil {
			return err
		}
		mech, err = mechApp.MarketplaceKeeper.Create(ctx, operator, serviceID, mechApp.Factories[variant].Address(), mptypes.EncodeCreationData(rate))
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Mech = mech.String()

	err = step("request", func(ctx sdk.Context) error {
		attached := math.ZeroInt()
		switch variant.Asset {
		case bttypes.AssetNative:
			if err := mechApp.FundAccount(ctx, requester, sdk.NewCoins(sdk.NewCoin(cfg.Denom, total))); err != nil {
				return err
			}
			attached = total
		case bttypes.AssetToken:
			if err := mechApp.LedgerKeeper.MintTokens(ctx, cfg.Token, requester, total); err != nil {
				return err
			}
			if err := mechApp.LedgerKeeper.Approve(ctx, cfg.Token, requester, tracker.Address(), total); err != nil {
				return err
			}
			if err := tracker.Deposit(ctx, requester, total); err != nil {
				return err
			}
		}

		payloads := make([][]byte, requests)
		for i := range payloads {
			payloads[i] = []byte(fmt.Sprintf(`{"prompt":"simulated request %d","tool":"echo"}`, i))
		}
		ids, err := mechApp.MarketplaceKeeper.RequestBatch(ctx, requester, payloads, rate, pt, mech, mptypes.DefaultParams().MinResponseTimeout, attached, nil)
		result.RequestIDs = ids
		return err
	})
	if err != nil {
		return nil, err
	}

	err = step("deliver", func(ctx sdk.Context) error {
		rates := make([]math.Int, len(result.RequestIDs))
		for i := range rates {
			rates[i] = rate
		}
		delivered, err := mechApp.MarketplaceKeeper.DeliverMarketplace(ctx, mech, result.RequestIDs, rates)
		result.Delivered = delivered
		return err
	})
	if err != nil {
		return nil, err
	}

	// fees of at least one unit per request can consume the whole rate
	err = step("payout", func(ctx sdk.Context) error {
		if tracker.GetMechBalance(ctx, mech).IsZero() {
			return nil
		}
		paid, err := tracker.ProcessPaymentByMultisig(ctx, operator, mech)
		if err == nil {
			result.Paid = paid
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	err = step("drain", func(ctx sdk.Context) error {
		if tracker.GetCollectedFees(ctx).IsZero() {
			return nil
		}
		drained, err := tracker.Drain(ctx)
		if err == nil {
			result.Drained = drained
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := mechApp.Query(mechApp.CheckInvariants); err != nil {
		return nil, err
	}
	_ = mechApp.Query(func(ctx sdk.Context) error {
		result.MechKarma = mechApp.KarmaKeeper.GetMechKarma(ctx, mech)
		return nil
	})
	result.Height = mechApp.Commit().Version

	return result, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}
