package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"golang.org/x/crypto/sha3"
)

// requestDomain separates request id preimages from other keccak uses.
const requestDomain = "mechx/request/v1"

// RequestID is the content-derived identifier of a request.
type RequestID [32]byte

// ComputeRequestID hashes the request inputs. Every variable-length field is
// length-prefixed so distinct inputs never share a preimage.
func ComputeRequestID(
	mech, requester sdk.AccAddress,
	payload []byte,
	maxDeliveryRate math.Int,
	paymentType PaymentType,
	nonce uint64,
) RequestID {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(requestDomain))
	writeLengthPrefixed(h, mech)
	writeLengthPrefixed(h, requester)

	payloadHash := sha3.NewLegacyKeccak256()
	payloadHash.Write(payload)
	h.Write(payloadHash.Sum(nil))

	rate := make([]byte, 32)
	if !maxDeliveryRate.IsNil() {
		maxDeliveryRate.BigInt().FillBytes(rate)
	}
	h.Write(rate)
	h.Write(paymentType[:])
	h.Write(GetUint64Bytes(nonce))

	var id RequestID
	copy(id[:], h.Sum(nil))
	return id
}

func writeLengthPrefixed(h io.Writer, bz []byte) {
	h.Write(GetUint64Bytes(uint64(len(bz))))
	h.Write(bz)
}

// ParseRequestID decodes a hex request id, with or without 0x prefix.
func ParseRequestID(s string) (RequestID, error) {
	var id RequestID
	bz, err := decodeHex32(s)
	if err != nil {
		return id, fmt.Errorf("request id: %w", err)
	}
	copy(id[:], bz)
	return id, nil
}

func (id RequestID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

func (id RequestID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *RequestID) UnmarshalJSON(bz []byte) error {
	var s string
	if err := json.Unmarshal(bz, &s); err != nil {
		return err
	}
	parsed, err := ParseRequestID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// RequestStatus is derived from stored state and the current time.
type RequestStatus uint8

const (
	RequestStatusDoesNotExist RequestStatus = iota
	RequestStatusRequestedPriority
	RequestStatusRequestedExpired
	RequestStatusDelivered
)

func (s RequestStatus) String() string {
	switch s {
	case RequestStatusDoesNotExist:
		return "does_not_exist"
	case RequestStatusRequestedPriority:
		return "requested_priority"
	case RequestStatusRequestedExpired:
		return "requested_expired"
	case RequestStatusDelivered:
		return "delivered"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Request is the stored record of a marketplace request.
type Request struct {
	ID               RequestID   `json:"id"`
	Requester        string      `json:"requester"`
	PriorityMech     string      `json:"priority_mech"`
	PaymentType      PaymentType `json:"payment_type"`
	MaxDeliveryRate  math.Int    `json:"max_delivery_rate"`
	Nonce            uint64      `json:"nonce"`
	ResponseDeadline uint32      `json:"response_deadline"`
	CreatedAt        int64       `json:"created_at"`

	// Set once, on first delivery.
	DeliveryMech string   `json:"delivery_mech,omitempty"`
	DeliveryRate math.Int `json:"delivery_rate"`
}

// IsDelivered reports whether the request has been delivered.
func (r Request) IsDelivered() bool {
	return r.DeliveryMech != ""
}

// Status derives the request status at now. A pending request is fallback-eligible
// once now is strictly after the deadline.
func (r Request) Status(now time.Time) RequestStatus {
	switch {
	case r.IsDelivered():
		return RequestStatusDelivered
	case now.Unix() > int64(r.ResponseDeadline):
		return RequestStatusRequestedExpired
	default:
		return RequestStatusRequestedPriority
	}
}

// RequesterAddress returns the parsed requester.
func (r Request) RequesterAddress() sdk.AccAddress {
	return sdk.MustAccAddressFromBech32(r.Requester)
}

// PriorityMechAddress returns the parsed priority mech.
func (r Request) PriorityMechAddress() sdk.AccAddress {
	return sdk.MustAccAddressFromBech32(r.PriorityMech)
}

// Validate performs stateless validation of a stored request.
func (r Request) Validate() error {
	if _, err := sdk.AccAddressFromBech32(r.Requester); err != nil {
		return fmt.Errorf("invalid requester: %w", err)
	}
	if _, err := sdk.AccAddressFromBech32(r.PriorityMech); err != nil {
		return fmt.Errorf("invalid priority mech: %w", err)
	}
	if r.PaymentType.IsZero() {
		return fmt.Errorf("zero payment type")
	}
	if r.MaxDeliveryRate.IsNil() || !r.MaxDeliveryRate.IsPositive() {
		return fmt.Errorf("max delivery rate must be positive")
	}
	if r.IsDelivered() {
		if _, err := sdk.AccAddressFromBech32(r.DeliveryMech); err != nil {
			return fmt.Errorf("invalid delivery mech: %w", err)
		}
		if r.DeliveryRate.IsNil() || r.DeliveryRate.IsNegative() || r.DeliveryRate.GT(r.MaxDeliveryRate) {
			return fmt.Errorf("delivery rate out of range")
		}
	}
	return nil
}
