package api

import (
	"cosmossdk.io/math"

	mptypes "github.com/mechx-labs/mechx/x/marketplace/types"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeNotFound        = "NOT_FOUND"
	CodeRateLimit       = "RATE_LIMIT"
	CodeTooLarge        = "REQUEST_TOO_LARGE"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ParamsResponse mirrors the marketplace params.
type ParamsResponse struct {
	Fee                uint64 `json:"fee"`
	MinResponseTimeout uint64 `json:"min_response_timeout"`
	MaxResponseTimeout uint64 `json:"max_response_timeout"`
}

// StatsResponse summarizes marketplace activity.
type StatsResponse struct {
	NumTotalRequests uint64 `json:"num_total_requests"`
	MechNonce        uint64 `json:"mech_nonce"`
	BlockHeight      int64  `json:"block_height"`
	BlockTime        int64  `json:"block_time"`
}

// RequestResponse is a stored request plus its derived status.
type RequestResponse struct {
	Request mptypes.Request `json:"request"`
	Status  string          `json:"status"`
}

// MechResponse is a mech record with its counters and karma.
type MechResponse struct {
	Mech            mptypes.Mech `json:"mech"`
	Operator        string       `json:"operator"`
	NumUndelivered  uint64       `json:"num_undelivered"`
	RequestCount    uint64       `json:"request_count"`
	DeliveryCount   uint64       `json:"delivery_count"`
	ServiceDelivery uint64       `json:"service_delivery_count"`
	Karma           int64        `json:"karma"`
}

// MechsResponse lists mechs in address order.
type MechsResponse struct {
	Mechs []mptypes.Mech `json:"mechs"`
	Total int            `json:"total"`
}

// UndeliveredResponse is a page of undelivered request ids, most recent first.
type UndeliveredResponse struct {
	Mech       string              `json:"mech"`
	Total      uint64              `json:"total"`
	RequestIDs []mptypes.RequestID `json:"request_ids"`
}

// RequesterResponse holds the per-requester counters.
type RequesterResponse struct {
	Address       string `json:"address"`
	Nonce         uint64 `json:"nonce"`
	RequestCount  uint64 `json:"request_count"`
	DeliveryCount uint64 `json:"delivery_count"`
}

// KarmaResponse holds a karma score.
type KarmaResponse struct {
	Mech      string `json:"mech"`
	Requester string `json:"requester,omitempty"`
	Karma     int64  `json:"karma"`
}

// TrackerResponse describes one balance tracker instance.
type TrackerResponse struct {
	Variant       string              `json:"variant"`
	Name          string              `json:"name"`
	Address       string              `json:"address"`
	PaymentType   mptypes.PaymentType `json:"payment_type"`
	Bound         bool                `json:"bound"`
	CollectedFees math.Int            `json:"collected_fees"`
	Reserved      math.Int            `json:"reserved"`
	Liabilities   math.Int            `json:"liabilities"`
}

// TrackersResponse lists every tracker variant.
type TrackersResponse struct {
	Trackers []TrackerResponse `json:"trackers"`
}

// BalanceResponse is a tracker ledger entry.
type BalanceResponse struct {
	Variant string   `json:"variant"`
	Address string   `json:"address"`
	Balance math.Int `json:"balance"`
}
