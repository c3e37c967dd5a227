package types

// Balance tracker event types
const (
	EventTypeDeposit         = "tracker_deposit"
	EventTypeReserve         = "tracker_reserve"
	EventTypeFinalize        = "tracker_finalize"
	EventTypePayout          = "tracker_payout"
	EventTypeDrain           = "tracker_drain"
	EventTypeWithdraw        = "tracker_withdraw"
	EventTypeSubscriptionSet = "tracker_subscription_set"

	AttributeKeyTracker     = "tracker"
	AttributeKeyMech        = "mech"
	AttributeKeyRequester   = "requester"
	AttributeKeyAccount     = "account"
	AttributeKeyRecipient   = "recipient"
	AttributeKeyAmount      = "amount"
	AttributeKeyCredits     = "credits"
	AttributeKeyFee         = "fee"
	AttributeKeyActualRate  = "actual_rate"
	AttributeKeyReserved    = "reserved"
	AttributeKeyLeftover    = "leftover"
	AttributeKeyCollection  = "collection"
	AttributeKeyTokenID     = "token_id"
	AttributeKeyCreditRatio = "credit_ratio"
)
