package types

const (
	EventTypeTokenTransfer      = "token_transfer"
	EventTypeTokenApproval      = "token_approval"
	EventTypeCreditsMinted      = "credits_minted"
	EventTypeCreditsBurned      = "credits_burned"
	EventTypeServiceRegistered  = "service_registered"
	EventTypeServiceTransferred = "service_transferred"

	AttributeKeyToken      = "token"
	AttributeKeyFrom       = "from"
	AttributeKeyTo         = "to"
	AttributeKeyOwner      = "owner"
	AttributeKeySpender    = "spender"
	AttributeKeyAmount     = "amount"
	AttributeKeyCollection = "collection"
	AttributeKeyTokenID    = "token_id"
	AttributeKeyServiceID  = "service_id"
)
