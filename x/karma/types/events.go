package types

// Karma module event types
const (
	EventTypeMarketplaceStatus  = "karma_marketplace_status"
	EventTypeMechKarma          = "mech_karma_changed"
	EventTypeRequesterMechKarma = "requester_mech_karma_changed"
	EventTypeOwnerChanged       = "karma_owner_changed"

	AttributeKeyMarketplace = "marketplace"
	AttributeKeyStatus      = "status"
	AttributeKeyMech        = "mech"
	AttributeKeyRequester   = "requester"
	AttributeKeyDelta       = "delta"
	AttributeKeyKarma       = "karma"
	AttributeKeyOwner       = "owner"
)
