package types

// Marketplace module event types
const (
	EventTypeRequest                = "marketplace_request"
	EventTypeDelivery               = "marketplace_delivery"
	EventTypeDeliverySignature      = "marketplace_delivery_signature"
	EventTypeMechCreated            = "mech_created"
	EventTypeParamsChanged          = "marketplace_params_changed"
	EventTypeFactoryStatus          = "mech_factory_status"
	EventTypeBalanceTrackerSet      = "payment_type_balance_tracker_set"
	EventTypeOwnerChanged           = "marketplace_owner_changed"
	EventTypeHashApproved           = "hash_approved"
	EventTypeMaxDeliveryRateChanged = "max_delivery_rate_changed"

	AttributeKeyRequestID        = "request_id"
	AttributeKeyRequester        = "requester"
	AttributeKeyPriorityMech     = "priority_mech"
	AttributeKeyDeliveryMech     = "delivery_mech"
	AttributeKeyMech             = "mech"
	AttributeKeyServiceID        = "service_id"
	AttributeKeyFactory          = "factory"
	AttributeKeyStatus           = "status"
	AttributeKeyPaymentType      = "payment_type"
	AttributeKeyTracker          = "tracker"
	AttributeKeyMaxDeliveryRate  = "max_delivery_rate"
	AttributeKeyDeliveryRate     = "delivery_rate"
	AttributeKeyResponseDeadline = "response_deadline"
	AttributeKeyNonce            = "nonce"
	AttributeKeyFee              = "fee"
	AttributeKeyMinTimeout       = "min_response_timeout"
	AttributeKeyMaxTimeout       = "max_response_timeout"
	AttributeKeyOwner            = "owner"
	AttributeKeyHash             = "hash"
	AttributeKeyDataHash         = "data_hash"
)
