package types

// Event types for the farm module
const (
	EventTypeFarmCreated = "farm_created"
	EventTypeFarmFunded  = "farm_funded"
	EventTypeRateChanged = "reward_rate_changed"
	EventTypeStake       = "stake"
	EventTypeUnstake     = "unstake"
	EventTypeHarvest     = "harvest"
	EventTypeCompound    = "compound"
)

// Event attribute keys
const (
	AttributeKeyFarmID = "farmId"
	AttributeKeyUser   = "user"
	AttributeKeyAmount = "amount"
	AttributeKeyReward = "reward"
	AttributeKeyTxID   = "txId"
)
