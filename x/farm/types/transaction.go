package types

import (
	"time"

	"cosmossdk.io/math"
)

// FarmAction names a farm state change.
type FarmAction string

const (
	ActionCreate   FarmAction = "create"
	ActionFund     FarmAction = "fund"
	ActionSetRate  FarmAction = "set_rate"
	ActionStake    FarmAction = "stake"
	ActionUnstake  FarmAction = "unstake"
	ActionHarvest  FarmAction = "harvest"
	ActionCompound FarmAction = "compound"
)

// FarmTransaction is the audit record of a farm operation.
type FarmTransaction struct {
	ID     string     `json:"id"`
	Action FarmAction `json:"action"`
	FarmID uint64     `json:"farmId"`
	UserID string     `json:"userId,omitempty"`
	// Amount is the staked, unstaked or funded quantity, or the new rate.
	Amount            math.Int  `json:"amount"`
	Reward            math.Int  `json:"reward"`
	StakedAfter       math.Int  `json:"stakedAfter"`
	TotalStakedAfter  math.Int  `json:"totalStakedAfter"`
	AccRewardPerShare math.Int  `json:"accRewardPerShare"`
	BlockHeight       uint64    `json:"blockHeight"`
	Timestamp         time.Time `json:"timestamp"`
}
