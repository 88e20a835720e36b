package keeper

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/paw-chain/pawswap/pkg/audit"
)

// PoolEntityID is the audit entity id of a pool.
func PoolEntityID(poolID uint64) string {
	return "pool/" + strconv.FormatUint(poolID, 10)
}

func newTxID() string {
	return uuid.NewString()
}

// appendRecord persists payload under id. Nothing is committed when it fails.
func (k *Keeper) appendRecord(ctx context.Context, id string, kind audit.Kind, action, userID, entityID string, height uint64, payload interface{}) error {
	if k.store == nil {
		return nil
	}
	rec, err := audit.NewRecord(kind, action, userID, entityID, height, k.now(), payload)
	if err != nil {
		return err
	}
	rec.ID = id
	if err := k.store.Append(ctx, rec); err != nil {
		return fmt.Errorf("append %s record: %w", kind, err)
	}
	return nil
}

func (k *Keeper) currentBlock() uint64 {
	if k.clock == nil {
		return 0
	}
	return k.clock.CurrentBlock()
}
