package models

import "time"

// DepositAddress is one entry of the fixed pool handed out in rotation
type DepositAddress struct {
	ID      int64  `db:"id"`
	Address string `db:"address"`
	Index   int    `db:"idx"` // 1-based position in the rotation
}

// DepositRotation is the singleton cursor over the address pool
type DepositRotation struct {
	CurrentIndex int       `db:"current_index"` // Index served by the next request
	LastUpdated  time.Time `db:"last_updated"`
}

// Advance returns the index that follows current in a pool whose highest index is maxIndex
func (r *DepositRotation) Advance(maxIndex int) int {
	if r.CurrentIndex >= maxIndex {
		return 1
	}
	return r.CurrentIndex + 1
}
