// file: models/pool.go
package models

import "fmt"

// PoolCount is the number of pools processed, in order, on the uncalled roster.
const PoolCount = 8

// Pools returns the ordered pool labels "Pool 1" .. "Pool 8".
func Pools() []string {
	pools := make([]string, PoolCount)
	for i := range pools {
		pools[i] = fmt.Sprintf("Pool %d", i+1)
	}
	return pools
}

func FirstPool() string {
	return Pools()[0]
}

// NextPool returns the pool after current. ok is false when current is the
// last pool or not part of the sequence at all.
func NextPool(current string) (next string, ok bool) {
	pools := Pools()
	for i, p := range pools {
		if p == current {
			if i+1 < len(pools) {
				return pools[i+1], true
			}
			return "", false
		}
	}
	return "", false
}
