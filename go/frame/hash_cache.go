// Copyright (c) 2024 Vulcan Labs
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at vulcan-vm.org/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package frame

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vulcan-vm/vulcan/go/vulcan"
)

// hashCache is an LRU governed fixed-capacity cache for Keccak-256 digests.
// The cache maintains digests for inputs of size 32 and 64, which are the
// vast majority of values hashed when deriving storage slots and addresses.
// Inputs of other sizes are hashed on demand without caching. The cache is
// thread-safe.
type hashCache struct {
	cache32 *lru.Cache[[32]byte, vulcan.Hash]
	cache64 *lru.Cache[[64]byte, vulcan.Hash]
}

// newHashCache creates a hashCache with the given capacities of entries.
func newHashCache(capacity32 int, capacity64 int) *hashCache {
	cache32, err := lru.New[[32]byte, vulcan.Hash](capacity32)
	if err != nil {
		panic(err) // only reachable for non-positive capacities
	}
	cache64, err := lru.New[[64]byte, vulcan.Hash](capacity64)
	if err != nil {
		panic(err)
	}
	return &hashCache{cache32: cache32, cache64: cache64}
}

// hash fetches a cached digest or computes the digest of the provided data.
func (h *hashCache) hash(data []byte) vulcan.Hash {
	if len(data) == 32 {
		var key [32]byte
		copy(key[:], data)
		if res, found := h.cache32.Get(key); found {
			return res
		}
		res := Keccak256(data)
		h.cache32.Add(key, res)
		return res
	}
	if len(data) == 64 {
		var key [64]byte
		copy(key[:], data)
		if res, found := h.cache64.Get(key); found {
			return res
		}
		res := Keccak256(data)
		h.cache64.Add(key, res)
		return res
	}
	return Keccak256(data)
}

// Slot and address derivation hash almost exclusively 32 and 64 byte
// values, and the same values recur across frames.
var sharedHashCache = newHashCache(1<<16, 1<<18)

// Keccak256Cached behaves like Keccak256 but serves 32 and 64 byte inputs
// from a process-wide LRU cache, since identical values are frequently
// re-hashed.
func Keccak256Cached(data []byte) vulcan.Hash {
	return sharedHashCache.hash(data)
}
