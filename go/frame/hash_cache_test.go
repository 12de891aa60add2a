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
	"sync"
	"testing"

	"pgregory.net/rand"
)

func TestHashCache_CachedDigestsMatchDirectHashing(t *testing.T) {
	rnd := rand.New(0)
	cache := newHashCache(16, 16)

	for _, size := range []int{0, 1, 31, 32, 33, 64, 65, 100} {
		data := make([]byte, size)
		rnd.Read(data)
		if want, got := Keccak256(data), cache.hash(data); want != got {
			t.Errorf("unexpected digest for %d byte input, wanted %v, got %v", size, want, got)
		}
	}
}

func TestHashCache_RepeatedLookupsHitTheCache(t *testing.T) {
	cache := newHashCache(16, 16)
	data := make([]byte, 32)
	data[0] = 0xAB

	first := cache.hash(data)
	if want, got := 1, cache.cache32.Len(); want != got {
		t.Fatalf("unexpected cache size, wanted %d, got %d", want, got)
	}
	if second := cache.hash(data); first != second {
		t.Errorf("cache returned a different digest: %v vs %v", first, second)
	}
	if want, got := 1, cache.cache32.Len(); want != got {
		t.Errorf("repeated lookup changed the cache size, wanted %d, got %d", want, got)
	}
}

func TestHashCache_EvictionDoesNotCorruptResults(t *testing.T) {
	cache := newHashCache(2, 2)
	inputs := make([][]byte, 10)
	for i := range inputs {
		inputs[i] = make([]byte, 32)
		inputs[i][0] = byte(i)
	}

	// Fill well beyond capacity, then re-check every input.
	for _, data := range inputs {
		cache.hash(data)
	}
	for _, data := range inputs {
		if want, got := Keccak256(data), cache.hash(data); want != got {
			t.Errorf("unexpected digest after eviction, wanted %v, got %v", want, got)
		}
	}
}

func TestHashCache_ParallelAccessIsSafe(t *testing.T) {
	cache := newHashCache(16, 16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(seed byte) {
			defer wg.Done()
			data := make([]byte, 64)
			for j := 0; j < 100; j++ {
				data[0] = seed
				data[1] = byte(j)
				if want, got := Keccak256(data), cache.hash(data); want != got {
					t.Errorf("unexpected digest, wanted %v, got %v", want, got)
				}
			}
		}(byte(i))
	}
	wg.Wait()
}

func TestKeccak256Cached_MatchesKeccak256(t *testing.T) {
	for _, size := range []int{32, 64, 7} {
		data := make([]byte, size)
		data[0] = 0x42
		if want, got := Keccak256(data), Keccak256Cached(data); want != got {
			t.Errorf("unexpected digest for %d byte input, wanted %v, got %v", size, want, got)
		}
	}
}
