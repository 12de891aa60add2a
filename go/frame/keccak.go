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
	"hash"
	"sync"

	"github.com/vulcan-vm/vulcan/go/vulcan"
	"golang.org/x/crypto/sha3"
)

// keccakHasher is the subset of the sha3 state used by this package. The
// Read method obtains the digest without the state copy performed by Sum.
type keccakHasher interface {
	Reset()
	Write(in []byte) (int, error)
	Read(out []byte) (int, error)
}

var keccakHasherPool = sync.Pool{New: func() any { return sha3.NewLegacyKeccak256() }}

// Keccak256 computes the Keccak-256 digest of the given data. The function
// is pure and deterministic; identical input always yields an identical
// digest.
func Keccak256(data []byte) vulcan.Hash {
	hasher := keccakHasherPool.Get().(keccakHasher)
	hasher.Reset()
	hasher.Write(data)
	var res vulcan.Hash
	hasher.Read(res[:])
	keccakHasherPool.Put(hasher)
	return res
}

// Keccak256For32byte computes the digest of a single 32-byte value, the
// dominant input size when hashing storage keys.
func Keccak256For32byte(data [32]byte) vulcan.Hash {
	return Keccak256(data[:])
}

// Hasher absorbs a byte sequence in segments. Hashing segments through a
// Hasher is equivalent to hashing their concatenation, so callers composing
// hash input from multiple pieces (address + salt + code hash, ...) need
// not materialize an intermediate buffer.
//
// A Hasher is not thread-safe.
type Hasher struct {
	state hash.Hash
}

func NewHasher() *Hasher {
	return &Hasher{state: sha3.NewLegacyKeccak256()}
}

// Write absorbs the next segment of the input.
func (h *Hasher) Write(segment []byte) {
	h.state.Write(segment)
}

// Sum returns the digest of everything absorbed so far. The absorption
// state is left intact; further segments may be written afterwards.
func (h *Hasher) Sum() vulcan.Hash {
	var res vulcan.Hash
	copy(res[:], h.state.Sum(nil))
	return res
}

// Reset discards all absorbed input.
func (h *Hasher) Reset() {
	h.state.Reset()
}
