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
	"github.com/holiman/uint256"
	"github.com/vulcan-vm/vulcan/go/vulcan"
)

// Calldata is the immutable input buffer supplied at frame entry. Its
// length is fixed; reads past the end yield zero bytes rather than errors.
// The frame only borrows the underlying bytes, which may outlive it in the
// caller's scope.
type Calldata struct {
	data vulcan.Data
}

func NewCalldata(data vulcan.Data) Calldata {
	return Calldata{data: data}
}

// Size returns the fixed length of the input buffer.
func (c Calldata) Size() uint64 {
	return uint64(len(c.data))
}

// LoadWord reads the 32 bytes starting at offset as a big-endian word.
// Byte positions at or beyond the buffer's end are zero, including the case
// where the offset itself is past the end.
func (c Calldata) LoadWord(offset *uint256.Int, target *uint256.Int) {
	if !offset.IsUint64() || offset.Uint64() > uint64(len(c.data)) {
		target.Clear()
		return
	}

	start := offset.Uint64()
	var value [32]byte
	covered := copy(value[:], c.data[start:])
	for i := covered; i < 32; i++ {
		value[i] = 0
	}
	target.SetBytes32(value[:])
}

// CopyTo copies size bytes starting at dataOffset into the given memory at
// memOffset, zero-padding the portion past the input's end. The copy is
// charged per word and the destination range is expanded under the
// memory's usual cost rule; the input itself never expands and is never
// charged.
func (c Calldata) CopyTo(mem *Memory, memOffset, dataOffset, size uint64, meter *GasMeter) error {
	if size == 0 {
		// zero size skips expansion although the offsets may be off-bounds
		return nil
	}

	words := vulcan.SizeInWords(size)
	if err := meter.UseGas(CopyGasPerWord * vulcan.Gas(words)); err != nil {
		return err
	}

	target, err := mem.Read(memOffset, size, meter)
	if err != nil {
		return err
	}

	if dataOffset > uint64(len(c.data)) {
		dataOffset = uint64(len(c.data))
	}
	covered := copy(target, c.data[dataOffset:])
	for i := covered; i < len(target); i++ {
		target[i] = 0
	}
	return nil
}
