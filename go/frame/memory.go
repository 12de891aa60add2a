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
	"math"

	"github.com/holiman/uint256"
	"github.com/vulcan-vm/vulcan/go/vulcan"
)

// Memory is the linear, byte-addressable scratch area of one frame. It
// starts empty and grows on demand in 32-byte steps; bytes introduced by
// growth are zero. Growth is charged against the frame's gas meter before
// it happens and the buffer never shrinks.
type Memory struct {
	store             []byte
	currentMemoryCost vulcan.Gas
}

func NewMemory() *Memory {
	return &Memory{}
}

// Maximum memory size for which an expansion cost can be computed without
// overflowing the signed 64-bit gas domain.
const maxMemoryExpansionSize = 0x1FFFFFFFE0

// toValidMemorySize rounds the size up to the next multiple of the 32-byte
// word size, saturating on overflow.
func toValidMemorySize(size uint64) uint64 {
	fullWordsSize := vulcan.SizeInWords(size) * 32
	if size != 0 && fullWordsSize < size {
		return math.MaxUint64
	}
	return fullWordsSize
}

// expansionCosts computes the fee for growing the memory to hold size
// bytes. The total cost of a memory of w words is 3*w + w*w/512; the fee is
// the difference between the total cost after and before the expansion. A
// size already covered is free.
func (m *Memory) expansionCosts(size uint64) vulcan.Gas {

	// static assert
	const (
		maxInWords uint64 = (uint64(maxMemoryExpansionSize) + 31) / 32
		_                 = int64(maxInWords*maxInWords/MemoryGasQuadDivisor + MemoryGasLinear*maxInWords)
	)

	if m.length() >= size {
		return 0
	}
	size = toValidMemorySize(size)

	if size > maxMemoryExpansionSize {
		return vulcan.Gas(math.MaxInt64)
	}

	words := vulcan.SizeInWords(size)
	newCosts := vulcan.Gas((words*words)/MemoryGasQuadDivisor + MemoryGasLinear*words)
	return newCosts - m.currentMemoryCost
}

// expandMemory grows the memory so that the range [offset, offset+size) is
// covered, charging the expansion fee to the given meter first. If the
// range is already covered or size is 0, it does nothing and charges
// nothing. On insufficient gas or an offset+size overflow the memory is
// left unchanged.
func (m *Memory) expandMemory(offset, size uint64, meter *GasMeter) error {
	if size == 0 {
		return nil
	}
	needed := offset + size
	// check overflow
	if needed < offset {
		return ErrGasUintOverflow
	}
	if m.length() < needed {
		fee := m.expansionCosts(needed)
		if err := meter.UseGas(fee); err != nil {
			return err
		}
		m.expandMemoryWithoutCharging(needed)
	}

	return nil
}

// expandMemoryWithoutCharging expands the memory to the given size without
// charging gas.
func (m *Memory) expandMemoryWithoutCharging(needed uint64) {
	needed = toValidMemorySize(needed)
	size := m.length()
	if size < needed {
		m.currentMemoryCost += m.expansionCosts(needed)
		m.store = append(m.store, make([]byte, needed-size)...)
	}
}

func (m *Memory) length() uint64 {
	return uint64(len(m.store))
}

// Size returns the current memory length in bytes, always a multiple of 32.
func (m *Memory) Size() uint64 {
	return m.length()
}

// Read obtains a slice of size bytes from the memory at the given offset,
// expanding (and charging) as needed so that reads only fail on gas. The
// returned slice is backed by the memory's internal data; updates to the
// slice will thus affect the memory state. This connection is invalidated
// by any subsequent memory operation that may change the size of the
// memory.
func (m *Memory) Read(offset, size uint64, meter *GasMeter) ([]byte, error) {
	err := m.expandMemory(offset, size, meter)
	if err != nil {
		return nil, err
	}
	// memory does not expand on size 0 independently of the offset, so an
	// out of bounds access must be prevented explicitly
	if size == 0 {
		return nil, nil
	}
	return m.store[offset : offset+size], nil
}

// Write stores the given bytes at the given offset, expanding (and
// charging) first so that the destination range is covered.
func (m *Memory) Write(offset uint64, data []byte, meter *GasMeter) error {
	if len(data) == 0 {
		return nil
	}
	err := m.expandMemory(offset, uint64(len(data)), meter)
	if err != nil {
		return err
	}
	copy(m.store[offset:offset+uint64(len(data))], data)
	return nil
}

// WriteByte stores a single byte at the given offset. The offset itself
// need not be word-aligned; only the implied expansion is.
func (m *Memory) WriteByte(offset uint64, value byte, meter *GasMeter) error {
	err := m.expandMemory(offset, 1, meter)
	if err != nil {
		return err
	}
	m.store[offset] = value
	return nil
}

// ReadWord reads a 32-byte big-endian word from the memory at the given
// offset and stores it in the provided target. Expands memory as needed and
// charges for it.
func (m *Memory) ReadWord(offset uint64, target *uint256.Int, meter *GasMeter) error {
	data, err := m.Read(offset, 32, meter)
	if err != nil {
		return err
	}
	target.SetBytes32(data)
	return nil
}

// WriteWord stores a 32-byte big-endian word at the given offset, expanding
// and charging first.
func (m *Memory) WriteWord(offset uint64, value *uint256.Int, meter *GasMeter) error {
	err := m.expandMemory(offset, 32, meter)
	if err != nil {
		return err
	}
	data := value.Bytes32()
	copy(m.store[offset:offset+32], data[:])
	return nil
}
