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
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/vulcan-vm/vulcan/go/vulcan"
	"pgregory.net/rand"
)

func TestMemory_ExpansionCostsComputesCorrectCosts(t *testing.T) {
	tests := []struct {
		size uint64
		cost vulcan.Gas
	}{
		{0, 0},
		{1, 3},
		{32, 3},
		{33, 6},
		{64, 6},
		{65, 9},
		{22 * 32, 3 * 22},             // last word size without square cost
		{23 * 32, (23*23)/512 + 3*23}, // first word size with square cost
		{maxMemoryExpansionSize, 36028809887088637}, // magic number, max cost
		{maxMemoryExpansionSize + 1, math.MaxInt64},
		{math.MaxInt64, math.MaxInt64},
	}

	for _, test := range tests {
		m := NewMemory()
		cost := m.expansionCosts(test.size)
		if cost != test.cost {
			t.Errorf("expansionCosts(%d) = %d, want %d", test.size, cost, test.cost)
		}
	}
}

func TestMemory_ExpansionChargesOnlyTheDifference(t *testing.T) {
	m := NewMemory()
	meter := NewGasMeter(1000)

	// Expand to 2 words, costing cost(2) = 6.
	if err := m.expandMemory(0, 64, meter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := vulcan.Gas(1000-6), meter.Gas(); want != got {
		t.Fatalf("unexpected gas, wanted %d, got %d", want, got)
	}

	// Expand to 4 words, costing cost(4) - cost(2) = 12 - 6 = 6.
	if err := m.expandMemory(0, 128, meter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := vulcan.Gas(1000-12), meter.Gas(); want != got {
		t.Errorf("unexpected gas, wanted %d, got %d", want, got)
	}
}

func TestMemory_AccessToCoveredRangeIsFree(t *testing.T) {
	m := NewMemory()
	meter := NewGasMeter(1000)
	if err := m.expandMemory(0, 64, meter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	remaining := meter.Gas()

	if _, err := m.Read(0, 64, meter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Write(32, []byte{1, 2, 3}, meter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := remaining, meter.Gas(); want != got {
		t.Errorf("covered access charged gas, wanted %d, got %d", want, got)
	}
}

func TestMemory_SizeIsAlwaysAMultipleOfTheWordSize(t *testing.T) {
	tests := []uint64{1, 3, 31, 32, 33, 100}

	for _, size := range tests {
		m := NewMemory()
		meter := NewGasMeter(1000)
		if err := m.Write(0, make([]byte, size), meter); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := m.Size(); got%32 != 0 {
			t.Errorf("unexpected size after writing %d bytes: %d", size, got)
		}
		if got := m.Size(); got < size {
			t.Errorf("memory too small after writing %d bytes: %d", size, got)
		}
	}
}

func TestMemory_ExpandedBytesAreZero(t *testing.T) {
	m := NewMemory()
	meter := NewGasMeter(1000)

	data, err := m.Read(10, 40, meter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, make([]byte, 40)) {
		t.Errorf("expanded memory is not zero initialized: %x", data)
	}
}

func TestMemory_WriteReadRoundTrip(t *testing.T) {
	tests := map[string]struct {
		offset uint64
		data   []byte
	}{
		"at_origin":     {offset: 0, data: []byte{1, 2, 3}},
		"word_aligned":  {offset: 32, data: []byte{4, 5, 6, 7}},
		"unaligned":     {offset: 17, data: []byte{8}},
		"word_boundary": {offset: 30, data: []byte{9, 10, 11, 12}},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			m := NewMemory()
			meter := NewGasMeter(1000)

			if err := m.Write(test.offset, test.data, meter); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			data, err := m.Read(test.offset, uint64(len(test.data)), meter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(data, test.data) {
				t.Errorf("unexpected data, wanted %x, got %x", test.data, data)
			}
		})
	}
}

func TestMemory_FailedExpansionLeavesMemoryUnchanged(t *testing.T) {
	// Writing 3 bytes at offset 0 requires one word costing 3 gas.
	m := NewMemory()
	meter := NewGasMeter(3)
	if err := m.Write(0, []byte{1, 2, 3}, meter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := uint64(32), m.Size(); want != got {
		t.Fatalf("unexpected size, wanted %d, got %d", want, got)
	}

	// One unit of gas less must fail without expanding.
	m = NewMemory()
	meter = NewGasMeter(2)
	if err := m.Write(0, []byte{1, 2, 3}, meter); !errors.Is(err, ErrOutOfGas) {
		t.Fatalf("unexpected error, wanted %v, got %v", ErrOutOfGas, err)
	}
	if want, got := uint64(0), m.Size(); want != got {
		t.Errorf("failed write expanded memory, wanted size %d, got %d", want, got)
	}
	if want, got := vulcan.Gas(2), meter.Gas(); want != got {
		t.Errorf("failed write consumed gas, wanted %d, got %d", want, got)
	}
}

func TestMemory_OffsetOverflowIsDetected(t *testing.T) {
	m := NewMemory()
	meter := NewGasMeter(1000)

	if err := m.Write(math.MaxUint64, []byte{1}, meter); !errors.Is(err, ErrGasUintOverflow) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrGasUintOverflow, err)
	}
	if _, err := m.Read(math.MaxUint64-10, 32, meter); !errors.Is(err, ErrGasUintOverflow) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrGasUintOverflow, err)
	}
}

func TestMemory_ZeroSizedAccessNeverExpands(t *testing.T) {
	m := NewMemory()
	meter := NewGasMeter(0)

	data, err := m.Read(1<<40, 0, meter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data != nil {
		t.Errorf("unexpected data for zero-sized read: %x", data)
	}
	if want, got := uint64(0), m.Size(); want != got {
		t.Errorf("zero-sized access expanded memory to %d", got)
	}
}

func TestMemory_WriteByteExpandsByOneWord(t *testing.T) {
	m := NewMemory()
	meter := NewGasMeter(1000)

	if err := m.WriteByte(33, 0xAB, meter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := uint64(64), m.Size(); want != got {
		t.Errorf("unexpected size, wanted %d, got %d", want, got)
	}
	data, err := m.Read(33, 1, meter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := byte(0xAB), data[0]; want != got {
		t.Errorf("unexpected byte, wanted %x, got %x", want, got)
	}
}

func TestMemory_WordRoundTrip(t *testing.T) {
	m := NewMemory()
	meter := NewGasMeter(1000)

	value := uint256.NewInt(0).Lsh(uint256.NewInt(0x1223457890abcdef), 64)
	if err := m.WriteWord(16, value, meter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restored := uint256.NewInt(1)
	if err := m.ReadWord(16, restored, meter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.Cmp(restored) != 0 {
		t.Errorf("unexpected value, wanted %x, got %x", value, restored)
	}
}

func TestMemory_RandomWriteReadRoundTrips(t *testing.T) {
	rnd := rand.New(0)
	m := NewMemory()
	meter := NewGasMeter(1 << 30)

	for i := 0; i < 1000; i++ {
		offset := rnd.Uint64n(1 << 16)
		data := make([]byte, rnd.Intn(100)+1)
		rnd.Read(data)

		if err := m.Write(offset, data, meter); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		restored, err := m.Read(offset, uint64(len(data)), meter)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(data, restored) {
			t.Fatalf("unexpected data, wanted %x, got %x", data, restored)
		}
	}
}
