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

import "github.com/vulcan-vm/vulcan/go/vulcan"

// The constants below are consensus-versioned policy values, not tunables.
// Changing any of them changes the observable gas accounting of every frame
// and breaks compatibility with systems built on this cost model.
const (
	GasQuickStep   vulcan.Gas = 2 // Default cost of trivial stack operations (pop, size queries).
	GasFastestStep vulcan.Gas = 3 // Default cost of push, dup, swap, and word loads.

	CopyGasPerWord vulcan.Gas = 3 // Charged per 32-byte word copied into memory.

	MemoryGasLinear      uint64 = 3   // Linear coefficient of the memory expansion cost.
	MemoryGasQuadDivisor uint64 = 512 // Divisor of the quadratic memory expansion term.

	Sha3BaseGas vulcan.Gas = 30 // Fixed base cost of a hash operation.
	Sha3WordGas vulcan.Gas = 6  // Charged per 32-byte word of hash input, rounded up.
)

// HashCost returns the gas cost for hashing an input of the given length:
// a fixed base cost plus a per-word cost, rounding the length up to the
// next word boundary.
func HashCost(size uint64) vulcan.Gas {
	return Sha3BaseGas + Sha3WordGas*vulcan.Gas(vulcan.SizeInWords(size))
}

// GasMeter tracks the monotonically decreasing gas budget of one frame,
// plus the refund counter fed by storage-clearing writes. The budget never
// goes negative; operations whose cost would exceed it are rejected before
// any data-area mutation.
type GasMeter struct {
	gas    vulcan.Gas
	refund vulcan.Gas
}

// NewGasMeter creates a meter holding the given budget.
func NewGasMeter(budget vulcan.Gas) *GasMeter {
	return &GasMeter{gas: budget}
}

// UseGas reduces the budget by the given amount. If the remaining budget
// does not cover the amount, no gas is consumed and ErrOutOfGas is
// returned; the caller must abort the current operation without applying
// its effect.
func (m *GasMeter) UseGas(amount vulcan.Gas) error {
	if m.gas < 0 || amount < 0 || m.gas < amount {
		return ErrOutOfGas
	}
	m.gas -= amount
	return nil
}

// Gas returns the remaining budget.
func (m *GasMeter) Gas() vulcan.Gas {
	return m.gas
}

// AddRefund credits the refund counter read by the external gas layer.
func (m *GasMeter) AddRefund(amount vulcan.Gas) {
	m.refund += amount
}

// SubRefund debits the refund counter.
func (m *GasMeter) SubRefund(amount vulcan.Gas) {
	m.refund -= amount
}

// Refund returns the accumulated refund. Crediting it back to the budget is
// the responsibility of the external gas-accounting layer.
func (m *GasMeter) Refund() vulcan.Gas {
	return m.refund
}

// StorageCostTable defines the gas tiers of storage writes. The numeric
// values are an external policy concern; the engine only classifies each
// write into a tier. The zero value of the table charges nothing.
type StorageCostTable struct {
	Set         vulcan.Gas // Writing a non-zero value into a slot committed as zero.
	Reset       vulcan.Gas // Overwriting or clearing a slot committed as non-zero.
	Dirty       vulcan.Gas // Re-writing a slot already modified in this transaction.
	ClearRefund vulcan.Gas // Credited when a committed non-zero slot is cleared.
}

// EIP2200Costs returns the storage write cost tiers introduced with
// EIP-2200 (Istanbul).
func EIP2200Costs() StorageCostTable {
	return StorageCostTable{
		Set:         20000,
		Reset:       5000,
		Dirty:       800,
		ClearRefund: 15000,
	}
}

// Cost maps a storage transition to its gas tier. Slots whose current value
// still matches the committed value pay the full Set/Reset tier; everything
// else, including value-preserving writes, pays the dirty tier.
func (t StorageCostTable) Cost(status vulcan.StorageStatus) vulcan.Gas {
	switch status {
	case vulcan.StorageAdded:
		return t.Set
	case vulcan.StorageModified, vulcan.StorageDeleted:
		return t.Reset
	default:
		return t.Dirty
	}
}

// Refund returns the refund credit earned by the given transition.
func (t StorageCostTable) Refund(status vulcan.StorageStatus) vulcan.Gas {
	if status.RefundsGas() {
		return t.ClearRefund
	}
	return 0
}
