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

// Context is the execution environment of one call frame. It bundles the
// frame-scoped stack and memory, a borrowed reference to the immutable
// input buffer, a handle to the account's persistent storage, and the gas
// meter governing every access. For each frame a new Context is created;
// stack and memory are discarded with it while storage outlives it.
//
// Every operation charges its gas before applying any effect, in strict
// program order. A failing operation leaves the stack and memory untouched
// by that call and is fatal to the frame; effects of earlier operations
// remain. Rollback of a failed frame, including its storage writes, is the
// responsibility of the external call-frame manager.
//
// A Context must only be used by one goroutine at a time. Frames executing
// against the same account's storage must be serialized by the caller.
type Context struct {
	stack    *Stack
	memory   *Memory
	calldata Calldata
	storage  vulcan.Storage
	meter    *GasMeter

	storageCosts   StorageCostTable
	refundEligible bool // whether the last store took a refund-eligible path
}

// NewContext creates the execution context of a fresh frame with an empty
// stack and memory, the given input buffer and storage handle, and the
// given gas budget. Storage writes are priced by the EIP-2200 tiers.
func NewContext(input vulcan.Data, storage vulcan.Storage, budget vulcan.Gas) *Context {
	return NewContextWithCosts(input, storage, budget, EIP2200Costs())
}

// NewContextWithCosts is NewContext with a caller-supplied storage cost
// table.
func NewContextWithCosts(input vulcan.Data, storage vulcan.Storage, budget vulcan.Gas, costs StorageCostTable) *Context {
	return &Context{
		stack:        NewStack(),
		memory:       NewMemory(),
		calldata:     NewCalldata(input),
		storage:      storage,
		meter:        NewGasMeter(budget),
		storageCosts: costs,
	}
}

// Discard releases the frame's stack and memory. The storage handle is
// untouched except for whatever writes already landed through
// StorageStore. The context must not be used afterwards, and Discard must
// be called at most once.
func (c *Context) Discard() {
	ReturnStack(c.stack)
	c.stack = nil
	c.memory = nil
}

// --- stack ---

// Push charges the caller-supplied cost and pushes the given word onto the
// stack. Boundary violations are detected before gas is consumed.
func (c *Context) Push(value vulcan.Word, cost vulcan.Gas) error {
	if c.stack.Len() >= maxStackSize {
		return ErrStackOverflow
	}
	if err := c.meter.UseGas(cost); err != nil {
		return err
	}
	return c.stack.Push(value.ToUint256())
}

// Pop charges the caller-supplied cost and removes and returns the top
// word of the stack.
func (c *Context) Pop(cost vulcan.Gas) (vulcan.Word, error) {
	if c.stack.Len() == 0 {
		return vulcan.Word{}, ErrStackUnderflow
	}
	if err := c.meter.UseGas(cost); err != nil {
		return vulcan.Word{}, err
	}
	value, err := c.stack.Pop()
	if err != nil {
		return vulcan.Word{}, err
	}
	return vulcan.WordFromUint256(value), nil
}

// Peek returns the word at the given depth without removing it; depth 0 is
// the top of the stack. Peeking is free.
func (c *Context) Peek(depth int) (vulcan.Word, error) {
	value, err := c.stack.Peek(depth)
	if err != nil {
		return vulcan.Word{}, err
	}
	return vulcan.WordFromUint256(value), nil
}

// Dup charges the caller-supplied cost and pushes a copy of the element at
// the given depth; depth 1 is the current top.
func (c *Context) Dup(depth int, cost vulcan.Gas) error {
	if depth < 1 || depth > c.stack.Len() {
		return ErrStackUnderflow
	}
	if c.stack.Len() >= maxStackSize {
		return ErrStackOverflow
	}
	if err := c.meter.UseGas(cost); err != nil {
		return err
	}
	return c.stack.Dup(depth)
}

// Swap charges the caller-supplied cost and exchanges the top element with
// the element at the given depth; depth 1 is the element below the top.
func (c *Context) Swap(depth int, cost vulcan.Gas) error {
	if depth < 1 || depth >= c.stack.Len() {
		return ErrStackUnderflow
	}
	if err := c.meter.UseGas(cost); err != nil {
		return err
	}
	return c.stack.Swap(depth)
}

// StackLen returns the number of elements on the stack.
func (c *Context) StackLen() int {
	return c.stack.Len()
}

// --- memory ---

// MemoryRead returns exactly size bytes from [offset, offset+size),
// expanding the memory (and charging for it) first, so the read can only
// fail on gas. The returned slice is backed by the frame's memory.
func (c *Context) MemoryRead(offset, size uint64) ([]byte, error) {
	return c.memory.Read(offset, size, c.meter)
}

// MemoryWrite stores the given bytes at the offset, expanding and charging
// first.
func (c *Context) MemoryWrite(offset uint64, data []byte) error {
	return c.memory.Write(offset, data, c.meter)
}

// MemoryWriteByte stores a single byte at the offset.
func (c *Context) MemoryWriteByte(offset uint64, value byte) error {
	return c.memory.WriteByte(offset, value, c.meter)
}

// MemorySize returns the current memory length in bytes.
func (c *Context) MemorySize() uint64 {
	return c.memory.Size()
}

// --- calldata ---

// CalldataSize charges the caller-supplied cost and returns the fixed
// length of the input buffer.
func (c *Context) CalldataSize(cost vulcan.Gas) (uint64, error) {
	if err := c.meter.UseGas(cost); err != nil {
		return 0, err
	}
	return c.calldata.Size(), nil
}

// CalldataLoad charges the caller-supplied cost and reads the 32 bytes at
// the given offset as a big-endian word, zero-padded past the input's end.
func (c *Context) CalldataLoad(offset uint64, cost vulcan.Gas) (vulcan.Word, error) {
	if err := c.meter.UseGas(cost); err != nil {
		return vulcan.Word{}, err
	}
	var value uint256.Int
	c.calldata.LoadWord(uint256.NewInt(offset), &value)
	return vulcan.WordFromUint256(&value), nil
}

// CalldataCopy charges the caller-supplied base cost plus the per-word copy
// cost and copies size bytes of input (zero-padded past the end) into
// memory at memOffset, expanding the destination under the usual rule.
func (c *Context) CalldataCopy(memOffset, dataOffset, size uint64, cost vulcan.Gas) error {
	if err := c.meter.UseGas(cost); err != nil {
		return err
	}
	return c.calldata.CopyTo(c.memory, memOffset, dataOffset, size, c.meter)
}

// --- storage ---

// StorageLoad charges the caller-supplied cost and returns the value of
// the given slot; absent slots read as the zero word.
func (c *Context) StorageLoad(key vulcan.Key, cost vulcan.Gas) (vulcan.Word, error) {
	if err := c.meter.UseGas(cost); err != nil {
		return vulcan.Word{}, err
	}
	return c.storage.Get(key), nil
}

// StorageStore classifies the transition caused by writing value into the
// given slot, charges the corresponding tier of the frame's cost table, and
// only then applies the write. Refund credits accumulate on the gas meter;
// whether the write took a refund-eligible path is queryable via
// TookRefundEligiblePath until the next store.
func (c *Context) StorageStore(key vulcan.Key, value vulcan.Word) (vulcan.StorageStatus, error) {
	status := vulcan.GetStorageStatus(c.storage.GetCommitted(key), c.storage.Get(key), value)
	if err := c.meter.UseGas(c.storageCosts.Cost(status)); err != nil {
		return status, err
	}
	c.storage.Set(key, value)
	c.meter.AddRefund(c.storageCosts.Refund(status))
	c.refundEligible = status.RefundsGas()
	return status, nil
}

// TookRefundEligiblePath reports whether the most recent StorageStore
// cleared a committed non-zero slot. External gas-accounting layers read
// this per store call.
func (c *Context) TookRefundEligiblePath() bool {
	return c.refundEligible
}

// --- hashing ---

// Hash reads size bytes of memory at the given offset and returns the
// Keccak-256 digest. Digests of 32 and 64 byte inputs are served from a
// process-wide cache, since identical values are frequently re-hashed.
//
// The charge is two-phased: the memory expansion fee is charged and the
// expansion applied first, then the input-length dependent hash cost. A
// failure of the second charge thus leaves the memory expanded; the error
// is fatal to the frame, so the state is never observed.
func (c *Context) Hash(offset, size uint64) (vulcan.Hash, error) {
	data, err := c.memory.Read(offset, size, c.meter)
	if err != nil {
		return vulcan.Hash{}, err
	}
	if err := c.meter.UseGas(HashCost(size)); err != nil {
		return vulcan.Hash{}, err
	}
	return Keccak256Cached(data), nil
}

// --- gas ---

// Gas returns the remaining budget.
func (c *Context) Gas() vulcan.Gas {
	return c.meter.Gas()
}

// Refund returns the accumulated refund credit.
func (c *Context) Refund() vulcan.Gas {
	return c.meter.Refund()
}

// UseGas charges an amount determined by the caller, e.g. the static price
// of an operation outside this core.
func (c *Context) UseGas(amount vulcan.Gas) error {
	return c.meter.UseGas(amount)
}

// --- component access ---

// Stack grants direct access to the frame's stack for callers performing
// word arithmetic in place. Gas for such accesses must be charged through
// UseGas by the caller.
func (c *Context) Stack() *Stack {
	return c.stack
}

// Memory grants direct access to the frame's memory.
func (c *Context) Memory() *Memory {
	return c.memory
}

// Meter grants direct access to the frame's gas meter.
func (c *Context) Meter() *GasMeter {
	return c.meter
}

// Storage returns the account storage handle this frame writes through.
func (c *Context) Storage() vulcan.Storage {
	return c.storage
}
