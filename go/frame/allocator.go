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

// Allocator is a bump allocator handing out non-overlapping, word-aligned
// regions of one frame's memory. It owns its cursor as explicit state
// instead of encoding it at a reserved offset inside the memory itself, so
// unrelated memory writes cannot corrupt it. Regions are never freed
// individually; the allocator is discarded with its frame.
type Allocator struct {
	memory *Memory
	cursor uint64
}

func NewAllocator(memory *Memory) *Allocator {
	return &Allocator{memory: memory, cursor: memory.Size()}
}

// Alloc reserves size bytes and returns the offset of the reserved region.
// The region starts word-aligned and the backing memory is expanded (and
// charged) to cover it; freshly reserved bytes are zero. On insufficient
// gas the cursor and the memory remain unchanged.
func (a *Allocator) Alloc(size uint64, meter *GasMeter) (offset uint64, err error) {
	if size == 0 {
		return a.cursor, nil
	}
	aligned := toValidMemorySize(a.cursor)
	if aligned < a.cursor {
		return 0, ErrGasUintOverflow
	}
	if err := a.memory.expandMemory(aligned, size, meter); err != nil {
		return 0, err
	}
	a.cursor = aligned + size
	return aligned, nil
}

// Cursor returns the offset at which the next allocation will be placed,
// before word alignment.
func (a *Allocator) Cursor() uint64 {
	return a.cursor
}
