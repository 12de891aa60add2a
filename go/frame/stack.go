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
	"fmt"
	"strings"
	"sync"

	"github.com/holiman/uint256"
)

const maxStackSize = 1024 // Maximum size of a frame stack allowed.

// Stack is the 1024-element 256-bit word-wide LIFO stack of one frame.
// It is a fixed-size stack to prevent memory reallocation during execution.
// All operations check their boundaries and report ErrStackOverflow or
// ErrStackUnderflow; a failing operation leaves the stack unchanged.
//
// Each stack consumes 1024 * 32 bytes = 32KB of memory. Thus, creating and
// destroying stacks could incur significant overhead. To mitigate this, a
// stack pool is provided to reuse stack instances. To obtain an empty stack
// from the pool, use NewStack(). To return a stack to the pool, use
// ReturnStack(s).
//
// The stack is not thread-safe. NewStack() and ReturnStack() are thread-safe.
type Stack struct {
	data         [maxStackSize]uint256.Int
	stackPointer int
}

// Push adds a copy of the given value to the top of the stack.
func (s *Stack) Push(d *uint256.Int) error {
	if s.stackPointer >= maxStackSize {
		return ErrStackOverflow
	}
	s.data[s.stackPointer] = *d
	s.stackPointer++
	return nil
}

// PushEmpty adds a value with an undefined content to the top of the stack
// and returns a pointer to this element. Use this function if the element on
// the top of the stack should be initialized directly through the returned
// pointer.
func (s *Stack) PushEmpty() (*uint256.Int, error) {
	if s.stackPointer >= maxStackSize {
		return nil, ErrStackOverflow
	}
	s.stackPointer++
	return &s.data[s.stackPointer-1], nil
}

// Pop removes the top element from the stack and returns a pointer to it.
// The obtained pointer is only valid until the next push operation. The
// pointer can be used to obtain the popped element without the need to copy
// it.
func (s *Stack) Pop() (*uint256.Int, error) {
	if s.stackPointer == 0 {
		return nil, ErrStackUnderflow
	}
	s.stackPointer--
	return &s.data[s.stackPointer], nil
}

// Peek returns a pointer to the n-th element from the top of the stack
// without removing it. The top element is at depth 0. The returned pointer
// is only valid until the next operation on the stack.
func (s *Stack) Peek(depth int) (*uint256.Int, error) {
	if depth < 0 || depth >= s.stackPointer {
		return nil, ErrStackUnderflow
	}
	return &s.data[s.stackPointer-depth-1], nil
}

// Swap exchanges the top element with the n-th element below it. The element
// directly below the top is at depth 1. Swapping is O(1) through direct
// indexing.
func (s *Stack) Swap(depth int) error {
	if depth < 1 || depth >= s.stackPointer {
		return ErrStackUnderflow
	}
	top, deep := s.stackPointer-1, s.stackPointer-depth-1
	s.data[deep], s.data[top] = s.data[top], s.data[deep]
	return nil
}

// Dup pushes a copy of the n-th element from the top onto the stack. The
// current top element is at depth 1.
func (s *Stack) Dup(depth int) error {
	if depth < 1 || depth > s.stackPointer {
		return ErrStackUnderflow
	}
	if s.stackPointer >= maxStackSize {
		return ErrStackOverflow
	}
	s.data[s.stackPointer] = s.data[s.stackPointer-depth]
	s.stackPointer++
	return nil
}

// Len returns the number of elements on the stack.
func (s *Stack) Len() int {
	return s.stackPointer
}

func (s *Stack) String() string {
	toHex := func(z *uint256.Int) string {
		b := strings.Builder{}
		b.WriteString("0x")
		bytes := z.Bytes32()
		for i, cur := range bytes {
			b.WriteString(fmt.Sprintf("%02x", cur))
			if (i+1)%8 == 0 {
				b.WriteString(" ")
			}
		}
		return b.String()
	}

	b := strings.Builder{}
	for i := 0; i < s.Len(); i++ {
		value, _ := s.Peek(i)
		b.WriteString(fmt.Sprintf("    [%4d] %v\n", s.Len()-i-1, toHex(value)))
	}
	return b.String()
}

// ------------------ Stack Pool ------------------

var stackPool = sync.Pool{
	New: func() interface{} {
		return &Stack{}
	},
}

// NewStack returns a new stack instance from the reuse pool. Heavy stack
// users should use this function to prevent memory reallocation overhead.
// This function is thread-safe.
func NewStack() *Stack {
	return stackPool.Get().(*Stack)
}

// ReturnStack returns the stack to the reuse pool. Any stack may only be
// returned once to avoid concurrent re-use. This is not checked internally.
// This function is thread-safe.
func ReturnStack(s *Stack) {
	s.stackPointer = 0
	stackPool.Put(s)
}
