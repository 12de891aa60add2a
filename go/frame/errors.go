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

// All errors raised by this package are fatal to the enclosing frame. The
// failing primitive call has no effect on the stack or memory it touched;
// effects of earlier calls remain. Recovery policy belongs to the caller.
const (
	ErrGasUintOverflow = vulcan.ConstError("gas uint64 overflow")
	ErrOutOfGas        = vulcan.ConstError("out of gas")
	ErrStackOverflow   = vulcan.ConstError("stack overflow")
	ErrStackUnderflow  = vulcan.ConstError("stack underflow")
)
