// Copyright (c) 2024 Vulcan Labs
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at vulcan-vm.org/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package vulcan

// ConstError is an error type for declaring error constants. Unlike errors
// created through errors.New, two ConstError instances with the same text
// are considered identical by errors.Is.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}
