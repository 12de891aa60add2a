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

import "math"

// GetStorageStatus obtains the status code describing a mutation of a
// storage slot with the given committed, current, and new value.
func GetStorageStatus(committed, current, new Word) StorageStatus {
	var zero = Word{}

	if current == new {
		return StorageAssigned
	}

	// 0 -> 0 -> Z
	if committed == zero && current == zero && new != zero {
		return StorageAdded
	}

	// X -> X -> 0
	if committed != zero && current == committed && new == zero {
		return StorageDeleted
	}

	// X -> X -> Z
	if committed != zero && current == committed && new != zero && new != committed {
		return StorageModified
	}

	// X -> 0 -> Z
	if committed != zero && current == zero && new != committed && new != zero {
		return StorageDeletedAdded
	}

	// X -> Y -> 0
	if committed != zero && current != committed && current != zero && new == zero {
		return StorageModifiedDeleted
	}

	// X -> 0 -> X
	if committed != zero && current == zero && new == committed {
		return StorageDeletedRestored
	}

	// 0 -> Y -> 0
	if committed == zero && current != zero && new == zero {
		return StorageAddedDeleted
	}

	// X -> Y -> X
	if committed != zero && current != committed && current != zero && new == committed {
		return StorageModifiedRestored
	}

	return StorageAssigned
}

// SizeInWords returns the number of 32-byte words required to store the
// given number of bytes, checking that size+31 does not overflow uint64.
func SizeInWords(size uint64) uint64 {
	if size > math.MaxUint64-31 {
		return math.MaxUint64/32 + 1
	}
	return (size + 31) / 32
}
