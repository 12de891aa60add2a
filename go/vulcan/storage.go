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

import (
	"fmt"
	"sync"

	"golang.org/x/exp/maps"
)

//go:generate mockgen -source storage.go -destination storage_mock.go -package vulcan

// Storage is the persistent key-value mapping of a single account. One
// Storage instance belongs to exactly one account and survives every
// individual call frame executed against that account. Implementations do
// not need to be thread-safe; frames touching the same account must be
// serialized by the caller, since the order of reads and writes across
// nested calls is semantically significant.
type Storage interface {
	// Get returns the value stored under the given key, or the zero word if
	// the key was never written. Reads are total; they never fail.
	Get(Key) Word

	// Set updates the mapping and reports how the slot transitioned,
	// relative to its committed and current value. Storing the zero word
	// into an absent slot is a no-op in effect but still classified.
	Set(Key, Word) StorageStatus

	// GetCommitted returns the value the slot had when the enclosing
	// transaction started. It is the reference point for transition
	// classification and for rollback handling by the caller.
	GetCommitted(Key) Word
}

// StorageStatus is an enum utilized to indicate the effect of a storage
// slot update on the respective slot in the context of the current
// transaction. It is needed to perform proper gas price calculations of
// storage write operations.
type StorageStatus int

const (
	// The comment indicates the storage values for the corresponding
	// configuration. X, Y, Z are non-zero numbers, distinct from each other,
	// while 0 is zero.
	//
	// <committed> -> <current> -> <new>
	StorageAssigned         StorageStatus = iota
	StorageAdded                          // 0 -> 0 -> Z
	StorageDeleted                        // X -> X -> 0
	StorageModified                       // X -> X -> Z
	StorageDeletedAdded                   // X -> 0 -> Z
	StorageModifiedDeleted                // X -> Y -> 0
	StorageDeletedRestored                // X -> 0 -> X
	StorageAddedDeleted                   // 0 -> Y -> 0
	StorageModifiedRestored               // X -> Y -> X
)

func (s StorageStatus) String() string {
	switch s {
	case StorageAssigned:
		return "StorageAssigned"
	case StorageAdded:
		return "StorageAdded"
	case StorageAddedDeleted:
		return "StorageAddedDeleted"
	case StorageDeletedRestored:
		return "StorageDeletedRestored"
	case StorageDeletedAdded:
		return "StorageDeletedAdded"
	case StorageDeleted:
		return "StorageDeleted"
	case StorageModified:
		return "StorageModified"
	case StorageModifiedDeleted:
		return "StorageModifiedDeleted"
	case StorageModifiedRestored:
		return "StorageModifiedRestored"
	}
	return fmt.Sprintf("StorageStatus(%d)", s)
}

// RefundsGas returns true for transitions that clear a previously committed
// non-zero slot. External gas-accounting layers use this to credit refunds.
func (s StorageStatus) RefundsGas() bool {
	return s == StorageDeleted || s == StorageModifiedDeleted
}

func GetAllStorageStatuses() []StorageStatus {
	return []StorageStatus{
		StorageAssigned,
		StorageAdded,
		StorageAddedDeleted,
		StorageDeletedRestored,
		StorageDeletedAdded,
		StorageDeleted,
		StorageModified,
		StorageModifiedDeleted,
		StorageModifiedRestored,
	}
}

// memoryStorage is a map-backed Storage implementation. It keeps the
// committed state of every touched slot so that Set calls can be classified
// without an external state database.
type memoryStorage struct {
	current   map[Key]Word
	committed map[Key]Word
}

// NewMemoryStorage creates an empty in-memory Storage instance.
func NewMemoryStorage() *memoryStorage {
	return &memoryStorage{
		current:   map[Key]Word{},
		committed: map[Key]Word{},
	}
}

func (s *memoryStorage) Get(key Key) Word {
	return s.current[key]
}

func (s *memoryStorage) GetCommitted(key Key) Word {
	return s.committed[key]
}

func (s *memoryStorage) Set(key Key, value Word) StorageStatus {
	status := GetStorageStatus(s.committed[key], s.current[key], value)
	if value.IsZero() {
		delete(s.current, key)
	} else {
		s.current[key] = value
	}
	return status
}

// Commit promotes all current values to committed values, as done by a
// call-frame manager at the end of a successful transaction.
func (s *memoryStorage) Commit() {
	s.committed = map[Key]Word{}
	for key, value := range s.current {
		s.committed[key] = value
	}
}

// StorageRegistry hands out the Storage instance of each account, creating
// empty storage on first access. The registry is thread-safe; the returned
// Storage instances are not.
type StorageRegistry struct {
	accounts map[Address]*memoryStorage
	mu       sync.Mutex
}

func NewStorageRegistry() *StorageRegistry {
	return &StorageRegistry{accounts: map[Address]*memoryStorage{}}
}

// StorageOf returns the storage belonging to the given account.
func (r *StorageRegistry) StorageOf(account Address) Storage {
	r.mu.Lock()
	defer r.mu.Unlock()
	store, found := r.accounts[account]
	if !found {
		store = NewMemoryStorage()
		r.accounts[account] = store
	}
	return store
}

// Accounts lists all accounts for which storage has been created.
func (r *StorageRegistry) Accounts() []Address {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Keys(r.accounts)
}
